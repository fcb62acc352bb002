// internal/observer/alarm.go
package observer

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// DefaultAlarmThreshold 是温度告警的默认阈值
const DefaultAlarmThreshold = 30

// AlarmEvent 是告警观察者每次判定后发出的信号
type AlarmEvent struct {
	Property  string
	Value     float64
	Threshold float64
	Alarmed   bool
}

// AlarmObserver 是一个具体的观察者，新值严格大于阈值时发出告警
type AlarmObserver struct {
	threshold float64
	sink      func(AlarmEvent)
	alarmed   bool
	mu        sync.Mutex
}

// NewAlarmObserver 创建一个阈值告警观察者，sink 为 nil 时只写日志
func NewAlarmObserver(threshold float64, sink func(AlarmEvent)) *AlarmObserver {
	return &AlarmObserver{
		threshold: threshold,
		sink:      sink,
	}
}

// Name 返回观察者名称
func (a *AlarmObserver) Name() string {
	return "alarm"
}

// Threshold 返回配置的阈值
func (a *AlarmObserver) Threshold() float64 {
	return a.threshold
}

// Alarmed 返回最近一次判定的结果
func (a *AlarmObserver) Alarmed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.alarmed
}

// Update 实现了 Observer 接口
func (a *AlarmObserver) Update(n Notification) error {
	value, err := toFloat64(n.NewValue)
	if err != nil {
		return err
	}

	event := AlarmEvent{
		Property:  n.Property,
		Value:     value,
		Threshold: a.threshold,
		Alarmed:   value > a.threshold,
	}

	a.mu.Lock()
	a.alarmed = event.Alarmed
	a.mu.Unlock()

	if event.Alarmed {
		log.Warnf("🔔 ALARM! %s=%v exceeds threshold of %v", n.Property, value, a.threshold)
	} else {
		log.Infof("✅ %s=%v is within normal range", n.Property, value)
	}
	if a.sink != nil {
		a.sink(event)
	}
	return nil
}
