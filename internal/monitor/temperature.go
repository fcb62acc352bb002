// internal/monitor/temperature.go
package monitor

import (
	"github.com/Slade66/observable-monitor/internal/observer"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultTemperature 是温度计的初始温度 (摄氏度)
	DefaultTemperature = 25.0
	// SubjectName 是温度计主题在通知中的名称
	SubjectName = "thermometer"
	// PropertyTemperature 是温度属性的名称
	PropertyTemperature = "temperature"
)

// TemperatureMonitor 是一个具体的主题，温度变化时通知所有观察者
type TemperatureMonitor struct {
	*observer.Subject
	temperature *observer.Property[float64]
}

// NewTemperatureMonitor 创建一个温度计
func NewTemperatureMonitor(initial float64) *TemperatureMonitor {
	subject := observer.NewSubject(SubjectName)
	return &TemperatureMonitor{
		Subject:     subject,
		temperature: observer.NewProperty(subject, PropertyTemperature, initial),
	}
}

// Temperature 返回当前温度
func (m *TemperatureMonitor) Temperature() float64 {
	return m.temperature.Get()
}

// SetTemperature 更新温度，温度没有变化时不会通知观察者
func (m *TemperatureMonitor) SetTemperature(value float64) error {
	if current := m.temperature.Get(); current != value {
		log.Infof("🌡️ 温度从 %v°C 变为 %v°C", current, value)
	}
	return m.temperature.Set(value)
}
