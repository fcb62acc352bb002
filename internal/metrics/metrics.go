package metrics

import (
	"fmt"
	"time"

	"github.com/Slade66/observable-monitor/internal/observer"
	gometrics "github.com/hashicorp/go-metrics"
)

const (
	// ChangesKey 是变更计数器的名称
	ChangesKey = "changes"
	// ValueKey 是最新数值的 gauge 名称
	ValueKey = "value"
)

// NewInmem 创建一个写入内存 sink 的 Metrics 实例。
// 进程收到 SIGUSR1 时可以通过 gometrics.DefaultInmemSignal(sink) 把数据打印到 stderr。
func NewInmem(serviceName string, interval, retain time.Duration) (*gometrics.Metrics, *gometrics.InmemSink, error) {
	sink := gometrics.NewInmemSink(interval, retain)

	cfg := gometrics.DefaultConfig(serviceName)
	cfg.EnableHostname = false
	cfg.EnableRuntimeMetrics = false

	m, err := gometrics.New(cfg, sink)
	if err != nil {
		return nil, nil, fmt.Errorf("无法初始化 metrics: %w", err)
	}
	return m, sink, nil
}

// Observer 为每次变更累加计数器，数值型的新值同时写入 gauge
type Observer struct {
	metrics *gometrics.Metrics
}

// NewObserver 创建一个 metrics 观察者
func NewObserver(m *gometrics.Metrics) *Observer {
	return &Observer{metrics: m}
}

// Name 返回观察者名称
func (o *Observer) Name() string {
	return "metrics"
}

// Update 实现了 observer.Observer 接口
func (o *Observer) Update(n observer.Notification) error {
	labels := []gometrics.Label{
		{Name: "subject", Value: n.SubjectName()},
		{Name: "property", Value: n.Property},
	}
	o.metrics.IncrCounterWithLabels([]string{ChangesKey}, 1, labels)
	if v, ok := observer.ToFloat64(n.NewValue); ok {
		o.metrics.SetGaugeWithLabels([]string{ValueKey}, float32(v), labels)
	}
	return nil
}
