package status

import (
	"context"
	"time"

	"github.com/Slade66/observable-monitor/internal/observer"
)

// Observer 把每次变更写入 Redis
type Observer struct {
	manager *Manager
	timeout time.Duration
}

// NewObserver 创建一个 Redis 状态观察者，每次写入最多等待 timeout
func NewObserver(m *Manager, timeout time.Duration) *Observer {
	return &Observer{manager: m, timeout: timeout}
}

// Name 返回观察者名称
func (o *Observer) Name() string {
	return "redis"
}

// Update 实现了 observer.Observer 接口
func (o *Observer) Update(n observer.Notification) error {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	return o.manager.RecordChange(ctx, n.Record())
}
