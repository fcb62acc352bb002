package history

import "github.com/Slade66/observable-monitor/internal/observer"

// Observer 把每次变更追加到历史库
type Observer struct {
	store *SQLiteStore
}

// NewObserver 创建一个历史观察者
func NewObserver(store *SQLiteStore) *Observer {
	return &Observer{store: store}
}

// Name 返回观察者名称
func (o *Observer) Name() string {
	return "history"
}

// Update 实现了 observer.Observer 接口
func (o *Observer) Update(n observer.Notification) error {
	return o.store.Append(n.Record())
}
