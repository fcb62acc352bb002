// internal/observer/interfaces.go
package observer

import (
	"time"

	"github.com/Slade66/observable-monitor/pkg/change"
	"github.com/google/uuid"
)

// Observer 观察者接口
type Observer interface {
	// Update 是观察者接收通知的方法。返回的错误不会中断其他观察者。
	Update(n Notification) error
}

// Observable 被观察者（主题）接口
type Observable interface {
	AddObserver(o Observer)
	RemoveObserver(o Observer)
	NotifyObservers(property string, oldValue, newValue any) error
}

// Notification 是每次分发时新建的变更通知
type Notification struct {
	ID        uuid.UUID
	Subject   *Subject
	Property  string
	OldValue  any
	NewValue  any
	ChangedAt time.Time
}

// SubjectName 返回触发通知的主题名称，主题为空时返回空字符串
func (n Notification) SubjectName() string {
	if n.Subject == nil {
		return ""
	}
	return n.Subject.Name()
}

// Record 将通知转换为可序列化的变更记录
func (n Notification) Record() change.Record {
	return change.Record{
		ID:        n.ID,
		Subject:   n.SubjectName(),
		Property:  n.Property,
		OldValue:  n.OldValue,
		NewValue:  n.NewValue,
		ChangedAt: n.ChangedAt.UTC(),
	}
}
