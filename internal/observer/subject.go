// internal/observer/subject.go
package observer

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Subject 维护一个有序的观察者注册表，并在状态变化时同步通知它们
type Subject struct {
	name      string
	observers []Observer
	mu        sync.Mutex
	now       func() time.Time
}

// NewSubject 创建一个空的主题
func NewSubject(name string) *Subject {
	return &Subject{
		name:      name,
		observers: make([]Observer, 0),
		now:       time.Now,
	}
}

// Name 返回主题名称
func (s *Subject) Name() string {
	return s.name
}

// AddObserver 实现了 Observable 接口，同一个观察者只会被注册一次
func (s *Subject) AddObserver(o Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(o) >= 0 {
		return
	}
	s.observers = append(s.observers, o)
}

// RemoveObserver 实现了 Observable 接口，观察者不存在时什么也不做
func (s *Subject) RemoveObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(o)
	if i < 0 {
		return
	}
	// 保持剩余观察者的相对顺序
	s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
}

// Observers 返回当前注册表的快照，顺序与注册顺序一致
func (s *Subject) Observers() []Observer {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]Observer, len(s.observers))
	copy(snapshot, s.observers)
	return snapshot
}

// Len 返回已注册观察者的数量
func (s *Subject) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

// NotifyObservers 实现了 Observable 接口。
// 按注册顺序同步调用每个观察者；某个观察者出错或 panic 时记录日志并继续通知后面的观察者，
// 所有错误合并后返回。
func (s *Subject) NotifyObservers(property string, oldValue, newValue any) error {
	observers := s.Observers()
	n := Notification{
		ID:        uuid.New(),
		Subject:   s,
		Property:  property,
		OldValue:  oldValue,
		NewValue:  newValue,
		ChangedAt: s.now(),
	}

	log.Debugf("📢 正在通知 %d 个观察者: %s.%s 发生变化", len(observers), s.name, property)

	var errs []error
	for i, o := range observers {
		if err := dispatch(o, n); err != nil {
			log.Warnf("⚠️ 观察者 #%d (%T) 处理 %s.%s 失败: %v", i, o, s.name, property, err)
			errs = append(errs, fmt.Errorf("观察者 #%d (%T): %w", i, o, err))
		}
	}
	return errors.Join(errs...)
}

// dispatch 调用单个观察者，并把 panic 转换为错误
func dispatch(o Observer, n Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrObserverPanic, r)
		}
	}()
	return o.Update(n)
}

// indexOf 按身份查找观察者，调用方必须持有锁
func (s *Subject) indexOf(o Observer) int {
	if o == nil || !reflect.TypeOf(o).Comparable() {
		return -1
	}
	for i, existing := range s.observers {
		if sameObserver(existing, o) {
			return i
		}
	}
	return -1
}

// sameObserver 比较两个观察者是否是同一个。
// 含有不可比较字段 (例如接口字段里放了切片) 的值比较时会 panic，这种情况视为不相等。
func sameObserver(a, b Observer) (same bool) {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
