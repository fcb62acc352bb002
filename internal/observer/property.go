// internal/observer/property.go
package observer

import "sync"

// Property 是绑定在某个主题上的具名可变属性。
// 只有赋予一个不相等的新值时才会触发通知。
//
// 同一属性的 Set 调用是串行的；在该属性自己的回调中再次调用 Set 会死锁，
// 观察者不应这样做。在回调中调用 Get 是安全的。
type Property[T comparable] struct {
	subject *Subject
	name    string
	value   T
	mu      sync.RWMutex // 保护 value
	setMu   sync.Mutex   // 串行化 Set，保证通知顺序与赋值顺序一致
}

// NewProperty 创建一个属性
func NewProperty[T comparable](subject *Subject, name string, initial T) *Property[T] {
	return &Property[T]{
		subject: subject,
		name:    name,
		value:   initial,
	}
}

// Name 返回属性名称
func (p *Property[T]) Name() string {
	return p.name
}

// Subject 返回属性所属的主题
func (p *Property[T]) Subject() *Subject {
	return p.subject
}

// Get 返回当前值
func (p *Property[T]) Get() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

// Set 更新属性值。新值与当前值相等时不做任何事；
// 否则先保存新值，再把旧值和新值通知给所有观察者，返回观察者的错误。
func (p *Property[T]) Set(v T) error {
	p.setMu.Lock()
	defer p.setMu.Unlock()

	p.mu.Lock()
	old := p.value
	if old == v {
		p.mu.Unlock()
		return nil
	}
	p.value = v
	p.mu.Unlock()

	return p.subject.NotifyObservers(p.name, old, v)
}
