// internal/observer/display.go
package observer

import (
	"fmt"
	"io"
	"sync"
)

// DisplayObserver 是一个具体的观察者，把每次变化的旧值和新值输出到显示设备
type DisplayObserver struct {
	name string
	out  io.Writer
	mu   sync.Mutex
}

// NewDisplayObserver 创建一个显示观察者，name 是显示设备的名称或位置
func NewDisplayObserver(name string, out io.Writer) *DisplayObserver {
	return &DisplayObserver{name: name, out: out}
}

// Name 返回显示设备名称
func (d *DisplayObserver) Name() string {
	return d.name
}

// Update 实现了 Observer 接口
func (d *DisplayObserver) Update(n Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := fmt.Fprintf(d.out, "📱 %s: %s changed from %v to %v\n", d.name, n.Property, n.OldValue, n.NewValue)
	return err
}
