package session

import (
	"fmt"
	"io"
	"sync"

	"github.com/Slade66/observable-monitor/internal/observer"
	log "github.com/sirupsen/logrus"
)

// PrintObserver 把请求、响应和错误逐行打印出来
type PrintObserver struct {
	out io.Writer
	mu  sync.Mutex
}

// NewPrintObserver 创建一个打印观察者
func NewPrintObserver(out io.Writer) *PrintObserver {
	return &PrintObserver{out: out}
}

// Update 实现了 observer.Observer 接口
func (p *PrintObserver) Update(n observer.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	switch e := n.NewValue.(type) {
	case RequestEvent:
		_, err = fmt.Fprintf(p.out, "➡️ Sending %s request to %s\n", e.Method, e.URL)
		if err == nil && e.Payload != "" {
			_, err = fmt.Fprintf(p.out, "📤 Payload: %s\n", e.Payload)
		}
	case ResponseEvent:
		_, err = fmt.Fprintf(p.out, "✅ Response from %s\n🔄 Status Code: %d\n📄 Response Body: %s...\n", e.URL, e.StatusCode, e.BodyPreview)
	case ErrorEvent:
		_, err = fmt.Fprintf(p.out, "❌ ERROR: %s request to %s failed with error: %v\n", e.Method, e.URL, e.Err)
	}
	return err
}

// SlowResponseObserver 记录所有被标记为慢响应的请求
type SlowResponseObserver struct {
	slow []ResponseEvent
	mu   sync.Mutex
}

// NewSlowResponseObserver 创建一个慢响应观察者
func NewSlowResponseObserver() *SlowResponseObserver {
	return &SlowResponseObserver{}
}

// Update 实现了 observer.Observer 接口
func (o *SlowResponseObserver) Update(n observer.Notification) error {
	e, ok := n.NewValue.(ResponseEvent)
	if !ok || !e.Slow {
		return nil
	}
	log.Warnf("⚠️ WARNING: Slow response (%.2fs) for %s", e.Elapsed.Seconds(), e.URL)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.slow = append(o.slow, e)
	return nil
}

// Slow 返回目前记录到的慢响应
func (o *SlowResponseObserver) Slow() []ResponseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]ResponseEvent, len(o.slow))
	copy(out, o.slow)
	return out
}
