// internal/observer/gauge.go
package observer

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
)

// GaugeObserver 是一个具体的观察者，用于在终端显示当前值在量程中的位置
type GaugeObserver struct {
	min      float64
	max      float64
	barWidth int
	out      io.Writer
	mu       sync.Mutex
}

// NewGaugeObserver 创建一个新的量程条观察者
func NewGaugeObserver(min, max float64, out io.Writer) *GaugeObserver {
	return &GaugeObserver{
		min:      min,
		max:      max,
		barWidth: 50, // 量程条在终端的显示宽度
		out:      out,
	}
}

// Name 返回观察者名称
func (g *GaugeObserver) Name() string {
	return "gauge"
}

// Update 实现了 Observer 接口
func (g *GaugeObserver) Update(n Notification) error {
	value, err := toFloat64(n.NewValue)
	if err != nil {
		return err
	}
	if math.IsNaN(value) {
		return fmt.Errorf("%w: NaN", ErrNotNumeric)
	}
	return g.print(n.Property, value)
}

// print 在终端上绘制量程条
func (g *GaugeObserver) print(property string, value float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	percent := 0.0
	if g.max > g.min {
		percent = (value - g.min) / (g.max - g.min)
	}
	// 超出量程的值贴边显示
	if percent < 0 {
		percent = 0
	} else if percent > 1 {
		percent = 1
	}
	filledWidth := int(percent * float64(g.barWidth))

	bar := strings.Repeat("=", filledWidth) + strings.Repeat(" ", g.barWidth-filledWidth)

	_, err := fmt.Fprintf(g.out, "[%s] %.2f%% %s=%v (%v..%v)\n",
		bar,
		percent*100,
		property,
		value,
		g.min,
		g.max,
	)
	return err
}
