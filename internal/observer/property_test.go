package observer_test

import (
	"sync"
	"testing"

	"github.com/Slade66/observable-monitor/internal/observer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperty_Set(t *testing.T) {
	tests := []struct {
		name      string
		initial   int
		next      int
		wantCalls int
	}{
		{name: "equal value does not notify", initial: 25, next: 25, wantCalls: 0},
		{name: "different value notifies once", initial: 25, next: 28, wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			s := observer.NewSubject("s")
			o := newRecorder("o", &calls)
			s.AddObserver(o)
			p := observer.NewProperty(s, "temperature", tt.initial)

			require.NoError(t, p.Set(tt.next))

			assert.Len(t, calls, tt.wantCalls)
			assert.Equal(t, tt.next, p.Get())
			if tt.wantCalls == 1 {
				assert.Equal(t, tt.initial, o.got[0].OldValue)
				assert.Equal(t, tt.next, o.got[0].NewValue)
			}
		})
	}
}

func TestProperty_GetInsideCallbackSeesNewValue(t *testing.T) {
	s := observer.NewSubject("s")
	p := observer.NewProperty(s, "mode", "idle")
	var seen string
	s.AddObserver(getter{fn: func() { seen = p.Get() }})

	require.NoError(t, p.Set("running"))
	assert.Equal(t, "running", seen)
}

type getter struct {
	fn func()
}

func (g getter) Update(observer.Notification) error {
	g.fn()
	return nil
}

func TestProperty_SetReturnsObserverErrorButKeepsValue(t *testing.T) {
	var calls []string
	s := observer.NewSubject("s")
	o := newRecorder("o", &calls)
	o.err = assert.AnError
	s.AddObserver(o)
	p := observer.NewProperty(s, "temperature", 25)

	err := p.Set(40)

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 40, p.Get())
	assert.Equal(t, "temperature", p.Name())
	assert.Same(t, s, p.Subject())
}

type chainRecorder struct {
	mu  sync.Mutex
	got []observer.Notification
}

func (c *chainRecorder) Update(n observer.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, n)
	return nil
}

func TestProperty_ConcurrentSetsNotifyInAssignmentOrder(t *testing.T) {
	const writers = 16
	const perWriter = 50

	s := observer.NewSubject("s")
	rec := &chainRecorder{}
	s.AddObserver(rec)
	p := observer.NewProperty(s, "counter", 0)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 1; i <= perWriter; i++ {
				assert.NoError(t, p.Set(w*perWriter+i))
			}
		}(w)
	}
	wg.Wait()

	require.NotEmpty(t, rec.got)
	assert.Equal(t, 0, rec.got[0].OldValue)
	for i := 1; i < len(rec.got); i++ {
		assert.Equal(t, rec.got[i-1].NewValue, rec.got[i].OldValue, "notification %d", i)
	}
	assert.Equal(t, rec.got[len(rec.got)-1].NewValue, p.Get())
}

func TestSubject_AddRemoveWhileDispatching(t *testing.T) {
	s := observer.NewSubject("s")
	s.AddObserver(&chainRecorder{})
	p := observer.NewProperty(s, "counter", 0)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 1; i <= 200; i++ {
			assert.NoError(t, p.Set(i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			o := &chainRecorder{}
			s.AddObserver(o)
			_ = s.Observers()
			s.RemoveObserver(o)
		}
	}()
	wg.Wait()

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 200, p.Get())
}
