package observer

import "errors"

var (
	// ErrObserverPanic 表示观察者在 Update 中发生了 panic
	ErrObserverPanic = errors.New("观察者发生 panic")
	// ErrNotNumeric 表示需要数值的观察者收到了非数值
	ErrNotNumeric = errors.New("属性值不是数值")
)
