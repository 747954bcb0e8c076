package bench

import (
	"errors"
	"fmt"
	"time"
)

// ErrPanic wraps a value recovered from a panicking benchmark function.
var ErrPanic = errors.New("function panicked")

// Func is a unit of work under benchmark.
type Func func() error

// Attempt is the outcome of a single invocation.
type Attempt struct {
	Elapsed time.Duration
	Memory  MemoryUsage
	Err     error
}

// OK reports whether the invocation succeeded.
func (a Attempt) OK() bool { return a.Err == nil }

// Measure calls fn once and returns its value with the elapsed wall-clock
// time. When fn fails (or panics) the error is returned and no timing is
// reported.
func Measure[T any](fn func() (T, error)) (T, time.Duration, error) {
	start := time.Now()
	value, err := call(fn)
	elapsed := time.Since(start)
	if err != nil {
		var zero T
		return zero, 0, err
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return value, elapsed, nil
}

func call[T any](fn func() (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return fn()
}
