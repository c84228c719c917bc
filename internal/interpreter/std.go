package interpreter

import (
	"context"
	"time"
)

// defineStd installs the built-in globals.
func defineStd(globals *environment, now func() time.Time) {
	globals.Define("clock", ValueCallable{newNativeFunction("clock", 0, stdFnClock(now))})
}

// stdFnClock returns the seconds elapsed since the Unix epoch, with millisecond precision.
func stdFnClock(now func() time.Time) func(ctx context.Context, interpreter *interpreter, args []Value) (Value, error) {
	return func(ctx context.Context, interpreter *interpreter, args []Value) (Value, error) {
		return ValueFloat(float64(now().UnixMilli()) / 1000), nil
	}
}
