package interpreter

import (
	"math"
	"strconv"
)

// Value is a runtime Lox value.
// Every implementation is comparable with ==, which is what Lox equality uses.
type Value interface {
	String() string
}

type (
	ValueNil      struct{}
	ValueBool     bool
	ValueFloat    float64
	ValueString   string
	ValueCallable struct {
		Callable
	}
	ValueClass struct {
		*LoxClass
	}
	ValueObject struct {
		*LoxInstance
	}
)

var NilValue = ValueNil{}

// String implements Value.
func (v ValueNil) String() string {
	return "nil"
}

// String implements Value.
func (v ValueBool) String() string {
	return strconv.FormatBool(bool(v))
}

// String implements Value. Integral numbers print without a fractional part,
// infinities as Infinity and -Infinity.
func (v ValueFloat) String() string {
	switch {
	case math.IsInf(float64(v), 1):
		return "Infinity"
	case math.IsInf(float64(v), -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(float64(v), 'f', -1, 64)
}

// String implements Value.
func (v ValueString) String() string {
	return string(v)
}

// String implements Value.
func (v ValueCallable) String() string {
	return v.Callable.String()
}

// String implements Value.
func (v ValueClass) String() string {
	return v.LoxClass.String()
}

// String implements Value.
func (v ValueObject) String() string {
	return v.LoxInstance.String()
}

// fromLiteral converts a scanner literal into a runtime value.
func fromLiteral(literal any) Value {
	switch v := literal.(type) {
	case nil:
		return NilValue
	case bool:
		return ValueBool(v)
	case float64:
		return ValueFloat(v)
	case string:
		return ValueString(v)
	}
	panic("unexpected literal type")
}

var (
	_ Value = ValueNil{}
	_ Value = ValueCallable{Callable: nil}
	_ Value = ValueBool(false)
	_ Value = ValueFloat(0)
	_ Value = ValueString("")
	_ Value = ValueClass{LoxClass: nil}
	_ Value = ValueObject{LoxInstance: nil}
)
