package interpreter

import (
	"testing"

	"github.com/loxwell/loxwell/internal/loxerrors"
	"github.com/loxwell/loxwell/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentChain(t *testing.T) {
	globals := NewEnvironment()
	globals.Define("b", ValueFloat(2))
	globals.Define("a", ValueString("x"))

	inner := globals.Nest().Nest()
	inner.Define("a", ValueBool(true))

	name := token.NewTokenHeap(token.IDENTIFIER, "a", nil, 1)

	value, err := inner.Get(name)
	require.NoError(t, err)
	assert.Equal(t, ValueBool(true), value)

	value, err = inner.GetAt(2, "a")
	require.NoError(t, err)
	assert.Equal(t, ValueString("x"), value)

	inner.AssignAt(2, name, ValueString("y"))
	value, err = globals.Get(name)
	require.NoError(t, err)
	assert.Equal(t, ValueString("y"), value)

	assert.Equal(t, "{a=true} -> {} -> {a=y, b=2}", inner.String())
}

func TestEnvironmentUndefined(t *testing.T) {
	env := NewEnvironment().Nest()
	name := token.NewTokenHeap(token.IDENTIFIER, "missing", nil, 7)

	_, err := env.Get(name)
	require.ErrorIs(t, err, loxerrors.ErrRuntimeUndefinedVariable)
	assert.EqualError(t, err, "Undefined variable 'missing'.\n[line 7] at 'missing'")

	err = env.Assign(name, NilValue)
	require.ErrorIs(t, err, loxerrors.ErrRuntimeUndefinedVariable)

	_, err = env.GetAt(1, "missing")
	assert.ErrorIs(t, err, loxerrors.ErrRuntimeUndefinedVariable)
}
