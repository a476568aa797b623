package purc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomInterning(t *testing.T) {
	a := AtomFromString("hello")
	b := AtomFromString("hello")
	c := AtomFromString("world")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "hello", AtomToString(a))

	got, ok := TryAtom("hello")
	assert.True(t, ok)
	assert.Equal(t, a, got)

	_, ok = TryAtom("never-interned-before-xyzzy")
	assert.False(t, ok)
}

func TestInvalidAtom(t *testing.T) {
	assert.Equal(t, Atom(0), AtomFromString(""))
	assert.Equal(t, "", AtomToString(0))
	assert.Equal(t, "", AtomToString(Atom(1<<30)))
}

func TestErrorCodes(t *testing.T) {
	err := NewError(ErrNotFound)
	assert.Equal(t, ErrNotFound, CodeOf(err))
	assert.True(t, IsCode(err, ErrNotFound))
	assert.Equal(t, "not found", err.Error())

	detailed := Errorf(ErrOutOfBounds, "index %d", 9)
	assert.Contains(t, detailed.Error(), "out of bounds")
	assert.Contains(t, detailed.Error(), "index 9")

	assert.Equal(t, OK, CodeOf(nil))
	assert.Equal(t, ErrInvalidValue, CodeOf(errors.New("foreign")))
}

func TestErrorPosition(t *testing.T) {
	err := &Error{Code: ErrUnexpectedCharacter, Line: 3, Column: 7, Character: 'x'}
	msg := err.Error()
	assert.Contains(t, msg, "line 3")
	assert.Contains(t, msg, "column 7")
	assert.Contains(t, msg, `"x"`)
}

func TestErrorWrapping(t *testing.T) {
	inner := NewError(ErrDuplicated)
	wrapped := fmt.Errorf("adding member: %w", inner)
	assert.Equal(t, ErrDuplicated, CodeOf(wrapped))
}

func TestInstanceLastError(t *testing.T) {
	inst := NewInstance("app", "runner")
	require.Nil(t, inst.LastError())

	err := NewError(ErrBadEncoding)
	inst.SetLastError(err)
	assert.Same(t, err, inst.LastError().(*Error))

	inst.ClearError()
	assert.Nil(t, inst.LastError())
}

func TestEnvSwitches(t *testing.T) {
	t.Setenv(EnvEJSONLogEnable, "")
	assert.False(t, EJSONLogEnabled())

	t.Setenv(EnvEJSONLogEnable, "1")
	assert.True(t, EJSONLogEnabled())

	t.Setenv(EnvEJSONLogEnable, "true")
	assert.True(t, EJSONLogEnabled())

	t.Setenv(EnvDVObjsPath, "/opt/purc/dvobjs")
	assert.Equal(t, "/opt/purc/dvobjs", DVObjsPath())
}
