package decode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeErrorMessages(t *testing.T) {
	assert.Equal(t, `missing required field "arguments"`, MissingField("arguments").Error())
	assert.Equal(t, `field "seq": expected integer`, TypeMismatch("seq", TypeInteger).Error())
	assert.Equal(t, `field "type": expected "request"`, InvalidValue("type", "request").Error())
	assert.Equal(t, `unsupported command "frobnicate"`, Unsupported("frobnicate").Error())
	assert.Equal(t, `breakpoints[0]: missing required field "line"`,
		NestedDecodeFailure("breakpoints[0]", MissingField("line")).Error())
}

func TestNestedUnwrap(t *testing.T) {
	inner := MissingField("line")
	err := NestedDecodeFailure("breakpoints[1]", inner)
	wrapped := fmt.Errorf("decode request: %w", err)

	de, ok := AsDecodeError(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindNested, de.Kind)
	assert.True(t, errors.Is(wrapped, inner))

	assert.Same(t, inner, Innermost(wrapped))
	assert.Equal(t, "breakpoints[1].line", Path(wrapped))
}

func TestPathThroughSeveralLevels(t *testing.T) {
	err := NestedDecodeFailure("source",
		NestedDecodeFailure("checksums[0]", TypeMismatch("algorithm", TypeString)))
	assert.Equal(t, "source.checksums[0].algorithm", Path(err))
	assert.Equal(t, KindTypeMismatch, Innermost(err).Kind)
}

func TestNonDecodeErrors(t *testing.T) {
	plain := errors.New("boom")
	_, ok := AsDecodeError(plain)
	assert.False(t, ok)
	assert.Nil(t, Innermost(plain))
	assert.Empty(t, Path(plain))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "MissingField", KindMissingField.String())
	assert.Equal(t, "NestedDecodeFailure", KindNested.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
