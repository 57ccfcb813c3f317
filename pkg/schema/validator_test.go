package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dapwire/pkg/decode"
)

func parse(t *testing.T, s string) decode.Object {
	t.Helper()
	obj, err := decode.ParseObject([]byte(s))
	require.NoError(t, err)
	return obj
}

func TestNewValidatorLoadsEmbeddedSchemas(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	assert.Equal(t, []string{"continue", "evaluate", "setBreakpoints", "setFunctionBreakpoints", "stackTrace"}, v.Commands())
}

func TestValidateSetBreakpoints(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	ok := parse(t, `{"source":{"path":"/a.ts"},"breakpoints":[{"line":10},{"line":12,"condition":"x"}]}`)
	assert.NoError(t, v.Validate("setBreakpoints", ok))

	bad := parse(t, `{"source":{"path":"/a.ts"},"breakpoints":[{"column":3}]}`)
	err = v.Validate("setBreakpoints", bad)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "setBreakpoints", ve.Command)
	require.Len(t, ve.Violations, 1)
	assert.Contains(t, ve.Violations[0], "line")
}

func TestValidateCollectsEveryViolation(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	err = v.Validate("setBreakpoints", parse(t, `{"source":{"path":3},"breakpoints":[{"line":"1"},{}]}`))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.GreaterOrEqual(t, len(ve.Violations), 3)
}

func TestValidateUnknownCommandPasses(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	assert.NoError(t, v.Validate("threads", parse(t, `{"anything":true}`)))
	assert.False(t, v.Has("threads"))
}

func TestAddReplacesSchema(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	require.NoError(t, v.Add("pause", []byte(`{"type":"object","required":["threadId"]}`)))
	assert.True(t, v.Has("pause"))
	assert.Error(t, v.Validate("pause", parse(t, `{}`)))

	assert.Error(t, v.Add("broken", []byte(`{"type":`)))
}
