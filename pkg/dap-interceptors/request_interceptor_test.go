package dap_interceptors

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"

	"github.com/google/go-dap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dapwire/pkg/decode"
	"dapwire/pkg/extractors"
	"dapwire/pkg/logger"
	"dapwire/pkg/requests"
	"dapwire/pkg/schema"
)

type seen struct {
	seq int
	msg dap.Message
	err error
}

func stream(bodies ...string) []byte {
	var buf bytes.Buffer
	for _, b := range bodies {
		buf.Write(extractors.BuildDAPMessage([]byte(b)))
	}
	return buf.Bytes()
}

func TestInterceptorPassesBytesThrough(t *testing.T) {
	in := stream(
		`{"seq":1,"type":"request","command":"setBreakpoints","arguments":{"source":{"path":"/a.go"},"breakpoints":[{"line":3},{"line":8}]}}`,
		`{"seq":2,"type":"request","command":"setBreakpoints","arguments":{"source":{"path":"/a.go"},"breakpoints":[{"column":1}]}}`,
		`{"seq":3,"type":"request","command":"threads"}`,
	)

	log := logger.NewMockLogger()
	rir := NewRequestInterceptingReader(iotest.OneByteReader(bytes.NewReader(in)), requests.NewRegistry(), nil, log)
	var got []seen
	rir.OnRequest(func(seq int, msg dap.Message, err error) {
		got = append(got, seen{seq, msg, err})
	})

	out, err := io.ReadAll(rir)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	require.Len(t, got, 3)
	assert.IsType(t, &dap.SetBreakpointsRequest{}, got[0].msg)
	assert.NoError(t, got[0].err)

	assert.Equal(t, 2, got[1].seq)
	assert.Nil(t, got[1].msg)
	assert.Equal(t, "breakpoints[0].line", decode.Path(got[1].err))

	assert.IsType(t, &dap.ThreadsRequest{}, got[2].msg)

	decoded, failed, discarded := rir.Stats()
	assert.Equal(t, 2, decoded)
	assert.Equal(t, 1, failed)
	assert.Zero(t, discarded)

	assert.Contains(t, log.Infos(), "Request seq=1 setBreakpoints /a.go lines=[3 8]")
	assert.Contains(t, log.Infos(), "Request seq=3 threads")
	require.Len(t, log.Warnings(), 1)
	assert.Contains(t, log.Warnings()[0], `missing required field "line"`)
}

func TestInterceptorValidatesArguments(t *testing.T) {
	v, err := schema.NewValidator()
	require.NoError(t, err)

	in := stream(`{"seq":5,"type":"request","command":"continue","arguments":{"threadId":"one"}}`)
	rir := NewRequestInterceptingReader(bytes.NewReader(in), requests.NewRegistry(), v, logger.NewNopLogger())
	var got []seen
	rir.OnRequest(func(seq int, msg dap.Message, err error) {
		got = append(got, seen{seq, msg, err})
	})

	_, err = io.ReadAll(rir)
	require.NoError(t, err)
	require.Len(t, got, 1)

	var ve *schema.ValidationError
	assert.ErrorAs(t, got[0].err, &ve)
	assert.Equal(t, 5, got[0].seq)
}

func TestInterceptorChecksEnvelopeBeforeSchema(t *testing.T) {
	v, err := schema.NewValidator()
	require.NoError(t, err)

	in := stream(`{"type":"request","command":"continue","arguments":{"threadId":"one"}}`)
	rir := NewRequestInterceptingReader(bytes.NewReader(in), requests.NewRegistry(), v, logger.NewNopLogger())
	var got []seen
	rir.OnRequest(func(seq int, msg dap.Message, err error) {
		got = append(got, seen{seq, msg, err})
	})

	_, err = io.ReadAll(rir)
	require.NoError(t, err)
	require.Len(t, got, 1)

	de, ok := decode.AsDecodeError(got[0].err)
	require.True(t, ok, "got %v", got[0].err)
	assert.Equal(t, decode.KindMissingField, de.Kind)
	assert.Equal(t, "seq", de.Field)
}

func TestInterceptorSkipsMalformedHeader(t *testing.T) {
	bad := "Content-Length: nope\r\n\r\n{}"
	in := append([]byte(bad), stream(`{"seq":9,"type":"request","command":"threads"}`)...)
	log := logger.NewMockLogger()
	rir := NewRequestInterceptingReader(bytes.NewReader(in), requests.NewRegistry(), nil, log)

	out, err := io.ReadAll(rir)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	decoded, failed, discarded := rir.Stats()
	assert.Equal(t, 1, decoded)
	assert.Equal(t, 0, failed)
	assert.Equal(t, len(bad), discarded)
	assert.NotEmpty(t, log.Warnings())
	assert.Contains(t, log.Infos(), "Request seq=9 threads")
}

func TestInterceptorReportsInvalidJSON(t *testing.T) {
	in := stream(`{"seq":1,`)
	var got []seen
	rir := NewRequestInterceptingReader(bytes.NewReader(in), requests.NewRegistry(), nil, logger.NewNopLogger())
	rir.OnRequest(func(seq int, msg dap.Message, err error) {
		got = append(got, seen{seq, msg, err})
	})
	_, err := io.ReadAll(rir)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Error(t, got[0].err)
}
