package dap_interceptors

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dapwire/pkg/logger"
)

func TestResponseInterceptor(t *testing.T) {
	in := stream(
		`{"seq":1,"type":"response","request_seq":4,"success":true,"command":"setBreakpoints","body":{"breakpoints":[{"verified":true,"line":3},{"verified":false,"line":9}]}}`,
		`{"seq":2,"type":"event","event":"stopped","body":{"reason":"breakpoint","threadId":1}}`,
		`{"seq":3,"type":"response","request_seq":5,"success":false,"command":"evaluate","message":"error","body":{"error":{"id":2001,"format":"could not find symbol"}}}`,
		`{"seq":4,"type":"response","request_seq":6,"success":false,"command":"next","message":"not stopped"}`,
		`{"seq":5,"type":"response","request_seq":7,"success":true,"command":"frobnicate"}`,
	)

	log := logger.NewMockLogger()
	rir := NewResponseInterceptingReader(iotest.OneByteReader(bytes.NewReader(in)), log)
	out, err := io.ReadAll(rir)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	responses, failures, events, unknown := rir.Stats()
	assert.Equal(t, 3, responses)
	assert.Equal(t, 2, failures)
	assert.Equal(t, 1, events)
	assert.Equal(t, 1, unknown)

	assert.Equal(t, []string{
		"Response to seq=4 setBreakpoints: 1 of 2 verified",
		"Event stopped",
	}, log.Infos())
	assert.Equal(t, []string{
		"Response to seq=5 evaluate failed: could not find symbol",
		"Response to seq=6 next failed: not stopped",
	}, log.Warnings())
}
