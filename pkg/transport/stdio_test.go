package transport

import (
	"bufio"
	"io"
	"testing"
	"time"

	"github.com/google/go-dap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dapwire/pkg/extractors"
	"dapwire/pkg/handlers"
	"dapwire/pkg/logger"
)

func TestStdioServe(t *testing.T) {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	stdio := &StdioReadWriteCloser{In: inR, Out: outW}

	done := make(chan error, 1)
	go func() {
		done <- handlers.Serve(stdio, handlers.NewDispatcher(nil, nil, nil, nil), logger.NewNopLogger())
	}()

	req := `{"seq":3,"type":"request","command":"setBreakpoints","arguments":{"source":{"name":"main.go"},"breakpoints":[{"line":4},{"line":9,"condition":"i > 2"}]}}`
	_, err := inW.Write(extractors.BuildDAPMessage([]byte(req)))
	require.NoError(t, err)

	msg, err := dap.ReadProtocolMessage(bufio.NewReader(outR))
	require.NoError(t, err)
	resp, ok := msg.(*dap.SetBreakpointsResponse)
	require.True(t, ok)
	assert.Equal(t, 3, resp.RequestSeq)
	require.Len(t, resp.Body.Breakpoints, 2)
	assert.Equal(t, 9, resp.Body.Breakpoints[1].Line)

	require.NoError(t, inW.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end")
	}
}

func TestStdioClose(t *testing.T) {
	inR, _ := io.Pipe()
	_, outW := io.Pipe()
	s := &StdioReadWriteCloser{In: inR, Out: outW}
	assert.NoError(t, s.Close())
}

func TestStdioAnswersAfterInputCloses(t *testing.T) {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	done := make(chan error, 1)
	go func() {
		done <- handlers.Serve(&StdioReadWriteCloser{In: inR, Out: outW},
			handlers.NewDispatcher(nil, nil, nil, nil), logger.NewNopLogger())
	}()

	_, err := inW.Write(extractors.BuildDAPMessage([]byte(`{"seq":8,"type":"request","command":"threads"}`)))
	require.NoError(t, err)
	require.NoError(t, inW.Close())

	msg, err := dap.ReadProtocolMessage(bufio.NewReader(outR))
	require.NoError(t, err)
	resp, ok := msg.(*dap.ThreadsResponse)
	require.True(t, ok)
	assert.Equal(t, 8, resp.RequestSeq)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end")
	}
}
