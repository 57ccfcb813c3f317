package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dapwire/pkg/logger"
)

func TestIsConnectionClosedError(t *testing.T) {
	assert.False(t, IsConnectionClosedError(nil))
	assert.True(t, IsConnectionClosedError(io.EOF))
	assert.True(t, IsConnectionClosedError(fmt.Errorf("read frame: %w", io.EOF)))
	assert.True(t, IsConnectionClosedError(net.ErrClosed))
	assert.True(t, IsConnectionClosedError(io.ErrClosedPipe))
	assert.True(t, IsConnectionClosedError(errors.New("write tcp 1.2.3.4:1: broken pipe")))
	assert.False(t, IsConnectionClosedError(errors.New("invalid character 'x'")))
}

func TestIsConnectionClosedErrorOnPipe(t *testing.T) {
	a, b := net.Pipe()
	require.NoError(t, b.Close())
	_, err := a.Write([]byte("x"))
	assert.True(t, IsConnectionClosedError(err), "err: %v", err)
}

func TestDialWithRetry(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	conn, err := DialWithRetry(context.Background(), ln.Addr().String(), 3, time.Millisecond, logger.NewNopLogger())
	require.NoError(t, err)
	conn.Close()
}

func TestDialWithRetryGivesUp(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	log := logger.NewMockLogger()
	_, err = DialWithRetry(context.Background(), addr, 3, time.Millisecond, log)
	assert.ErrorContains(t, err, "failed to connect after 3 attempts")
	assert.Len(t, log.Warnings(), 3)
}

func TestDialWithRetryCancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = DialWithRetry(ctx, addr, 5, time.Hour, logger.NewNopLogger())
	assert.ErrorIs(t, err, context.Canceled)
}
