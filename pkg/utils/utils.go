package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/go-delve/delve/pkg/gobuild"

	"dapwire/pkg/logger"
)

// IsConnectionClosedError checks if an error is due to a closed network connection
// This helps distinguish between normal connection closes and actual errors
func IsConnectionClosedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}

	// Some transports only report these as text.
	errStr := err.Error()
	for _, pattern := range []string{
		"use of closed network connection",
		"connection reset by peer",
		"broken pipe",
		"io: read/write on closed pipe",
	} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// DialWithRetry attempts to connect to the upstream adapter, retrying up to
// maxRetries times with delay between attempts. It stops early when ctx is done.
func DialWithRetry(ctx context.Context, addr string, maxRetries int, delay time.Duration, log logger.Logger) (net.Conn, error) {
	var lastErr error
	dialer := net.Dialer{Timeout: 10 * time.Second}

	for i := 0; i < maxRetries; i++ {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		log.Warning("Failed to connect to %s (attempt %d/%d): %v", addr, i+1, maxRetries, err)

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("dial %s: %w", addr, ctx.Err())
			case <-time.After(delay):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect after %d attempts: %w", maxRetries, lastErr)
}

// SetKeepAlive enables TCP keep-alive and clears deadlines on conn. Non-TCP
// connections only get their deadlines cleared.
func SetKeepAlive(conn net.Conn, log logger.Logger) {
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			log.Warning("Error enabling keep alive: %v", err)
		}
		if err := tcpConn.SetKeepAlivePeriod(30 * time.Second); err != nil {
			log.Warning("Error setting keep alive period: %v", err)
		}
	}
	if err := conn.SetDeadline(time.Time{}); err != nil {
		log.Warning("Error clearing deadlines: %v", err)
	}
}

// BuildBinary compiles pkg with debug information for the Delve backend and
// returns the path of the binary. output names the binary; it is placed where
// Delve puts its own debug binaries.
func BuildBinary(pkg, buildFlags, output string) (string, error) {
	debugname := gobuild.DefaultDebugBinaryPath(output)
	if err := gobuild.GoBuild(debugname, []string{pkg}, buildFlags); err != nil {
		gobuild.Remove(debugname)
		return "", fmt.Errorf("failed to build %s: %w", pkg, err)
	}
	return debugname, nil
}
