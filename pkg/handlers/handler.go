package handlers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"dapwire/pkg/logger"
)

// Options selects how Handle treats a connection. When Proxy.Upstream is set
// traffic is forwarded there; otherwise requests are answered by Dispatcher.
type Options struct {
	Dispatcher *Dispatcher
	Proxy      ProxyOptions
}

// Handle serves one client connection. DAP frames start with a Content-Length
// header, so anything else is rejected before a session starts.
func Handle(ctx context.Context, clientTCP net.Conn, opts Options, log *logger.StandardLogger) {
	clientAddr := clientTCP.RemoteAddr().String()
	sessionLog := log.Session(clientAddr)
	sessionLog.Info("New client connected")

	// Peek without consuming so the session or proxy sees the whole stream.
	br := bufio.NewReader(clientTCP)
	firstByte, err := br.Peek(1)
	if err != nil {
		sessionLog.Warning("Failed to peek first byte: %v", err)
		_ = clientTCP.Close()
		return
	}
	if firstByte[0] != 'C' && firstByte[0] != 'c' {
		sessionLog.Error("Not a DAP stream (first byte %q), closing", firstByte[0])
		_ = clientTCP.Close()
		return
	}

	if opts.Proxy.Upstream != "" {
		Proxy(ctx, clientTCP, br, opts.Proxy, sessionLog)
		return
	}

	stop := context.AfterFunc(ctx, func() { _ = clientTCP.Close() })
	defer stop()
	if err := serve(br, clientTCP, opts.Dispatcher, sessionLog); err != nil {
		sessionLog.Error("Session ended: %v", err)
	}
}

// ListenAndServe accepts connections on addr until ctx is cancelled, handling
// each on its own goroutine. It waits for open sessions before returning.
func ListenAndServe(ctx context.Context, addr string, opts Options, log *logger.StandardLogger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", addr, err)
	}
	return ServeListener(ctx, ln, opts, log)
}

// ServeListener is ListenAndServe on an existing listener, which it closes.
func ServeListener(ctx context.Context, ln net.Listener, opts Options, log *logger.StandardLogger) error {
	log.Info("Listening on %s", ln.Addr())
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Warning("Error accepting connection: %v", err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			Handle(ctx, conn, opts, log)
		}()
	}
}
