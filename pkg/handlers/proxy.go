package handlers

import (
	"bufio"
	"context"
	"io"
	"net"
	"time"

	dap_interceptors "dapwire/pkg/dap-interceptors"
	"dapwire/pkg/logger"
	"dapwire/pkg/requests"
	"dapwire/pkg/schema"
	"dapwire/pkg/utils"
)

// ProxyOptions configures Proxy.
type ProxyOptions struct {
	Upstream    string
	DialRetries int
	DialDelay   time.Duration
	// IdleTimeout caps the lifetime of a proxied session.
	IdleTimeout time.Duration

	Registry  *requests.Registry
	Validator *schema.Validator
}

// Proxy forwards DAP traffic between client and the upstream adapter without
// modifying it. Client requests are decoded on the way through and logged.
// br must wrap client so bytes already peeked are forwarded too.
func Proxy(ctx context.Context, client net.Conn, br *bufio.Reader, opts ProxyOptions, log logger.Logger) {
	utils.SetKeepAlive(client, log)

	retries := opts.DialRetries
	if retries < 1 {
		retries = 1
	}
	upstream, err := utils.DialWithRetry(ctx, opts.Upstream, retries, opts.DialDelay, log)
	if err != nil {
		log.Error("Error connecting to upstream adapter %s: %v", opts.Upstream, err)
		_ = client.Close()
		return
	}
	log.Info("Connected to upstream adapter %s for DAP forwarding", opts.Upstream)
	utils.SetKeepAlive(upstream, log)

	registry := opts.Registry
	if registry == nil {
		registry = requests.NewRegistry()
	}
	clientReader := dap_interceptors.NewRequestInterceptingReader(br, registry, opts.Validator, log)
	upstreamReader := dap_interceptors.NewResponseInterceptingReader(upstream, log)

	// Ensure both connections are closed when function exits
	defer func() {
		if err := client.Close(); err != nil && !utils.IsConnectionClosedError(err) {
			log.Warning("Error closing client connection: %v", err)
		}
		if err := upstream.Close(); err != nil && !utils.IsConnectionClosedError(err) {
			log.Warning("Error closing upstream connection: %v", err)
		}
		decoded, failed, discarded := clientReader.Stats()
		log.Info("Client disconnected: %d requests decoded, %d rejected, %d bytes unparseable",
			decoded, failed, discarded)
		responses, failures, events, _ := upstreamReader.Stats()
		log.Info("Upstream sent %d responses (%d failed) and %d events", responses, failures, events)
	}()

	// Channel to signal when one side closes
	done := make(chan struct{}, 2)

	go func() {
		defer func() { done <- struct{}{} }()
		written, err := io.Copy(upstream, clientReader)
		if err != nil && !utils.IsConnectionClosedError(err) {
			log.Warning("Error copying client->upstream: %v", err)
		}
		log.Info("%d bytes copied from client to upstream", written)
	}()

	go func() {
		defer func() { done <- struct{}{} }()
		written, err := io.Copy(client, upstreamReader)
		if err != nil && !utils.IsConnectionClosedError(err) {
			log.Warning("Error copying upstream->client: %v", err)
		}
		log.Info("%d bytes copied from upstream to client", written)
	}()

	timeout := opts.IdleTimeout
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	select {
	case <-done:
	case <-ctx.Done():
		log.Info("Shutting down proxied session")
	case <-time.After(timeout):
		log.Warning("Connection timeout, forcing close")
	}
}
