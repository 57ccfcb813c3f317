package cmd

import (
	"fmt"
	"net"
	"os"

	"github.com/go-delve/delve/service"
	"github.com/go-delve/delve/service/debugger"
	"github.com/go-delve/delve/service/rpccommon"

	"dapwire/pkg/config"
	"dapwire/pkg/logger"
	"dapwire/pkg/utils"
)

// delveBackend is a headless Delve server running in this process. It accepts
// both JSON-RPC and DAP on the upstream address.
type delveBackend struct {
	server *rpccommon.ServerImpl
	binary string
	log    logger.Logger
}

func startDelve(cfg *config.Config, log logger.Logger) (*delveBackend, error) {
	workingDir := cfg.Delve.WorkingDir
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting working directory: %w", err)
		}
		workingDir = wd
	}

	binary, err := utils.BuildBinary(cfg.Delve.Program, cfg.Delve.BuildFlags, cfg.Delve.Output)
	if err != nil {
		return nil, err
	}
	log.Info("Built binary at %s", binary)

	l, err := net.Listen("tcp", cfg.Upstream)
	if err != nil {
		_ = os.Remove(binary)
		return nil, fmt.Errorf("could not listen on %s: %w", cfg.Upstream, err)
	}

	server := rpccommon.NewServer(&service.Config{
		Listener: l,
		Debugger: debugger.Config{
			WorkingDir:     workingDir,
			Backend:        "default",
			CheckGoVersion: true,
		},
		// Clients may reconnect while the proxy keeps running.
		AcceptMulti: true,
		APIVersion:  2,
		ProcessArgs: append([]string{binary}, cfg.Delve.Args...),
	})
	if err := server.Run(); err != nil {
		_ = l.Close()
		_ = os.Remove(binary)
		return nil, fmt.Errorf("delve server failed to start: %w", err)
	}
	log.Info("Delve headless server started on %s", cfg.Upstream)
	return &delveBackend{server: server, binary: binary, log: log}, nil
}

// Stop shuts the server down and removes the debug binary.
func (b *delveBackend) Stop() {
	if err := b.server.Stop(); err != nil {
		b.log.Warning("Error stopping Delve server: %v", err)
	}
	if err := os.Remove(b.binary); err != nil && !os.IsNotExist(err) {
		b.log.Warning("Error removing %s: %v", b.binary, err)
	}
	b.log.Info("Delve headless server stopped")
}
