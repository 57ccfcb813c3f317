package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"dapwire/pkg/config"
	"dapwire/pkg/handlers"
	"dapwire/pkg/requests"
)

var proxyFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "addr, a",
		Usage:  "address the proxy listens on",
		EnvVar: config.EnvAddr,
	},
	cli.StringFlag{
		Name:   "upstream, u",
		Usage:  "address of the debug adapter to forward to (default localhost:2345)",
		EnvVar: config.EnvUpstream,
	},
	cli.StringFlag{
		Name:   "backend, b",
		Usage:  "none, or delve to start a headless Delve server on the upstream address",
		EnvVar: config.EnvBackend,
	},
	cli.StringFlag{
		Name:  "program, p",
		Usage: "package built and debugged by the delve backend",
	},
	cli.BoolFlag{
		Name:  "validate",
		Usage: "check request arguments against the bundled JSON schemas and log violations",
	},
}

func proxy(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	if c.IsSet("upstream") {
		cfg.Upstream = c.String("upstream")
	}
	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("program") {
		cfg.Delve.Program = c.String("program")
	}
	// The proxy always listens on TCP.
	cfg.Transport = config.TransportTCP
	if err := cfg.Check(); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	log, err := openLogger(cfg)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	defer log.Close()

	if cfg.Backend == config.BackendDelve {
		backend, err := startDelve(cfg, log)
		if err != nil {
			log.Error("Failed to start delve: %v", err)
			return cli.NewExitError(err.Error(), 1)
		}
		defer backend.Stop()
	}

	validator, err := newValidator(cfg)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := handlers.Options{
		Proxy: handlers.ProxyOptions{
			Upstream:    cfg.Upstream,
			DialRetries: cfg.DialRetries,
			DialDelay:   cfg.DialDelay,
			IdleTimeout: cfg.IdleTimeout,
			Registry:    requests.NewRegistry(),
			Validator:   validator,
		},
	}
	log.Info("Starting proxy on %s, forwarding to %s", cfg.Addr, cfg.Upstream)
	if err := handlers.ListenAndServe(ctx, cfg.Addr, opts, log); err != nil {
		log.Error("Proxy stopped: %v", err)
		return cli.NewExitError(err.Error(), 1)
	}
	log.Info("Shutting down...")
	return nil
}
