package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"dapwire/pkg/config"
	"dapwire/pkg/handlers"
	"dapwire/pkg/locators"
	"dapwire/pkg/schema"
	"dapwire/pkg/transport"
)

var serveFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "addr, a",
		Usage:  "address to listen on (default from config, :4711)",
		EnvVar: config.EnvAddr,
	},
	cli.StringFlag{
		Name:   "transport, t",
		Usage:  "one of tcp, websocket, stdio",
		EnvVar: config.EnvTransport,
	},
	cli.StringFlag{
		Name:  "ws-path",
		Usage: "HTTP path for the websocket transport",
	},
	cli.StringFlag{
		Name:  "source-root",
		Usage: "report breakpoints outside this directory as unverified",
	},
	cli.BoolFlag{
		Name:  "validate",
		Usage: "check request arguments against the bundled JSON schemas before decoding",
	},
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	if c.IsSet("transport") {
		cfg.Transport = c.String("transport")
	}
	if c.IsSet("ws-path") {
		cfg.WebSocketPath = c.String("ws-path")
	}
	if c.IsSet("source-root") {
		cfg.SourceRoot = c.String("source-root")
	}
	if err := cfg.Check(); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	log, err := openLogger(cfg)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	defer log.Close()

	validator, err := newValidator(cfg)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	locator, err := locators.New(cfg.SourceRoot)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	dispatcher := handlers.NewDispatcher(nil, validator, &handlers.EchoHandler{Locator: locator}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Transport {
	case config.TransportStdio:
		log.Info("Serving DAP on stdio")
		err = handlers.Serve(transport.NewStdio(), dispatcher, log)
	case config.TransportWebSocket:
		err = transport.NewWebSocketServer(cfg.WebSocketPath, dispatcher, log).ListenAndServe(ctx, cfg.Addr)
	default:
		err = handlers.ListenAndServe(ctx, cfg.Addr, handlers.Options{Dispatcher: dispatcher}, log)
	}
	if err != nil {
		log.Error("Server stopped: %v", err)
		return cli.NewExitError(err.Error(), 1)
	}
	log.Info("Shutting down...")
	return nil
}

// newValidator returns nil when validation is off.
func newValidator(cfg *config.Config) (*schema.Validator, error) {
	if !cfg.Validate {
		return nil, nil
	}
	return schema.NewValidator()
}
