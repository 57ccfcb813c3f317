// Package cmd is the dapwire command line: a DAP adapter front end that decodes
// every client request, answers it or forwards it to a real debug adapter.
package cmd

import (
	"io"
	"os"

	"github.com/urfave/cli"

	"dapwire/pkg/config"
	"dapwire/pkg/logger"
)

const version = "0.1.0"

const DESCRIPTION = `dapwire speaks the Debug Adapter Protocol. Every request a client sends is
decoded into its typed form, so malformed requests are reported with the
exact field path that failed instead of being passed along.`

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "config, c",
		Usage:  "path to a YAML config file",
		EnvVar: "DAPWIRE_CONFIG",
	},
	cli.StringFlag{
		Name:  "log-file",
		Usage: "write logs to this file instead of stderr",
	},
}

// Execute runs the dapwire command line with args, os.Args included.
func Execute(args []string) error {
	return newApp(os.Stdout).Run(args)
}

func newApp(w io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "dapwire"
	app.HelpName = "dapwire"
	app.Usage = "decode, serve and proxy Debug Adapter Protocol requests"
	app.UsageText = "dapwire [global options] <command> [arguments...]"
	app.Version = version
	app.Description = DESCRIPTION
	app.Writer = w
	app.Flags = globalFlags
	app.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "answer DAP requests with the built-in echo adapter",
			Action: serve,
			Flags:  serveFlags,
		},
		{
			Name:   "proxy",
			Usage:  "forward DAP traffic to an upstream adapter, decoding requests on the way",
			Action: proxy,
			Flags:  proxyFlags,
		},
		{
			Name:      "decode",
			Aliases:   []string{"d"},
			Usage:     "decode one request read from a file or stdin",
			ArgsUsage: "[file|-]",
			Action:    decodeRequest,
			Flags:     decodeFlags,
		},
		{
			Name:   "commands",
			Usage:  "list the commands with a registered decoder",
			Action: listCommands,
		},
	}
	return app
}

// loadConfig reads the config file and environment, then applies the flags
// the user actually set.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	if c.GlobalIsSet("log-file") {
		cfg.LogFile = c.GlobalString("log-file")
	}
	if c.IsSet("addr") {
		cfg.Addr = c.String("addr")
	}
	if c.IsSet("validate") {
		cfg.Validate = c.Bool("validate")
	}
	return cfg, nil
}

func openLogger(cfg *config.Config) (*logger.StandardLogger, error) {
	return logger.Open(cfg.LogFile)
}
