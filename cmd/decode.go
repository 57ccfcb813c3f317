package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"dapwire/pkg/decode"
	"dapwire/pkg/requests"
	"dapwire/pkg/schema"
)

var decodeFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "validate",
		Usage: "check arguments against the bundled JSON schemas first",
	},
}

// decodeRequest prints the typed form of one request, or the reason it does
// not decode together with the path of the offending field.
func decodeRequest(c *cli.Context) error {
	data, err := readInput(c.Args().First())
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	obj, err := decode.ParseObject(data)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	if c.Bool("validate") {
		env, err := requests.DecodeEnvelope(obj)
		if err != nil {
			return decodeFailure(c, err)
		}
		validator, err := schema.NewValidator()
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		if args, ok, _ := obj.OptionalObject("arguments"); ok {
			if err := validator.Validate(env.Command, args); err != nil {
				return cli.NewExitError(err.Error(), 2)
			}
		}
	}

	msg, err := requests.NewRegistry().Decode(obj)
	if err != nil {
		return decodeFailure(c, err)
	}
	out, err := json.MarshalIndent(msg, "", "  ")
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	fmt.Fprintf(c.App.Writer, "%T\n%s\n", msg, out)
	return nil
}

func decodeFailure(c *cli.Context, err error) error {
	if path := decode.Path(err); path != "" {
		fmt.Fprintf(c.App.Writer, "field: %s\n", path)
	}
	return cli.NewExitError(err.Error(), 2)
}

func readInput(name string) ([]byte, error) {
	if name == "" || name == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func listCommands(c *cli.Context) error {
	for _, command := range requests.NewRegistry().Commands() {
		fmt.Fprintln(c.App.Writer, command)
	}
	return nil
}
