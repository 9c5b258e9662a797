package run

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/alerta/zabbix-alerta/config"
	"github.com/pkg/errors"
)

// PrintConfigCommand represents the command executed by "zabbix-alerta config".
type PrintConfigCommand struct {
	Environ config.Environ

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewPrintConfigCommand return a new instance of PrintConfigCommand.
func NewPrintConfigCommand() *PrintConfigCommand {
	return &PrintConfigCommand{
		Environ: os.LookupEnv,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Run prints the options sendto resolves to, with the API key redacted.
func (cmd *PrintConfigCommand) Run(sendto string) error {
	o, err := config.Resolve(sendto, cmd.Environ)
	if err != nil {
		return errors.Wrap(err, "resolve options")
	}
	if err := o.Validate(); err != nil {
		return errors.Wrap(err, "invalid options")
	}

	if err := toml.NewEncoder(cmd.Stdout).Encode(o.Redacted()); err != nil {
		return errors.Wrap(err, "failed to encode options")
	}
	fmt.Fprint(cmd.Stdout, "\n")
	return nil
}
