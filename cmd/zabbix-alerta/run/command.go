package run

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alerta/zabbix-alerta/alert"
	"github.com/alerta/zabbix-alerta/config"
	"github.com/alerta/zabbix-alerta/services/alerta"
	"github.com/alerta/zabbix-alerta/services/diagnostic"
	"github.com/alerta/zabbix-alerta/zabbix"
	"github.com/pkg/errors"
)

type Diagnostic interface {
	Starting(version, commit string)
	Invoked(sendto, summary, body string)
	Resolved(o config.Options)
	Alert(r *alert.Record)
	Error(msg string, err error)
}

// Options are the arguments Zabbix invokes the alert script with, plus logging flags.
type Options struct {
	Sendto  string
	Summary string
	Body    string

	LogFile     string
	LogLevel    string
	LogEncoding string

	// DryRun prints the alert as JSON instead of sending it.
	DryRun bool
}

// Command represents the command executed by "zabbix-alerta <sendto> <summary> <body>".
type Command struct {
	Version  string
	Commit   string
	Hostname string

	// Environ defaults to the process environment.
	Environ config.Environ

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Diag   Diagnostic

	diagService *diagnostic.Service
}

// NewCommand return a new instance of Command.
func NewCommand() *Command {
	return &Command{
		Environ: os.LookupEnv,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Run resolves the delivery options, builds the alert and posts it to Alerta.
func (cmd *Command) Run(ctx context.Context, opts Options) error {
	if err := cmd.openDiagnostic(opts); err != nil {
		return err
	}
	defer cmd.diagService.Close()

	cmd.Diag.Starting(cmd.Version, cmd.Commit)
	cmd.Diag.Invoked(opts.Sendto, opts.Summary, opts.Body)

	o, err := config.NewResolver(cmd.Environ, cmd.diagService.NewConfigHandler()).Resolve(opts.Sendto)
	if err != nil {
		cmd.Diag.Error("failed to resolve options", err)
		return errors.Wrap(err, "resolve options")
	}
	if o.Debug {
		if err := cmd.diagService.SetLevel("DEBUG"); err != nil {
			return err
		}
	}
	if err := o.Validate(); err != nil {
		cmd.Diag.Error("invalid options", err)
		return errors.Wrap(err, "invalid options")
	}
	cmd.Diag.Resolved(o)

	r := zabbix.NewParser(cmd.hostname(), cmd.diagService.NewZabbixHandler()).Parse(opts.Summary, opts.Body)
	cmd.Diag.Alert(r)

	if opts.DryRun {
		return cmd.printAlert(r)
	}

	c := alerta.NewConfig()
	c.URL = o.Endpoint
	c.Key = o.Key
	c.InsecureSkipVerify = !o.SSLVerify
	c.Timeout = o.TimeoutDuration()
	s, err := alerta.NewService(c, cmd.diagService.NewAlertaHandler())
	if err != nil {
		cmd.Diag.Error("failed to create alerta service", err)
		return errors.Wrap(err, "create alerta service")
	}
	if err := s.Alert(ctx, r); err != nil {
		cmd.Diag.Error("failed to send alert", err)
		return errors.Wrap(err, "send alert")
	}
	return nil
}

func (cmd *Command) openDiagnostic(opts Options) error {
	c := diagnostic.NewConfig()
	if opts.LogFile != "" {
		c.File = opts.LogFile
	}
	if opts.LogLevel != "" {
		c.Level = opts.LogLevel
	}
	if opts.LogEncoding != "" {
		c.Encoding = opts.LogEncoding
	}
	cmd.diagService = diagnostic.NewService(c, cmd.Stdout, cmd.Stderr)
	if err := cmd.diagService.Open(); err != nil {
		return errors.Wrap(err, "failed to open diagnostic service")
	}
	cmd.Diag = cmd.diagService.NewCmdHandler()
	return nil
}

func (cmd *Command) hostname() string {
	if cmd.Hostname != "" {
		return cmd.Hostname
	}
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

func (cmd *Command) printAlert(r *alert.Record) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal alert")
	}
	fmt.Fprintln(cmd.Stdout, string(b))
	return nil
}
