package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alerta/zabbix-alerta/cmd/zabbix-alerta/run"
	"github.com/alerta/zabbix-alerta/config"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// These variables are populated via the Go linker.
var (
	version string
	commit  string
)

func init() {
	// If version or commit are not set, make that clear.
	if version == "" {
		version = "unknown"
	}
	if commit == "" {
		commit = "unknown"
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(os.Stdout, os.Stderr, os.LookupEnv)
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer, env config.Environ) *cli.App {
	return &cli.App{
		Name:      "zabbix-alerta",
		Usage:     "Forward Zabbix notifications to Alerta",
		UsageText: "zabbix-alerta [options] <sendto> <summary> <body>",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "log-file",
				Usage:     "Write logs to `FILE`, STDERR or STDOUT",
				Value:     "STDERR",
				TakesFile: true,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "One of DEBUG, INFO, WARN or ERROR",
				Value: "INFO",
			},
			&cli.StringFlag{
				Name:  "log-encoding",
				Usage: "One of console or json",
				Value: "console",
			},
			&cli.StringFlag{
				Name:  "hostname",
				Usage: "Host name used in the alert origin, defaults to the system host name",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the alert as JSON instead of sending it",
			},
		},
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != 3 {
				cli.ShowAppHelp(ctx)
				return errors.Errorf("expected 3 arguments <sendto> <summary> <body>, got %d", ctx.NArg())
			}
			cmd := run.NewCommand()
			cmd.Version = version
			cmd.Commit = commit
			cmd.Hostname = ctx.String("hostname")
			cmd.Environ = env
			cmd.Stdout = stdout
			cmd.Stderr = stderr
			return cmd.Run(ctx.Context, run.Options{
				Sendto:      ctx.Args().Get(0),
				Summary:     ctx.Args().Get(1),
				Body:        ctx.Args().Get(2),
				LogFile:     ctx.String("log-file"),
				LogLevel:    ctx.String("log-level"),
				LogEncoding: ctx.String("log-encoding"),
				DryRun:      ctx.Bool("dry-run"),
			})
		},
		Commands: []*cli.Command{
			{
				Name:      "config",
				Usage:     "Print the options a sendto value resolves to",
				ArgsUsage: "[sendto]",
				Action: func(ctx *cli.Context) error {
					if ctx.NArg() > 1 {
						return errors.Errorf("expected at most 1 argument [sendto], got %d", ctx.NArg())
					}
					cmd := run.NewPrintConfigCommand()
					cmd.Environ = env
					cmd.Stdout = stdout
					cmd.Stderr = stderr
					return cmd.Run(ctx.Args().First())
				},
			},
			{
				Name:  "version",
				Usage: "Print build information",
				Action: func(ctx *cli.Context) error {
					fmt.Fprintf(stdout, "zabbix-alerta %s (git: %s)\n", version, commit)
					return nil
				},
			},
		},
	}
}
