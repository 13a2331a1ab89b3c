package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aussiebroadwan/budadmin/internal/console/app"
	"github.com/aussiebroadwan/budadmin/pkg/adminsdk"
	"github.com/aussiebroadwan/budadmin/pkg/session"
	"github.com/spf13/pflag"
)

const (
	exitError        = 1
	exitUsage        = 2
	exitAuthRequired = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	flagSet := pflag.NewFlagSet("budadmin", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&cfg.APIBaseURL, "api-url", cfg.APIBaseURL, "catalog API base URL")
	flagSet.DurationVar(&cfg.APITimeout, "timeout", cfg.APITimeout, "per-request timeout")
	flagSet.StringVar(&cfg.SessionFile, "session-file", cfg.SessionFile, "session database path (\":memory:\" for none)")
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flagSet.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (json, text)")
	debug := flagSet.Bool("debug", false, "shorthand for --log-level=debug")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return 0
		}
		return exitUsage
	}
	if help, _ := flagSet.GetBool("help"); help || flagSet.NArg() == 0 {
		printHelp(stderr, flagSet)
		return 0
	}
	if *debug {
		cfg.LogLevel = "debug"
	}

	application, err := app.New(cfg, app.Options{
		LogOutput: stderr,
		OnLogout: func() {
			fmt.Fprintln(stderr, "Signed out. Run 'budadmin login' to sign in again.")
		},
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	defer application.Close()

	c := &cli{app: application, stdout: stdout, stderr: stderr}
	return exitCode(stderr, c.dispatch(ctx, flagSet.Args()))
}

func exitCode(stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}

	var usage usageError
	switch {
	case errors.As(err, &usage):
		fmt.Fprintf(stderr, "usage: %v\n", err)
		return exitUsage
	case errors.Is(err, session.ErrAuthRequired), session.IsRefreshError(err):
		fmt.Fprintln(stderr, "error: not signed in or session expired")
		return exitAuthRequired
	case errors.Is(err, adminsdk.ErrInvalidID):
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
}

type usageError string

func (e usageError) Error() string { return string(e) }

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `budadmin manages the model catalog from the command line.

Usage:
  budadmin [global flags] <command> [args]

Session:
  login [--username NAME] [--password-file PATH]
  logout
  whoami
  setup --username NAME --email EMAIL [--password-file PATH]
  passwd

Catalog:
  dashboard
  licenses      list | get ID | key KEY | delete ID
  models        list | get ID | details URI | compatible ENGINE | delete ID
  providers     list | get ID | delete ID
  architectures list | get ID | delete ID
  engines       list | get ID | delete ID | versions ENGINE_ID | rules ENGINE_ID
                compatible MODEL_ARCHITECTURE
  users         list

List commands accept --page, --page-size and --search.

Global flags:
%s`, flagSet.FlagUsages())
}
