// Package main is the mockview terminal client. It registers users, manages
// interviews and runs an interview session against the API, asking the
// questions through the console speech engine or as typed prompts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/kiranshivaraju/mockview/internal/client"
	"github.com/kiranshivaraju/mockview/internal/config"
	"github.com/kiranshivaraju/mockview/internal/logger"
	"go.uber.org/zap"
)

const usage = `usage: interview [--api-url URL] [--api-key KEY] <command> [flags] [args]

commands:
  register     create or find your user and print a new API key
  create       create an interview and print its id
  list         list your interviews, newest first
  run          run an interview session (--text-only to type answers)
  delete       delete one interview
  bulk-delete  delete several interviews at once
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "interview: %v\n", err)
		}
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.ClientConfig
	api    *client.Client
	log    *zap.Logger
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fs := flag.NewFlagSet("interview", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() { fmt.Fprint(errOut, usage) }
	fs.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "API base URL")
	fs.StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "API key")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	log, err := logger.New(cfg.Env, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	a := &app{
		cfg:    cfg,
		api:    client.New(cfg.APIURL, cfg.APIKey, cfg.Timeout),
		log:    log,
		in:     in,
		out:    out,
		errOut: errOut,
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if cmd != "register" && cfg.APIKey == "" {
		return fmt.Errorf("%s needs an API key: set MOCKVIEW_API_KEY or pass --api-key", cmd)
	}

	switch cmd {
	case "register":
		return a.register(ctx, rest)
	case "create":
		return a.create(ctx, rest)
	case "list":
		return a.list(ctx, rest)
	case "run":
		return a.runSession(ctx, rest)
	case "delete":
		return a.delete(ctx, rest)
	case "bulk-delete":
		return a.bulkDelete(ctx, rest)
	default:
		fs.Usage()
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}
