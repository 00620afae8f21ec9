package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/protomem/pmaster/internal/api"
	"github.com/protomem/pmaster/internal/env"
	"github.com/protomem/pmaster/internal/model"
	"github.com/protomem/pmaster/internal/session"
	"github.com/protomem/pmaster/internal/version"
)

var (
	_cfgFile     = flag.String("cfg", "", "path to config file")
	_showVersion = flag.Bool("version", false, "display version and exit")
	_email       = flag.String("email", "", "account email (default $PMASTER_EMAIL)")
	_password    = flag.String("password", "", "account password (default $PMASTER_PASSWORD)")
	_debug       = flag.Bool("debug", false, "log api calls to stderr")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	level := slog.LevelWarn
	if *_debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	err := run(logger)
	if err != nil {
		logger.Debug(err.Error())
		fmt.Fprintln(os.Stderr, api.Message(err))
		os.Exit(1)
	}
}

type config struct {
	api      api.Config
	email    string
	password string
}

type application struct {
	config  config
	client  *api.Client
	login   model.LoginResult
	logger  *slog.Logger
	session *session.Session
	out     io.Writer
}

var errUsage = errors.New("usage: pmaster [flags] <command> [command flags]; run with -h for the command list")

func run(logger *slog.Logger) error {
	if *_showVersion {
		fmt.Printf("version: %s\n", version.Get())
		return nil
	}

	if *_cfgFile != "" {
		err := env.Load(*_cfgFile)
		if err != nil {
			return err
		}
	}

	var cfg config
	cfg.api = api.DefaultConfig()
	cfg.api.BaseURL = env.GetString("PMASTER_API_URL", api.DefaultBaseURL)
	cfg.api.ConnectTimeout = env.GetDuration("PMASTER_CONNECT_TIMEOUT", cfg.api.ConnectTimeout)
	cfg.api.ReadTimeout = env.GetDuration("PMASTER_READ_TIMEOUT", cfg.api.ReadTimeout)
	cfg.api.WriteTimeout = env.GetDuration("PMASTER_WRITE_TIMEOUT", cfg.api.WriteTimeout)
	cfg.api.InsecureSkipVerify = env.GetBool("PMASTER_INSECURE_TLS", false)
	cfg.email = firstNonEmpty(*_email, env.GetString("PMASTER_EMAIL", ""))
	cfg.password = firstNonEmpty(*_password, env.GetString("PMASTER_PASSWORD", ""))

	args := flag.Args()
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := lookupCommand(args[0])
	if !ok {
		return fmt.Errorf("unknown command %q", args[0])
	}

	sess := session.New()
	client, err := api.New(cfg.api, sess, logger)
	if err != nil {
		return err
	}

	app := &application{
		config:  cfg,
		client:  client,
		logger:  logger.With("module", "cli"),
		session: sess,
		out:     os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.execute(ctx, cmd, args[1:])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "usage: pmaster [flags] <command> [command flags]\n\ncommands:\n")
	for _, c := range _commands {
		fmt.Fprintf(out, "  %-15s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(out, "\nflags:\n")
	flag.PrintDefaults()
}
