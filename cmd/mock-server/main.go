package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/protomem/pmaster/internal/env"
	"github.com/protomem/pmaster/internal/mockserver"
	"github.com/protomem/pmaster/internal/version"
)

var (
	_cfgFile     = flag.String("cfg", "", "path to config file")
	_showVersion = flag.Bool("version", false, "display version and exit")
)

func main() {
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	err := run(logger)
	if err != nil {
		trace := string(debug.Stack())
		logger.Error(err.Error(), "trace", trace)
		os.Exit(1)
	}
}

type config struct {
	httpHost string
	httpPort int
	seedDemo bool
}

type application struct {
	config config
	mock   *mockserver.Server
	logger *slog.Logger
}

func run(logger *slog.Logger) error {
	var cfg config

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

	cfg.httpHost = env.GetString("HTTP_HOST", "localhost")
	cfg.httpPort = env.GetInt("HTTP_PORT", 8080)
	cfg.seedDemo = env.GetBool("MOCK_SEED", true)

	store := mockserver.NewStore()
	mockserver.Seed(store, cfg.seedDemo)

	app := &application{
		config: cfg,
		mock:   mockserver.New(logger, store),
		logger: logger,
	}

	return app.serveHTTP()
}
