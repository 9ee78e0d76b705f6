// Package main provides the CLI entry point for carousel.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/user/carousel/pkg/adapters/filesink"
	"github.com/user/carousel/pkg/adapters/ggrenderer"
	"github.com/user/carousel/pkg/adapters/logger"
	"github.com/user/carousel/pkg/adapters/nullsink"
	"github.com/user/carousel/pkg/adapters/osfilesystem"
	"github.com/user/carousel/pkg/config"
	"github.com/user/carousel/pkg/ports"
)

var version = "dev"

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "carousel",
		Usage:   l10n.T("Turn photos into vintage-styled carousels and narrated videos"),
		Version: version,
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			planCommand(),
			generateCommand(),
			regenerateCommand(),
			exportCommand(),
			videoCommand(),
			trimCommand(),
			contactSheetCommand(),
			versionCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("Project file (YAML)"), Category: l10n.T("Project")},
		&cli.StringFlag{Name: "env-file", Value: ".env", Usage: l10n.T("Environment file with API keys"), Category: l10n.T("Project")},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output directory"), Category: l10n.T("Output")},
		&cli.StringFlag{Name: "state", Usage: l10n.T("Project state file (default: <output>/slides.json)"), Category: l10n.T("Output")},
		&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: l10n.T("Number of parallel workers (0 = CPU count)"), Category: l10n.T("Performance")},
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output"), Category: l10n.T("Debug")},
		&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output"), Category: l10n.T("Debug")},
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T("Logging")},
		&cli.StringFlag{Name: "log-format", Value: "console", Usage: l10n.T("Log format (console, json)"), Category: l10n.T("Logging")},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T("Logging")},
	}
}

// env holds what every command needs.
type env struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      config.Config
	log      ports.Logger
	fs       *osfilesystem.FileSystem
	renderer *ggrenderer.Renderer
	sink     ports.DebugSink
	state    string
}

// setup loads .env and the project file, applies global flag overrides and
// creates the shared adapters.
func setup(c *cli.Context) (*env, error) {
	if err := godotenv.Load(c.String("env-file")); err != nil && c.IsSet("env-file") {
		return nil, fmt.Errorf("load %s: %w", c.String("env-file"), err)
	}

	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if c.IsSet("output") {
		cfg.OutputDir = c.String("output")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}

	level := ports.ParseLogLevel(c.String("log-level"))
	if c.Bool("quiet") {
		level = ports.LevelQuiet
	}
	log := logger.New(level, ports.ParseLogFormat(c.String("log-format")))

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(c.Context)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	fs := osfilesystem.New()
	renderer := ggrenderer.New()

	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			cancel()
			return nil, fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs, renderer)
	} else {
		sink = nullsink.New()
	}

	state := c.String("state")
	if state == "" {
		state = statePath(cfg.OutputDir)
	}

	return &env{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		log:      log,
		fs:       fs,
		renderer: renderer,
		sink:     sink,
		state:    state,
	}, nil
}
