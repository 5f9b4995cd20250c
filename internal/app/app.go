// Package app assembles the configuration, logger and Vidispine client that
// every vsclient command runs against.
package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/vidispine-client/internal/config"
	"github.com/tonimelisma/vidispine-client/internal/logger"
	"github.com/tonimelisma/vidispine-client/pkg/vidispine"
)

// Names of the persistent flags read by NewApp.
const (
	FlagServer    = "server"
	FlagHost      = "host"
	FlagPort      = "port"
	FlagUser      = "user"
	FlagRunAs     = "run-as"
	FlagDebug     = "debug"
	FlagLogFormat = "log-format"
)

type App struct {
	Config *config.Configuration
	Client *vidispine.Client
	SDK    SDK
	Logger logger.Logger
}

// NewApp loads the configuration, applies environment and flag overrides,
// validates the result and connects a client. Nothing is sent to the server.
func NewApp(cmd *cobra.Command, opts ...vidispine.Option) (*App, error) {
	cfg, err := config.LoadOrCreate()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if err := ApplyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	l := newLogger(cfg)
	l.Debugf("connecting as %s", cfg.Server.Credentials())

	client := vidispine.NewClient(cfg.Server, l, opts...)
	return &App{
		Config: cfg,
		Client: client,
		SDK:    client,
		Logger: l,
	}, nil
}

// ApplyFlags copies the connection flags that were set on cmd into cfg.
// --server is applied first so that --host and --port can refine it.
func ApplyFlags(cmd *cobra.Command, cfg *config.Configuration) error {
	flags := cmd.Flags()

	if flags.Changed(FlagServer) {
		raw, _ := flags.GetString(FlagServer)
		if err := cfg.Server.ParseServerURL(raw); err != nil {
			return fmt.Errorf("parsing --%s: %w", FlagServer, err)
		}
	}
	if flags.Changed(FlagHost) {
		cfg.Server.Host, _ = flags.GetString(FlagHost)
	}
	if flags.Changed(FlagPort) {
		cfg.Server.Port, _ = flags.GetInt(FlagPort)
	}
	if flags.Changed(FlagUser) {
		cfg.Server.User, _ = flags.GetString(FlagUser)
	}
	if flags.Changed(FlagRunAs) {
		cfg.Server.RunAs, _ = flags.GetString(FlagRunAs)
	}
	if debug, _ := flags.GetBool(FlagDebug); debug {
		cfg.Debug = true
	}
	if flags.Changed(FlagLogFormat) {
		f, _ := flags.GetString(FlagLogFormat)
		cfg.LogFormat = logger.Format(f)
	}
	return nil
}

func newLogger(cfg *config.Configuration) logger.Logger {
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	return logger.NewSlogLoggerWithOptions(logger.Options{
		Level:  level,
		Format: cfg.LogFormat,
	}).With("component", "vsclient")
}

// Close releases the client's connections.
func (a *App) Close() {
	if a.Client != nil {
		a.Client.Close()
	}
}
