// Package app wires configuration, logging, the protocol encoder and a
// transport into a ready dispatcher for the CLI and server binaries
package app

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/command"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/config"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/logger"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/protocol/dlive"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/transport"
)

// Options adjust how an App is built
type Options struct {
	ConfigFile string
	// DryRun forces the dry-run transport regardless of config
	DryRun bool
	// LogWriter, when set, replaces the configured stdout sink. The CLI
	// points it at stderr so command output stays clean.
	LogWriter io.Writer
	// Transport, when set, is used instead of the configured one
	Transport command.Transport
}

// App holds the wired components
type App struct {
	Config     config.Config
	Logger     *zap.Logger
	Encoder    *dlive.Encoder
	Transport  command.Transport
	Dispatcher *command.Dispatcher
}

// New loads configuration and builds every component
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if opts.DryRun {
		cfg.Transport = config.TransportDryRun
	}
	return FromConfig(cfg, opts)
}

// FromConfig builds every component from an already loaded config
func FromConfig(cfg config.Config, opts Options) (*App, error) {
	log, err := newLogger(cfg.Log, opts.LogWriter)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	enc, err := dlive.NewEncoder(cfg.Console.MIDIChannel)
	if err != nil {
		return nil, err
	}

	tr := opts.Transport
	if tr == nil {
		tr, err = newTransport(cfg, enc, log)
		if err != nil {
			return nil, err
		}
	}

	log.Debug("configured",
		zap.String("config_file", cfg.File),
		zap.String("transport", cfg.Transport),
		zap.Int("midi_channel", cfg.Console.MIDIChannel))

	return &App{
		Config:     cfg,
		Logger:     log,
		Encoder:    enc,
		Transport:  tr,
		Dispatcher: command.NewDispatcher(tr, log),
	}, nil
}

func newLogger(cfg logger.Config, w io.Writer) (*zap.Logger, error) {
	if w == nil {
		return logger.New(cfg)
	}
	if cfg.File.Enabled {
		cfg.Stdout = false
		return logger.New(cfg)
	}
	return logger.NewWriter(cfg.Level, w), nil
}

func newTransport(cfg config.Config, enc *dlive.Encoder, log *zap.Logger) (command.Transport, error) {
	switch cfg.Transport {
	case config.TransportDryRun:
		return transport.NewDryRun(enc, log), nil
	case config.TransportTCP:
		addr, err := cfg.ConsoleAddr()
		if err != nil {
			return nil, fmt.Errorf("%w (set it in dlive.yaml, DLIVE_CONSOLE_HOST, or use --dry-run)", err)
		}
		return transport.NewTCP(addr, enc, cfg.Console.Timeout, log), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

// Close releases the transport and flushes the logger
func (a *App) Close() error {
	var err error
	if c, ok := a.Transport.(io.Closer); ok {
		err = c.Close()
	}
	_ = a.Logger.Sync()
	return err
}
