// Package config loads console, transport, server and logging settings from
// dlive.yaml, DLIVE_* environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/logger"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/protocol/dlive"
)

// Transport names
const (
	TransportTCP    = "tcp"
	TransportDryRun = "dry-run"
)

// EnvPrefix is prepended to every environment override, e.g. DLIVE_CONSOLE_HOST
const EnvPrefix = "DLIVE"

// ErrNoHost is returned when a TCP connection is needed but no host is set
var ErrNoHost = errors.New("console.host is not set")

// ConsoleConfig describes the MixRack or surface to talk to
type ConsoleConfig struct {
	Host        string        `mapstructure:"host" yaml:"host"`
	Port        int           `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	MIDIChannel int           `mapstructure:"midi_channel" yaml:"midi_channel" validate:"min=1,max=12"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	Mode string `mapstructure:"mode" yaml:"mode" validate:"oneof=debug release test"`
}

// Config is the full application configuration
type Config struct {
	File      string        `mapstructure:"-" yaml:"-"`
	Console   ConsoleConfig `mapstructure:"console" yaml:"console"`
	Transport string        `mapstructure:"transport" yaml:"transport" validate:"oneof=tcp dry-run"`
	Server    ServerConfig  `mapstructure:"server" yaml:"server"`
	Log       logger.Config `mapstructure:"log" yaml:"log"`
}

// ConsoleAddr returns the console "host:port"
func (c Config) ConsoleAddr() (string, error) {
	host := strings.TrimSpace(c.Console.Host)
	if host == "" {
		return "", ErrNoHost
	}
	return net.JoinHostPort(host, strconv.Itoa(c.Console.Port)), nil
}

// ServerAddr returns the API listen address
func (c Config) ServerAddr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("console.host", "")
	v.SetDefault("console.port", dlive.DefaultPort)
	v.SetDefault("console.midi_channel", dlive.BaseChannelMin)
	v.SetDefault("console.timeout", "3s")
	v.SetDefault("transport", TransportTCP)
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.stdout", true)
	v.SetDefault("log.file.enabled", false)
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.name", logger.DefaultFilename)
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("log.file.compress", true)
}

// Load reads configuration. An explicit path must exist; otherwise dlive.yaml
// is looked up in the working directory and $HOME/.config/dlive, and a missing
// file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("dlive")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "dlive"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every bound declared on the config structs
func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
