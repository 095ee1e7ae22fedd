// File: internal/config/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Layered configuration for counterd: defaults, optional config file,
// COUNTERD_* environment variables, then flags bound by the caller.

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/momentics/hioload-counter/server"
)

// EnvPrefix prefixes every environment override, e.g. COUNTERD_PORT.
const EnvPrefix = "COUNTERD"

// Keys understood by Load.
const (
	KeyPort               = "port"
	KeyBacklog            = "backlog"
	KeyReadBufferSize     = "read_buffer_size"
	KeyMaxLineLength      = "max_line_length"
	KeyInitialConnections = "initial_connections"
	KeyResolvePeerNames   = "resolve_peer_names"
	KeyResolveTimeout     = "resolve_timeout"
	KeyLogLevel           = "log_level"
)

// Config is the complete process configuration.
type Config struct {
	Server   server.Config
	LogLevel string
}

type fileConfig struct {
	Port               int           `mapstructure:"port"`
	Backlog            int           `mapstructure:"backlog"`
	ReadBufferSize     int           `mapstructure:"read_buffer_size"`
	MaxLineLength      int           `mapstructure:"max_line_length"`
	InitialConnections int           `mapstructure:"initial_connections"`
	ResolvePeerNames   bool          `mapstructure:"resolve_peer_names"`
	ResolveTimeout     time.Duration `mapstructure:"resolve_timeout"`
	LogLevel           string        `mapstructure:"log_level"`
}

// SetDefaults installs the built-in defaults into v.
func SetDefaults(v *viper.Viper) {
	d := server.DefaultConfig()
	v.SetDefault(KeyPort, int(d.Port))
	v.SetDefault(KeyBacklog, d.Backlog)
	v.SetDefault(KeyReadBufferSize, d.ReadBufferSize)
	v.SetDefault(KeyMaxLineLength, d.MaxLineLength)
	v.SetDefault(KeyInitialConnections, d.InitialConnections)
	v.SetDefault(KeyResolvePeerNames, d.ResolvePeerNames)
	v.SetDefault(KeyResolveTimeout, d.ResolveTimeout)
	v.SetDefault(KeyLogLevel, "info")
}

// Load resolves the configuration from v. When path is non-empty the file
// must exist; its format follows the extension (toml, yaml, json, ...).
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := fc.validate(); err != nil {
		return nil, err
	}

	return &Config{
		Server: server.Config{
			Port:               uint16(fc.Port),
			Backlog:            fc.Backlog,
			ReadBufferSize:     fc.ReadBufferSize,
			MaxLineLength:      fc.MaxLineLength,
			InitialConnections: fc.InitialConnections,
			ResolvePeerNames:   fc.ResolvePeerNames,
			ResolveTimeout:     fc.ResolveTimeout,
		},
		LogLevel: fc.LogLevel,
	}, nil
}

func (fc fileConfig) validate() error {
	if fc.Port < 0 || fc.Port > 65535 {
		return fmt.Errorf("%s %d out of range 0-65535", KeyPort, fc.Port)
	}
	if fc.ReadBufferSize <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyReadBufferSize, fc.ReadBufferSize)
	}
	if fc.MaxLineLength <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeyMaxLineLength, fc.MaxLineLength)
	}
	if fc.ResolveTimeout < 0 {
		return fmt.Errorf("%s must not be negative", KeyResolveTimeout)
	}
	return nil
}
