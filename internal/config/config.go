// Package config loads doctrans settings from flags, environment variables,
// an optional YAML config file and built-in defaults, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable doctrans reads.
const EnvPrefix = "DOCTRANS"

// Config file lookup when --config is not given.
const (
	configName = ".doctrans"
	configType = "yaml"
)

// Keys.
const (
	KeyLogLevel       = "log.level"
	KeyLogFormat      = "log.format"
	KeyEmitDefaultDoc = "emit_default_doc"
	KeyLedger         = "ledger"
	KeyDryRun         = "dry_run"
)

// Config holds the resolved settings for one invocation.
type Config struct {
	LogLevel       string
	LogFormat      string
	EmitDefaultDoc bool
	Ledger         string
	DryRun         bool

	// ConfigFile is the file that was read, or "" when none was found.
	ConfigFile string
}

// Loader resolves a Config. It owns its viper instance so that
// concurrent commands and tests do not share global state.
type Loader struct {
	v    *viper.Viper
	home func() (string, error)
}

// NewLoader returns a Loader with defaults and environment binding set up.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "auto")
	v.SetDefault(KeyEmitDefaultDoc, true)
	v.SetDefault(KeyLedger, "")
	v.SetDefault(KeyDryRun, false)

	return &Loader{v: v, home: os.UserHomeDir}
}

// BindFlag makes a command-line flag override key when the flag is set.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("bind %s: flag not defined", key)
	}
	if err := l.v.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("bind %s: %w", key, err)
	}
	return nil
}

// Load reads the config file and returns the merged settings.
//
// An explicit file that cannot be read is an error. When file is empty,
// .doctrans.yaml is searched for in the working directory and then the
// home directory, and its absence is not an error.
func (l *Loader) Load(file string) (*Config, error) {
	if file != "" {
		l.v.SetConfigFile(file)
	} else {
		l.v.SetConfigName(configName)
		l.v.SetConfigType(configType)
		l.v.AddConfigPath(".")
		if home, err := l.home(); err == nil {
			l.v.AddConfigPath(home)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return &Config{
		LogLevel:       l.v.GetString(KeyLogLevel),
		LogFormat:      l.v.GetString(KeyLogFormat),
		EmitDefaultDoc: l.v.GetBool(KeyEmitDefaultDoc),
		Ledger:         l.v.GetString(KeyLedger),
		DryRun:         l.v.GetBool(KeyDryRun),
		ConfigFile:     l.v.ConfigFileUsed(),
	}, nil
}
