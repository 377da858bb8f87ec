package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/SamuelMarks/docstring2class/internal/config"
	"github.com/SamuelMarks/docstring2class/internal/logging"
	"github.com/SamuelMarks/docstring2class/internal/views"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	loader  *config.Loader
	config  *config.Config
	bindErr error
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootOptions returns options backed by a fresh config loader.
func NewRootOptions() *RootOptions {
	return &RootOptions{Format: "text", loader: config.NewLoader()}
}

// NewRootCommand creates the root command for the doctrans CLI.
func NewRootCommand() *cobra.Command {
	opts := NewRootOptions()

	cmd := &cobra.Command{
		Use:   "doctrans",
		Short: "doctrans - keep docstrings, classes and argparse in sync",
		Long: `Convert a callable's interface between its docstring/function, class and
argparse CLI representations, and reconcile all three against the one
chosen as ground truth.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging, diffs)")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (default .doctrans.yaml in the working or home directory)")
	flags.String("log-level", "info", "log level (debug|info|warn|error)")
	flags.String("log-format", "auto", "log format (json|console|auto)")
	flags.Bool("emit-default-doc", true, `write defaults into docs as "Defaults to X."`)
	opts.bind(config.KeyLogLevel, flags.Lookup("log-level"))
	opts.bind(config.KeyLogFormat, flags.Lookup("log-format"))
	opts.bind(config.KeyEmitDefaultDoc, flags.Lookup("emit-default-doc"))

	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewEmitCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// bind ties a flag to a config key. The first failure is reported when
// the config is loaded.
func (o *RootOptions) bind(key string, flag *pflag.Flag) {
	if o.loader == nil {
		o.loader = config.NewLoader()
	}
	if err := o.loader.BindFlag(key, flag); err != nil && o.bindErr == nil {
		o.bindErr = err
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Config loads the configuration once per command invocation.
func (o *RootOptions) Config() (*config.Config, error) {
	if o.config != nil {
		return o.config, nil
	}
	if o.bindErr != nil {
		return nil, WrapExitError(ExitCommandError, "failed to bind flags", o.bindErr)
	}
	if o.loader == nil {
		o.loader = config.NewLoader()
	}
	cfg, err := o.loader.Load(o.ConfigFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	o.config = cfg
	return cfg, nil
}

// ViewOptions returns the parse and emit options selected by config.
func (o *RootOptions) ViewOptions() (views.Options, error) {
	cfg, err := o.Config()
	if err != nil {
		return views.Options{}, err
	}
	opts := views.DefaultOptions()
	opts.EmitDefaultDoc = cfg.EmitDefaultDoc
	return opts, nil
}

// context returns the command context carrying a logger configured from
// config. --verbose forces debug level.
func (o *RootOptions) context(cmd *cobra.Command) (context.Context, error) {
	cfg, err := o.Config()
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if o.Verbose {
		level = "debug"
	}
	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:  level,
		Format: cfg.LogFormat,
		Writer: cmd.ErrOrStderr(),
	})

	if cfg.ConfigFile != "" {
		logger.Debug().Str("file", cfg.ConfigFile).Msg("config file loaded")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithLogger(ctx, &logger), nil
}

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
