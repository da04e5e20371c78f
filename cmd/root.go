package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lehigh-university-libraries/portal/internal/config"
)

// rootOptions are shared by every subcommand
type rootOptions struct {
	configFile string
	logLevel   string
	logFormat  string
	v          *viper.Viper
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "portal",
		Short: "University library portal with catalog search, reservations and staff tools",
		Long: `Portal serves the university library website: a searchable book catalog,
student reservations and a librarian dashboard for maintaining the collection.

Settings come from an optional YAML file (--config), PORTAL_* environment
variables and command-line flags, in increasing priority.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", os.Getenv(config.EnvPrefix+"_CONFIG"), "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format (text, json)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newCatalogCmd(opts))

	return cmd
}

// loadConfig binds the running command's flags to config keys and resolves settings.
// serve and catalog bind the same keys, so binding waits until one of them runs.
func (o *rootOptions) loadConfig(cmd *cobra.Command, flags map[string]string) (*config.Config, error) {
	for key, name := range flags {
		f := cmd.Flag(name)
		if f == nil {
			return nil, fmt.Errorf("unknown flag %q", name)
		}
		if err := o.v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return config.Load(o.v, o.configFile)
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text", "":
		handler = slog.NewTextHandler(w, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	default:
		return nil, fmt.Errorf("invalid log format %q (supported: text, json)", format)
	}
	return slog.New(handler), nil
}
