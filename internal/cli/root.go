// Package cli provides the Cobra command structure for markctl.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/coremark/internal/config"
	"github.com/dshills/coremark/internal/logging"
)

// ConfigEnv names the environment variable consulted when --config is unset.
const ConfigEnv = "MARKCTL_CONFIG"

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globals carries the persistent flags and the configuration they load.
type globals struct {
	configPath string
	logLevel   string
	color      string

	cfg *config.Config
}

// NewRootCommand creates the root markctl command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "markctl",
		Short: "Exercise and verify ordered text marks",
		Long: `markctl drives the mark engine: ordered positions in a text, grouped
into views, with points that belong to every view.

It runs YAML scenarios, Lua scripts and randomized stress runs against
a document and reports ordering violations.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return g.load()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "",
		"path to config file (default $"+ConfigEnv+" or "+config.DefaultFile+")")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "",
		"log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&g.color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newRunCommand(g))
	rootCmd.AddCommand(newWatchCommand(g))
	rootCmd.AddCommand(newLuaCommand(g))
	rootCmd.AddCommand(newStressCommand(g))
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}

// load resolves the config file, applies flag overrides and sets up
// logging and color output.
func (g *globals) load() error {
	path := g.configPath
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path == "" {
		path = config.DefaultFile
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if g.logLevel != "" {
		if !logging.ValidLevel(g.logLevel) {
			return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", g.logLevel)
		}
		cfg.Log.Level = g.logLevel
	}
	logging.SetLevel(cfg.Log.Level)

	switch g.color {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto":
	default:
		return fmt.Errorf("invalid color mode %q (must be auto, always, or never)", g.color)
	}

	g.cfg = cfg
	logging.Component("cli").Debug("config loaded", logging.FieldPath, path)
	return nil
}
