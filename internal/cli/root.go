// Package cli holds the crm command tree.
package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pdxmph/crm-tui/internal/actions"
	"github.com/pdxmph/crm-tui/internal/config"
	"github.com/pdxmph/crm-tui/internal/db"
	"github.com/pdxmph/crm-tui/internal/tui"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DBPath     string
	LogLevel   string
}

// NewRootCommand creates the root command. Without a subcommand it
// runs the terminal UI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "crm",
		Short:         "A terminal CRM for companies, people and their channels",
		Long:          "Keep track of companies, the people working there, how to reach them and what you want from them.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/crm-tui/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database file (overrides database.path)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewFixturesCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(opts *RootOptions) (*config.Config, string, error) {
	path := opts.ConfigPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, "", WrapExitError(ExitCommandError, "locating config", err)
		}
		path = p
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, "", WrapExitError(ExitCommandError, "loading config", err)
	}
	if opts.DBPath != "" {
		cfg.Database.Path = opts.DBPath
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, path, nil
}

func runTUI(opts *RootOptions) error {
	cfg, _, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, closeLog, err := openLogFile(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return WrapExitError(ExitCommandError, "setting up logging", err)
	}
	defer closeLog()

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer database.Close()

	mode := actions.ModePanel
	if cfg.UI.StartMode == config.StartContacts {
		mode = actions.ModeContacts
	}

	model, err := tui.New(database, tui.Options{StartMode: mode, Logger: logger})
	if err != nil {
		return fmt.Errorf("starting ui: %w", err)
	}

	logger.Info("starting crm", "db", cfg.Database.Path)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
