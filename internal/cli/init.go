package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdxmph/crm-tui/internal/db"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty database and a default config file",
		Long: `Create an empty CRM database at the configured path.

A config file is written too when none exists yet, so the database
location can be changed later.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, configPath, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}

			if err := db.Initialize(cfg.Database.Path); err != nil {
				return WrapExitError(ExitFailure, "initializing database", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created database at %s\n", cfg.Database.Path)

			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				if err := cfg.SaveTo(configPath); err != nil {
					return WrapExitError(ExitFailure, "writing config", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", configPath)
			}
			return nil
		},
	}
}

// NewFixturesCommand creates the fixtures command.
func NewFixturesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fixtures",
		Short: "Create a database filled with sample contacts",
		Long: `Create a new database with sample companies, people, channels and
intents. Use --db to choose where; the file must not exist.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rootOpts.DBPath == "" {
				return NewExitError(ExitCommandError, "fixtures needs --db so it never touches your real database")
			}
			if err := db.CreateFixturesDatabase(rootOpts.DBPath); err != nil {
				return WrapExitError(ExitFailure, "creating fixtures", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created fixtures database at %s\n", rootOpts.DBPath)
			return nil
		},
	}
}
