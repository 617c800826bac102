package cli

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pdxmph/crm-tui/internal/db"
)

// ValidFormats defines the allowed export formats.
var ValidFormats = []string{"yaml", "json"}

type exportChannel struct {
	Type       string     `yaml:"type" json:"type"`
	Value      string     `yaml:"value" json:"value"`
	Verified   bool       `yaml:"verified" json:"verified"`
	VerifiedAt *time.Time `yaml:"verified_at,omitempty" json:"verified_at,omitempty"`
}

type exportIntent struct {
	Type     string `yaml:"type" json:"type"`
	State    string `yaml:"state" json:"state"`
	Abstract string `yaml:"abstract" json:"abstract"`
	Notes    string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

type exportContact struct {
	ExternalID string          `yaml:"id" json:"id"`
	Type       string          `yaml:"type" json:"type"`
	Name       string          `yaml:"name" json:"name"`
	Status     string          `yaml:"status" json:"status"`
	Address1   string          `yaml:"address1,omitempty" json:"address1,omitempty"`
	Address2   string          `yaml:"address2,omitempty" json:"address2,omitempty"`
	City       string          `yaml:"city,omitempty" json:"city,omitempty"`
	PostCode   string          `yaml:"postcode,omitempty" json:"postcode,omitempty"`
	Country    string          `yaml:"country,omitempty" json:"country,omitempty"`
	Notes      string          `yaml:"notes,omitempty" json:"notes,omitempty"`
	Persons    []exportContact `yaml:"persons,omitempty" json:"persons,omitempty"`
	Channels   []exportChannel `yaml:"channels,omitempty" json:"channels,omitempty"`
	Intents    []exportIntent  `yaml:"intents,omitempty" json:"intents,omitempty"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all contacts to stdout",
		Long: `Export every top-level contact with its persons, channels and
intents as YAML or JSON.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", format, ValidFormats))
			}

			cfg, _, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			database, err := db.Open(cfg.Database.Path)
			if err != nil {
				return WrapExitError(ExitCommandError, "opening database", err)
			}
			defer database.Close()

			contacts, err := buildExport(database, sql.NullInt64{})
			if err != nil {
				return WrapExitError(ExitFailure, "reading contacts", err)
			}
			return writeExport(cmd.OutOrStdout(), format, contacts)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml|json)")
	return cmd
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

// buildExport collects the contacts under parent, recursing into the
// persons of companies
func buildExport(database *db.DB, parent sql.NullInt64) ([]exportContact, error) {
	contacts, err := database.ListContacts(db.ContactQuery{Parent: parent})
	if err != nil {
		return nil, err
	}

	out := make([]exportContact, 0, len(contacts))
	for _, c := range contacts {
		e := exportContact{
			ExternalID: c.ExternalID,
			Type:       c.Type.String(),
			Name:       c.Name,
			Status:     c.Status,
			Address1:   c.Address1.String,
			Address2:   c.Address2.String,
			City:       c.City.String,
			PostCode:   c.PostCode.String,
			Country:    c.Country.String,
			Notes:      c.Notes.String,
		}

		channels, err := database.ListChannels(c.ID)
		if err != nil {
			return nil, err
		}
		for _, ch := range channels {
			ec := exportChannel{Type: ch.Type.String(), Value: ch.Value, Verified: ch.Verified}
			if ch.VerifiedAt.Valid {
				at := ch.VerifiedAt.Time
				ec.VerifiedAt = &at
			}
			e.Channels = append(e.Channels, ec)
		}

		intents, err := database.ListIntents(c.ID)
		if err != nil {
			return nil, err
		}
		for _, in := range intents {
			e.Intents = append(e.Intents, exportIntent{
				Type:     in.Type,
				State:    in.State,
				Abstract: in.Abstract,
				Notes:    in.Notes.String,
			})
		}

		if c.IsCorporation() {
			persons, err := buildExport(database, sql.NullInt64{Int64: c.ID, Valid: true})
			if err != nil {
				return nil, err
			}
			e.Persons = persons
		}

		out = append(out, e)
	}
	return out, nil
}

func writeExport(w io.Writer, format string, contacts []exportContact) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(contacts)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(contacts); err != nil {
		return err
	}
	return enc.Close()
}
