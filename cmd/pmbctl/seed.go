package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pmblueprints/internal/adapter/repository/postgres"
	"pmblueprints/internal/domain/template"
)

var seedFile string

// seedTemplate is one catalog entry of the seed file.
type seedTemplate struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Industry    string   `json:"industry"`
	Category    string   `json:"category"`
	FileFormat  string   `json:"file_format"`
	FileKey     string   `json:"file_key"`
	Tags        []string `json:"tags"`
	HasFormulas bool     `json:"has_formulas"`
	IsPremium   bool     `json:"is_premium"`
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the template catalog from a seed file",
	Long: `Reads a JSON array of templates and inserts any that do not exist
yet. Existing templates (matched by name) are left untouched, so the
command is safe to re-run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(seedFile)
		if err != nil {
			return fmt.Errorf("failed to read seed file: %w", err)
		}

		var entries []seedTemplate
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("failed to parse seed file: %w", err)
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		repo := postgres.NewTemplateRepoPG(db, log)
		ctx := cmd.Context()

		var created, skipped int
		for _, e := range entries {
			existing, err := repo.GetByName(ctx, e.Name)
			if err != nil {
				return err
			}
			if existing != nil {
				skipped++
				continue
			}

			format := e.FileFormat
			if format == "" {
				format = template.FormatXLSX
			}

			t := &template.Template{
				Name:        e.Name,
				Description: e.Description,
				Industry:    e.Industry,
				Category:    e.Category,
				FileFormat:  format,
				FileKey:     e.FileKey,
				Tags:        e.Tags,
				HasFormulas: e.HasFormulas,
				IsPremium:   e.IsPremium,
			}
			if _, err := repo.Create(ctx, t); err != nil {
				return fmt.Errorf("failed to seed template %q: %w", e.Name, err)
			}
			created++
		}

		log.Info("catalog seeded",
			zap.Int("created", created),
			zap.Int("skipped", skipped),
			zap.String("file", seedFile))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "seed/templates.json", "JSON seed file")
}
