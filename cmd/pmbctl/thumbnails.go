package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"pmblueprints/internal/adapter/repository/postgres"
	"pmblueprints/internal/adapter/storage"
	"pmblueprints/internal/domain/template"
	"pmblueprints/internal/thumbnail"
)

var thumbnailsForce bool

const (
	thumbnailMaxCols = 8
	thumbnailMaxRows = 12
)

var thumbnailsCmd = &cobra.Command{
	Use:   "thumbnails",
	Short: "Render preview thumbnails for spreadsheet templates",
	Long: `Downloads each xlsx template from object storage, renders the first
sheet into a PNG preview and uploads it next to the template file.
Templates that already have a preview are skipped unless --force is
set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		store, err := openStorage(cmd.Context())
		if err != nil {
			return err
		}
		repo := postgres.NewTemplateRepoPG(db, log)
		ctx := cmd.Context()

		templates, err := repo.All(ctx)
		if err != nil {
			return err
		}

		var rendered, skipped, failed int
		for _, t := range templates {
			if t.FileFormat != template.FormatXLSX || t.FileKey == "" {
				skipped++
				continue
			}
			if t.PreviewKey != "" && !thumbnailsForce {
				skipped++
				continue
			}

			if err := renderThumbnail(cmd, store, repo, t); err != nil {
				log.Error("thumbnail failed",
					zap.Int64("template_id", t.ID),
					zap.String("name", t.Name),
					zap.Error(err))
				failed++
				continue
			}
			rendered++
		}

		log.Info("thumbnail pass complete",
			zap.Int("rendered", rendered),
			zap.Int("skipped", skipped),
			zap.Int("failed", failed))
		return nil
	},
}

func renderThumbnail(cmd *cobra.Command, store storage.Service, repo *postgres.TemplateRepoPG, t template.Template) error {
	ctx := cmd.Context()

	body, err := store.Download(ctx, t.FileKey)
	if err != nil {
		return fmt.Errorf("download template file: %w", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read template file: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet rows: %w", err)
	}

	grid := thumbnail.Grid{
		Title:     t.Name,
		SheetName: sheet,
	}
	for i, row := range rows {
		if i >= thumbnailMaxRows {
			break
		}
		if len(row) > thumbnailMaxCols {
			row = row[:thumbnailMaxCols]
		}
		grid.Cells = append(grid.Cells, row)
	}

	png, err := thumbnail.Render(grid)
	if err != nil {
		return fmt.Errorf("render preview: %w", err)
	}

	previewKey := "thumbnails/" + template.SafeName(t.Industry+"_"+t.Name) + ".png"
	if _, err := store.Upload(ctx, previewKey, "image/png", bytes.NewReader(png)); err != nil {
		return fmt.Errorf("upload preview: %w", err)
	}

	if err := repo.UpdateAssetKeys(ctx, t.ID, t.FileKey, previewKey, int64(len(data))); err != nil {
		return fmt.Errorf("store preview key: %w", err)
	}

	log.Debug("thumbnail rendered",
		zap.Int64("template_id", t.ID),
		zap.String("preview_key", previewKey))
	return nil
}

func init() {
	thumbnailsCmd.Flags().BoolVar(&thumbnailsForce, "force", false, "re-render existing previews")
}
