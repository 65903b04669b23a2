package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pmblueprints/internal/adapter/repository/postgres"
	"pmblueprints/internal/domain/template"
)

var (
	assetsDir    string
	uploadDelay  time.Duration
	assetsPrefix string
)

var uploadAssetsCmd = &cobra.Command{
	Use:   "upload-assets",
	Short: "Upload local template files to object storage",
	Long: `Walks a local directory of template files, uploads each to object
storage and links the file to its catalog entry by name. Upload
failures are logged and skipped so a single bad file does not abort
the batch.`,
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

		entries, err := os.ReadDir(assetsDir)
		if err != nil {
			return fmt.Errorf("failed to read assets directory: %w", err)
		}

		var uploaded, skipped int
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			name := entry.Name()
			ext := strings.TrimPrefix(filepath.Ext(name), ".")
			base := strings.TrimSuffix(name, filepath.Ext(name))

			t, err := repo.GetByName(ctx, strings.ReplaceAll(base, "_", " "))
			if err != nil {
				return err
			}
			if t == nil {
				log.Warn("no catalog entry for file; skipping", zap.String("file", name))
				skipped++
				continue
			}

			path := filepath.Join(assetsDir, name)
			f, err := os.Open(path)
			if err != nil {
				log.Error("failed to open file; skipping", zap.String("file", name), zap.Error(err))
				skipped++
				continue
			}

			contentType := mime.TypeByExtension(filepath.Ext(name))
			if contentType == "" {
				contentType = "application/octet-stream"
			}

			key := assetsPrefix + "/" + template.SafeName(base) + "." + ext
			size, err := store.Upload(ctx, key, contentType, f)
			f.Close()
			if err != nil {
				log.Error("upload failed; skipping", zap.String("file", name), zap.Error(err))
				skipped++
				continue
			}

			if err := repo.UpdateAssetKeys(ctx, t.ID, key, t.PreviewKey, size); err != nil {
				log.Error("failed to link file; skipping",
					zap.Int64("template_id", t.ID), zap.Error(err))
				skipped++
				continue
			}

			log.Info("asset uploaded",
				zap.String("file", name),
				zap.String("key", key),
				zap.Int64("bytes", size))
			uploaded++

			// Stay under the storage provider's request rate.
			time.Sleep(uploadDelay)
		}

		log.Info("asset upload complete",
			zap.Int("uploaded", uploaded),
			zap.Int("skipped", skipped))
		return nil
	},
}

func init() {
	uploadAssetsCmd.Flags().StringVar(&assetsDir, "dir", "assets/templates", "local directory of template files")
	uploadAssetsCmd.Flags().StringVar(&assetsPrefix, "prefix", "templates", "object storage key prefix")
	uploadAssetsCmd.Flags().DurationVar(&uploadDelay, "delay", 500*time.Millisecond, "pause between uploads")
}
