package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pmblueprints/internal/adapter/repository/postgres"
)

// Legacy category names that accumulated in the catalog, mapped to
// their standardized form.
var categoryMappings = map[string]string{
	"Open Action Item Log":                   "Action Item Log",
	"Development Open Action Item Log":       "Action Item Log",
	"Implementation Open Action Item Log":    "Action Item Log",
	"Comprehensive Budget":                   "Budget",
	"Comprehensive Budget with Instructions": "Budget",
	"Training Budget Estimates":              "Training Budget",
	"KPI Dashboard":                          "KPI Report",
	"KPI Report Dashboard":                   "KPI Report",
	"Development KPI Report Dashboard":       "KPI Report",
	"Implementation KPI Report Dashboard":    "KPI Report",
	"Development Lessons Learned":            "Lessons Learned",
	"Implementation Lessons Learned":         "Lessons Learned",
	"Development Project Proposal":           "Project Proposal",
	"Implementation Project Proposal":        "Project Proposal",
	"Comprehensive Project Proposal Essay":   "Project Proposal",
	"Executive RAID Log Complete":            "RAID Log",
}

var fixCategoriesCmd = &cobra.Command{
	Use:   "fix-categories",
	Short: "Standardize legacy template category names",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		repo := postgres.NewTemplateRepoPG(db, log)
		ctx := cmd.Context()

		templates, err := repo.All(ctx)
		if err != nil {
			return err
		}

		var updated int
		for _, t := range templates {
			newName, ok := categoryMappings[t.Category]
			if !ok {
				continue
			}

			if err := repo.UpdateCategory(ctx, t.ID, newName); err != nil {
				log.Error("failed to update category",
					zap.Int64("template_id", t.ID), zap.Error(err))
				continue
			}
			log.Debug("category standardized",
				zap.Int64("template_id", t.ID),
				zap.String("old", t.Category),
				zap.String("new", newName))
			updated++
		}

		log.Info("category fix complete",
			zap.Int("scanned", len(templates)),
			zap.Int("updated", updated))
		return nil
	},
}
