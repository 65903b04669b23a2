package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"pmblueprints/internal/domain/activity"
)

func setupAIGenRepo(t *testing.T) (*AIGenRepoPG, *gorm.DB) {
	db := setupTestDB(t)
	return NewAIGenRepoPG(db, zaptest.NewLogger(t)), db
}

// ==================== GENERATION TESTS ====================

func TestAIGenRepo_CreateGeneration(t *testing.T) {
	repo, _ := setupAIGenRepo(t)
	ctx := context.Background()

	g := &activity.Generation{
		UserID:       1,
		ProjectName:  "Hospital Expansion",
		Industry:     "Healthcare",
		Methodology:  "Waterfall",
		DocumentType: "Project Charter",
		FileFormat:   "xlsx",
		Content:      "Section: Purpose\nExpand the east wing.",
		FileKey:      "generated/1/Hospital_Expansion_Project_Charter.xlsx",
	}
	id, err := repo.CreateGeneration(ctx, g)

	assert.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, id, g.ID)
	assert.False(t, g.CreatedAt.IsZero())
}

func TestAIGenRepo_ListGenerations_NewestFirstWithLimit(t *testing.T) {
	repo, db := setupAIGenRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	for i, name := range []string{"Alpha", "Beta", "Gamma"} {
		row := GenerationSchema{UserID: 1, ProjectName: name, DocumentType: "Project Charter", CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, db.Create(&row).Error)
	}
	require.NoError(t, db.Create(&GenerationSchema{UserID: 2, ProjectName: "Other", CreatedAt: base}).Error)

	got, err := repo.ListGenerations(ctx, 1, 2)

	assert.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Gamma", got[0].ProjectName)
	assert.Equal(t, "Beta", got[1].ProjectName)
}

func TestAIGenRepo_GetGeneration_OwnershipEnforced(t *testing.T) {
	repo, _ := setupAIGenRepo(t)
	ctx := context.Background()

	id, err := repo.CreateGeneration(ctx, &activity.Generation{UserID: 1, ProjectName: "Alpha", DocumentType: "Risk Register"})
	require.NoError(t, err)

	got, err := repo.GetGeneration(ctx, 1, id)
	assert.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alpha", got.ProjectName)

	// Another user's lookup of the same row comes back empty.
	foreign, err := repo.GetGeneration(ctx, 2, id)
	assert.NoError(t, err)
	assert.Nil(t, foreign)
}

// ==================== SUGGESTION TESTS ====================

func TestAIGenRepo_CreateSuggestion(t *testing.T) {
	repo, _ := setupAIGenRepo(t)
	ctx := context.Background()

	s := &activity.Suggestion{
		UserID:             1,
		ProjectDescription: "Roll out a new ERP system",
		Industry:           "Manufacturing",
		ProjectPhase:       "Planning",
		TeamSize:           "10-20",
		Suggestions:        "Risk Register, Stakeholder Matrix",
	}
	id, err := repo.CreateSuggestion(ctx, s)

	assert.NoError(t, err)
	assert.NotZero(t, id)
	assert.False(t, s.CreatedAt.IsZero())
}

func TestAIGenRepo_ListSuggestions_NewestFirst(t *testing.T) {
	repo, db := setupAIGenRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	for i, desc := range []string{"first project", "second project"} {
		row := SuggestionSchema{UserID: 1, ProjectDescription: desc, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, db.Create(&row).Error)
	}

	got, err := repo.ListSuggestions(ctx, 1, 10)

	assert.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second project", got[0].ProjectDescription)
}
