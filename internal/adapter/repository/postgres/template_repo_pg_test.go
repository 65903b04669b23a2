package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"pmblueprints/internal/domain/template"
	apperrors "pmblueprints/pkg/errors"
)

func setupTemplateRepo(t *testing.T) *TemplateRepoPG {
	return NewTemplateRepoPG(setupTestDB(t), zaptest.NewLogger(t))
}

func seedTemplate(t *testing.T, repo *TemplateRepoPG, tpl *template.Template) int64 {
	t.Helper()
	id, err := repo.Create(context.Background(), tpl)
	require.NoError(t, err)
	return id
}

// ==================== CREATE / GET TESTS ====================

func TestTemplateRepo_CreateAndGetByID(t *testing.T) {
	repo := setupTemplateRepo(t)
	ctx := context.Background()

	id := seedTemplate(t, repo, &template.Template{
		Name:        "Project Charter",
		Description: "Formal project authorization document",
		Industry:    "Construction",
		Category:    "Initiation",
		FileFormat:  "xlsx",
		FileKey:     "templates/Project_Charter.xlsx",
		Tags:        []string{"charter", "pmi"},
		IsPremium:   true,
	})

	got, err := repo.GetByID(ctx, id)

	assert.NoError(t, err)
	assert.Equal(t, "Project Charter", got.Name)
	assert.Equal(t, "Construction", got.Industry)
	assert.Equal(t, []string{"charter", "pmi"}, got.Tags)
	assert.True(t, got.IsPremium)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestTemplateRepo_GetByID_NotFound(t *testing.T) {
	repo := setupTemplateRepo(t)

	got, err := repo.GetByID(context.Background(), 999)

	assert.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 404, apperrors.StatusOf(err))
}

func TestTemplateRepo_GetByName_MissingReturnsNil(t *testing.T) {
	repo := setupTemplateRepo(t)

	got, err := repo.GetByName(context.Background(), "No Such Template")

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestTemplateRepo_GetByName_Found(t *testing.T) {
	repo := setupTemplateRepo(t)
	ctx := context.Background()

	id := seedTemplate(t, repo, &template.Template{
		Name: "RAID Log", Industry: "IT", Category: "Monitoring", FileFormat: "xlsx",
	})

	got, err := repo.GetByName(ctx, "RAID Log")

	assert.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
}

// ==================== LIST TESTS ====================

func seedCatalog(t *testing.T, repo *TemplateRepoPG) {
	t.Helper()
	for _, tpl := range []template.Template{
		{Name: "Project Charter", Description: "authorize the project", Industry: "Construction", Category: "Initiation", FileFormat: "xlsx", Downloads: 50, Tags: []string{"charter"}},
		{Name: "Risk Register", Description: "track risks", Industry: "Construction", Category: "Planning", FileFormat: "xlsx", Downloads: 120},
		{Name: "Sprint Backlog", Description: "agile backlog", Industry: "IT", Category: "Execution", FileFormat: "xlsx", Downloads: 80, Tags: []string{"agile", "scrum"}},
		{Name: "Status Report", Description: "weekly status", Industry: "IT", Category: "Monitoring", FileFormat: "docx", Downloads: 80},
	} {
		tplCopy := tpl
		seedTemplate(t, repo, &tplCopy)
	}
}

func TestTemplateRepo_List_OrdersByDownloads(t *testing.T) {
	repo := setupTemplateRepo(t)
	ctx := context.Background()
	seedCatalog(t, repo)

	got, total, err := repo.List(ctx, template.Filter{}, 1, 10)

	assert.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, got, 4)
	assert.Equal(t, "Risk Register", got[0].Name)
	// Equal download counts tie-break on insertion order.
	assert.Equal(t, "Sprint Backlog", got[1].Name)
	assert.Equal(t, "Status Report", got[2].Name)
	assert.Equal(t, "Project Charter", got[3].Name)
}

func TestTemplateRepo_List_FiltersByIndustryAndCategory(t *testing.T) {
	repo := setupTemplateRepo(t)
	ctx := context.Background()
	seedCatalog(t, repo)

	got, total, err := repo.List(ctx, template.Filter{Industry: "IT", Category: "Execution"}, 1, 10)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, got, 1)
	assert.Equal(t, "Sprint Backlog", got[0].Name)
}

func TestTemplateRepo_List_SearchMatchesNameDescriptionAndTags(t *testing.T) {
	repo := setupTemplateRepo(t)
	ctx := context.Background()
	seedCatalog(t, repo)

	byName, _, err := repo.List(ctx, template.Filter{Search: "Charter"}, 1, 10)
	assert.NoError(t, err)
	require.Len(t, byName, 1)

	byDescription, _, err := repo.List(ctx, template.Filter{Search: "weekly"}, 1, 10)
	assert.NoError(t, err)
	require.Len(t, byDescription, 1)
	assert.Equal(t, "Status Report", byDescription[0].Name)

	byTag, _, err := repo.List(ctx, template.Filter{Search: "scrum"}, 1, 10)
	assert.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "Sprint Backlog", byTag[0].Name)
}

func TestTemplateRepo_List_Paginates(t *testing.T) {
	repo := setupTemplateRepo(t)
	ctx := context.Background()
	seedCatalog(t, repo)

	page2, total, err := repo.List(ctx, template.Filter{}, 2, 3)

	assert.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, page2, 1)
	assert.Equal(t, "Project Charter", page2[0].Name)
}

// ==================== FACET TESTS ====================

func TestTemplateRepo_IndustriesAndCategories_DistinctSorted(t *testing.T) {
	repo := setupTemplateRepo(t)
	ctx := context.Background()
	seedCatalog(t, repo)

	industries, err := repo.Industries(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Construction", "IT"}, industries)

	categories, err := repo.Categories(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Execution", "Initiation", "Monitoring", "Planning"}, categories)
}

// ==================== RELATED TESTS ====================

func TestTemplateRepo_Related_ExcludesSelf(t *testing.T) {
	repo := setupTemplateRepo(t)
	ctx := context.Background()
	seedCatalog(t, repo)

	charter, err := repo.GetByName(ctx, "Project Charter")
	require.NoError(t, err)
	require.NotNil(t, charter)

	got, err := repo.Related(ctx, "Construction", charter.ID, 4)

	assert.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Risk Register", got[0].Name)
}

// ==================== MUTATION TESTS ====================

func TestTemplateRepo_IncrementDownloads(t *testing.T) {
	repo := setupTemplateRepo(t)
	ctx := context.Background()

	id := seedTemplate(t, repo, &template.Template{
		Name: "WBS", Industry: "IT", Category: "Planning", FileFormat: "xlsx", Downloads: 7,
	})

	assert.NoError(t, repo.IncrementDownloads(ctx, id))
	assert.NoError(t, repo.IncrementDownloads(ctx, id))

	got, err := repo.GetByID(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, int64(9), got.Downloads)
}

func TestTemplateRepo_UpdateRating(t *testing.T) {
	repo := setupTemplateRepo(t)
	ctx := context.Background()

	id := seedTemplate(t, repo, &template.Template{
		Name: "Gantt Chart", Industry: "IT", Category: "Planning", FileFormat: "xlsx",
	})

	assert.NoError(t, repo.UpdateRating(ctx, id, 4.5))

	got, err := repo.GetByID(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, 4.5, got.Rating)
}

func TestTemplateRepo_UpdateCategory(t *testing.T) {
	repo := setupTemplateRepo(t)
	ctx := context.Background()

	id := seedTemplate(t, repo, &template.Template{
		Name: "Lessons Learned", Industry: "IT", Category: "Misc", FileFormat: "docx",
	})

	assert.NoError(t, repo.UpdateCategory(ctx, id, "Closure"))

	got, err := repo.GetByID(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, "Closure", got.Category)
}

func TestTemplateRepo_UpdateAssetKeys_SkipsEmptyValues(t *testing.T) {
	repo := setupTemplateRepo(t)
	ctx := context.Background()

	id := seedTemplate(t, repo, &template.Template{
		Name:       "Budget Tracker",
		Industry:   "Finance",
		Category:   "Planning",
		FileFormat: "xlsx",
		FileKey:    "templates/Budget_Tracker.xlsx",
		PreviewKey: "previews/Budget_Tracker.png",
		FileSize:   2048,
	})

	// Only the preview key changes; the empty file key and zero size are
	// left untouched.
	assert.NoError(t, repo.UpdateAssetKeys(ctx, id, "", "previews/Budget_Tracker_v2.png", 0))

	got, err := repo.GetByID(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, "templates/Budget_Tracker.xlsx", got.FileKey)
	assert.Equal(t, "previews/Budget_Tracker_v2.png", got.PreviewKey)
	assert.Equal(t, int64(2048), got.FileSize)
}

func TestTemplateRepo_All_OrderedByID(t *testing.T) {
	repo := setupTemplateRepo(t)
	ctx := context.Background()
	seedCatalog(t, repo)

	got, err := repo.All(ctx)

	assert.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "Project Charter", got[0].Name)
	assert.Equal(t, "Status Report", got[3].Name)
}
