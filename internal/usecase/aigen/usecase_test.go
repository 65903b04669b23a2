package aigen

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"

	"pmblueprints/internal/adapter/storage"
	"pmblueprints/internal/docgen"
	"pmblueprints/internal/domain/activity"
	"pmblueprints/internal/domain/user"
	apperrors "pmblueprints/pkg/errors"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// MockRepository is a mock implementation of Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateGeneration(ctx context.Context, g *activity.Generation) (int64, error) {
	args := m.Called(ctx, g)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ListGenerations(ctx context.Context, userID, limit int64) ([]activity.Generation, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]activity.Generation), args.Error(1)
}

func (m *MockRepository) GetGeneration(ctx context.Context, userID, id int64) (*activity.Generation, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activity.Generation), args.Error(1)
}

func (m *MockRepository) CreateSuggestion(ctx context.Context, s *activity.Suggestion) (int64, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ListSuggestions(ctx context.Context, userID, limit int64) ([]activity.Suggestion, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]activity.Suggestion), args.Error(1)
}

// MockAIClient is a mock implementation of AIClient.
type MockAIClient struct {
	mock.Mock
}

func (m *MockAIClient) Complete(ctx context.Context, keyOverride, system, prompt string, maxTokens int) (string, error) {
	args := m.Called(ctx, keyOverride, system, prompt, maxTokens)
	return args.String(0), args.Error(1)
}

// MockRenderer is a mock implementation of docgen.Renderer.
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(doc docgen.Document, format string) ([]byte, string, error) {
	args := m.Called(doc, format)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

// MockStorage is a mock implementation of storage.Service.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, key, contentType string, body io.Reader) (int64, error) {
	args := m.Called(ctx, key, contentType, body)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.ObjectInfo), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type testMocks struct {
	users    *MockUserRepository
	repo     *MockRepository
	ai       *MockAIClient
	renderer *MockRenderer
	store    *MockStorage
}

func setupTestUsecase(t *testing.T) (*Service, *testMocks) {
	m := &testMocks{
		users:    new(MockUserRepository),
		repo:     new(MockRepository),
		ai:       new(MockAIClient),
		renderer: new(MockRenderer),
		store:    new(MockStorage),
	}
	uc := New(m.users, m.repo, m.ai, m.renderer, m.store, 15*time.Minute, zaptest.NewLogger(t))
	return uc, m
}

func freeUser(id int64) *user.User {
	return &user.User{
		ID:             id,
		Email:          "user@example.com",
		Tier:           user.TierFree,
		LastUsageReset: time.Now().UTC(),
	}
}

func generateRequest(userID int64) GenerateRequest {
	return GenerateRequest{
		UserID:       userID,
		ProjectName:  "Hospital Expansion",
		Industry:     "Healthcare",
		Methodology:  "Waterfall",
		DocumentType: "Project Charter",
	}
}

// ==================== GENERATE TESTS ====================

func TestGenerate_Success(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := freeUser(1)
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)
	m.ai.On("Complete", ctx, "", generationSystemPrompt, mock.AnythingOfType("string"), generationMaxTokens).
		Return("# Project Charter\nScope and goals.", nil)
	m.renderer.On("Render", mock.AnythingOfType("docgen.Document"), "xlsx").
		Return([]byte("xlsx-bytes"), docgen.ContentTypeXLSX, nil)
	m.store.On("Upload", ctx, mock.AnythingOfType("string"), docgen.ContentTypeXLSX, mock.Anything).
		Return(int64(9), nil)
	m.repo.On("CreateGeneration", ctx, mock.AnythingOfType("*activity.Generation")).Return(int64(5), nil)
	m.users.On("Update", ctx, u).Return(nil)
	m.store.On("PresignDownload", ctx, mock.AnythingOfType("string"), 15*time.Minute).
		Return("https://cdn/generated", nil)

	resp, err := uc.Generate(ctx, generateRequest(1))

	assert.NoError(t, err)
	assert.Equal(t, "https://cdn/generated", resp.URL)
	assert.Equal(t, "Hospital_Expansion_Project_Charter.xlsx", resp.FileName)
	assert.Equal(t, 1, u.AIGenerationsUsed)
	assert.Equal(t, 2, resp.AIRemaining)
	m.ai.AssertExpectations(t)
	m.store.AssertExpectations(t)
}

func TestGenerate_ValidationError_ProjectNameRequired(t *testing.T) {
	uc, _ := setupTestUsecase(t)

	in := generateRequest(1)
	in.ProjectName = ""
	resp, err := uc.Generate(context.Background(), in)

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 400, apperrors.StatusOf(err))
}

func TestGenerate_QuotaExhausted(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := freeUser(1)
	u.AIGenerationsUsed = 3
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)

	resp, err := uc.Generate(ctx, generateRequest(1))

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 429, apperrors.StatusOf(err))
	assert.Contains(t, err.Error(), "monthly AI generation limit")
	m.ai.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerate_OwnKeyBypassesQuota(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := freeUser(1)
	u.AIGenerationsUsed = 3
	u.OpenAIAPIKey = "sk-user-supplied-key-000000"
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)
	m.ai.On("Complete", ctx, u.OpenAIAPIKey, generationSystemPrompt, mock.AnythingOfType("string"), generationMaxTokens).
		Return("content", nil)
	m.renderer.On("Render", mock.AnythingOfType("docgen.Document"), "xlsx").
		Return([]byte("xlsx-bytes"), docgen.ContentTypeXLSX, nil)
	m.store.On("Upload", ctx, mock.AnythingOfType("string"), docgen.ContentTypeXLSX, mock.Anything).
		Return(int64(9), nil)
	m.repo.On("CreateGeneration", ctx, mock.AnythingOfType("*activity.Generation")).Return(int64(5), nil)
	m.store.On("PresignDownload", ctx, mock.AnythingOfType("string"), 15*time.Minute).
		Return("https://cdn/generated", nil)

	_, err := uc.Generate(ctx, generateRequest(1))

	assert.NoError(t, err)
	assert.Equal(t, 3, u.AIGenerationsUsed)
	m.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestGenerate_QuotaRollsOverOnNewMonth(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := freeUser(1)
	u.AIGenerationsUsed = 3
	u.LastUsageReset = time.Now().UTC().AddDate(0, -1, 0)
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)
	m.ai.On("Complete", ctx, "", generationSystemPrompt, mock.AnythingOfType("string"), generationMaxTokens).
		Return("content", nil)
	m.renderer.On("Render", mock.AnythingOfType("docgen.Document"), "xlsx").
		Return([]byte("xlsx-bytes"), docgen.ContentTypeXLSX, nil)
	m.store.On("Upload", ctx, mock.AnythingOfType("string"), docgen.ContentTypeXLSX, mock.Anything).
		Return(int64(9), nil)
	m.repo.On("CreateGeneration", ctx, mock.AnythingOfType("*activity.Generation")).Return(int64(5), nil)
	m.users.On("Update", ctx, u).Return(nil)
	m.store.On("PresignDownload", ctx, mock.AnythingOfType("string"), 15*time.Minute).
		Return("https://cdn/generated", nil)

	resp, err := uc.Generate(ctx, generateRequest(1))

	assert.NoError(t, err)
	assert.Equal(t, 1, u.AIGenerationsUsed)
	assert.Equal(t, 2, resp.AIRemaining)
}

func TestGenerate_ModelFailure(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	m.users.On("GetByID", ctx, int64(1)).Return(freeUser(1), nil)
	m.ai.On("Complete", ctx, "", generationSystemPrompt, mock.AnythingOfType("string"), generationMaxTokens).
		Return("", assert.AnError)

	resp, err := uc.Generate(ctx, generateRequest(1))

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 500, apperrors.StatusOf(err))
	m.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestGenerate_PromptCarriesProjectDetails(t *testing.T) {
	in := generateRequest(1)
	in.ProjectType = "Construction"

	prompt := generationPrompt(in)

	assert.Contains(t, prompt, "Project Name: Hospital Expansion")
	assert.Contains(t, prompt, "Project Type: Construction")
	assert.Contains(t, prompt, "Industry: Healthcare")
	assert.Contains(t, prompt, "Methodology: Waterfall")
	assert.Contains(t, prompt, "Follow PMI standards")
	assert.Contains(t, prompt, "Include all standard sections for a Project Charter")
}

// ==================== SUGGEST TESTS ====================

func TestSuggest_Success(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := freeUser(1)
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)
	m.ai.On("Complete", ctx, "", suggestionSystemPrompt, mock.AnythingOfType("string"), suggestionMaxTokens).
		Return("1. RAID Log\n2. Project Charter", nil)
	m.repo.On("CreateSuggestion", ctx, mock.AnythingOfType("*activity.Suggestion")).Return(int64(3), nil)
	m.users.On("Update", ctx, u).Return(nil)

	resp, err := uc.Suggest(ctx, SuggestRequest{
		UserID:             1,
		ProjectDescription: "Rolling out a new EHR system across three hospitals",
		Industry:           "Healthcare",
	})

	assert.NoError(t, err)
	assert.Contains(t, resp.Suggestions, "RAID Log")
	assert.Equal(t, 1, u.AIGenerationsUsed)
	assert.Equal(t, 2, resp.AIRemaining)
}

func TestSuggest_SharesQuotaWithGenerations(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := freeUser(1)
	u.AIGenerationsUsed = 3
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)

	resp, err := uc.Suggest(ctx, SuggestRequest{
		UserID:             1,
		ProjectDescription: "Anything at all",
	})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 429, apperrors.StatusOf(err))
}

func TestSuggest_HistoryFailureDoesNotBlock(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	u := freeUser(1)
	m.users.On("GetByID", ctx, int64(1)).Return(u, nil)
	m.ai.On("Complete", ctx, "", suggestionSystemPrompt, mock.AnythingOfType("string"), suggestionMaxTokens).
		Return("advice", nil)
	m.repo.On("CreateSuggestion", ctx, mock.AnythingOfType("*activity.Suggestion")).
		Return(int64(0), assert.AnError)
	m.users.On("Update", ctx, u).Return(nil)

	resp, err := uc.Suggest(ctx, SuggestRequest{UserID: 1, ProjectDescription: "A data warehouse migration"})

	assert.NoError(t, err)
	assert.Equal(t, "advice", resp.Suggestions)
}

// ==================== HISTORY TESTS ====================

func TestHistory_Success(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	m.repo.On("ListGenerations", ctx, int64(1), int64(20)).Return([]activity.Generation{
		{ID: 5, ProjectName: "Hospital Expansion", DocumentType: "Project Charter", FileFormat: "xlsx"},
	}, nil)
	m.repo.On("ListSuggestions", ctx, int64(1), int64(20)).Return([]activity.Suggestion{
		{ID: 3, ProjectDescription: "EHR rollout", Suggestions: "RAID Log"},
	}, nil)

	resp, err := uc.History(ctx, 1)

	assert.NoError(t, err)
	assert.Len(t, resp.Generations, 1)
	assert.Len(t, resp.Suggestions, 1)
	assert.Equal(t, "Project Charter", resp.Generations[0].DocumentType)
}

// ==================== GENERATION DOWNLOAD TESTS ====================

func TestDownloadGeneration_Success(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	g := &activity.Generation{
		ID:           5,
		UserID:       1,
		ProjectName:  "Hospital Expansion",
		DocumentType: "Project Charter",
		FileFormat:   "docx",
		FileKey:      "generated/1/abc.docx",
	}
	m.repo.On("GetGeneration", ctx, int64(1), int64(5)).Return(g, nil)
	m.store.On("PresignDownload", ctx, "generated/1/abc.docx", 15*time.Minute).
		Return("https://cdn/generated", nil)

	resp, err := uc.DownloadGeneration(ctx, 1, 5)

	assert.NoError(t, err)
	assert.Equal(t, "https://cdn/generated", resp.URL)
	assert.Equal(t, "Hospital_Expansion_Project_Charter.docx", resp.FileName)
}

func TestDownloadGeneration_Unknown(t *testing.T) {
	uc, m := setupTestUsecase(t)
	ctx := context.Background()

	m.repo.On("GetGeneration", ctx, int64(1), int64(99)).Return(nil, nil)

	resp, err := uc.DownloadGeneration(ctx, 1, 99)

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 404, apperrors.StatusOf(err))
}
