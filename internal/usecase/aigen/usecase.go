package aigen

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pmblueprints/internal/adapter/storage"
	"pmblueprints/internal/docgen"
	"pmblueprints/internal/domain/activity"
	"pmblueprints/internal/domain/template"
	"pmblueprints/internal/domain/user"
	apperrors "pmblueprints/pkg/errors"
)

// UserRepository defines the user data access the AI flows need.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
}

// Repository persists AI generation and suggestion history.
type Repository interface {
	CreateGeneration(ctx context.Context, g *activity.Generation) (int64, error)
	ListGenerations(ctx context.Context, userID, limit int64) ([]activity.Generation, error)
	GetGeneration(ctx context.Context, userID, id int64) (*activity.Generation, error)
	CreateSuggestion(ctx context.Context, s *activity.Suggestion) (int64, error)
	ListSuggestions(ctx context.Context, userID, limit int64) ([]activity.Suggestion, error)
}

// AIClient runs a chat completion. A non-empty keyOverride replaces
// the platform API key for the call.
type AIClient interface {
	Complete(ctx context.Context, keyOverride, system, prompt string, maxTokens int) (string, error)
}

const (
	generationSystemPrompt = "You are a professional project management expert specializing in creating PMI-compliant templates. Generate high-quality, professional, and unbiased content."
	suggestionSystemPrompt = "You are an expert project management consultant. Provide concise, actionable advice based on PMBOK standards and industry best practices. Be direct and specific."

	generationMaxTokens = 2000
	suggestionMaxTokens = 800

	historyLimit = 20
)

// Service implements the AI generation business logic: quota
// enforcement, prompt assembly, document rendering and history.
type Service struct {
	users      UserRepository
	repo       Repository
	ai         AIClient
	renderer   docgen.Renderer
	store      storage.Service
	presignTTL time.Duration
	log        *zap.Logger
	validate   *validator.Validate
	now        func() time.Time
}

// New creates an aigen Service.
func New(users UserRepository, repo Repository, ai AIClient, renderer docgen.Renderer,
	store storage.Service, presignTTL time.Duration, log *zap.Logger) *Service {
	if presignTTL <= 0 {
		presignTTL = 15 * time.Minute
	}
	return &Service{
		users:      users,
		repo:       repo,
		ai:         ai,
		renderer:   renderer,
		store:      store,
		presignTTL: presignTTL,
		log:        log,
		validate:   validator.New(),
		now:        time.Now,
	}
}

// authorize loads the user and checks the monthly AI quota. A user
// with their own API key bypasses the quota entirely; the returned
// key override is empty for platform-key calls.
func (s *Service) authorize(ctx context.Context, userID int64) (*user.User, string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	if u.NeedsUsageReset(s.now().UTC()) {
		u.ResetUsage(s.now().UTC())
	}

	if u.HasOpenAIKey() {
		return u, u.OpenAIAPIKey, nil
	}

	if !u.CanGenerateAI() {
		s.log.Info("ai quota exhausted",
			zap.Int64("user_id", u.ID), zap.String("tier", u.Tier))
		return nil, "", apperrors.NewQuotaExceededError("ai_generation",
			fmt.Sprintf("monthly AI generation limit reached (%d)", u.AIGenerationLimit()))
	}
	return u, "", nil
}

// consume bumps the AI counter after a successful call. Own-key calls
// do not count against the platform quota.
func (s *Service) consume(ctx context.Context, u *user.User, ownKey bool) {
	if ownKey {
		return
	}
	if u.AIGenerationLimit() != user.Unlimited {
		u.AIGenerationsUsed++
	}
	if err := s.users.Update(ctx, u); err != nil {
		s.log.Error("failed to persist ai usage counter", zap.Int64("user_id", u.ID), zap.Error(err))
	}
}

func generationPrompt(in GenerateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a professional %s for a project.\n\n", in.DocumentType)
	fmt.Fprintf(&b, "Project Name: %s\n", in.ProjectName)
	if in.ProjectType != "" {
		fmt.Fprintf(&b, "Project Type: %s\n", in.ProjectType)
	}
	if in.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", in.Industry)
	}
	if in.Methodology != "" {
		fmt.Fprintf(&b, "Methodology: %s\n", in.Methodology)
	}
	b.WriteString("\nRequirements:\n")
	b.WriteString("- Follow PMI standards\n")
	b.WriteString("- Use professional language\n")
	fmt.Fprintf(&b, "- Include all standard sections for a %s\n", in.DocumentType)
	b.WriteString("- Be specific and actionable\n")
	b.WriteString("- Maintain inclusive and unbiased language\n")
	fmt.Fprintf(&b, "\nGenerate a comprehensive %s that meets these requirements.", in.DocumentType)
	return b.String()
}

func suggestionPrompt(in SuggestRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project Description: %s\n", in.ProjectDescription)
	if in.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", in.Industry)
	}
	if in.ProjectPhase != "" {
		fmt.Fprintf(&b, "Project Phase: %s\n", in.ProjectPhase)
	}
	if in.TeamSize != "" {
		fmt.Fprintf(&b, "Team Size: %s\n", in.TeamSize)
	}
	b.WriteString("\nSuggest the most suitable project management templates for this project and explain briefly why each one fits.")
	return b.String()
}

// Generate produces a document with the model, renders it to the
// requested office format and stores the file.
func (s *Service) Generate(ctx context.Context, in GenerateRequest) (*GenerateResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.NewValidationError("", err.Error())
	}
	format := in.FileFormat
	if format == "" {
		format = "xlsx"
	}

	u, keyOverride, err := s.authorize(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	content, err := s.ai.Complete(ctx, keyOverride, generationSystemPrompt, generationPrompt(in), generationMaxTokens)
	if err != nil {
		s.log.Error("ai generation failed", zap.Int64("user_id", in.UserID), zap.Error(err))
		return nil, apperrors.NewInternalError("document generation failed", err)
	}

	doc := docgen.Document{
		Name:        fmt.Sprintf("%s %s", in.ProjectName, in.DocumentType),
		Methodology: in.Methodology,
		Industry:    in.Industry,
		Content:     content,
	}
	data, contentType, err := s.renderer.Render(doc, format)
	if err != nil {
		s.log.Error("failed to render generated document", zap.Int64("user_id", in.UserID), zap.Error(err))
		return nil, apperrors.NewInternalError("document rendering failed", err)
	}

	key := fmt.Sprintf("generated/%d/%s.%s", u.ID, uuid.NewString(), format)
	if _, err := s.store.Upload(ctx, key, contentType, bytes.NewReader(data)); err != nil {
		s.log.Error("failed to store generated document", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	gen := &activity.Generation{
		UserID:       u.ID,
		ProjectName:  in.ProjectName,
		ProjectType:  in.ProjectType,
		Industry:     in.Industry,
		Methodology:  in.Methodology,
		DocumentType: in.DocumentType,
		FileFormat:   format,
		Content:      content,
		FileKey:      key,
	}
	if _, err := s.repo.CreateGeneration(ctx, gen); err != nil {
		s.log.Warn("failed to record generation history", zap.Int64("user_id", u.ID), zap.Error(err))
	}

	s.consume(ctx, u, keyOverride != "")

	url, err := s.store.PresignDownload(ctx, key, s.presignTTL)
	if err != nil {
		return nil, err
	}

	s.log.Info("document generated",
		zap.Int64("user_id", u.ID),
		zap.String("document_type", in.DocumentType),
		zap.String("file_format", format),
		zap.Bool("own_key", keyOverride != ""))

	return &GenerateResponse{
		GenerationID: gen.ID,
		Content:      content,
		FileName:     template.SafeName(doc.Name) + "." + format,
		URL:          url,
		AIRemaining:  u.AIGenerationsRemaining(),
	}, nil
}

// Suggest asks the model for template recommendations matching a
// project description.
func (s *Service) Suggest(ctx context.Context, in SuggestRequest) (*SuggestResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.NewValidationError("", err.Error())
	}

	u, keyOverride, err := s.authorize(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	suggestions, err := s.ai.Complete(ctx, keyOverride, suggestionSystemPrompt, suggestionPrompt(in), suggestionMaxTokens)
	if err != nil {
		s.log.Error("ai suggestion failed", zap.Int64("user_id", in.UserID), zap.Error(err))
		return nil, apperrors.NewInternalError("template suggestion failed", err)
	}

	record := &activity.Suggestion{
		UserID:             u.ID,
		ProjectDescription: in.ProjectDescription,
		Industry:           in.Industry,
		ProjectPhase:       in.ProjectPhase,
		TeamSize:           in.TeamSize,
		Suggestions:        suggestions,
	}
	if _, err := s.repo.CreateSuggestion(ctx, record); err != nil {
		s.log.Warn("failed to record suggestion history", zap.Int64("user_id", u.ID), zap.Error(err))
	}

	s.consume(ctx, u, keyOverride != "")

	return &SuggestResponse{
		Suggestions: suggestions,
		AIRemaining: u.AIGenerationsRemaining(),
	}, nil
}

// History returns the user's recent generations and suggestions.
func (s *Service) History(ctx context.Context, userID int64) (*HistoryResponse, error) {
	generations, err := s.repo.ListGenerations(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}
	suggestions, err := s.repo.ListSuggestions(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}

	out := &HistoryResponse{
		Generations: make([]GenerationRecord, len(generations)),
		Suggestions: make([]SuggestionRecord, len(suggestions)),
	}
	for i, g := range generations {
		out.Generations[i] = GenerationRecord{
			ID:           g.ID,
			ProjectName:  g.ProjectName,
			ProjectType:  g.ProjectType,
			Industry:     g.Industry,
			Methodology:  g.Methodology,
			DocumentType: g.DocumentType,
			FileFormat:   g.FileFormat,
			CreatedAt:    g.CreatedAt,
		}
	}
	for i, sg := range suggestions {
		out.Suggestions[i] = SuggestionRecord{
			ID:                 sg.ID,
			ProjectDescription: sg.ProjectDescription,
			Industry:           sg.Industry,
			Suggestions:        sg.Suggestions,
			CreatedAt:          sg.CreatedAt,
		}
	}
	return out, nil
}

// DownloadGeneration issues a presigned URL for a previously
// generated file.
func (s *Service) DownloadGeneration(ctx context.Context, userID, generationID int64) (*DownloadResponse, error) {
	g, err := s.repo.GetGeneration(ctx, userID, generationID)
	if err != nil {
		return nil, err
	}
	if g == nil || g.FileKey == "" {
		return nil, apperrors.NewNotFoundError("generation", fmt.Sprintf("generation %d not found", generationID))
	}

	url, err := s.store.PresignDownload(ctx, g.FileKey, s.presignTTL)
	if err != nil {
		return nil, err
	}

	return &DownloadResponse{
		URL:      url,
		FileName: template.SafeName(fmt.Sprintf("%s %s", g.ProjectName, g.DocumentType)) + "." + g.FileFormat,
	}, nil
}
