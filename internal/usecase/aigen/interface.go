package aigen

import "context"

// Usecase defines the interface for AI generation business logic.
type Usecase interface {
	Generate(ctx context.Context, in GenerateRequest) (*GenerateResponse, error)
	Suggest(ctx context.Context, in SuggestRequest) (*SuggestResponse, error)
	History(ctx context.Context, userID int64) (*HistoryResponse, error)
	DownloadGeneration(ctx context.Context, userID, generationID int64) (*DownloadResponse, error)
}
