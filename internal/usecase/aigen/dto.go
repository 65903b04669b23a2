package aigen

import "time"

// GenerateRequest describes the document a user wants generated.
type GenerateRequest struct {
	UserID       int64
	ProjectName  string `json:"project_name" validate:"required,max=200"`
	ProjectType  string `json:"project_type" validate:"max=100"`
	Industry     string `json:"industry" validate:"max=100"`
	Methodology  string `json:"methodology" validate:"max=100"`
	DocumentType string `json:"document_type" validate:"required,max=100"`
	FileFormat   string `json:"file_format" validate:"omitempty,oneof=xlsx docx"`
}

// GenerateResponse carries the generated content and a time-limited
// URL for the rendered file.
type GenerateResponse struct {
	GenerationID int64  `json:"generation_id"`
	Content      string `json:"content"`
	FileName     string `json:"file_name"`
	URL          string `json:"url"`
	AIRemaining  int    `json:"ai_generations_remaining"` // -1 when unlimited
}

// SuggestRequest describes a project the user wants template
// suggestions for.
type SuggestRequest struct {
	UserID             int64
	ProjectDescription string `json:"project_description" validate:"required,max=2000"`
	Industry           string `json:"industry" validate:"max=100"`
	ProjectPhase       string `json:"project_phase" validate:"max=100"`
	TeamSize           string `json:"team_size" validate:"max=50"`
}

// SuggestResponse carries the model's template suggestions.
type SuggestResponse struct {
	Suggestions string `json:"suggestions"`
	AIRemaining int    `json:"ai_generations_remaining"` // -1 when unlimited
}

// GenerationRecord is one entry of a user's generation history.
type GenerationRecord struct {
	ID           int64     `json:"id"`
	ProjectName  string    `json:"project_name"`
	ProjectType  string    `json:"project_type,omitempty"`
	Industry     string    `json:"industry,omitempty"`
	Methodology  string    `json:"methodology,omitempty"`
	DocumentType string    `json:"document_type"`
	FileFormat   string    `json:"file_format"`
	CreatedAt    time.Time `json:"created_at"`
}

// SuggestionRecord is one entry of a user's suggestion history.
type SuggestionRecord struct {
	ID                 int64     `json:"id"`
	ProjectDescription string    `json:"project_description"`
	Industry           string    `json:"industry,omitempty"`
	Suggestions        string    `json:"suggestions"`
	CreatedAt          time.Time `json:"created_at"`
}

// HistoryResponse lists a user's AI activity, newest first.
type HistoryResponse struct {
	Generations []GenerationRecord `json:"generations"`
	Suggestions []SuggestionRecord `json:"suggestions"`
}

// DownloadResponse carries a time-limited URL for a previously
// generated file.
type DownloadResponse struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
}
