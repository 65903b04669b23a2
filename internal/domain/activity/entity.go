package activity

import "time"

// Download records a template download by a user.
type Download struct {
	ID           int64
	UserID       int64
	TemplateID   int64
	DownloadedAt time.Time
}

// Favorite marks a template as a user favorite. Unique per
// (user, template).
type Favorite struct {
	ID         int64
	UserID     int64
	TemplateID int64
	CreatedAt  time.Time
}

// Rating is a 1..5 star review of a template. Unique per
// (user, template); re-rating updates in place.
type Rating struct {
	ID         int64
	UserID     int64
	TemplateID int64
	Stars      int
	Review     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Generation records an AI document generation run.
type Generation struct {
	ID           int64
	UserID       int64
	ProjectName  string
	ProjectType  string
	Industry     string
	Methodology  string
	DocumentType string
	FileFormat   string
	Content      string
	FileKey      string // object storage key of the rendered file
	CreatedAt    time.Time
}

// Suggestion records an AI template suggestion request and its result.
type Suggestion struct {
	ID                 int64
	UserID             int64
	ProjectDescription string
	Industry           string
	ProjectPhase       string
	TeamSize           string
	Suggestions        string // JSON payload returned to the client
	CreatedAt          time.Time
}
