package integration

import "time"

// Platforms the marketplace can connect to.
const (
	PlatformMonday     = "monday"
	PlatformSmartsheet = "smartsheet"
	PlatformGoogle     = "google_workspace"
	PlatformMicrosoft  = "microsoft_365"
	PlatformWorkday    = "workday"
)

// KnownPlatforms lists every supported platform identifier.
var KnownPlatforms = []string{
	PlatformMonday,
	PlatformSmartsheet,
	PlatformGoogle,
	PlatformMicrosoft,
	PlatformWorkday,
}

// IsKnownPlatform reports whether name is a supported platform.
func IsKnownPlatform(name string) bool {
	for _, p := range KnownPlatforms {
		if p == name {
			return true
		}
	}
	return false
}

// Connection stores a user's OAuth grant for one platform.
type Connection struct {
	ID           int64
	UserID       int64
	Platform     string
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Expired reports whether the grant has a passed expiry.
func (c *Connection) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// ColumnKey converts a display column title into a platform column key,
// e.g. "Due Date" becomes "due_date".
func ColumnKey(title string) string {
	var b []byte
	for i := 0; i < len(title); i++ {
		c := title[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b = append(b, c+'a'-'A')
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b = append(b, c)
		case c == ' ' || c == '-' || c == '_':
			b = append(b, '_')
		}
	}
	return string(b)
}

// ExportRow is one row of template data pushed to an external platform.
type ExportRow struct {
	Name   string
	Values []string
}

// ExportPayload is the platform-neutral shape of a template export.
type ExportPayload struct {
	Name    string
	Columns []string
	Rows    []ExportRow
}

// ExportResult reports the outcome of pushing a template to a platform.
type ExportResult struct {
	Platform     string `json:"platform"`
	RemoteID     string `json:"remote_id,omitempty"`
	RemoteURL    string `json:"remote_url,omitempty"`
	ItemsCreated int    `json:"items_created"`
	Mocked       bool   `json:"mocked,omitempty"`
	Message      string `json:"message,omitempty"`
}
