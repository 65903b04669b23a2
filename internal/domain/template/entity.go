package template

import (
	"strings"
	"time"
)

// Supported file formats.
const (
	FormatXLSX = "xlsx"
	FormatDOCX = "docx"
	FormatPPTX = "pptx"
)

// Template represents a project-management document template in the catalog.
type Template struct {
	ID          int64
	Name        string
	Description string
	Industry    string
	Category    string
	FileFormat  string
	FileKey     string // object storage key of the template file
	PreviewKey  string // object storage key of the rendered preview image
	CDNURL      string // public CDN URL for the preview, preferred when set
	FileSize    int64
	Tags        []string
	HasFormulas bool
	IsPremium   bool
	Downloads   int64
	Rating      float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PreviewURL returns the preview image location, preferring the CDN copy.
func (t *Template) PreviewURL() string {
	if t.CDNURL != "" {
		return t.CDNURL
	}
	if t.PreviewKey != "" {
		return "/static/thumbnails/" + t.PreviewKey
	}
	return "/static/thumbnails/" + SafeName(t.Industry+"_"+t.Name) + ".png"
}

// SafeName converts a template name into a filesystem and URL safe slug.
func SafeName(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")

	var b strings.Builder
	for _, c := range name {
		if c == '_' || c == '-' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Filter restricts catalog listings.
type Filter struct {
	Industry string
	Category string
	Search   string
}
