// Package docgen renders AI-generated document content into office
// file formats.
package docgen

import (
	"fmt"
	"strings"
	"time"
)

// Document is the rendering input: generated content plus the metadata
// stamped into the file.
type Document struct {
	Name        string
	Methodology string
	Industry    string
	Content     string
}

// Content types of the rendered formats.
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Renderer turns a generated document into file bytes.
type Renderer interface {
	// Render produces the file bytes and their content type for the
	// requested format ("xlsx" or "docx").
	Render(doc Document, format string) ([]byte, string, error)
}

// OfficeRenderer renders xlsx workbooks and docx documents.
type OfficeRenderer struct {
	now func() time.Time
}

// NewOfficeRenderer creates an OfficeRenderer.
func NewOfficeRenderer() *OfficeRenderer {
	return &OfficeRenderer{now: time.Now}
}

// Render dispatches on format.
func (r *OfficeRenderer) Render(doc Document, format string) ([]byte, string, error) {
	switch strings.ToLower(format) {
	case "xlsx":
		data, err := r.renderXLSX(doc)
		return data, ContentTypeXLSX, err
	case "docx":
		data, err := r.renderDOCX(doc)
		return data, ContentTypeDOCX, err
	default:
		return nil, "", fmt.Errorf("unsupported document format: %s", format)
	}
}

// contentLine classifies one line of generated content.
type contentLine struct {
	kind  string // heading1, heading2, bullet, numbered, text
	text  string
	level int
}

// parseContent splits generated markdown-ish content into typed lines.
// Blank lines are dropped.
func parseContent(content string) []contentLine {
	var lines []contentLine
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "#"):
			level := 0
			for level < len(line) && line[level] == '#' {
				level++
			}
			text := strings.TrimSpace(line[level:])
			if level > 3 {
				level = 3
			}
			lines = append(lines, contentLine{kind: "heading", text: text, level: level})
		case strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*"):
			lines = append(lines, contentLine{kind: "bullet", text: strings.TrimSpace(strings.TrimLeft(line, "-•*"))})
		case isNumberedItem(line):
			_, rest, _ := strings.Cut(line, ".")
			lines = append(lines, contentLine{kind: "numbered", text: strings.TrimSpace(rest)})
		case line == strings.ToUpper(line) && len(line) > 3 && strings.ContainsAny(line, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"):
			lines = append(lines, contentLine{kind: "heading", text: line, level: 2})
		default:
			lines = append(lines, contentLine{kind: "text", text: line})
		}
	}
	return lines
}

func isNumberedItem(line string) bool {
	dot := strings.Index(line, ".")
	if dot <= 0 || dot > 3 {
		return false
	}
	for _, c := range line[:dot] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
