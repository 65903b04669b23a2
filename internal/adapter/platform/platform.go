package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"pmblueprints/internal/domain/integration"
)

// Exporter pushes a template's row data to one external platform on
// behalf of a connected user.
type Exporter interface {
	// Platform returns the platform identifier this exporter serves.
	Platform() string

	// Export creates the remote artifact (board, sheet, workbook) and
	// fills it with the payload rows.
	Export(ctx context.Context, accessToken string, payload integration.ExportPayload) (*integration.ExportResult, error)
}

// Registry resolves exporters by platform identifier.
type Registry struct {
	exporters map[string]Exporter
}

// NewRegistry builds a registry from the given exporters.
func NewRegistry(exporters ...Exporter) *Registry {
	m := make(map[string]Exporter, len(exporters))
	for _, e := range exporters {
		m[e.Platform()] = e
	}
	return &Registry{exporters: m}
}

// For returns the exporter for a platform.
func (r *Registry) For(platform string) (Exporter, bool) {
	e, ok := r.exporters[platform]
	return e, ok
}

const defaultTimeout = 30 * time.Second

// doJSON posts or gets JSON against a platform API and decodes the
// response into out. Non-2xx statuses are returned as errors with a
// body excerpt.
func doJSON(ctx context.Context, client *http.Client, method, url, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt := string(data)
		if len(excerpt) > 300 {
			excerpt = excerpt[:300]
		}
		return fmt.Errorf("%s %s: status %d: %s", method, url, resp.StatusCode, excerpt)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
