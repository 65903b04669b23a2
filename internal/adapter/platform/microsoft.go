package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"pmblueprints/internal/domain/integration"
	"pmblueprints/internal/domain/template"
)

// MicrosoftExporter exports templates into the user's OneDrive through
// the Microsoft Graph API. The payload is uploaded as a CSV workbook
// that Excel Online opens directly.
type MicrosoftExporter struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// NewMicrosoftExporter creates a MicrosoftExporter. baseURL is
// overridable for tests; empty selects the production Graph API.
func NewMicrosoftExporter(baseURL string, log *zap.Logger) *MicrosoftExporter {
	if baseURL == "" {
		baseURL = "https://graph.microsoft.com/v1.0"
	}
	return &MicrosoftExporter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		log:     log,
	}
}

// Platform returns the platform identifier this exporter serves.
func (e *MicrosoftExporter) Platform() string { return integration.PlatformMicrosoft }

func csvEscape(v string) string {
	if strings.ContainsAny(v, ",\"\n") {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}

// Export uploads the payload as a CSV file under the drive root.
func (e *MicrosoftExporter) Export(ctx context.Context, accessToken string, payload integration.ExportPayload) (*integration.ExportResult, error) {
	var buf bytes.Buffer
	header := append([]string{"Task"}, payload.Columns...)
	for i, col := range header {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(csvEscape(col))
	}
	buf.WriteByte('\n')
	for _, row := range payload.Rows {
		cells := append([]string{row.Name}, row.Values...)
		for i, cell := range cells {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(csvEscape(cell))
		}
		buf.WriteByte('\n')
	}

	name := template.SafeName(payload.Name)
	if name == "" {
		name = "template"
	}
	uploadURL := fmt.Sprintf("%s/me/drive/root:/%s.csv:/content", e.baseURL, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "text/csv")

	resp, err := e.client.Do(req)
	if err != nil {
		e.log.Error("failed to upload to onedrive", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("upload to onedrive: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upload to onedrive: status %d", resp.StatusCode)
	}

	var item struct {
		ID     string `json:"id"`
		WebURL string `json:"webUrl"`
	}
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("decode drive item: %w", err)
	}

	e.log.Info("template exported to microsoft 365",
		zap.String("item_id", item.ID), zap.Int("rows", len(payload.Rows)))

	return &integration.ExportResult{
		Platform:     integration.PlatformMicrosoft,
		RemoteID:     item.ID,
		RemoteURL:    item.WebURL,
		ItemsCreated: len(payload.Rows),
		Message:      "Template exported to Microsoft 365",
	}, nil
}
