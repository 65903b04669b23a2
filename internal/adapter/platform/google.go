package platform

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"pmblueprints/internal/domain/integration"
)

// GoogleExporter exports templates as Google Sheets spreadsheets. The
// header row and data rows are embedded in the create call, so a single
// request produces the finished sheet.
type GoogleExporter struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// NewGoogleExporter creates a GoogleExporter. baseURL is overridable
// for tests; empty selects the production Sheets API.
func NewGoogleExporter(baseURL string, log *zap.Logger) *GoogleExporter {
	if baseURL == "" {
		baseURL = "https://sheets.googleapis.com/v4"
	}
	return &GoogleExporter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		log:     log,
	}
}

// Platform returns the platform identifier this exporter serves.
func (e *GoogleExporter) Platform() string { return integration.PlatformGoogle }

type sheetsCell struct {
	UserEnteredValue struct {
		StringValue string `json:"stringValue"`
	} `json:"userEnteredValue"`
}

type sheetsRowData struct {
	Values []sheetsCell `json:"values"`
}

func sheetsRow(values []string) sheetsRowData {
	row := sheetsRowData{Values: make([]sheetsCell, len(values))}
	for i, v := range values {
		row.Values[i].UserEnteredValue.StringValue = v
	}
	return row
}

// Export creates a spreadsheet holding a header row plus the payload rows.
func (e *GoogleExporter) Export(ctx context.Context, accessToken string, payload integration.ExportPayload) (*integration.ExportResult, error) {
	header := append([]string{"Task"}, payload.Columns...)
	rowData := []sheetsRowData{sheetsRow(header)}
	for _, row := range payload.Rows {
		rowData = append(rowData, sheetsRow(append([]string{row.Name}, row.Values...)))
	}

	createReq := map[string]any{
		"properties": map[string]any{"title": payload.Name},
		"sheets": []map[string]any{
			{
				"properties": map[string]any{"title": "Template"},
				"data": []map[string]any{
					{"startRow": 0, "startColumn": 0, "rowData": rowData},
				},
			},
		},
	}

	var createResp struct {
		SpreadsheetID  string `json:"spreadsheetId"`
		SpreadsheetURL string `json:"spreadsheetUrl"`
	}
	err := doJSON(ctx, e.client, http.MethodPost, e.baseURL+"/spreadsheets", accessToken, createReq, &createResp)
	if err != nil {
		e.log.Error("failed to create google spreadsheet", zap.String("name", payload.Name), zap.Error(err))
		return nil, fmt.Errorf("create google spreadsheet: %w", err)
	}
	if createResp.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet creation returned no id")
	}

	e.log.Info("template exported to google sheets",
		zap.String("spreadsheet_id", createResp.SpreadsheetID), zap.Int("rows", len(payload.Rows)))

	return &integration.ExportResult{
		Platform:     integration.PlatformGoogle,
		RemoteID:     createResp.SpreadsheetID,
		RemoteURL:    createResp.SpreadsheetURL,
		ItemsCreated: len(payload.Rows),
		Message:      "Template exported to Google Sheets",
	}, nil
}
