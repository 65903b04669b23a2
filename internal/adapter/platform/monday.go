package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"pmblueprints/internal/domain/integration"
)

// MondayExporter exports templates as Monday.com boards through the
// GraphQL API. Each payload row becomes a board item.
type MondayExporter struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// NewMondayExporter creates a MondayExporter against the public API.
// baseURL is overridable for tests; empty selects the production API.
func NewMondayExporter(baseURL string, log *zap.Logger) *MondayExporter {
	if baseURL == "" {
		baseURL = "https://api.monday.com/v2"
	}
	return &MondayExporter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		log:     log,
	}
}

// Platform returns the platform identifier this exporter serves.
func (e *MondayExporter) Platform() string { return integration.PlatformMonday }

type mondayRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type mondayResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (e *MondayExporter) graphql(ctx context.Context, token, query string, variables map[string]any, out any) error {
	req := mondayRequest{Query: query, Variables: variables}

	var resp mondayResponse
	if err := doJSON(ctx, e.client, http.MethodPost, e.baseURL, token, req, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return fmt.Errorf("monday api error: %s", resp.Errors[0].Message)
	}
	if out != nil && resp.Data != nil {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("decode monday data: %w", err)
		}
	}
	return nil
}

// Export creates a board, adds standard PM columns and one item per row.
func (e *MondayExporter) Export(ctx context.Context, accessToken string, payload integration.ExportPayload) (*integration.ExportResult, error) {
	const createBoard = `
	mutation ($boardName: String!, $boardKind: BoardKind!) {
		create_board (board_name: $boardName, board_kind: $boardKind) {
			id
			name
			url
		}
	}`

	var created struct {
		CreateBoard struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"create_board"`
	}
	err := e.graphql(ctx, accessToken, createBoard, map[string]any{
		"boardName": payload.Name,
		"boardKind": "public",
	}, &created)
	if err != nil {
		e.log.Error("failed to create monday board", zap.String("name", payload.Name), zap.Error(err))
		return nil, fmt.Errorf("create monday board: %w", err)
	}
	if created.CreateBoard.ID == "" {
		return nil, fmt.Errorf("monday board creation returned no id")
	}

	boardID := created.CreateBoard.ID
	e.addColumns(ctx, accessToken, boardID, payload.Columns)

	const createItem = `
	mutation ($boardId: ID!, $itemName: String!, $columnValues: JSON) {
		create_item (board_id: $boardId, item_name: $itemName, column_values: $columnValues) {
			id
		}
	}`

	itemsCreated := 0
	for _, row := range payload.Rows {
		columnValues := make(map[string]string, len(row.Values))
		for i, v := range row.Values {
			if i < len(payload.Columns) {
				columnValues[integration.ColumnKey(payload.Columns[i])] = v
			}
		}
		encoded, _ := json.Marshal(columnValues)

		var item struct {
			CreateItem struct {
				ID string `json:"id"`
			} `json:"create_item"`
		}
		err := e.graphql(ctx, accessToken, createItem, map[string]any{
			"boardId":      boardID,
			"itemName":     row.Name,
			"columnValues": string(encoded),
		}, &item)
		if err != nil {
			e.log.Warn("failed to create monday item", zap.String("board_id", boardID), zap.Error(err))
			continue
		}
		if item.CreateItem.ID != "" {
			itemsCreated++
		}
	}

	e.log.Info("template exported to monday",
		zap.String("board_id", boardID), zap.Int("items", itemsCreated))

	return &integration.ExportResult{
		Platform:     integration.PlatformMonday,
		RemoteID:     boardID,
		RemoteURL:    created.CreateBoard.URL,
		ItemsCreated: itemsCreated,
		Message:      "Template exported to Monday.com",
	}, nil
}

// addColumns provisions one text column per payload column. Column
// creation failures are not fatal, items still land on the board.
func (e *MondayExporter) addColumns(ctx context.Context, token, boardID string, columns []string) {
	const createColumn = `
	mutation ($boardId: ID!, $title: String!, $columnType: ColumnType!) {
		create_column (board_id: $boardId, title: $title, column_type: $columnType) {
			id
		}
	}`

	for _, title := range columns {
		err := e.graphql(ctx, token, createColumn, map[string]any{
			"boardId":    boardID,
			"title":      title,
			"columnType": "text",
		}, nil)
		if err != nil {
			e.log.Warn("failed to create monday column",
				zap.String("board_id", boardID), zap.String("title", title), zap.Error(err))
		}
	}
}
