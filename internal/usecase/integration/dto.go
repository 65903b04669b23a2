package integration

import (
	"time"

	"pmblueprints/internal/domain/integration"
)

// ConnectRequest starts an OAuth flow for a platform.
type ConnectRequest struct {
	UserID      int64
	Platform    string `validate:"required"`
	RedirectURI string `validate:"required,url"`
}

// ConnectResponse carries the provider authorization URL the frontend
// redirects to.
type ConnectResponse struct {
	Platform string `json:"platform"`
	AuthURL  string `json:"auth_url"`
}

// CallbackRequest completes an OAuth flow from the provider redirect.
type CallbackRequest struct {
	State       string `validate:"required"`
	Code        string `validate:"required"`
	RedirectURI string `validate:"required,url"`
}

// CallbackResponse reports the completed connection.
type CallbackResponse struct {
	Platform  string `json:"platform"`
	Connected bool   `json:"connected"`
}

// ConnectionStatus is the per-platform view of a user's connections.
type ConnectionStatus struct {
	Platform    string     `json:"platform"`
	Connected   bool       `json:"connected"`
	Expired     bool       `json:"expired,omitempty"`
	Mocked      bool       `json:"mocked,omitempty"`
	ConnectedAt *time.Time `json:"connected_at,omitempty"`
}

// StatusResponse lists every supported platform with its connection
// state.
type StatusResponse struct {
	Connections []ConnectionStatus `json:"connections"`
}

// ExportRow is one client-supplied row of template data.
type ExportRow struct {
	Name   string   `json:"name" validate:"required,max=200"`
	Values []string `json:"values" validate:"max=10,dive,max=500"`
}

// ExportRequest pushes a template to a connected platform. Rows are
// optional; without them a standard phase breakdown is exported.
type ExportRequest struct {
	UserID     int64
	Platform   string      `json:"platform" validate:"required"`
	TemplateID int64       `json:"template_id" validate:"required,gt=0"`
	Rows       []ExportRow `json:"rows" validate:"max=200,dive"`
}

// ExportResponse reports the outcome of a platform export.
type ExportResponse struct {
	Result *integration.ExportResult `json:"result"`
}

// TestResponse reports whether a platform connection is usable.
type TestResponse struct {
	Platform string `json:"platform"`
	OK       bool   `json:"ok"`
	Mocked   bool   `json:"mocked,omitempty"`
	Message  string `json:"message,omitempty"`
}
