package platform

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pmblueprints/internal/domain/integration"
)

// WorkdayExporter simulates the Workday HCM integration. The upstream
// connector runs against a sandbox tenant; until a production tenant is
// provisioned the export returns a deterministic mocked result so the
// rest of the flow (connection checks, history, UI) stays exercisable.
type WorkdayExporter struct {
	tenant string
	log    *zap.Logger
}

// NewWorkdayExporter creates a WorkdayExporter for the configured tenant.
func NewWorkdayExporter(tenant string, log *zap.Logger) *WorkdayExporter {
	return &WorkdayExporter{tenant: tenant, log: log}
}

// Platform returns the platform identifier this exporter serves.
func (e *WorkdayExporter) Platform() string { return integration.PlatformWorkday }

// Export reports a mocked resource-planning sync.
func (e *WorkdayExporter) Export(ctx context.Context, accessToken string, payload integration.ExportPayload) (*integration.ExportResult, error) {
	tenant := e.tenant
	if tenant == "" {
		tenant = "sandbox"
	}

	e.log.Info("workday export simulated",
		zap.String("tenant", tenant), zap.Int("rows", len(payload.Rows)))

	return &integration.ExportResult{
		Platform:     integration.PlatformWorkday,
		RemoteID:     fmt.Sprintf("wd-%s", tenant),
		ItemsCreated: len(payload.Rows),
		Mocked:       true,
		Message:      "Workday HCM sync simulated against sandbox tenant",
	}, nil
}
