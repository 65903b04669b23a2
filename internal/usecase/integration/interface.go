package integration

import "context"

// Usecase defines the interface for platform integration business
// logic.
type Usecase interface {
	ConnectURL(ctx context.Context, in ConnectRequest) (*ConnectResponse, error)
	HandleCallback(ctx context.Context, in CallbackRequest) (*CallbackResponse, error)
	Status(ctx context.Context, userID int64) (*StatusResponse, error)
	Disconnect(ctx context.Context, userID int64, platform string) error
	Export(ctx context.Context, in ExportRequest) (*ExportResponse, error)
	Test(ctx context.Context, userID int64, platform string) (*TestResponse, error)
}
