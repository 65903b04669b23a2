package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pmblueprints/internal/adapter/cache"
	"pmblueprints/internal/adapter/oauth"
	"pmblueprints/internal/adapter/platform"
	domain "pmblueprints/internal/domain/integration"
	"pmblueprints/internal/domain/template"
	apperrors "pmblueprints/pkg/errors"
)

// ConnectionRepository persists platform OAuth grants.
type ConnectionRepository interface {
	Upsert(ctx context.Context, c *domain.Connection) error
	Get(ctx context.Context, userID int64, platform string) (*domain.Connection, error)
	Delete(ctx context.Context, userID int64, platform string) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Connection, error)
}

// TemplateRepository resolves templates being exported.
type TemplateRepository interface {
	GetByID(ctx context.Context, id int64) (*template.Template, error)
}

// Service implements the platform integration business logic: OAuth
// connect flows, connection status and template exports.
type Service struct {
	connections ConnectionRepository
	templates   TemplateRepository
	providers   *oauth.Registry
	exporters   *platform.Registry
	states      cache.OAuthStateStore
	log         *zap.Logger
	validate    *validator.Validate
	now         func() time.Time
}

// New creates an integration Service.
func New(connections ConnectionRepository, templates TemplateRepository,
	providers *oauth.Registry, exporters *platform.Registry,
	states cache.OAuthStateStore, log *zap.Logger) *Service {
	return &Service{
		connections: connections,
		templates:   templates,
		providers:   providers,
		exporters:   exporters,
		states:      states,
		log:         log,
		validate:    validator.New(),
		now:         time.Now,
	}
}

// ConnectURL opens an OAuth flow and returns the provider
// authorization URL. The state token is single use and expires with
// the state store TTL.
func (s *Service) ConnectURL(ctx context.Context, in ConnectRequest) (*ConnectResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.NewValidationError("", err.Error())
	}
	if !domain.IsKnownPlatform(in.Platform) {
		return nil, apperrors.NewValidationError("platform", fmt.Sprintf("unknown platform %q", in.Platform))
	}
	if in.Platform == domain.PlatformWorkday {
		return nil, apperrors.NewValidationError("platform",
			"workday runs against the sandbox tenant and needs no connection")
	}

	provider, ok := s.providers.For(in.Platform)
	if !ok {
		return nil, apperrors.NewValidationError("platform",
			fmt.Sprintf("%s is not configured on this deployment", in.Platform))
	}

	state := uuid.NewString()
	if err := s.states.Put(ctx, state, cache.OAuthState{UserID: in.UserID, Platform: in.Platform}); err != nil {
		return nil, err
	}

	s.log.Info("oauth flow started",
		zap.Int64("user_id", in.UserID), zap.String("platform", in.Platform))

	return &ConnectResponse{
		Platform: in.Platform,
		AuthURL:  provider.AuthURL(state, in.RedirectURI),
	}, nil
}

// HandleCallback exchanges the provider code and stores the grant.
func (s *Service) HandleCallback(ctx context.Context, in CallbackRequest) (*CallbackResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.NewValidationError("", err.Error())
	}

	state, err := s.states.Consume(ctx, in.State)
	if err != nil {
		return nil, err
	}
	if state == nil {
		s.log.Warn("oauth callback with unknown state")
		return nil, apperrors.NewUnauthorizedError("unknown or expired authorization state")
	}

	provider, ok := s.providers.For(state.Platform)
	if !ok {
		return nil, apperrors.NewValidationError("platform",
			fmt.Sprintf("%s is not configured on this deployment", state.Platform))
	}

	token, err := provider.Exchange(ctx, in.Code, in.RedirectURI)
	if err != nil {
		s.log.Error("oauth code exchange failed",
			zap.Int64("user_id", state.UserID), zap.String("platform", state.Platform), zap.Error(err))
		return nil, apperrors.NewUnauthorizedError("authorization code exchange failed")
	}

	conn := &domain.Connection{
		UserID:       state.UserID,
		Platform:     state.Platform,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.ExpiresAt,
	}
	if err := s.connections.Upsert(ctx, conn); err != nil {
		return nil, err
	}

	s.log.Info("platform connected",
		zap.Int64("user_id", state.UserID), zap.String("platform", state.Platform))

	return &CallbackResponse{Platform: state.Platform, Connected: true}, nil
}

// Status reports every supported platform with its connection state.
// Workday is always usable; it runs against the sandbox tenant.
func (s *Service) Status(ctx context.Context, userID int64) (*StatusResponse, error) {
	conns, err := s.connections.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byPlatform := make(map[string]domain.Connection, len(conns))
	for _, c := range conns {
		byPlatform[c.Platform] = c
	}

	now := s.now().UTC()
	out := &StatusResponse{Connections: make([]ConnectionStatus, 0, len(domain.KnownPlatforms))}
	for _, p := range domain.KnownPlatforms {
		status := ConnectionStatus{Platform: p}
		if p == domain.PlatformWorkday {
			status.Connected = true
			status.Mocked = true
		} else if c, ok := byPlatform[p]; ok {
			status.Connected = true
			status.Expired = c.Expired(now)
			connectedAt := c.CreatedAt
			status.ConnectedAt = &connectedAt
		}
		out.Connections = append(out.Connections, status)
	}
	return out, nil
}

// Disconnect removes a platform grant.
func (s *Service) Disconnect(ctx context.Context, userID int64, platform string) error {
	if !domain.IsKnownPlatform(platform) {
		return apperrors.NewValidationError("platform", fmt.Sprintf("unknown platform %q", platform))
	}
	if platform == domain.PlatformWorkday {
		return apperrors.NewValidationError("platform", "workday has no stored connection")
	}

	if err := s.connections.Delete(ctx, userID, platform); err != nil {
		return err
	}

	s.log.Info("platform disconnected",
		zap.Int64("user_id", userID), zap.String("platform", platform))
	return nil
}

// accessToken resolves the token an export runs with. Workday exports
// need none; expired grants must be reconnected first.
func (s *Service) accessToken(ctx context.Context, userID int64, platformName string) (string, error) {
	if platformName == domain.PlatformWorkday {
		return "", nil
	}

	conn, err := s.connections.Get(ctx, userID, platformName)
	if err != nil {
		return "", err
	}
	if conn.Expired(s.now().UTC()) {
		return "", apperrors.NewUnauthorizedError(
			fmt.Sprintf("the %s connection has expired; reconnect the platform", platformName))
	}
	return conn.AccessToken, nil
}

// Standard PM board columns pushed alongside the primary task column.
var exportColumns = []string{"Status", "Owner", "Due Date", "Priority", "Progress", "Budget", "Notes"}

// Default phase breakdown exported when the client sends no rows.
var starterRows = []string{"Initiation", "Planning", "Execution", "Monitoring & Control", "Closure"}

func buildPayload(t *template.Template, rows []ExportRow) domain.ExportPayload {
	payload := domain.ExportPayload{
		Name:    t.Name,
		Columns: exportColumns,
	}

	if len(rows) == 0 {
		for _, name := range starterRows {
			payload.Rows = append(payload.Rows, domain.ExportRow{
				Name:   name,
				Values: []string{"Not Started"},
			})
		}
		return payload
	}

	for _, r := range rows {
		payload.Rows = append(payload.Rows, domain.ExportRow{Name: r.Name, Values: r.Values})
	}
	return payload
}

// Export pushes a template to a connected platform.
func (s *Service) Export(ctx context.Context, in ExportRequest) (*ExportResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.NewValidationError("", err.Error())
	}
	if !domain.IsKnownPlatform(in.Platform) {
		return nil, apperrors.NewValidationError("platform", fmt.Sprintf("unknown platform %q", in.Platform))
	}

	exporter, ok := s.exporters.For(in.Platform)
	if !ok {
		return nil, apperrors.NewValidationError("platform",
			fmt.Sprintf("%s exports are not available on this deployment", in.Platform))
	}

	t, err := s.templates.GetByID(ctx, in.TemplateID)
	if err != nil {
		return nil, err
	}

	token, err := s.accessToken(ctx, in.UserID, in.Platform)
	if err != nil {
		return nil, err
	}

	result, err := exporter.Export(ctx, token, buildPayload(t, in.Rows))
	if err != nil {
		s.log.Error("platform export failed",
			zap.Int64("user_id", in.UserID),
			zap.String("platform", in.Platform),
			zap.Int64("template_id", in.TemplateID),
			zap.Error(err))
		var notFound *apperrors.NotFoundError
		if errors.As(err, &notFound) {
			return nil, err
		}
		return nil, apperrors.NewInternalError(fmt.Sprintf("%s export failed", in.Platform), err)
	}

	s.log.Info("template exported",
		zap.Int64("user_id", in.UserID),
		zap.String("platform", in.Platform),
		zap.Int64("template_id", in.TemplateID),
		zap.Int("items_created", result.ItemsCreated))

	return &ExportResponse{Result: result}, nil
}

// Test verifies a platform connection is present and not expired.
func (s *Service) Test(ctx context.Context, userID int64, platformName string) (*TestResponse, error) {
	if !domain.IsKnownPlatform(platformName) {
		return nil, apperrors.NewValidationError("platform", fmt.Sprintf("unknown platform %q", platformName))
	}

	if platformName == domain.PlatformWorkday {
		return &TestResponse{
			Platform: platformName,
			OK:       true,
			Mocked:   true,
			Message:  "workday integration runs against the sandbox tenant",
		}, nil
	}

	conn, err := s.connections.Get(ctx, userID, platformName)
	if err != nil {
		var notFound *apperrors.NotFoundError
		if errors.As(err, &notFound) {
			return &TestResponse{Platform: platformName, OK: false, Message: "not connected"}, nil
		}
		return nil, err
	}
	if conn.Expired(s.now().UTC()) {
		return &TestResponse{Platform: platformName, OK: false, Message: "connection expired; reconnect the platform"}, nil
	}

	return &TestResponse{Platform: platformName, OK: true}, nil
}
