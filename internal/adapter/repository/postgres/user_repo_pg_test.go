package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"pmblueprints/internal/domain/user"
	apperrors "pmblueprints/pkg/errors"
)

func setupUserRepo(t *testing.T) *UserRepoPG {
	return NewUserRepoPG(setupTestDB(t), zaptest.NewLogger(t))
}

func seedUser(t *testing.T, repo *UserRepoPG, u *user.User) int64 {
	t.Helper()
	id, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	return id
}

// ==================== CREATE TESTS ====================

func TestUserRepo_Create_StampsDefaults(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	u := &user.User{Email: "ada@example.com", PasswordHash: "hash", Tier: user.TierFree, SubscriptionStatus: user.StatusActive}
	id, err := repo.Create(ctx, u)

	assert.NoError(t, err)
	assert.NotZero(t, id)
	assert.False(t, u.CreatedAt.IsZero())
	assert.Equal(t, u.CreatedAt, u.LastUsageReset)

	got, err := repo.GetByID(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, user.TierFree, got.Tier)
}

func TestUserRepo_Create_DuplicateEmailRejected(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	seedUser(t, repo, &user.User{Email: "ada@example.com", Tier: user.TierFree, SubscriptionStatus: user.StatusActive})

	_, err := repo.Create(ctx, &user.User{Email: "ada@example.com", Tier: user.TierFree, SubscriptionStatus: user.StatusActive})

	assert.Error(t, err)
}

func TestUserRepo_Create_NilRejected(t *testing.T) {
	repo := setupUserRepo(t)

	_, err := repo.Create(context.Background(), nil)

	assert.Error(t, err)
}

// ==================== LOOKUP TESTS ====================

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	repo := setupUserRepo(t)

	got, err := repo.GetByID(context.Background(), 999)

	assert.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 404, apperrors.StatusOf(err))
}

func TestUserRepo_GetByEmail_MissingReturnsNil(t *testing.T) {
	repo := setupUserRepo(t)

	got, err := repo.GetByEmail(context.Background(), "nobody@example.com")

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepo_GetByEmail_Found(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	id := seedUser(t, repo, &user.User{Email: "grace@example.com", Tier: user.TierFree, SubscriptionStatus: user.StatusActive})

	got, err := repo.GetByEmail(ctx, "grace@example.com")

	assert.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
}

func TestUserRepo_GetByOAuth(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	id := seedUser(t, repo, &user.User{
		Email: "oauth@example.com", Tier: user.TierFree, SubscriptionStatus: user.StatusActive,
		OAuthProvider: "google", OAuthID: "goog-123",
	})

	got, err := repo.GetByOAuth(ctx, "google", "goog-123")
	assert.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)

	missing, err := repo.GetByOAuth(ctx, "google", "goog-999")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepo_GetByResetToken(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	expires := time.Now().UTC().Add(time.Hour)
	id := seedUser(t, repo, &user.User{
		Email: "reset@example.com", Tier: user.TierFree, SubscriptionStatus: user.StatusActive,
		ResetToken: "tok-abc", ResetTokenExpires: &expires,
	})

	got, err := repo.GetByResetToken(ctx, "tok-abc")
	assert.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
}

func TestUserRepo_GetByResetToken_UnknownIsNotFound(t *testing.T) {
	repo := setupUserRepo(t)

	got, err := repo.GetByResetToken(context.Background(), "tok-expired")

	assert.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 404, apperrors.StatusOf(err))
}

func TestUserRepo_GetByStripeCustomerID(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	id := seedUser(t, repo, &user.User{
		Email: "payer@example.com", Tier: user.TierProfessional, SubscriptionStatus: user.StatusActive,
		StripeCustomerID: "cus_123",
	})

	got, err := repo.GetByStripeCustomerID(ctx, "cus_123")
	assert.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)

	missing, err := repo.GetByStripeCustomerID(ctx, "cus_unknown")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

// ==================== UPDATE TESTS ====================

func TestUserRepo_Update_PersistsFullRow(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	id := seedUser(t, repo, &user.User{Email: "ada@example.com", Tier: user.TierFree, SubscriptionStatus: user.StatusActive})

	u, err := repo.GetByID(ctx, id)
	require.NoError(t, err)

	u.Tier = user.TierEnterprise
	u.DownloadsUsed = 12
	u.OpenAIAPIKey = "sk-own-key-000000000000000"
	assert.NoError(t, repo.Update(ctx, u))

	got, err := repo.GetByID(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, user.TierEnterprise, got.Tier)
	assert.Equal(t, 12, got.DownloadsUsed)
	assert.True(t, got.HasOpenAIKey())
}
