package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmblueprints/internal/domain/user"
)

func TestPlanFor(t *testing.T) {
	professional, ok := PlanFor(user.TierProfessional)
	require.True(t, ok)
	assert.Equal(t, int64(5000), professional.Price)
	assert.Equal(t, "usd", professional.Currency)
	assert.Equal(t, "month", professional.Interval)

	free, ok := PlanFor(user.TierFree)
	require.True(t, ok)
	assert.Zero(t, free.Price)

	enterprise, ok := PlanFor(user.TierEnterprise)
	require.True(t, ok)
	assert.Equal(t, int64(15000), enterprise.Price)

	_, ok = PlanFor("platinum")
	assert.False(t, ok)
}
