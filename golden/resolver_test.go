package golden

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pfas/domain"
)

func TestSourcesForConfigOverrideWins(t *testing.T) {
	r := &TruthResolver{db: nil} // config override short-circuits before touching the store.
	cfg := &domain.ReconciliationConfig{
		SourceOverrides: map[string][]string{"units:MF_EQUITY": {"CAMS_CAS"}},
	}
	sources, err := r.SourcesFor(context.Background(), "user-1", "units", domain.AssetMFEquity, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"CAMS_CAS"}, sources)
}

func TestShouldSchedule(t *testing.T) {
	assert.True(t, ShouldSchedule(domain.ReconciliationConfig{Mode: domain.ReconScheduled, Frequency: "0 2 * * *"}))
	assert.False(t, ShouldSchedule(domain.ReconciliationConfig{Mode: domain.ReconScheduled, Frequency: ""}))
	assert.False(t, ShouldSchedule(domain.ReconciliationConfig{Mode: domain.ReconManual, Frequency: "0 2 * * *"}))
}
