package almconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHasEURShockParameters(t *testing.T) {
	cfg := Default()
	eur, ok := cfg.ShockParametersFor("EUR")
	require.True(t, ok, "EUR shock parameters must be configured")
	assert.InDelta(t, 0.02, eur.Parallel, 1e-12)
	assert.InDelta(t, 0.025, eur.Short, 1e-12)
	assert.InDelta(t, 0.01, eur.Long, 1e-12)
}

func TestFloorAtEndpoints(t *testing.T) {
	cfg := Default()
	assert.InDelta(t, -0.015, cfg.FloorAt(0), 1e-12)
	assert.InDelta(t, -0.012, cfg.FloorAt(10), 1e-12)
	assert.InDelta(t, 0.0, cfg.FloorAt(50), 1e-12)
	assert.InDelta(t, 0.0, cfg.FloorAt(80), 1e-12, "flat beyond last point")
}

func TestFloorAtInterpolates(t *testing.T) {
	cfg := Default()
	// Midway between (10, -0.012) and (50, 0): linear interpolation.
	got := cfg.FloorAt(30)
	want := -0.012 + (30.0-10.0)/(50.0-10.0)*(0-(-0.012))
	assert.InDelta(t, want, got, 1e-12)
}

func TestDefaultEVEBucketsOpenEndedTail(t *testing.T) {
	cfg := Default()
	last := cfg.EVEBuckets[len(cfg.EVEBuckets)-1]
	assert.Equal(t, "20Y+", last.Name)
	assert.Nil(t, last.EndYears)
	assert.InDelta(t, 10.0, cfg.OpenEndedYears, 1e-12)
}

func TestDefaultNMDBucketsCount(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.NMDBuckets, 19)
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().OpenEndedYears, cfg.OpenEndedYears)
}
