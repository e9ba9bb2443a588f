// Package almconfig loads the read-only constants the IRRBB core needs:
// per-currency regulatory shock parameters, the post-shock floor
// envelope, the EVE bucket grid and the 19 EBA non-maturity-deposit
// buckets (spec.md §3–§4.3–§4.6). Following nhbchain's config/config.go,
// configuration is a typed struct decoded from TOML with toml.DecodeFile,
// falling back to the BCBS-368/EBA-GL-2022/14 compiled-in defaults rather
// than erroring when no override file is supplied (spec.md §9: "Global
// state: configuration is a read-only set of constants passed in or
// compiled in; any override is explicit per call").
package almconfig

import (
	"github.com/BurntSushi/toml"
)

// ShockParameters are the per-currency magnitudes (decimal, e.g. 0.02 for
// 200bps) driving the six regulatory shock templates (spec.md §4.3).
type ShockParameters struct {
	Parallel float64 `toml:"parallel"`
	Short    float64 `toml:"short"`
	Long     float64 `toml:"long"`
}

// FloorPoint is one node of the piecewise-linear post-shock floor
// envelope F(t).
type FloorPoint struct {
	Years float64 `toml:"years"`
	Floor float64 `toml:"floor"` // decimal, e.g. -0.015 for -150bps
}

// EVEBucketConfig mirrors the spec's EVEBucket: a name and a [start,end]
// range in years, inclusive of its end; EndYears == nil denotes the open
// tail bucket.
type EVEBucketConfig struct {
	Name       string   `toml:"name"`
	StartYears float64  `toml:"start_years"`
	EndYears   *float64 `toml:"end_years,omitempty"`
}

// NMDBucketConfig is one of the 19 EBA non-maturity-deposit buckets.
type NMDBucketConfig struct {
	ID            int     `toml:"id"`
	Label         string  `toml:"label"`
	MidpointYears float64 `toml:"midpoint_years"`
}

// Config is the full set of engine constants.
type Config struct {
	ShockParametersByCurrency map[string]ShockParameters `toml:"shock_parameters"`
	PostShockFloor            []FloorPoint               `toml:"post_shock_floor"`
	EVEBuckets                []EVEBucketConfig           `toml:"eve_buckets"`
	NMDBuckets                []NMDBucketConfig           `toml:"nmd_buckets"`
	// OpenEndedYears is the convention used to derive the representative
	// point of the open-ended EVE tail bucket: start + OpenEndedYears/2
	// (spec.md §9 Open Question: BCBS-368 25y convention for the 20y+
	// bucket, i.e. OpenEndedYears = 10).
	OpenEndedYears float64 `toml:"open_ended_years"`
	// ShortTau/LongTau are the decay constants (years) in the short-end
	// and long-end shock templates' s(t) = exp(-t/ShortTau) and
	// l(t) = 1 - exp(-t/LongTau) (spec.md §4.3).
	ShortTau float64 `toml:"short_tau"`
	LongTau  float64 `toml:"long_tau"`
}

// Load decodes a TOML file into Config, following nhbchain's
// toml.DecodeFile pattern. An empty path returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func floatPtr(v float64) *float64 { return &v }

// Default returns the compiled-in BCBS-368 / EBA-GL-2022/14 constants.
func Default() *Config {
	return &Config{
		ShockParametersByCurrency: map[string]ShockParameters{
			"EUR": {Parallel: 0.02, Short: 0.025, Long: 0.01},
			"USD": {Parallel: 0.02, Short: 0.03, Long: 0.015},
			"GBP": {Parallel: 0.025, Short: 0.03, Long: 0.015},
			"JPY": {Parallel: 0.01, Short: 0.015, Long: 0.0075},
		},
		PostShockFloor: []FloorPoint{
			{Years: 0, Floor: -0.015},
			{Years: 10, Floor: -0.012},
			{Years: 50, Floor: 0},
		},
		EVEBuckets:     defaultEVEBuckets(),
		NMDBuckets:     defaultNMDBuckets(),
		OpenEndedYears: 10,
		ShortTau:       4,
		LongTau:        4,
	}
}

func defaultEVEBuckets() []EVEBucketConfig {
	bounds := []struct {
		name       string
		start, end float64
	}{
		{"ON-1M", 0, 1.0 / 12},
		{"1M-3M", 1.0 / 12, 0.25},
		{"3M-6M", 0.25, 0.5},
		{"6M-9M", 0.5, 0.75},
		{"9M-1Y", 0.75, 1},
		{"1Y-1.5Y", 1, 1.5},
		{"1.5Y-2Y", 1.5, 2},
		{"2Y-3Y", 2, 3},
		{"3Y-4Y", 3, 4},
		{"4Y-5Y", 4, 5},
		{"5Y-6Y", 5, 6},
		{"6Y-7Y", 6, 7},
		{"7Y-8Y", 7, 8},
		{"8Y-9Y", 8, 9},
		{"9Y-10Y", 9, 10},
		{"10Y-15Y", 10, 15},
		{"15Y-20Y", 15, 20},
	}
	out := make([]EVEBucketConfig, 0, len(bounds)+1)
	for _, b := range bounds {
		out = append(out, EVEBucketConfig{Name: b.name, StartYears: b.start, EndYears: floatPtr(b.end)})
	}
	out = append(out, EVEBucketConfig{Name: "20Y+", StartYears: 20, EndYears: nil})
	return out
}

func defaultNMDBuckets() []NMDBucketConfig {
	bounds := []struct {
		label      string
		start, end float64
	}{
		{"ON", 0, 0},
		{">ON-1M", 1.0 / 365, 1.0 / 12},
		{">1M-3M", 1.0 / 12, 0.25},
		{">3M-6M", 0.25, 0.5},
		{">6M-9M", 0.5, 0.75},
		{">9M-1Y", 0.75, 1},
		{">1Y-1.5Y", 1, 1.5},
		{">1.5Y-2Y", 1.5, 2},
		{">2Y-3Y", 2, 3},
		{">3Y-4Y", 3, 4},
		{">4Y-5Y", 4, 5},
		{">5Y-6Y", 5, 6},
		{">6Y-7Y", 6, 7},
		{">7Y-8Y", 7, 8},
		{">8Y-9Y", 8, 9},
		{">9Y-10Y", 9, 10},
		{">10Y-15Y", 10, 15},
		{">15Y-20Y", 15, 20},
		{">20Y", 20, 25},
	}
	out := make([]NMDBucketConfig, 0, len(bounds))
	for i, b := range bounds {
		mid := (b.start + b.end) / 2
		if b.label == "ON" {
			mid = 0
		}
		out = append(out, NMDBucketConfig{ID: i + 1, Label: b.label, MidpointYears: mid})
	}
	return out
}

// FloorAt evaluates the piecewise-linear post-shock floor F(t), flat
// beyond the last configured point.
func (c *Config) FloorAt(t float64) float64 {
	pts := c.PostShockFloor
	if len(pts) == 0 {
		return 0
	}
	if t <= pts[0].Years {
		return pts[0].Floor
	}
	for i := 1; i < len(pts); i++ {
		if t <= pts[i].Years {
			x0, x1 := pts[i-1].Years, pts[i].Years
			y0, y1 := pts[i-1].Floor, pts[i].Floor
			frac := (t - x0) / (x1 - x0)
			return y0 + frac*(y1-y0)
		}
	}
	return pts[len(pts)-1].Floor
}

// ShockParametersFor returns the shock parameters for a currency and
// whether that currency is configured; for an unconfigured currency it
// returns the zero ShockParameters and false.
func (c *Config) ShockParametersFor(currency string) (ShockParameters, bool) {
	p, ok := c.ShockParametersByCurrency[currency]
	return p, ok
}
