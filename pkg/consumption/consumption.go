package consumption

import (
	"github.com/ja7ad/joulewatch/pkg/system/util"
	"github.com/ja7ad/joulewatch/pkg/types"
)

// Accumulator keeps the running energy total since program start.
type Accumulator struct {
	cfg        *Config
	energyCumJ types.Joules
	count      int
	power      *util.EMA
}

// New creates an accumulator with the given config.
// Fields > 0 (or valid ranges) in cfg override defaults.
// Notes:
//   - Interval must be > 0 to override the default.
//   - Alpha in [0..1] is accepted verbatim; anything else keeps the default.
func New(cfg *Config) *Accumulator {
	base := _defaultConfig()

	if cfg == nil {
		return &Accumulator{cfg: base, power: util.NewEMA(base.Alpha)}
	}

	merged := *base
	if cfg.Interval > 0 {
		merged.Interval = cfg.Interval
	}
	if cfg.Alpha >= 0 && cfg.Alpha <= 1 {
		merged.Alpha = cfg.Alpha
	}

	return &Accumulator{cfg: &merged, power: util.NewEMA(merged.Alpha)}
}

// Apply adds one window's energy to the running total and returns the new total.
func (a *Accumulator) Apply(sample types.Joules) types.Joules {
	a.energyCumJ += sample
	a.count++
	a.power.Next(util.SafeDiv(float64(sample), a.cfg.Interval.Seconds()))
	return a.energyCumJ
}

// EnergyCumJ returns cumulative energy in Joules.
func (a *Accumulator) EnergyCumJ() types.Joules { return a.energyCumJ }

// Count returns the number of applied samples.
func (a *Accumulator) Count() int { return a.count }

// SmoothedPowerW returns the EMA of per-window power in Watts.
func (a *Accumulator) SmoothedPowerW() float64 { return a.power.Value() }

// Averages returns mean energy per window and mean power over all applied samples.
func (a *Accumulator) Averages() Result {
	if a.count == 0 {
		return Result{}
	}
	n := float64(a.count)
	return Result{
		EnergyJ: types.Joules(float64(a.energyCumJ) / n),
		PowerW:  util.SafeDiv(float64(a.energyCumJ), n*a.cfg.Interval.Seconds()),
	}
}
