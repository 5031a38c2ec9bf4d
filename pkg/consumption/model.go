package consumption

import (
	"time"

	"github.com/ja7ad/joulewatch/pkg/types"
)

// Config holds accumulator settings.
// Units:
//   - Interval: length of one sampling window (perf -I)
//   - Alpha: EMA smoothing factor for the per-window power [0..1]
type Config struct {
	Interval time.Duration
	Alpha    float64
}

// _defaultConfig returns a Config matching perf's default 1000 ms interval.
func _defaultConfig() *Config {
	return &Config{
		Interval: time.Second,
		Alpha:    0.5,
	}
}

// Result is an averaged view over all applied samples.
type Result struct {
	EnergyJ types.Joules // mean joules per window
	PowerW  float64      // mean watts
}

// Comparison pairs an energy threshold with something that needs about that much energy.
type Comparison struct {
	Threshold   types.Joules `yaml:"threshold"`
	Symbol      string       `yaml:"symbol"`
	Description string       `yaml:"description"`
}

// _defaultComparisons is sorted ascending by threshold.
var _defaultComparisons = []Comparison{
	{180, "🎧", "play an MP3 song"},
	{448, "🪅", "crack a piñata"},
	{5_100, "💡", "power an LED for 10 minutes"},
	{29_000, "📱", "charge a phone"},
	{67_500, "🍞", "toast a toast"},
	{82_500, "🫖", "brew a cup of coffee"},
	{108_000, "📺", "run a TV for 1 hour"},
	{110_000, "🎢", "ride a roller coaster"},
	{143_000, "📧", "send an email"},
	{180_000, "💻", "run a laptop for 1 hour"},
	{360_000, "🎮", "play video games for 1 hour"},
	{564_000, "🫖", "brew a cup of tea"},
	{1_250_000, "🧱", "break through a brick"},
	{3_400_000, "🍕", "bake a pizza"},
	{5_400_000, "🎂", "bake a cake"},
	{10_800_000, "🍪", "bake cookies"},
	{248_000_000, "🏠", "power an average house for 1 day"},
	{1.4e31, "🌅", "Run the sun for 1 hour"},
}
