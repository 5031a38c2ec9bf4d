package types

import "fmt"

// Joules is a float64 wrapper representing an amount of energy in joules.
type Joules float64

// Humanized returns a human-readable string with automatic unit (J, kJ, MJ, GJ, TJ).
func (j Joules) Humanized() string {
	v := float64(j)
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2f TJ", v/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2f GJ", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2f MJ", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2f kJ", v/1e3)
	default:
		return fmt.Sprintf("%.2f J", v)
	}
}

// WattHours returns the energy expressed in watt-hours.
func (j Joules) WattHours() float64 { return float64(j) / 3600 }

// KWh returns the energy expressed in kilowatt-hours.
func (j Joules) KWh() float64 { return float64(j) / 3.6e6 }

// Sample is the energy one event used during one sampling window.
type Sample struct {
	Event  string
	Energy Joules
}
