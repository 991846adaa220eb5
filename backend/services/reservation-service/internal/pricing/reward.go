package pricing

import "math"

// DefaultBasePrice is the slot price used when no station price is known.
const DefaultBasePrice = 5.0

// Reward is what a slot pays out on the preview and booking screens.
type Reward struct {
	Coins int64
	XP    int64
	CO2   float64
}

// RewardFor returns the reward for a slot. Load only matters through the green flag.
func RewardFor(isGreen bool, _ int) Reward {
	if isGreen {
		return Reward{Coins: 50, XP: 25, CO2: 1.2}
	}
	return Reward{Coins: 10, XP: 5, CO2: 0}
}

// Multiplier is the density-aware price factor. Out of range loads are not rejected.
func Multiplier(load int) float64 {
	switch {
	case load < 30:
		return 0.95
	case load > 70:
		return 1.15
	default:
		return 1.0
	}
}

// Round2 rounds half away from zero to two decimals. The value is first snapped to six
// decimals so products like 4.5*0.95 (stored as 4.27499...) round as the decimal 4.275.
func Round2(v float64) float64 {
	cents := math.Round(v*1e6) / 1e4
	return math.Round(cents) / 100
}
