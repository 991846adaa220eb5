package pricing

import (
	"math/rand/v2"
	"sync"
	"time"

	"smartcharge/backend/services/reservation-service/internal/models"
)

// LoadEstimator predicts the grid load percentage of a station for the slot starting at slotStart.
type LoadEstimator interface {
	EstimateLoad(station *models.Station, slotStart, now time.Time) int
}

// LoadBand returns the inclusive bounds the simulated load is drawn from for a clock hour.
func LoadBand(hour int) (lo, hi int) {
	switch {
	case hour >= 22 || hour < 6:
		return 0, 29
	case hour >= 17 && hour <= 20:
		return 60, 99
	default:
		return 20, 79
	}
}

// RandomLoadEstimator draws a uniform load inside the band of the slot hour.
type RandomLoadEstimator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomLoadEstimator seeds a PCG source. Equal seeds yield equal sequences.
func NewRandomLoadEstimator(seed1, seed2 uint64) *RandomLoadEstimator {
	return &RandomLoadEstimator{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// NewTimeSeededLoadEstimator seeds from the wall clock.
func NewTimeSeededLoadEstimator() *RandomLoadEstimator {
	now := uint64(time.Now().UnixNano())
	return NewRandomLoadEstimator(now, now>>1|1)
}

// EstimateLoad implements LoadEstimator.
func (e *RandomLoadEstimator) EstimateLoad(_ *models.Station, slotStart, _ time.Time) int {
	lo, hi := LoadBand(slotStart.Hour())
	e.mu.Lock()
	defer e.mu.Unlock()
	return lo + e.rng.IntN(hi-lo+1)
}

// DensityLoadEstimator trusts an operator-set station density for the current hour and defers
// to Fallback everywhere else.
type DensityLoadEstimator struct {
	Fallback LoadEstimator
}

// EstimateLoad implements LoadEstimator.
func (e DensityLoadEstimator) EstimateLoad(station *models.Station, slotStart, now time.Time) int {
	if station != nil && station.Density > 0 && slotStart.Equal(HourStart(now)) {
		return station.Density
	}
	return e.Fallback.EstimateLoad(station, slotStart, now)
}
