package pricing

import (
	"fmt"
	"time"

	"smartcharge/backend/services/reservation-service/internal/models"
)

// SlotsPerWindow is the length of the rolling booking window in hours.
const SlotsPerWindow = 24

// Slot status labels used by the fixed-band strategy.
const (
	SlotStatusGreen = "green"
	SlotStatusRed   = "red"
)

// Classification is what a GreenPolicy decides for one slot.
type Classification struct {
	IsGreen bool
	Price   float64
	Status  string
}

// GreenPolicy decides whether a slot is off-peak and what it costs.
type GreenPolicy interface {
	Name() string
	Classify(hour, load int, basePrice float64) Classification
}

// RollingLoadGreenPolicy marks a slot green when its load is under Threshold and prices it with
// the density multiplier.
type RollingLoadGreenPolicy struct {
	Threshold int
}

// NewRollingLoadGreenPolicy returns the policy with the product threshold of 40%.
func NewRollingLoadGreenPolicy() RollingLoadGreenPolicy {
	return RollingLoadGreenPolicy{Threshold: 40}
}

func (p RollingLoadGreenPolicy) Name() string { return "rolling-load" }

func (p RollingLoadGreenPolicy) Classify(_, load int, basePrice float64) Classification {
	return Classification{
		IsGreen: load < p.Threshold,
		Price:   Round2(basePrice * Multiplier(load)),
	}
}

// FixedBandGreenPolicy marks the night band (23:00 through 06:59) green regardless of load
// and discounts it by Discount.
type FixedBandGreenPolicy struct {
	Discount float64
}

// NewFixedBandGreenPolicy returns the policy with the flat 20% night discount.
func NewFixedBandGreenPolicy() FixedBandGreenPolicy {
	return FixedBandGreenPolicy{Discount: 0.2}
}

func (p FixedBandGreenPolicy) Name() string { return "fixed-band" }

func (p FixedBandGreenPolicy) Classify(hour, _ int, basePrice float64) Classification {
	if hour >= 23 || hour <= 6 {
		return Classification{IsGreen: true, Price: Round2(basePrice * (1 - p.Discount)), Status: SlotStatusGreen}
	}
	return Classification{IsGreen: false, Price: Round2(basePrice), Status: SlotStatusRed}
}

// Generator builds the rolling 24 hour slot window.
type Generator struct {
	estimator        LoadEstimator
	defaultBasePrice float64
	location         *time.Location
}

// NewGenerator returns a generator. A non-positive defaultBasePrice falls back to
// DefaultBasePrice and a nil location to UTC.
func NewGenerator(estimator LoadEstimator, defaultBasePrice float64, location *time.Location) *Generator {
	if defaultBasePrice <= 0 {
		defaultBasePrice = DefaultBasePrice
	}
	if location == nil {
		location = time.UTC
	}
	return &Generator{estimator: estimator, defaultBasePrice: defaultBasePrice, location: location}
}

// Generate returns SlotsPerWindow slots starting at the hour containing now. station may be nil,
// in which case the default base price is used. A non-nil campaign is shown on every slot and its
// bonus is included in the slot coins.
func (g *Generator) Generate(now time.Time, station *models.Station, policy GreenPolicy, campaign *models.Campaign) []models.TimeSlot {
	now = now.In(g.location)
	start := HourStart(now)
	base := g.defaultBasePrice
	if station != nil && station.Price > 0 {
		base = station.Price
	}

	var applied *models.AppliedCampaign
	var bonus int64
	if campaign != nil {
		applied = &models.AppliedCampaign{Title: campaign.Title, Discount: campaign.Discount}
		bonus = campaign.CoinReward
	}

	slots := make([]models.TimeSlot, 0, SlotsPerWindow)
	for i := 0; i < SlotsPerWindow; i++ {
		slotStart := start.Add(time.Duration(i) * time.Hour)
		hour := slotStart.Hour()
		load := g.estimator.EstimateLoad(station, slotStart, now)
		class := policy.Classify(hour, load, base)
		reward := RewardFor(class.IsGreen, load)

		slots = append(slots, models.TimeSlot{
			Hour:            hour,
			Label:           SlotLabel(hour),
			StartTime:       slotStart,
			IsGreen:         class.IsGreen,
			Load:            load,
			Price:           class.Price,
			Coins:           reward.Coins + bonus,
			XP:              reward.XP,
			Status:          class.Status,
			CampaignApplied: applied,
		})
	}
	return slots
}

// HourStart returns the top of the clock hour containing t, in t's location.
func HourStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// SlotLabel formats an hour as "HH:00 - HH:00".
func SlotLabel(hour int) string {
	return fmt.Sprintf("%02d:00 - %02d:00", hour, (hour+1)%24)
}
