package models

import "time"

// AppliedCampaign is the campaign summary shown on a slot.
type AppliedCampaign struct {
	Title    string `json:"title"`
	Discount string `json:"discount"`
}

// TimeSlot is a computed, never persisted, hourly booking window.
type TimeSlot struct {
	Hour            int              `json:"hour"`
	Label           string           `json:"label"`
	StartTime       time.Time        `json:"startTime"`
	IsGreen         bool             `json:"isGreen"`
	Load            int              `json:"load"`
	Price           float64          `json:"price"`
	Coins           int64            `json:"coins"`
	XP              int64            `json:"xp"`
	Status          string           `json:"status,omitempty"`
	CampaignApplied *AppliedCampaign `json:"campaignApplied,omitempty"`
}

// StationSlots is a station flattened together with its slots.
type StationSlots struct {
	Station
	Slots []TimeSlot `json:"slots"`
}
