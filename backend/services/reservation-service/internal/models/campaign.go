package models

import "time"

// CampaignStatus enumerates campaign states.
type CampaignStatus string

const (
	CampaignActive CampaignStatus = "ACTIVE"
	CampaignDraft  CampaignStatus = "DRAFT"
	CampaignEnded  CampaignStatus = "ENDED"
)

// Valid reports whether s is a known campaign status.
func (s CampaignStatus) Valid() bool {
	return s == CampaignActive || s == CampaignDraft || s == CampaignEnded
}

// Campaign is an operator-defined bonus rule. A nil StationID applies to every station and a
// nil EndDate never expires. TargetBadgeIDs only narrows personalized recommendations.
type Campaign struct {
	ID             int64          `db:"id" json:"id"`
	OwnerID        int64          `db:"owner_id" json:"ownerId"`
	Title          string         `db:"title" json:"title"`
	Discount       string         `db:"discount" json:"discount"`
	Status         CampaignStatus `db:"status" json:"status"`
	StationID      *int64         `db:"station_id" json:"stationId"`
	EndDate        *time.Time     `db:"end_date" json:"endDate"`
	CoinReward     int64          `db:"coin_reward" json:"coinReward"`
	TargetBadgeIDs []int64        `json:"targetBadgeIds"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
}
