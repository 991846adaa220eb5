package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"smartcharge/backend/services/reservation-service/internal/models"
)

// SelectCampaign returns the most recently created campaign that is ACTIVE, not past its end
// date and either global or bound to stationID. A nil stationID only matches global campaigns.
func SelectCampaign(campaigns []models.Campaign, stationID *int64, now time.Time) *models.Campaign {
	var best *models.Campaign
	for i := range campaigns {
		c := &campaigns[i]
		if !Applicable(c, stationID, now) {
			continue
		}
		if best == nil || c.CreatedAt.After(best.CreatedAt) || (c.CreatedAt.Equal(best.CreatedAt) && c.ID > best.ID) {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

// Applicable reports whether c can apply to a booking at stationID right now.
func Applicable(c *models.Campaign, stationID *int64, now time.Time) bool {
	if c.Status != models.CampaignActive {
		return false
	}
	if c.EndDate != nil && c.EndDate.Before(now) {
		return false
	}
	if c.StationID == nil {
		return true
	}
	return stationID != nil && *c.StationID == *stationID
}

// Eligible reports whether a user holding badges may see c as a recommendation. Campaigns
// without target badges are open to everyone.
func Eligible(c *models.Campaign, badges []models.Badge) bool {
	if len(c.TargetBadgeIDs) == 0 {
		return true
	}
	for _, target := range c.TargetBadgeIDs {
		for _, b := range badges {
			if b.ID == target {
				return true
			}
		}
	}
	return false
}

// CampaignInput is the editable part of a campaign.
type CampaignInput struct {
	Title          string
	Discount       string
	Status         string
	StationID      *int64
	EndDate        *time.Time
	CoinReward     int64
	TargetBadgeIDs []int64
}

// CampaignService manages operator campaigns and personalized recommendations.
type CampaignService struct {
	campaigns CampaignStore
	users     UserStore
	logger    *zap.Logger
	now       func() time.Time
}

// NewCampaignService builds CampaignService.
func NewCampaignService(campaigns CampaignStore, users UserStore, logger *zap.Logger) *CampaignService {
	return &CampaignService{
		campaigns: campaigns,
		users:     users,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source.
func (s *CampaignService) WithClock(now func() time.Time) *CampaignService {
	s.now = now
	return s
}

// ActiveFor returns the campaign that applies to a booking at stationID now, or nil.
func (s *CampaignService) ActiveFor(ctx context.Context, stationID *int64) (*models.Campaign, error) {
	campaigns, err := s.campaigns.ListActive(ctx)
	if err != nil {
		return nil, translate("campaign: active", err)
	}
	return SelectCampaign(campaigns, stationID, s.now()), nil
}

// ListOwned returns the operator's campaigns.
func (s *CampaignService) ListOwned(ctx context.Context, actor Actor) ([]models.Campaign, error) {
	if err := requireOperator(actor); err != nil {
		return nil, err
	}
	campaigns, err := s.campaigns.ListByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, translate("campaign: list", err)
	}
	return campaigns, nil
}

// Create adds a campaign owned by the operator.
func (s *CampaignService) Create(ctx context.Context, actor Actor, in CampaignInput) (*models.Campaign, error) {
	if err := requireOperator(actor); err != nil {
		return nil, err
	}
	c, err := buildCampaign(in)
	if err != nil {
		return nil, err
	}
	c.OwnerID = actor.UserID
	if err := s.campaigns.Create(ctx, c); err != nil {
		return nil, translate("campaign: create", err)
	}
	s.logger.Info("campaign created", zap.Int64("campaign_id", c.ID), zap.Int64("owner_id", c.OwnerID), zap.String("status", string(c.Status)))
	return c, nil
}

// Update replaces a campaign the operator owns.
func (s *CampaignService) Update(ctx context.Context, actor Actor, id int64, in CampaignInput) (*models.Campaign, error) {
	if err := requireOperator(actor); err != nil {
		return nil, err
	}
	c, err := buildCampaign(in)
	if err != nil {
		return nil, err
	}
	c.ID = id
	c.OwnerID = actor.UserID
	if err := s.campaigns.Update(ctx, c); err != nil {
		return nil, translate("campaign: update", err)
	}
	s.logger.Info("campaign updated", zap.Int64("campaign_id", c.ID), zap.String("status", string(c.Status)))
	return c, nil
}

// Delete removes a campaign the operator owns.
func (s *CampaignService) Delete(ctx context.Context, actor Actor, id int64) error {
	if err := requireOperator(actor); err != nil {
		return err
	}
	if err := s.campaigns.Delete(ctx, id, actor.UserID); err != nil {
		return translate("campaign: delete", err)
	}
	s.logger.Info("campaign deleted", zap.Int64("campaign_id", id))
	return nil
}

// Recommendations lists the active, unexpired campaigns a user is eligible for by badge.
func (s *CampaignService) Recommendations(ctx context.Context, userID int64) ([]models.Campaign, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, translate("campaign: recommendations", err)
	}
	campaigns, err := s.campaigns.ListActive(ctx)
	if err != nil {
		return nil, translate("campaign: recommendations", err)
	}
	now := s.now()
	out := make([]models.Campaign, 0, len(campaigns))
	for i := range campaigns {
		c := &campaigns[i]
		if c.Status != models.CampaignActive || (c.EndDate != nil && c.EndDate.Before(now)) {
			continue
		}
		if Eligible(c, user.Badges) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func buildCampaign(in CampaignInput) (*models.Campaign, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title", "is required")
	}
	status := models.CampaignStatus(strings.ToUpper(strings.TrimSpace(in.Status)))
	if status == "" {
		status = models.CampaignDraft
	}
	if !status.Valid() {
		return nil, invalid("status", "must be ACTIVE, DRAFT or ENDED")
	}
	if in.CoinReward < 0 {
		return nil, invalid("coinReward", "must not be negative")
	}
	if in.StationID != nil && *in.StationID <= 0 {
		return nil, invalid("stationId", "must be positive")
	}
	var endDate *time.Time
	if in.EndDate != nil {
		t := in.EndDate.UTC()
		endDate = &t
	}
	return &models.Campaign{
		Title:          title,
		Discount:       strings.TrimSpace(in.Discount),
		Status:         status,
		StationID:      in.StationID,
		EndDate:        endDate,
		CoinReward:     in.CoinReward,
		TargetBadgeIDs: dedupe(in.TargetBadgeIDs),
	}, nil
}

func dedupe(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
