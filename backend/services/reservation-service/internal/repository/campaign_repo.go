package repository

import (
	"context"
	"database/sql"
	"errors"

	libdb "smartcharge/backend/libs/db"
	"smartcharge/backend/services/reservation-service/internal/models"
)

// CampaignRepository handles the campaigns and campaign_badges tables.
type CampaignRepository struct {
	db *sql.DB
}

// NewCampaignRepository returns repository.
func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

const campaignColumns = `id, owner_id, title, discount, status, station_id, end_date, coin_reward, created_at`

func scanCampaign(row rowScanner) (*models.Campaign, error) {
	var (
		c         models.Campaign
		stationID sql.NullInt64
		endDate   sql.NullTime
	)
	if err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.Title,
		&c.Discount,
		&c.Status,
		&stationID,
		&endDate,
		&c.CoinReward,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	if stationID.Valid {
		id := stationID.Int64
		c.StationID = &id
	}
	if endDate.Valid {
		t := endDate.Time.UTC()
		c.EndDate = &t
	}
	return &c, nil
}

// ListActive returns every ACTIVE campaign, newest first, with target badges loaded.
// Expiry and station scope are left to the caller.
func (r *CampaignRepository) ListActive(ctx context.Context) ([]models.Campaign, error) {
	const query = `SELECT ` + campaignColumns + ` FROM campaigns WHERE status = $1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, models.CampaignActive)
}

// ListByOwner returns an operator's campaigns, newest first.
func (r *CampaignRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Campaign, error) {
	const query = `SELECT ` + campaignColumns + ` FROM campaigns WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, ownerID)
}

func (r *CampaignRepository) list(ctx context.Context, query string, args ...any) ([]models.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := make([]models.Campaign, 0)
	index := make(map[int64]int)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		index[c.ID] = len(campaigns)
		campaigns = append(campaigns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(campaigns) == 0 {
		return campaigns, nil
	}

	ids := make([]int64, 0, len(campaigns))
	for _, c := range campaigns {
		ids = append(ids, c.ID)
	}
	const badgeQuery = `SELECT campaign_id, badge_id FROM campaign_badges WHERE campaign_id = ANY($1) ORDER BY campaign_id, badge_id`
	brows, err := r.db.QueryContext(ctx, badgeQuery, ids)
	if err != nil {
		return nil, err
	}
	defer brows.Close()
	for brows.Next() {
		var campaignID, badgeID int64
		if err := brows.Scan(&campaignID, &badgeID); err != nil {
			return nil, err
		}
		if i, ok := index[campaignID]; ok {
			campaigns[i].TargetBadgeIDs = append(campaigns[i].TargetBadgeIDs, badgeID)
		}
	}
	if err := brows.Err(); err != nil {
		return nil, err
	}
	return campaigns, nil
}

// GetByID fetches a campaign with its target badges.
func (r *CampaignRepository) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	const query = `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`
	c, err := scanCampaign(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	const badgeQuery = `SELECT badge_id FROM campaign_badges WHERE campaign_id = $1 ORDER BY badge_id`
	rows, err := r.db.QueryContext(ctx, badgeQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var badgeID int64
		if err := rows.Scan(&badgeID); err != nil {
			return nil, err
		}
		c.TargetBadgeIDs = append(c.TargetBadgeIDs, badgeID)
	}
	return c, rows.Err()
}

// Create inserts a campaign and its target badges in one transaction.
func (r *CampaignRepository) Create(ctx context.Context, c *models.Campaign) error {
	const query = `
		INSERT INTO campaigns (owner_id, title, discount, status, station_id, end_date, coin_reward, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`
	return libdb.WithTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, query,
			c.OwnerID,
			c.Title,
			c.Discount,
			c.Status,
			nullableInt64(c.StationID),
			nullableTime(c.EndDate),
			c.CoinReward,
		).Scan(&c.ID, &c.CreatedAt)
		if err != nil {
			return campaignFKError(err)
		}
		return replaceCampaignBadgesTx(ctx, tx, c.ID, c.TargetBadgeIDs)
	})
}

// Update overwrites a campaign owned by c.OwnerID together with its target badges.
func (r *CampaignRepository) Update(ctx context.Context, c *models.Campaign) error {
	const query = `
		UPDATE campaigns
		SET title = $3,
		    discount = $4,
		    status = $5,
		    station_id = $6,
		    end_date = $7,
		    coin_reward = $8
		WHERE id = $1 AND owner_id = $2
		RETURNING created_at
	`
	err := libdb.WithTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, query,
			c.ID,
			c.OwnerID,
			c.Title,
			c.Discount,
			c.Status,
			nullableInt64(c.StationID),
			nullableTime(c.EndDate),
			c.CoinReward,
		).Scan(&c.CreatedAt)
		if err != nil {
			return campaignFKError(err)
		}
		return replaceCampaignBadgesTx(ctx, tx, c.ID, c.TargetBadgeIDs)
	})
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, c.ID); getErr != nil {
			return getErr
		}
		return ErrForbidden
	}
	return err
}

// Delete removes a campaign owned by ownerID.
func (r *CampaignRepository) Delete(ctx context.Context, id, ownerID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrForbidden
	}
	return nil
}

func replaceCampaignBadgesTx(ctx context.Context, tx *sql.Tx, campaignID int64, badgeIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM campaign_badges WHERE campaign_id = $1`, campaignID); err != nil {
		return err
	}
	for _, badgeID := range badgeIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO campaign_badges (campaign_id, badge_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			campaignID, badgeID,
		); err != nil {
			return campaignFKError(err)
		}
	}
	return nil
}
