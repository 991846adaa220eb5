// Package memory is an in-process implementation of the reservation-service repositories.
// A single mutex guards every table, so each call is atomic the way a transaction is.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"smartcharge/backend/services/reservation-service/internal/models"
	"smartcharge/backend/services/reservation-service/internal/repository"
)

// Store holds all tables.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	users        map[int64]*models.User
	userBadges   map[int64][]int64
	badges       map[int64]models.Badge
	stations     map[int64]*models.Station
	campaigns    map[int64]*models.Campaign
	reservations map[int64]*models.Reservation

	nextUser, nextBadge, nextStation, nextCampaign, nextReservation int64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		now:          func() time.Time { return time.Now().UTC() },
		users:        make(map[int64]*models.User),
		userBadges:   make(map[int64][]int64),
		badges:       make(map[int64]models.Badge),
		stations:     make(map[int64]*models.Station),
		campaigns:    make(map[int64]*models.Campaign),
		reservations: make(map[int64]*models.Reservation),
	}
}

// SetClock replaces the timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// AddUser inserts u. A zero ID is assigned from the sequence.
func (s *Store) AddUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = nextID(&s.nextUser, u.ID)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	u.Badges = nil
	s.users[u.ID] = &u
	return u
}

// AddBadge inserts b.
func (s *Store) AddBadge(b models.Badge) models.Badge {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = nextID(&s.nextBadge, b.ID)
	s.badges[b.ID] = b
	return b
}

// GrantBadge gives a badge to a user.
func (s *Store) GrantBadge(userID, badgeID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.userBadges[userID] {
		if id == badgeID {
			return
		}
	}
	s.userBadges[userID] = append(s.userBadges[userID], badgeID)
}

// AddStation inserts st.
func (s *Store) AddStation(st models.Station) models.Station {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.ID = nextID(&s.nextStation, st.ID)
	now := s.now()
	if st.CreatedAt.IsZero() {
		st.CreatedAt = now
	}
	st.UpdatedAt = now
	s.stations[st.ID] = &st
	return st
}

// AddCampaign inserts c.
func (s *Store) AddCampaign(c models.Campaign) models.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = nextID(&s.nextCampaign, c.ID)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	s.campaigns[c.ID] = cloneCampaign(&c)
	return c
}

func nextID(seq *int64, requested int64) int64 {
	if requested > 0 {
		if requested > *seq {
			*seq = requested
		}
		return requested
	}
	*seq++
	return *seq
}

func cloneCampaign(c *models.Campaign) *models.Campaign {
	out := *c
	if c.StationID != nil {
		id := *c.StationID
		out.StationID = &id
	}
	if c.EndDate != nil {
		t := *c.EndDate
		out.EndDate = &t
	}
	out.TargetBadgeIDs = append([]int64(nil), c.TargetBadgeIDs...)
	return &out
}

// userLocked returns a copy of the user with badges. Caller holds mu.
func (s *Store) userLocked(id int64) (*models.User, bool) {
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	out := *u
	out.Badges = make([]models.Badge, 0, len(s.userBadges[id]))
	for _, badgeID := range s.userBadges[id] {
		if b, ok := s.badges[badgeID]; ok {
			out.Badges = append(out.Badges, b)
		}
	}
	sort.Slice(out.Badges, func(i, j int) bool { return out.Badges[i].ID < out.Badges[j].ID })
	return &out, true
}

func (s *Store) creditLocked(userID int64, credit models.LedgerCredit) (*models.LedgerSnapshot, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u.Coins += credit.Coins
	u.XP += credit.XP
	u.CO2Saved += credit.CO2Saved
	return &models.LedgerSnapshot{ID: u.ID, Coins: u.Coins, CO2Saved: u.CO2Saved, XP: u.XP}, nil
}

// Stations returns the stations table view.
func (s *Store) Stations() *StationRepository { return &StationRepository{s: s} }

// Reservations returns the reservations table view.
func (s *Store) Reservations() *ReservationRepository { return &ReservationRepository{s: s} }

// Campaigns returns the campaigns table view.
func (s *Store) Campaigns() *CampaignRepository { return &CampaignRepository{s: s} }

// Users returns the users table view.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Badges returns the badge catalogue view.
func (s *Store) Badges() *BadgeRepository { return &BadgeRepository{s: s} }

// StationRepository mirrors repository.StationRepository.
type StationRepository struct{ s *Store }

func (r *StationRepository) List(_ context.Context) ([]models.Station, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Station, 0, len(r.s.stations))
	for _, st := range r.s.stations {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *StationRepository) GetByID(_ context.Context, id int64) (*models.Station, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stations[id]
	if !ok {
		return nil, repository.ErrStationNotFound
	}
	out := *st
	return &out, nil
}

func (r *StationRepository) Create(_ context.Context, st *models.Station) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st.ID = nextID(&r.s.nextStation, 0)
	st.CreatedAt = r.s.now()
	st.UpdatedAt = st.CreatedAt
	row := *st
	r.s.stations[st.ID] = &row
	return nil
}

func (r *StationRepository) Update(_ context.Context, st *models.Station) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.stations[st.ID]
	if !ok {
		return repository.ErrStationNotFound
	}
	if existing.OwnerID != st.OwnerID {
		return repository.ErrForbidden
	}
	st.CreatedAt = existing.CreatedAt
	st.UpdatedAt = r.s.now()
	row := *st
	r.s.stations[st.ID] = &row
	return nil
}

func (r *StationRepository) Delete(_ context.Context, id, ownerID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.stations[id]
	if !ok {
		return repository.ErrStationNotFound
	}
	if existing.OwnerID != ownerID {
		return repository.ErrForbidden
	}
	for _, res := range r.s.reservations {
		if res.StationID == id {
			return repository.ErrConflict
		}
	}
	for cid, c := range r.s.campaigns {
		if c.StationID != nil && *c.StationID == id {
			delete(r.s.campaigns, cid)
		}
	}
	delete(r.s.stations, id)
	return nil
}

// ReservationRepository mirrors repository.ReservationRepository.
type ReservationRepository struct{ s *Store }

func (r *ReservationRepository) CreateWithCredit(_ context.Context, res *models.Reservation, credit models.LedgerCredit) (*models.LedgerSnapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[res.UserID]; !ok {
		return nil, repository.ErrUserNotFound
	}
	if _, ok := r.s.stations[res.StationID]; !ok {
		return nil, repository.ErrStationNotFound
	}
	res.ID = nextID(&r.s.nextReservation, 0)
	res.CreatedAt = r.s.now()
	res.UpdatedAt = res.CreatedAt
	row := *res
	r.s.reservations[res.ID] = &row
	return r.s.creditLocked(res.UserID, credit)
}

func (r *ReservationRepository) Transition(_ context.Context, id int64, decide repository.DecideFunc) (*repository.TransitionResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	decision, err := decide(*row)
	if err != nil {
		return nil, err
	}
	if !decision.Apply {
		out := *row
		return &repository.TransitionResult{Reservation: &out}, nil
	}

	var ledger *models.LedgerSnapshot
	if !decision.Credit.IsZero() {
		ledger, err = r.s.creditLocked(row.UserID, decision.Credit)
		if err != nil {
			return nil, err
		}
	}
	row.Status = decision.To
	row.UpdatedAt = r.s.now()
	out := *row
	return &repository.TransitionResult{Reservation: &out, Ledger: ledger, Applied: true}, nil
}

func (r *ReservationRepository) GetByID(_ context.Context, id int64) (*models.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	out := *row
	return &out, nil
}

func (r *ReservationRepository) ListByUser(_ context.Context, userID int64) ([]models.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Reservation, 0)
	for _, row := range r.s.reservations {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// CampaignRepository mirrors repository.CampaignRepository.
type CampaignRepository struct{ s *Store }

func (r *CampaignRepository) ListActive(_ context.Context) ([]models.Campaign, error) {
	return r.list(func(c *models.Campaign) bool { return c.Status == models.CampaignActive }), nil
}

func (r *CampaignRepository) ListByOwner(_ context.Context, ownerID int64) ([]models.Campaign, error) {
	return r.list(func(c *models.Campaign) bool { return c.OwnerID == ownerID }), nil
}

func (r *CampaignRepository) list(keep func(*models.Campaign) bool) []models.Campaign {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Campaign, 0)
	for _, c := range r.s.campaigns {
		if keep(c) {
			out = append(out, *cloneCampaign(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *CampaignRepository) GetByID(_ context.Context, id int64) (*models.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[id]
	if !ok {
		return nil, repository.ErrCampaignNotFound
	}
	return cloneCampaign(c), nil
}

func (r *CampaignRepository) Create(_ context.Context, c *models.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.checkRefsLocked(c); err != nil {
		return err
	}
	c.ID = nextID(&r.s.nextCampaign, 0)
	c.CreatedAt = r.s.now()
	r.s.campaigns[c.ID] = cloneCampaign(c)
	return nil
}

func (r *CampaignRepository) Update(_ context.Context, c *models.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.campaigns[c.ID]
	if !ok {
		return repository.ErrCampaignNotFound
	}
	if existing.OwnerID != c.OwnerID {
		return repository.ErrForbidden
	}
	if err := r.checkRefsLocked(c); err != nil {
		return err
	}
	c.CreatedAt = existing.CreatedAt
	r.s.campaigns[c.ID] = cloneCampaign(c)
	return nil
}

func (r *CampaignRepository) Delete(_ context.Context, id, ownerID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.campaigns[id]
	if !ok {
		return repository.ErrCampaignNotFound
	}
	if existing.OwnerID != ownerID {
		return repository.ErrForbidden
	}
	delete(r.s.campaigns, id)
	return nil
}

func (r *CampaignRepository) checkRefsLocked(c *models.Campaign) error {
	if c.StationID != nil {
		if _, ok := r.s.stations[*c.StationID]; !ok {
			return repository.ErrStationNotFound
		}
	}
	for _, badgeID := range c.TargetBadgeIDs {
		if _, ok := r.s.badges[badgeID]; !ok {
			return repository.ErrBadgeNotFound
		}
	}
	return nil
}

// UserRepository mirrors repository.UserRepository.
type UserRepository struct{ s *Store }

func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.userLocked(id)
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, id int64, name, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	for otherID, other := range r.s.users {
		if otherID != id && strings.EqualFold(other.Email, email) {
			return nil, repository.ErrEmailTaken
		}
	}
	row.Name = name
	row.Email = email
	u, _ := r.s.userLocked(id)
	return u, nil
}

func (r *UserRepository) Leaderboard(_ context.Context, limit int) ([]models.LeaderboardEntry, error) {
	r.s.mu.Lock()
	users := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, *u)
	}
	r.s.mu.Unlock()

	sort.Slice(users, func(i, j int) bool {
		if users[i].XP != users[j].XP {
			return users[i].XP > users[j].XP
		}
		if users[i].Coins != users[j].Coins {
			return users[i].Coins > users[j].Coins
		}
		return users[i].ID < users[j].ID
	})
	if limit < len(users) {
		users = users[:limit]
	}
	entries := make([]models.LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, models.LeaderboardEntry{
			Rank:     i + 1,
			UserID:   u.ID,
			Name:     u.Name,
			XP:       u.XP,
			Coins:    u.Coins,
			CO2Saved: u.CO2Saved,
		})
	}
	return entries, nil
}

// BadgeRepository mirrors repository.BadgeRepository.
type BadgeRepository struct{ s *Store }

func (r *BadgeRepository) List(_ context.Context) ([]models.Badge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Badge, 0, len(r.s.badges))
	for _, b := range r.s.badges {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
