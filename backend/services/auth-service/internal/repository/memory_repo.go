package repository

import (
	"context"
	"sync"
	"time"

	"smartcharge/backend/services/auth-service/internal/models"
)

// MemoryUserRepository keeps users in process. It backs local demo runs.
type MemoryUserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]models.User
}

// NewMemoryUserRepository returns an empty repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{nextID: 1, users: make(map[string]models.User)}
}

// GetByEmail fetches a user by email, case-insensitively.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[normalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// GetOrCreate mirrors UserRepository.GetOrCreate.
func (r *MemoryUserRepository) GetOrCreate(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := normalizeEmail(user.Email)
	if existing, ok := r.users[key]; ok {
		return &existing, nil
	}
	created := models.User{
		ID:        r.nextID,
		Name:      user.Name,
		Email:     key,
		Role:      user.Role,
		CreatedAt: time.Now().UTC(),
	}
	r.nextID++
	r.users[key] = created
	return &created, nil
}

// demoUsers matches the reservation-service memory seed, in insertion order, so ids line up.
var demoUsers = []models.User{
	{Name: "Demo Driver", Email: "demo@smartcharge.app", Role: models.RoleDriver},
	{Name: "Demo Operator", Email: "operator@smartcharge.app", Role: models.RoleOperator},
	{Name: "Ayla Green", Email: "ayla@smartcharge.app", Role: models.RoleDriver, Coins: 620, XP: 1840, CO2Saved: 31.5},
	{Name: "Mert Volt", Email: "mert@smartcharge.app", Role: models.RoleDriver, Coins: 410, XP: 1210, CO2Saved: 18},
}

// SeedDemo inserts the demo users. Existing emails are left untouched.
func (r *MemoryUserRepository) SeedDemo() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range demoUsers {
		key := normalizeEmail(user.Email)
		if _, ok := r.users[key]; ok {
			continue
		}
		user.ID = r.nextID
		user.Email = key
		user.CreatedAt = time.Now().UTC()
		r.nextID++
		r.users[key] = user
	}
}
