package memory

import (
	"context"
	"fmt"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
)

// UserRepository is an in-memory repository.UserRepository.
type UserRepository struct {
	t *table[models.User]
}

// NewUserRepository creates an empty user store.
func NewUserRepository() *UserRepository {
	return &UserRepository{t: newTable[models.User]()}
}

func (r *UserRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	c := *user
	ts := now()
	c.CreatedAt, c.UpdatedAt, c.IsActive = ts, ts, true
	r.t.insert(&c, func(u *models.User, id int64) { u.ID = id })
	out := c
	return &out, nil
}

func (r *UserRepository) GetByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	var found *models.User
	r.t.each(func(u *models.User) {
		if found == nil && u.TelegramID == telegramID {
			c := *u
			found = &c
		}
	})
	return found, nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	u, ok := r.t.rows[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *UserRepository) Update(_ context.Context, user *models.User) (*models.User, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if _, ok := r.t.rows[user.ID]; !ok {
		return nil, fmt.Errorf("user %d: %w", user.ID, repository.ErrNotFound)
	}
	c := *user
	c.UpdatedAt = now()
	r.t.rows[user.ID] = &c
	out := c
	return &out, nil
}

// HouseholdRepository is an in-memory repository.HouseholdRepository.
type HouseholdRepository struct {
	t       *table[models.Household]
	users   *UserRepository
	members map[int64][]int64
}

// NewHouseholdRepository creates an empty household store. Members are
// resolved through users.
func NewHouseholdRepository(users *UserRepository) *HouseholdRepository {
	return &HouseholdRepository{t: newTable[models.Household](), users: users, members: map[int64][]int64{}}
}

func (r *HouseholdRepository) Create(_ context.Context, h *models.Household) (*models.Household, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	c := *h
	ts := now()
	c.CreatedAt, c.UpdatedAt = ts, ts
	r.t.insert(&c, func(h *models.Household, id int64) { h.ID = id })
	out := c
	return &out, nil
}

func (r *HouseholdRepository) GetByChatID(_ context.Context, chatID int64) (*models.Household, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	var found *models.Household
	r.t.each(func(h *models.Household) {
		if found == nil && h.ChatID == chatID {
			c := *h
			found = &c
		}
	})
	return found, nil
}

func (r *HouseholdRepository) GetByID(_ context.Context, id int64) (*models.Household, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()
	h, ok := r.t.rows[id]
	if !ok {
		return nil, nil
	}
	c := *h
	return &c, nil
}

func (r *HouseholdRepository) AddMember(_ context.Context, householdID, userID int64, _ string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	for _, id := range r.members[householdID] {
		if id == userID {
			return nil
		}
	}
	r.members[householdID] = append(r.members[householdID], userID)
	return nil
}

func (r *HouseholdRepository) GetMembers(ctx context.Context, householdID int64) ([]*models.User, error) {
	r.t.mu.RLock()
	ids := append([]int64(nil), r.members[householdID]...)
	r.t.mu.RUnlock()

	var out []*models.User
	for _, id := range ids {
		u, err := r.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u != nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *HouseholdRepository) Update(_ context.Context, h *models.Household) (*models.Household, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if _, ok := r.t.rows[h.ID]; !ok {
		return nil, fmt.Errorf("household %d: %w", h.ID, repository.ErrNotFound)
	}
	c := *h
	c.UpdatedAt = now()
	r.t.rows[h.ID] = &c
	out := c
	return &out, nil
}
