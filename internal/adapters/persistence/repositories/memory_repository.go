package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hostel-leave-api/internal/adapters/persistence/models"
)

// NewMemoryStore returns a process-local store for development and tests.
// Records are copied on the way in and out so callers never share state with the store.
func NewMemoryStore() *Store {
	return &Store{
		Users:  NewMemoryUserRepository(),
		Leaves: NewMemoryLeaveRepository(),
		Ping:   func(context.Context) error { return nil },
		Close:  func() error { return nil },
	}
}

// ============================================================
// Users
// ============================================================

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

// NewMemoryUserRepository creates an in-memory user repository
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[string]*models.User)}
}

func (r *memoryUserRepository) emailTaken(email, exceptID string) bool {
	for id, u := range r.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *memoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(user.Email, "") {
		return ErrDuplicate
	}
	user.EnsureID()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = user.Clone()
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u.Clone(), nil
}

func (r *memoryUserRepository) GetByIDs(_ context.Context, ids []string) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := []*models.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			users = append(users, u.Clone())
		}
	}
	return users, nil
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUserRepository) GetByResetToken(_ context.Context, tokenHash string, now time.Time) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == tokenHash &&
			u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now) {
			return u.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUserRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return ErrNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return ErrDuplicate
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = user.Clone()
	return nil
}

func (r *memoryUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.emailTaken(email, ""), nil
}

func (r *memoryUserRepository) CountByRole(_ context.Context, role string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, u := range r.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

func (r *memoryUserRepository) ClearExpiredResetTokens(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cleared int64
	for _, u := range r.users {
		if u.ResetTokenExpiry != nil && !u.ResetTokenExpiry.After(now) {
			u.ClearResetToken()
			cleared++
		}
	}
	return cleared, nil
}

// ============================================================
// Leaves
// ============================================================

type memoryLeaveRepository struct {
	mu     sync.RWMutex
	leaves map[string]*models.LeaveRequest
	seq    int64
	order  map[string]int64
}

// NewMemoryLeaveRepository creates an in-memory leave repository
func NewMemoryLeaveRepository() LeaveRepository {
	return &memoryLeaveRepository{
		leaves: make(map[string]*models.LeaveRequest),
		order:  make(map[string]int64),
	}
}

// sorted returns matching records newest first; insertion order breaks timestamp ties
func (r *memoryLeaveRepository) sorted(match func(*models.LeaveRequest) bool) []*models.LeaveRequest {
	out := []*models.LeaveRequest{}
	for _, l := range r.leaves {
		if match(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.order[out[i].ID] > r.order[out[j].ID]
	})
	for i, l := range out {
		out[i] = l.Clone()
	}
	return out
}

func (r *memoryLeaveRepository) Create(_ context.Context, leave *models.LeaveRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	leave.EnsureID()
	if _, exists := r.leaves[leave.ID]; exists {
		return ErrDuplicate
	}
	now := time.Now()
	leave.CreatedAt = now
	leave.UpdatedAt = now
	r.seq++
	r.order[leave.ID] = r.seq
	r.leaves[leave.ID] = leave.Clone()
	return nil
}

func (r *memoryLeaveRepository) GetByID(_ context.Context, id string) (*models.LeaveRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.leaves[id]
	if !ok {
		return nil, ErrNotFound
	}
	return l.Clone(), nil
}

func (r *memoryLeaveRepository) ListByOwner(_ context.Context, ownerID string) ([]*models.LeaveRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted(func(l *models.LeaveRequest) bool { return l.IsOwnedBy(ownerID) }), nil
}

func matchesFilter(filter LeaveFilter) func(*models.LeaveRequest) bool {
	return func(l *models.LeaveRequest) bool {
		return filter.Status == "" || l.Status == filter.Status
	}
}

func (r *memoryLeaveRepository) List(_ context.Context, filter LeaveFilter) ([]*models.LeaveRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.sorted(matchesFilter(filter))
	if filter.Limit > 0 {
		if filter.Offset >= len(out) {
			return []*models.LeaveRequest{}, nil
		}
		end := filter.Offset + filter.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[filter.Offset:end]
	}
	return out, nil
}

func (r *memoryLeaveRepository) Count(_ context.Context, filter LeaveFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	match := matchesFilter(filter)
	var count int64
	for _, l := range r.leaves {
		if match(l) {
			count++
		}
	}
	return count, nil
}

func (r *memoryLeaveRepository) UpdateStatus(_ context.Context, id, status string, adminComment *string) (*models.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.leaves[id]
	if !ok {
		return nil, ErrNotFound
	}
	l.Status = status
	if adminComment != nil {
		l.AdminComment = *adminComment
	}
	l.UpdatedAt = time.Now()
	return l.Clone(), nil
}
