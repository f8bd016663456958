package repositories

import (
	"context"
	"errors"
	"time"

	"hostel-leave-api/internal/adapters/persistence/models"
)

// Repository errors shared by every backend
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByResetToken returns the user holding tokenHash whose expiry is after now
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByRole(ctx context.Context, role string) (int64, error)
	// ClearExpiredResetTokens removes reset tokens whose expiry is at or before now
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// LeaveFilter narrows admin listings. Zero values mean "no constraint".
type LeaveFilter struct {
	Status string
	Offset int
	Limit  int
}

// LeaveRepository defines leave request repository interface.
// All listings are ordered newest-created first.
type LeaveRepository interface {
	Create(ctx context.Context, leave *models.LeaveRequest) error
	GetByID(ctx context.Context, id string) (*models.LeaveRequest, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.LeaveRequest, error)
	List(ctx context.Context, filter LeaveFilter) ([]*models.LeaveRequest, error)
	Count(ctx context.Context, filter LeaveFilter) (int64, error)
	// UpdateStatus overwrites status (and adminComment when non-nil) and returns the stored record
	UpdateStatus(ctx context.Context, id, status string, adminComment *string) (*models.LeaveRequest, error)
}

// Store bundles the repositories of one backend with its lifecycle hooks
type Store struct {
	Users  UserRepository
	Leaves LeaveRepository
	Ping   func(ctx context.Context) error
	Close  func() error
}
