package repositories

import (
	"context"

	"hostel-leave-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// leaveRepository implements LeaveRepository on GORM
type leaveRepository struct {
	db *gorm.DB
}

// NewLeaveRepository creates a new GORM leave repository
func NewLeaveRepository(db *gorm.DB) LeaveRepository {
	return &leaveRepository{db: db}
}

// Create creates a new leave request
func (r *leaveRepository) Create(ctx context.Context, leave *models.LeaveRequest) error {
	return translate(r.db.WithContext(ctx).Create(leave).Error)
}

// GetByID gets a leave request by ID
func (r *leaveRepository) GetByID(ctx context.Context, id string) (*models.LeaveRequest, error) {
	var leave models.LeaveRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&leave).Error
	if err != nil {
		return nil, translate(err)
	}
	return &leave, nil
}

// ListByOwner lists the leave requests of one user
func (r *leaveRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.LeaveRequest, error) {
	var leaves []*models.LeaveRequest
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&leaves).Error
	return leaves, translate(err)
}

func (r *leaveRepository) filtered(ctx context.Context, filter LeaveFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.LeaveRequest{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	return q
}

// List lists leave requests with an optional status filter and page window
func (r *leaveRepository) List(ctx context.Context, filter LeaveFilter) ([]*models.LeaveRequest, error) {
	var leaves []*models.LeaveRequest
	q := r.filtered(ctx, filter).Order("created_at DESC")
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}
	err := q.Find(&leaves).Error
	return leaves, translate(err)
}

// Count counts leave requests matching the status filter
func (r *leaveRepository) Count(ctx context.Context, filter LeaveFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, translate(err)
}

// UpdateStatus updates status and optional admin comment
func (r *leaveRepository) UpdateStatus(ctx context.Context, id, status string, adminComment *string) (*models.LeaveRequest, error) {
	// Existence is checked first: MySQL reports zero affected rows when values are unchanged.
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"status": status}
	if adminComment != nil {
		updates["admin_comment"] = *adminComment
	}

	err := r.db.WithContext(ctx).
		Model(&models.LeaveRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
	if err != nil {
		return nil, translate(err)
	}

	return r.GetByID(ctx, id)
}
