package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"hostel-leave-api/internal/adapters/persistence/models"
	"hostel-leave-api/internal/adapters/persistence/repositories"
	"hostel-leave-api/internal/core/domain"
	"hostel-leave-api/internal/pkg/metrics"
	"hostel-leave-api/internal/pkg/pagination"
	"hostel-leave-api/internal/pkg/validation"

	"golang.org/x/sync/errgroup"
)

// bulkConcurrency bounds the number of status updates in flight for one bulk request
const bulkConcurrency = 8

// LeaveService handles the leave request lifecycle
type LeaveService struct {
	leaveRepo repositories.LeaveRepository
	userRepo  repositories.UserRepository
}

// NewLeaveService creates a new leave service
func NewLeaveService(leaveRepo repositories.LeaveRepository, userRepo repositories.UserRepository) *LeaveService {
	return &LeaveService{
		leaveRepo: leaveRepo,
		userRepo:  userRepo,
	}
}

// ApplyLeaveInput represents a leave application
type ApplyLeaveInput struct {
	StudentID     string `json:"studentId" validate:"required"`
	Name          string `json:"name" validate:"required"`
	RoomNumber    string `json:"roomNumber"`
	LeaveType     string `json:"leaveType" validate:"required,leavetype"`
	Destination   string `json:"destination"`
	ContactNumber string `json:"contactNumber" validate:"required,phone"`
	StartDate     string `json:"startDate" validate:"required"`
	EndDate       string `json:"endDate" validate:"required"`
	Reason        string `json:"reason" validate:"required"`
}

var applyLeaveMessages = validation.Messages{
	"studentId":           "Student ID is required",
	"name":                "Name is required",
	"leaveType.required":  "Please select a leave type",
	"leaveType":           "Leave type must be Sick, Casual, Emergency or Other",
	"contactNumber":       "Contact number is required",
	"contactNumber.phone": "Contact number must have at least 10 digits",
	"startDate":           "Start date required",
	"endDate":             "End date required",
	"reason":              "Please provide a reason",
}

// UpdateStatusInput represents an admin decision
type UpdateStatusInput struct {
	Status       string  `json:"status"`
	AdminComment *string `json:"adminComment"`
}

// BulkStatusInput applies one decision to many leave requests
type BulkStatusInput struct {
	IDs          []string `json:"ids"`
	Status       string   `json:"status"`
	AdminComment *string  `json:"adminComment"`
}

// BulkFailure reports a leave request that could not be updated
type BulkFailure struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// BulkStatusResult lists per-record outcomes; there is no rollback across records
type BulkStatusResult struct {
	Updated []*models.LeaveRequest `json:"updated"`
	Failed  []BulkFailure          `json:"failed"`
}

// ListLeavesInput filters the admin listing; Page nil returns every match
type ListLeavesInput struct {
	Status string
	Page   *pagination.Params
}

// LeaveStats holds counts by status
type LeaveStats struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
}

func (s *LeaveStats) add(status string) {
	s.Total++
	switch domain.LeaveStatus(status) {
	case domain.LeaveStatusApproved:
		s.Approved++
	case domain.LeaveStatusPending:
		s.Pending++
	case domain.LeaveStatusRejected:
		s.Rejected++
	}
}

// AdminSummary is the admin dashboard payload
type AdminSummary struct {
	Stats  LeaveStats             `json:"stats"`
	Recent []*models.LeaveSummary `json:"recent"`
}

// MonthlyStats holds counts for one creation month (YYYY-MM)
type MonthlyStats struct {
	Month string `json:"month"`
	LeaveStats
}

// AdminAnalytics breaks leave counts down by status, type and month
type AdminAnalytics struct {
	Stats   LeaveStats     `json:"stats"`
	ByType  map[string]int `json:"byType"`
	ByMonth []MonthlyStats `json:"byMonth"`
}

// parseLeaveDate accepts a calendar date or a full RFC 3339 timestamp
func parseLeaveDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

func trimApplyInput(in *ApplyLeaveInput) {
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.Name = strings.TrimSpace(in.Name)
	in.RoomNumber = strings.TrimSpace(in.RoomNumber)
	in.LeaveType = strings.TrimSpace(in.LeaveType)
	in.Destination = strings.TrimSpace(in.Destination)
	in.ContactNumber = strings.TrimSpace(in.ContactNumber)
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.EndDate = strings.TrimSpace(in.EndDate)
	in.Reason = strings.TrimSpace(in.Reason)
}

// ApplyLeave validates and stores a new Pending leave request.
// ownerID is empty when the request has no authenticated owner.
func (s *LeaveService) ApplyLeave(ctx context.Context, ownerID string, input *ApplyLeaveInput) (*models.LeaveRequest, error) {
	trimApplyInput(input)

	fields := validation.Struct(input, applyLeaveMessages)
	start, startOK := parseLeaveDate(input.StartDate)
	end, endOK := parseLeaveDate(input.EndDate)
	if startOK && endOK && end.Before(start) {
		if fields == nil {
			fields = map[string]string{}
		}
		if _, set := fields["endDate"]; !set {
			fields["endDate"] = "End date must be same or after start date"
		}
	}
	if err := validation.Error(fields); err != nil {
		return nil, err
	}

	if !startOK || !endOK {
		return nil, domain.ErrInvalidDates
	}

	leaveType, _ := domain.ParseLeaveType(input.LeaveType)

	leave := &models.LeaveRequest{
		StudentID:     input.StudentID,
		Name:          input.Name,
		RoomNumber:    input.RoomNumber,
		LeaveType:     string(leaveType),
		Destination:   input.Destination,
		ContactNumber: input.ContactNumber,
		StartDate:     start,
		EndDate:       end,
		Reason:        input.Reason,
		Status:        string(domain.LeaveStatusPending),
	}
	if ownerID != "" {
		owner := ownerID
		leave.OwnerID = &owner
	}

	if err := s.leaveRepo.Create(ctx, leave); err != nil {
		return nil, err
	}

	metrics.LeaveApplications.WithLabelValues(leave.LeaveType).Inc()
	log.Printf("📝 Leave applied: %s (%s, %s)", leave.ID, leave.StudentID, leave.LeaveType)
	return leave, nil
}

// ListMyLeaves returns the caller's leave requests, newest first
func (s *LeaveService) ListMyLeaves(ctx context.Context, ownerID string) ([]*models.LeaveRequest, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.leaveRepo.ListByOwner(ctx, ownerID)
}

// ListAllLeaves returns every leave request (optionally by status) with requester details attached
func (s *LeaveService) ListAllLeaves(ctx context.Context, input ListLeavesInput) ([]*models.LeaveRequest, int64, error) {
	filter := repositories.LeaveFilter{}
	if input.Status != "" {
		status, ok := parseStatus(input.Status)
		if !ok {
			return nil, 0, domain.ErrInvalidStatus
		}
		filter.Status = string(status)
	}

	total, err := s.leaveRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if input.Page != nil {
		filter.Offset = input.Page.Offset
		filter.Limit = input.Page.Limit
	}

	leaves, err := s.leaveRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if err := s.attachRequesters(ctx, leaves); err != nil {
		return nil, 0, err
	}
	return leaves, total, nil
}

// attachRequesters populates the owning user's public details
func (s *LeaveService) attachRequesters(ctx context.Context, leaves []*models.LeaveRequest) error {
	seen := map[string]bool{}
	ids := []string{}
	for _, l := range leaves {
		if l.OwnerID != nil && !seen[*l.OwnerID] {
			seen[*l.OwnerID] = true
			ids = append(ids, *l.OwnerID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}

	byID := make(map[string]*models.Requester, len(users))
	for _, u := range users {
		byID[u.ID] = &models.Requester{
			ID:         u.ID,
			Name:       u.Name,
			Email:      u.Email,
			RoomNumber: u.RoomNumber,
		}
	}

	for _, l := range leaves {
		if l.OwnerID != nil {
			l.Requester = byID[*l.OwnerID]
		}
	}
	return nil
}

// GetAdminSummary counts every leave by status and returns the full list as summaries
func (s *LeaveService) GetAdminSummary(ctx context.Context) (*AdminSummary, error) {
	leaves, err := s.leaveRepo.List(ctx, repositories.LeaveFilter{})
	if err != nil {
		return nil, err
	}

	summary := &AdminSummary{Recent: make([]*models.LeaveSummary, 0, len(leaves))}
	for _, l := range leaves {
		summary.Stats.add(l.Status)
		summary.Recent = append(summary.Recent, l.ToSummary())
	}
	return summary, nil
}

// GetAdminAnalytics groups leave counts by type and by creation month (oldest month first)
func (s *LeaveService) GetAdminAnalytics(ctx context.Context) (*AdminAnalytics, error) {
	leaves, err := s.leaveRepo.List(ctx, repositories.LeaveFilter{})
	if err != nil {
		return nil, err
	}

	analytics := &AdminAnalytics{ByType: map[string]int{}, ByMonth: []MonthlyStats{}}
	for _, t := range domain.LeaveTypes {
		analytics.ByType[string(t)] = 0
	}

	months := map[string]*LeaveStats{}
	for _, l := range leaves {
		analytics.Stats.add(l.Status)
		analytics.ByType[l.LeaveType]++

		key := l.CreatedAt.UTC().Format("2006-01")
		if months[key] == nil {
			months[key] = &LeaveStats{}
		}
		months[key].add(l.Status)
	}

	for month, stats := range months {
		analytics.ByMonth = append(analytics.ByMonth, MonthlyStats{Month: month, LeaveStats: *stats})
	}
	sort.Slice(analytics.ByMonth, func(i, j int) bool {
		return analytics.ByMonth[i].Month < analytics.ByMonth[j].Month
	})
	return analytics, nil
}

// GetLeaveByID returns one leave request to its owner or an admin
func (s *LeaveService) GetLeaveByID(ctx context.Context, id, callerID, callerRole string) (*models.LeaveRequest, error) {
	leave, err := s.leaveRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, domain.ErrLeaveNotFound
		}
		return nil, err
	}

	if callerRole != string(domain.RoleAdmin) && !leave.IsOwnedBy(callerID) {
		return nil, domain.ErrForbidden
	}
	return leave, nil
}

// parseStatus matches a status name case-insensitively
func parseStatus(s string) (domain.LeaveStatus, bool) {
	for _, status := range domain.LeaveStatuses {
		if strings.EqualFold(strings.TrimSpace(s), string(status)) {
			return status, true
		}
	}
	return "", false
}

// UpdateLeaveStatus applies an admin decision. Decided records may be decided again.
func (s *LeaveService) UpdateLeaveStatus(ctx context.Context, id string, input *UpdateStatusInput) (*models.LeaveRequest, error) {
	status := domain.LeaveStatus(input.Status)
	if !status.IsDecision() {
		return nil, domain.ErrInvalidStatus
	}
	return s.updateStatus(ctx, id, status, input.AdminComment)
}

func (s *LeaveService) updateStatus(ctx context.Context, id string, status domain.LeaveStatus, comment *string) (*models.LeaveRequest, error) {
	if comment != nil {
		trimmed := strings.TrimSpace(*comment)
		comment = &trimmed
	}

	leave, err := s.leaveRepo.UpdateStatus(ctx, id, string(status), comment)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, domain.ErrLeaveNotFound
		}
		return nil, err
	}

	metrics.LeaveStatusChanges.WithLabelValues(leave.Status).Inc()
	log.Printf("✅ Leave %s marked %s", leave.ID, leave.Status)
	return leave, nil
}

// BulkUpdateStatus applies one decision to many records concurrently.
// Each record is updated independently; failures are reported per id.
func (s *LeaveService) BulkUpdateStatus(ctx context.Context, input *BulkStatusInput) (*BulkStatusResult, error) {
	status := domain.LeaveStatus(input.Status)
	if !status.IsDecision() {
		return nil, domain.ErrInvalidStatus
	}
	if len(input.IDs) == 0 {
		return nil, &domain.ValidationError{Fields: map[string]string{"ids": "At least one leave id is required"}}
	}

	updated := make([]*models.LeaveRequest, len(input.IDs))
	failures := make([]error, len(input.IDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkConcurrency)
	var mu sync.Mutex

	for i, id := range input.IDs {
		g.Go(func() error {
			leave, err := s.updateStatus(gctx, id, status, input.AdminComment)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[i] = err
				return nil
			}
			updated[i] = leave
			return nil
		})
	}
	_ = g.Wait()

	result := &BulkStatusResult{Updated: []*models.LeaveRequest{}, Failed: []BulkFailure{}}
	for i, id := range input.IDs {
		if failures[i] != nil {
			msg := domain.ErrInternal.Message
			var appErr *domain.AppError
			if errors.As(failures[i], &appErr) {
				msg = appErr.Message
			}
			result.Failed = append(result.Failed, BulkFailure{ID: id, Message: msg})
			continue
		}
		result.Updated = append(result.Updated, updated[i])
	}

	log.Printf("✅ Bulk status %s: %d updated, %d failed", status, len(result.Updated), len(result.Failed))
	return result, nil
}

// CountPending returns the number of leave requests awaiting a decision
func (s *LeaveService) CountPending(ctx context.Context) (int64, error) {
	return s.leaveRepo.Count(ctx, repositories.LeaveFilter{Status: string(domain.LeaveStatusPending)})
}
