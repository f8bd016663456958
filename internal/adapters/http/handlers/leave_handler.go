package handlers

import (
	"fmt"
	"time"

	"hostel-leave-api/internal/adapters/http/middleware"
	"hostel-leave-api/internal/core/domain"
	"hostel-leave-api/internal/core/services"
	"hostel-leave-api/internal/pkg/pagination"
	"hostel-leave-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LeaveHandler handles leave request endpoints
type LeaveHandler struct {
	leaveService  *services.LeaveService
	exportService *services.ExportService
}

// NewLeaveHandler creates a new leave handler
func NewLeaveHandler(leaveService *services.LeaveService, exportService *services.ExportService) *LeaveHandler {
	return &LeaveHandler{
		leaveService:  leaveService,
		exportService: exportService,
	}
}

// Apply creates a leave request owned by the caller
// @Summary Apply for leave
// @Tags Leaves
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ApplyLeaveInput true "Leave application"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /leaves/apply [post]
func (h *LeaveHandler) Apply(c *fiber.Ctx) error {
	var req services.ApplyLeaveInput
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest
	}

	leave, err := h.leaveService.ApplyLeave(c.UserContext(), middleware.UserID(c), &req)
	if err != nil {
		return err
	}
	return response.Created(c, "Leave applied successfully", fiber.Map{"leave": leave})
}

// MyLeaves lists the caller's leave requests
// @Summary My leave requests
// @Tags Leaves
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /leaves/my-leaves [get]
func (h *LeaveHandler) MyLeaves(c *fiber.Ctx) error {
	leaves, err := h.leaveService.ListMyLeaves(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return response.Success(c, "", fiber.Map{"leaves": leaves})
}

// AdminSummary returns counts by status and every request
// @Summary Admin leave summary
// @Tags Leaves
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} response.ErrorBody
// @Router /leaves/admin-summary [get]
func (h *LeaveHandler) AdminSummary(c *fiber.Ctx) error {
	summary, err := h.leaveService.GetAdminSummary(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, "", fiber.Map{
		"stats":  summary.Stats,
		"recent": summary.Recent,
	})
}

// AdminAnalytics returns counts by status, leave type and month
// @Summary Admin leave analytics
// @Tags Leaves
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} response.ErrorBody
// @Router /leaves/admin-analytics [get]
func (h *LeaveHandler) AdminAnalytics(c *fiber.Ctx) error {
	analytics, err := h.leaveService.GetAdminAnalytics(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, "", fiber.Map{
		"stats":   analytics.Stats,
		"byType":  analytics.ByType,
		"byMonth": analytics.ByMonth,
	})
}

// AllLeaves lists every leave request with requester details
// @Summary List all leave requests
// @Tags Leaves
// @Produce json
// @Security BearerAuth
// @Param status query string false "Pending, Approved or Rejected"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /leaves [get]
func (h *LeaveHandler) AllLeaves(c *fiber.Ctx) error {
	page, paged := pagination.GetParams(c)

	leaves, total, err := h.leaveService.ListAllLeaves(c.UserContext(), services.ListLeavesInput{
		Status: c.Query("status"),
		Page:   page,
	})
	if err != nil {
		return err
	}

	data := fiber.Map{
		"count":  len(leaves),
		"leaves": leaves,
	}
	if paged {
		data["meta"] = pagination.GetMeta(page, total)
	}
	return response.Success(c, "", data)
}

// GetByID returns one leave request to its owner or an admin
// @Summary Get leave request
// @Tags Leaves
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /leaves/{id} [get]
func (h *LeaveHandler) GetByID(c *fiber.Ctx) error {
	leave, err := h.leaveService.GetLeaveByID(c.UserContext(), c.Params("id"), middleware.UserID(c), middleware.Role(c))
	if err != nil {
		return err
	}
	return response.Success(c, "", fiber.Map{"leave": leave})
}

// UpdateStatus approves or rejects a leave request
// @Summary Update leave status
// @Tags Leaves
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param leaveId path string true "Leave ID"
// @Param body body services.UpdateStatusInput true "New status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /leaves/{leaveId}/status [put]
func (h *LeaveHandler) UpdateStatus(c *fiber.Ctx) error {
	var req services.UpdateStatusInput
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest
	}

	leave, err := h.leaveService.UpdateLeaveStatus(c.UserContext(), c.Params("leaveId"), &req)
	if err != nil {
		return err
	}
	return response.Success(c, "", fiber.Map{"leave": leave})
}

// BulkStatus applies one decision to many leave requests
// @Summary Bulk update leave status
// @Tags Leaves
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BulkStatusInput true "IDs and new status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /leaves/bulk-status [put]
func (h *LeaveHandler) BulkStatus(c *fiber.Ctx) error {
	var req services.BulkStatusInput
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest
	}

	result, err := h.leaveService.BulkUpdateStatus(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return response.Success(c, fmt.Sprintf("%d updated, %d failed", len(result.Updated), len(result.Failed)), fiber.Map{
		"updated": result.Updated,
		"failed":  result.Failed,
	})
}

// Export downloads leave requests as an XLSX workbook
// @Summary Export leave requests
// @Tags Leaves
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param status query string false "Pending, Approved or Rejected"
// @Success 200 {file} file
// @Failure 403 {object} response.ErrorBody
// @Router /leaves/export [get]
func (h *LeaveHandler) Export(c *fiber.Ctx) error {
	data, err := h.exportService.LeavesWorkbook(c.UserContext(), c.Query("status"))
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("leaves-%s.xlsx", time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, xlsxMIME)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}
