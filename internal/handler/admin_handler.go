package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/learnora/learnora-backend/internal/middleware"
	"github.com/learnora/learnora-backend/internal/model"
	"github.com/learnora/learnora-backend/internal/response"
	"github.com/learnora/learnora-backend/internal/service"
	"github.com/learnora/learnora-backend/internal/validator"
)

// AdminHandler handles user administration and the audit trail.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// setUserStatusRequest is the payload for activating/deactivating a user.
type setUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

// ListUsers godoc
// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	var role *model.Role
	if roleStr := c.Query("role"); roleStr != "" {
		r := model.Role(roleStr)
		role = &r
	}

	users, total, err := h.adminService.ListUsers(c.Request.Context(), page, perPage, role)
	if err != nil {
		failFromService(c, err)
		return
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"users": users}, pagination)
}

// SetUserStatus godoc
// PUT /api/v1/admin/users/:user_id/status
func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req setUserStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.adminService.SetUserStatus(c.Request.Context(), claims.Principal(), userID, model.UserStatus(req.Status)); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "user status updated successfully"})
}

// ListAuditLogs godoc
// GET /api/v1/admin/audit-logs
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	var action *model.AuditAction
	if actionStr := c.Query("action"); actionStr != "" {
		a := model.AuditAction(actionStr)
		action = &a
	}

	logs, total, err := h.adminService.ListAuditLogs(c.Request.Context(), page, perPage, action)
	if err != nil {
		failFromService(c, err)
		return
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"audit_logs": logs}, pagination)
}
