package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

type UserHandler struct {
	BaseHandler
	service   services.AccountService
	validator *validator.Validator
}

func NewUserHandler(service services.AccountService, validator *validator.Validator, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		validator:   validator,
	}
}

// GetProfile returns the caller's account
// @Summary Get my profile
// @Tags profile
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile edits the caller's display name
// @Summary Update my profile
// @Tags profile
// @Accept json
// @Produce json
// @Param request body validator.ProfileUpdateRequest true "Profile"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse "Bad request"
// @Router /profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	var req services.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating profile", "user_id", user.ID)

	profile, err := h.service.UpdateProfile(c.Request.Context(), user.ID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// ListUsers lists accounts
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param q query string false "Search query (name or email)"
// @Param include_deleted query bool false "Include deleted accounts"
// @Success 200 {object} services.UserListResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	filters := repositories.UserFilters{
		Query:          strings.TrimSpace(c.Query("q")),
		IncludeDeleted: c.Query("include_deleted") == "true",
	}
	filters.Limit, filters.Offset = parsePagination(c)

	list, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// BanUser bans a user for a number of days, or lifts the ban
// @Summary Ban user
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body validator.BanUserRequest true "Ban length"
// @Success 200 {object} models.User
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /users/{id}/ban [post]
func (h *UserHandler) BanUser(c *gin.Context) {
	actor := h.currentUser(c)
	if actor == nil {
		return
	}

	// An empty body lifts the ban
	var req validator.BanUserRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: err})
		return
	}

	user, err := h.service.Ban(c.Request.Context(), actor, c.Param("id"), req.Days)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateRole grants or revokes admin
// @Summary Update user role
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body validator.UpdateRoleRequest true "Role"
// @Success 200 {object} models.User
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /users/{id}/role [put]
func (h *UserHandler) UpdateRole(c *gin.Context) {
	actor := h.currentUser(c)
	if actor == nil {
		return
	}

	var req validator.UpdateRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.service.SetRole(c.Request.Context(), actor, c.Param("id"), req.IsAdmin)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser soft deletes an account
// @Summary Delete user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor := h.currentUser(c)
	if actor == nil {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "User deleted"})
}

// RestoreUser undoes a soft delete
// @Summary Restore user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /users/{id}/restore [post]
func (h *UserHandler) RestoreUser(c *gin.Context) {
	actor := h.currentUser(c)
	if actor == nil {
		return
	}

	if err := h.service.Restore(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "User restored"})
}
