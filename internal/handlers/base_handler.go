package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Message string      `json:"msg"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps acknowledgements that carry no resource
type SuccessResponse struct {
	Message string      `json:"msg"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler holds what every handler shares
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	return utils.GetLogger(c, h.logger)
}

// LogRequest logs an incoming request at debug level
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	args = append(args, "method", c.Request.Method, "path", c.Request.URL.Path)
	h.requestLogger(c).Debug(msg, args...)
}

// LogError logs a failed request with its cause
func (h *BaseHandler) LogError(c *gin.Context, err error, msg string) {
	h.requestLogger(c).Error(msg,
		"error", err,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)
}

// parseIDParam reads a positive integer path parameter. It writes the 400
// response itself and returns 0 on failure.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name,
		})
		return 0
	}
	return uint(id)
}

// bindJSON binds the body and writes 400 on malformed payloads
func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
		})
		return false
	}
	return true
}

// currentUser returns the authenticated caller, writing 401 when absent
func (h *BaseHandler) currentUser(c *gin.Context) *models.User {
	user, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return nil
	}
	return user
}

// optionalUser returns the caller when a valid token was presented
func (h *BaseHandler) optionalUser(c *gin.Context) *models.User {
	user, _ := GetUserFromContext(c)
	return user
}

// queryInt reads a non-negative integer query parameter, falling back to def
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

// handleServiceError maps service errors to HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidationFailed):
		var details validator.ValidationErrors
		resp := ErrorResponse{Message: "Validation failed"}
		if errors.As(err, &details) {
			resp.Details = details
		}
		c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, services.ErrPaymentNotVerified):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{Message: "Payment not verified"})
	case errors.Is(err, services.ErrNotEnrolled):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Not enrolled in this course"})
	case errors.Is(err, services.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Course not found"})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "User not found"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Not found"})
	case errors.Is(err, services.ErrAccountDisabled):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Account disabled"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Forbidden"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized"})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Conflict"})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
			Details: gin.H{"request_id": c.GetString("request_id")},
		})
	}
}

// parsePagination turns page and size query parameters into limit and offset.
// Size defaults to 20 and is capped at 100.
func parsePagination(c *gin.Context) (limit, offset int) {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit = queryInt(c, "size", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return limit, (page - 1) * limit
}
