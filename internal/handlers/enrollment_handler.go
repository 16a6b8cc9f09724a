package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

type EnrollmentHandler struct {
	BaseHandler
	service   services.EnrollmentService
	validator *validator.Validator
}

func NewEnrollmentHandler(service services.EnrollmentService, validator *validator.Validator, logger utils.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		validator:   validator,
	}
}

// Enroll enrolls the caller into a course
// @Summary Enroll in a course
// @Description Idempotent. Priced courses require a verified payment reference.
// @Tags enrollments
// @Accept json
// @Produce json
// @Param request body validator.EnrollRequest true "Enrollment request"
// @Success 201 {object} map[string]interface{} "Enrolled"
// @Success 200 {object} map[string]interface{} "Already enrolled"
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 402 {object} ErrorResponse "Payment not verified"
// @Failure 404 {object} ErrorResponse "Course not found"
// @Router /enroll [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	var req validator.EnrollRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: err})
		return
	}

	h.LogRequest(c, "Enrolling user", "user_id", user.ID, "course_id", req.CourseID)

	result, err := h.service.Enroll(c.Request.Context(), user, req.CourseID, req.PaymentReference)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if !result.Created {
		c.JSON(http.StatusOK, gin.H{"msg": "Already enrolled", "enrollment": result.Enrollment})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"msg": "Enrolled successfully", "enrollment": result.Enrollment})
}

// UpdateProgress applies a partial progress update
// @Summary Update course progress
// @Description Absent fields are left untouched. The first completion mints a certificate.
// @Tags enrollments
// @Accept json
// @Produce json
// @Param request body validator.ProgressPatchRequest true "Progress patch"
// @Success 200 {object} map[string]interface{} "Progress updated"
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Not enrolled"
// @Router /update-progress [post]
func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	var req services.ProgressPatchRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating progress", "user_id", user.ID, "course_id", req.CourseID)

	result, err := h.service.UpdateProgress(c.Request.Context(), user, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":             "Progress updated",
		"certificate_id":  result.CertificateID,
		"newly_certified": result.NewlyCertified,
		"enrollment":      result.Enrollment,
	})
}

// GetStatus returns the caller's enrollment in a course
// @Summary Get enrollment status
// @Description Admins receive a synthetic preview and are never enrolled.
// @Tags enrollments
// @Produce json
// @Param course_id path int true "Course ID"
// @Success 200 {object} services.EnrollmentView
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Not enrolled"
// @Router /enrollment/{course_id} [get]
func (h *EnrollmentHandler) GetStatus(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}
	courseID := h.parseIDParam(c, "course_id")
	if courseID == 0 {
		return
	}

	view, err := h.service.GetStatus(c.Request.Context(), user, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ListMine lists the caller's enrollments with course details
// @Summary List my enrollments
// @Tags enrollments
// @Produce json
// @Success 200 {array} services.MyEnrollmentResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /my-enrollments [get]
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	list, err := h.service.ListMine(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}
