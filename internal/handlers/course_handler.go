package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
)

type CourseHandler struct {
	BaseHandler
	service services.CourseService
}

func NewCourseHandler(service services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListCourses lists the catalog
// @Summary List courses
// @Description Visitors see active courses. Admins also see inactive ones.
// @Tags courses
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param q query string false "Search in title and description"
// @Param category query string false "Filter by category"
// @Param sort_by query string false "created_at, title or price"
// @Param sort_order query string false "asc or desc"
// @Param include_deleted query bool false "Admins only"
// @Success 200 {object} services.CourseListResponse
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	viewer := h.optionalUser(c)

	filters := repositories.CourseFilters{
		PublicOnly: !viewer.IsAdmin(),
		Query:      strings.TrimSpace(c.Query("q")),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}
	filters.Limit, filters.Offset = parsePagination(c)
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		filters.Category = &category
	}
	if viewer.IsAdmin() && c.Query("include_deleted") == "true" {
		filters.IncludeDeleted = true
	}

	list, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetCourse returns one course with its curriculum
// @Summary Get course
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} models.Course
// @Failure 404 {object} ErrorResponse "Course not found"
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	course, err := h.service.Get(c.Request.Context(), id, h.optionalUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// CreateCourse adds a course to the catalog
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Param request body validator.CourseCreateRequest true "Course"
// @Success 201 {object} models.Course
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	var req services.CreateCourseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating course", "user_id", user.ID)

	course, err := h.service.Create(c.Request.Context(), user, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// UpdateCourse applies a partial update
// @Summary Update course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param request body validator.CourseUpdateRequest true "Changes"
// @Success 200 {object} models.Course
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 404 {object} ErrorResponse "Course not found"
// @Router /courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateCourseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating course", "user_id", user.ID, "course_id", id)

	course, err := h.service.Update(c.Request.Context(), user, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// DeleteCourse archives a course
// @Summary Delete course
// @Description Soft delete. Existing enrollments are kept.
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse "Course not found"
// @Router /courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting course", "user_id", user.ID, "course_id", id)

	if err := h.service.Delete(c.Request.Context(), user, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Course deleted"})
}
