package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	BaseHandler
	service services.ReportService
	now     func() time.Time
}

func NewAdminHandler(service services.ReportService, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		now:         time.Now,
	}
}

// GetStats returns platform totals
// @Summary Platform statistics
// @Tags admin
// @Produce json
// @Success 200 {object} repositories.PlatformStats
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /admin/stats [get]
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListTransactions lists paid enrollments
// @Summary List transactions
// @Tags admin
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 50, max: 100)"
// @Param course_id query int false "Filter by course"
// @Param date_from query string false "RFC 3339 or YYYY-MM-DD"
// @Param date_to query string false "RFC 3339 or YYYY-MM-DD"
// @Success 200 {object} services.TransactionListResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Router /admin/transactions [get]
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	filters, ok := h.parseTransactionFilters(c)
	if !ok {
		return
	}
	if c.Query("size") == "" {
		filters.Limit = 50
	}

	list, err := h.service.Transactions(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ExportTransactions downloads paid enrollments as a spreadsheet
// @Summary Export transactions
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param course_id query int false "Filter by course"
// @Param date_from query string false "RFC 3339 or YYYY-MM-DD"
// @Param date_to query string false "RFC 3339 or YYYY-MM-DD"
// @Success 200 {file} file
// @Router /admin/transactions/export [get]
func (h *AdminHandler) ExportTransactions(c *gin.Context) {
	filters, ok := h.parseTransactionFilters(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting transactions")

	buf, err := h.service.ExportTransactions(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("transactions-%s.xlsx", h.now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ListAuditLogs returns the most recent admin actions
// @Summary Audit log
// @Tags admin
// @Produce json
// @Param limit query int false "Entries to return (default: 100, max: 500)"
// @Success 200 {array} models.AuditLog
// @Router /admin/logs [get]
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	logs, err := h.service.AuditLogs(c.Request.Context(), queryInt(c, "limit", 100))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, logs)
}

func (h *AdminHandler) parseTransactionFilters(c *gin.Context) (repositories.EnrollmentFilters, bool) {
	var filters repositories.EnrollmentFilters
	filters.Limit, filters.Offset = parsePagination(c)

	if raw := c.Query("course_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid course_id"})
			return filters, false
		}
		courseID := uint(id)
		filters.CourseID = &courseID
	}

	for name, dst := range map[string]**time.Time{
		"date_from": &filters.DateFrom,
		"date_to":   &filters.DateTo,
	} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		t, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid " + name})
			return filters, false
		}
		*dst = &t
	}

	return filters, true
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}
