package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

const (
	transactionsSheet = "Transactions"
	maxExportRows     = 10000
	statsCacheKey     = "platform"
)

type reportService struct {
	repo   repositories.Repository
	cache  *cache.CacheManager
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, cacheManager *cache.CacheManager, logger *slog.Logger) ReportService {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &reportService{
		repo:   repo,
		cache:  cacheManager,
		logger: logger,
	}
}

func (s *reportService) Stats(ctx context.Context) (*repositories.PlatformStats, error) {
	var stats repositories.PlatformStats
	err := s.cache.Stats.CacheOrExecute(ctx, statsCacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		return s.collectStats(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect stats: %w", err)
	}
	return &stats, nil
}

func (s *reportService) collectStats(ctx context.Context) (*repositories.PlatformStats, error) {
	var stats repositories.PlatformStats
	var err error

	if stats.Revenue, err = s.repo.Enrollment().Revenue(ctx, nil); err != nil {
		return nil, err
	}
	if stats.Students, err = s.repo.User().CountStudents(ctx, nil); err != nil {
		return nil, err
	}
	if stats.Courses, err = s.repo.Course().Count(ctx, nil, false); err != nil {
		return nil, err
	}
	if stats.Enrollments, err = s.repo.Enrollment().Count(ctx, nil, false); err != nil {
		return nil, err
	}
	if stats.Certifications, err = s.repo.Enrollment().Count(ctx, nil, true); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *reportService) Transactions(ctx context.Context, filters repositories.EnrollmentFilters) (*TransactionListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 50
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	transactions, total, err := s.listTransactions(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &TransactionListResponse{
		Transactions: transactions,
		Total:        total,
		Page:         filters.Offset/filters.Limit + 1,
		Size:         filters.Limit,
	}, nil
}

// ExportTransactions renders every matching paid enrollment into an XLSX workbook
func (s *reportService) ExportTransactions(ctx context.Context, filters repositories.EnrollmentFilters) (*bytes.Buffer, error) {
	filters.Limit = maxExportRows
	filters.Offset = 0

	transactions, total, err := s.listTransactions(ctx, filters)
	if err != nil {
		return nil, err
	}
	if total > maxExportRows {
		s.logger.Warn("Transaction export truncated", "total", total, "exported", len(transactions))
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Error("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []interface{}{"Date", "Student", "Email", "Course", "Amount", "Payment Reference", "Enrollment ID"}
	if err := f.SetSheetRow(transactionsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(transactionsSheet, "A1", "G1", style)
	}
	_ = f.SetColWidth(transactionsSheet, "A", "G", 22)

	grandTotal := decimal.Zero
	for i, t := range transactions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to address row: %w", err)
		}
		amount, _ := t.Amount.Float64()
		row := []interface{}{
			t.Date.UTC().Format("2006-01-02 15:04:05"),
			t.UserName,
			t.UserEmail,
			t.CourseTitle,
			amount,
			t.PaymentReference,
			t.EnrollmentID,
		}
		if err := f.SetSheetRow(transactionsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
		grandTotal = grandTotal.Add(t.Amount)
	}

	totalCell, _ := excelize.CoordinatesToCellName(4, len(transactions)+3)
	sum, _ := grandTotal.Float64()
	totalRow := []interface{}{"Total", sum}
	if err := f.SetSheetRow(transactionsSheet, totalCell, &totalRow); err != nil {
		return nil, fmt.Errorf("failed to write total: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf, nil
}

func (s *reportService) AuditLogs(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	logs, err := s.repo.AuditLog().List(ctx, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

func (s *reportService) listTransactions(ctx context.Context, filters repositories.EnrollmentFilters) ([]*TransactionResponse, int64, error) {
	filters.PaidOnly = true

	enrollments, total, err := s.repo.Enrollment().List(ctx, nil, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	transactions := make([]*TransactionResponse, 0, len(enrollments))
	for _, e := range enrollments {
		t := &TransactionResponse{
			EnrollmentID: e.ID,
			UserID:       e.UserID,
			CourseID:     e.CourseID,
			Date:         e.EnrolledAt,
		}
		if e.PaymentReference != nil {
			t.PaymentReference = *e.PaymentReference
		}
		if e.User != nil {
			t.UserEmail = e.User.Email
			t.UserName = e.User.FullName
		}
		if e.Course != nil {
			t.CourseTitle = e.Course.Title
			t.Amount = e.Course.Price
		}
		transactions = append(transactions, t)
	}
	return transactions, total, nil
}
