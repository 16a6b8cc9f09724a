package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

// maxCertificateIDLength matches the certificate_id column
const maxCertificateIDLength = 50

var errCertificateUnknown = errors.New("certificate unknown")

type certificateService struct {
	repo   repositories.Repository
	cache  *cache.CacheManager
	logger *slog.Logger
}

func NewCertificateService(repo repositories.Repository, cacheManager *cache.CacheManager, logger *slog.Logger) CertificateService {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &certificateService{
		repo:   repo,
		cache:  cacheManager,
		logger: logger,
	}
}

// Verify does not distinguish malformed ids from unknown ones. Only valid
// results are cached.
func (s *certificateService) Verify(ctx context.Context, certificateID string) (*CertificateVerification, error) {
	id := strings.ToUpper(strings.TrimSpace(certificateID))
	if id == "" || len(id) > maxCertificateIDLength {
		return &CertificateVerification{Valid: false}, nil
	}

	var result CertificateVerification
	err := s.cache.Certificate.CacheOrExecute(ctx, cache.CertificateKey(id), &result, cache.CertificateCacheConfig.TTL, func() (interface{}, error) {
		return s.lookup(ctx, id)
	})
	if err != nil {
		if errors.Is(err, errCertificateUnknown) {
			return &CertificateVerification{Valid: false}, nil
		}
		return nil, fmt.Errorf("failed to look up certificate: %w", err)
	}

	return &result, nil
}

func (s *certificateService) lookup(ctx context.Context, id string) (*CertificateVerification, error) {
	enrollment, err := s.repo.Enrollment().GetByCertificateID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, errCertificateUnknown
		}
		return nil, err
	}
	if !enrollment.IsCertified() || enrollment.CompletionDate == nil {
		return nil, errCertificateUnknown
	}

	result := &CertificateVerification{
		Valid:          true,
		CertificateID:  *enrollment.CertificateID,
		CompletionDate: enrollment.CompletionDate.UTC().Format("2006-01-02"),
		Score:          enrollment.CertifiedScore,
	}
	if enrollment.User != nil {
		result.StudentName = enrollment.User.FullName
	}
	if enrollment.Course != nil {
		result.CourseTitle = enrollment.Course.Title
	}
	return result, nil
}
