package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// CourseKey is the cache key of a single catalog entry
func CourseKey(courseID uint) string {
	return fmt.Sprintf("id:%d", courseID)
}

// CertificateKey is the cache key of a verified certificate view
func CertificateKey(certificateID string) string {
	return "id:" + certificateID
}

// InvalidateCourseCache drops a course entry, every cached listing and the
// verified certificate views, which carry the course title.
func InvalidateCourseCache(ctx context.Context, cm *CacheManager, courseID uint) {
	SafeDelete(ctx, cm.Course, CourseKey(courseID))
	SafeInvalidatePattern(ctx, cm.Course, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, "*")
	SafeInvalidatePattern(ctx, cm.Certificate, "*")
}

// InvalidateCertificatesForUser is used after a profile rename, since the
// student name is part of the cached verification view.
func InvalidateCertificatesForUser(ctx context.Context, cm *CacheManager, certificateIDs []string) {
	if len(certificateIDs) == 0 {
		return
	}
	keys := make([]string, len(certificateIDs))
	for i, id := range certificateIDs {
		keys[i] = CertificateKey(id)
	}
	SafeDelete(ctx, cm.Certificate, keys...)
}
