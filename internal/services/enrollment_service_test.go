package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/course-service/internal/models"
)

func completePatch(courseID uint, score float64) *ProgressPatchRequest {
	return &ProgressPatchRequest{
		CourseID: courseID,
		Progress: ptr(100),
		Status:   ptr(models.EnrollmentCompleted),
		Score:    ptr(score),
	}
}

func TestEnroll_FreeCourseIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "u1", models.RoleStudent)
	course := env.seedCourse(t, "Intro to Go", "0", twoModuleCurriculum())

	first, err := env.engine.Enroll(ctx, user, course.ID, nil)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, models.EnrollmentInProgress, first.Enrollment.Status)
	assert.Equal(t, 0, first.Enrollment.Progress)
	assert.Nil(t, first.Enrollment.PaymentReference)

	second, err := env.engine.Enroll(ctx, user, course.ID, nil)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Enrollment.ID, second.Enrollment.ID)

	assert.Equal(t, int64(1), env.enrollmentCount(t))
	assert.Len(t, env.publisher.EventsOfType(models.EventEnrollmentConfirmed), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.EnrollmentsCreated.WithLabelValues("free")))
}

func TestEnroll_FreeCourseIgnoresPaymentReference(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "u1", models.RoleStudent)
	course := env.seedCourse(t, "Intro to Go", "0", nil)

	result, err := env.engine.Enroll(context.Background(), user, course.ID, ptr("cs_whatever"))
	require.NoError(t, err)
	assert.Nil(t, result.Enrollment.PaymentReference)
	assert.Nil(t, env.storedEnrollment(t, "u1", course.ID).PaymentReference)
}

func TestEnroll_UnavailableCourse(t *testing.T) {
	tests := []struct {
		name   string
		column string
		value  interface{}
	}{
		{name: "inactive", column: "is_active", value: false},
		{name: "deleted", column: "is_deleted", value: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			user := env.seedUser(t, "u1", models.RoleStudent)
			course := env.seedCourse(t, "Retired", "0", nil)
			require.NoError(t, env.db.Model(course).Update(tt.column, tt.value).Error)

			_, err := env.engine.Enroll(context.Background(), user, course.ID, nil)
			assert.ErrorIs(t, err, ErrCourseNotFound)
			assert.Equal(t, int64(0), env.enrollmentCount(t))
		})
	}
}

func TestEnroll_RetryAfterCourseWithdrawnReturnsExisting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "u1", models.RoleStudent)
	course := env.seedCourse(t, "Retired", "0", nil)

	first, err := env.engine.Enroll(ctx, user, course.ID, nil)
	require.NoError(t, err)
	require.True(t, first.Created)

	require.NoError(t, env.db.Model(course).Update("is_active", false).Error)

	again, err := env.engine.Enroll(ctx, user, course.ID, nil)
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, first.Enrollment.ID, again.Enrollment.ID)
	assert.Equal(t, int64(1), env.enrollmentCount(t))
}

func TestEnroll_UnknownCourse(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "u1", models.RoleStudent)

	_, err := env.engine.Enroll(context.Background(), user, 4242, nil)
	assert.ErrorIs(t, err, ErrCourseNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnroll_PaidCourseRequiresVerifiedPayment(t *testing.T) {
	tests := []struct {
		name    string
		session func(env *testEnv, courseID uint)
		ref     *string
	}{
		{
			name:    "no reference",
			session: func(env *testEnv, courseID uint) {},
			ref:     nil,
		},
		{
			name:    "empty reference",
			session: func(env *testEnv, courseID uint) {},
			ref:     ptr(""),
		},
		{
			name:    "unknown session",
			session: func(env *testEnv, courseID uint) {},
			ref:     ptr("cs_missing"),
		},
		{
			name: "unpaid session",
			session: func(env *testEnv, courseID uint) {
				env.oracle.addSession("cs_open", false, 4999, courseID, "u1")
			},
			ref: ptr("cs_open"),
		},
		{
			name: "wrong amount",
			session: func(env *testEnv, courseID uint) {
				env.oracle.addSession("cs_cheap", true, 100, courseID, "u1")
			},
			ref: ptr("cs_cheap"),
		},
		{
			name: "other course",
			session: func(env *testEnv, courseID uint) {
				env.oracle.addSession("cs_other_course", true, 4999, courseID+1, "u1")
			},
			ref: ptr("cs_other_course"),
		},
		{
			name: "other buyer",
			session: func(env *testEnv, courseID uint) {
				env.oracle.addSession("cs_other_user", true, 4999, courseID, "u2")
			},
			ref: ptr("cs_other_user"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			user := env.seedUser(t, "u1", models.RoleStudent)
			course := env.seedCourse(t, "Advanced Go", "49.99", nil)
			tt.session(env, course.ID)

			_, err := env.engine.Enroll(context.Background(), user, course.ID, tt.ref)
			assert.ErrorIs(t, err, ErrPaymentNotVerified)
			assert.Equal(t, int64(0), env.enrollmentCount(t))
			assert.Empty(t, env.publisher.GetPublishedEvents())
		})
	}
}

func TestEnroll_PaidCourseWithVerifiedPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "u1", models.RoleStudent)
	course := env.seedCourse(t, "Advanced Go", "49.99", nil)
	env.oracle.addSession("cs_paid", true, 4999, course.ID, user.ID)

	result, err := env.engine.Enroll(ctx, user, course.ID, ptr("cs_paid"))
	require.NoError(t, err)
	assert.True(t, result.Created)
	require.NotNil(t, result.Enrollment.PaymentReference)
	assert.Equal(t, "cs_paid", *result.Enrollment.PaymentReference)

	// A retried confirmation returns the same row without asking the oracle
	env.oracle.verifyErr = errors.New("oracle unreachable")
	again, err := env.engine.Enroll(ctx, user, course.ID, ptr("cs_paid"))
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, result.Enrollment.ID, again.Enrollment.ID)

	confirmed := env.publisher.EventsOfType(models.EventEnrollmentConfirmed)
	require.Len(t, confirmed, 1)
	var data models.EnrollmentConfirmedData
	require.NoError(t, confirmed[0].DecodeData(&data))
	assert.Equal(t, "49.99 USD", data.AmountPaid)
	assert.Equal(t, "Advanced Go", data.CourseTitle)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.EnrollmentsCreated.WithLabelValues("paid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.PaymentVerifications.WithLabelValues("paid")))
}

func TestEnroll_PublisherFailureDoesNotFailEnrollment(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "u1", models.RoleStudent)
	course := env.seedCourse(t, "Intro to Go", "0", nil)
	env.publisher.FailWith(errors.New("broker down"))

	result, err := env.engine.Enroll(context.Background(), user, course.ID, nil)
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, int64(1), env.enrollmentCount(t))
}

func TestUpdateProgress_CompletionMintsCertificateOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "u1", models.RoleStudent)
	course := env.seedCourse(t, "Intro to Go", "0", twoModuleCurriculum())
	_, err := env.engine.Enroll(ctx, user, course.ID, nil)
	require.NoError(t, err)

	first, err := env.engine.UpdateProgress(ctx, user, completePatch(course.ID, 92))
	require.NoError(t, err)
	assert.True(t, first.NewlyCertified)
	require.NotNil(t, first.CertificateID)
	assert.Regexp(t, `^AIC-[0-9A-F]{8}$`, *first.CertificateID)
	require.NotNil(t, first.Enrollment.CompletionDate)
	assert.True(t, fixedNow.Equal(*first.Enrollment.CompletionDate))

	second, err := env.engine.UpdateProgress(ctx, user, completePatch(course.ID, 50))
	require.NoError(t, err)
	assert.False(t, second.NewlyCertified)
	require.NotNil(t, second.CertificateID)
	assert.Equal(t, *first.CertificateID, *second.CertificateID)

	stored := env.storedEnrollment(t, "u1", course.ID)
	assert.Equal(t, *first.CertificateID, *stored.CertificateID)
	require.NotNil(t, stored.CertifiedScore)
	assert.Equal(t, 92.0, *stored.CertifiedScore)
	require.NotNil(t, stored.Score)
	assert.Equal(t, 50.0, *stored.Score)
	require.NotNil(t, stored.CompletionDate)
	assert.WithinDuration(t, fixedNow, *stored.CompletionDate, time.Second)

	issued := env.publisher.EventsOfType(models.EventCertificateIssued)
	require.Len(t, issued, 1)
	var data models.CertificateIssuedData
	require.NoError(t, issued[0].DecodeData(&data))
	assert.Equal(t, *first.CertificateID, data.CertificateID)
	assert.Equal(t, "Intro to Go", data.CourseTitle)
	assert.Equal(t, user.Email, data.UserEmail)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CertificatesIssued))
}

func TestUpdateProgress_PartialPatchKeepsOtherFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "u1", models.RoleStudent)
	course := env.seedCourse(t, "Intro to Go", "0", twoModuleCurriculum())
	_, err := env.engine.Enroll(ctx, user, course.ID, nil)
	require.NoError(t, err)

	_, err = env.engine.UpdateProgress(ctx, user, &ProgressPatchRequest{
		CourseID:    course.ID,
		Progress:    ptr(40),
		ModuleIndex: ptr(1),
		LessonIndex: ptr(1),
	})
	require.NoError(t, err)

	result, err := env.engine.UpdateProgress(ctx, user, &ProgressPatchRequest{CourseID: course.ID, Score: ptr(70.0)})
	require.NoError(t, err)
	assert.False(t, result.NewlyCertified)
	assert.Nil(t, result.CertificateID)

	stored := env.storedEnrollment(t, "u1", course.ID)
	assert.Equal(t, 40, stored.Progress)
	assert.Equal(t, 1, stored.LastModuleIndex)
	assert.Equal(t, 1, stored.LastLessonIndex)
	assert.Equal(t, models.EnrollmentInProgress, stored.Status)
	require.NotNil(t, stored.Score)
	assert.Equal(t, 70.0, *stored.Score)
}

func TestUpdateProgress_EmptyPatchIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "u1", models.RoleStudent)
	course := env.seedCourse(t, "Intro to Go", "0", nil)
	_, err := env.engine.Enroll(ctx, user, course.ID, nil)
	require.NoError(t, err)

	result, err := env.engine.UpdateProgress(ctx, user, &ProgressPatchRequest{CourseID: course.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Enrollment.Progress)
	assert.False(t, result.NewlyCertified)
}

func TestUpdateProgress_NotEnrolled(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "u1", models.RoleStudent)
	course := env.seedCourse(t, "Intro to Go", "0", nil)

	_, err := env.engine.UpdateProgress(context.Background(), user, completePatch(course.ID, 90))
	assert.ErrorIs(t, err, ErrNotEnrolled)
	assert.Equal(t, int64(0), env.enrollmentCount(t))
}

func TestUpdateProgress_RejectsInvalidPatch(t *testing.T) {
	tests := []struct {
		name  string
		patch func(courseID uint) *ProgressPatchRequest
	}{
		{
			name: "progress above 100",
			patch: func(courseID uint) *ProgressPatchRequest {
				return &ProgressPatchRequest{CourseID: courseID, Progress: ptr(150)}
			},
		},
		{
			name: "negative progress",
			patch: func(courseID uint) *ProgressPatchRequest {
				return &ProgressPatchRequest{CourseID: courseID, Progress: ptr(-1)}
			},
		},
		{
			name: "score above 100",
			patch: func(courseID uint) *ProgressPatchRequest {
				return &ProgressPatchRequest{CourseID: courseID, Score: ptr(100.5)}
			},
		},
		{
			name: "unknown status",
			patch: func(courseID uint) *ProgressPatchRequest {
				return &ProgressPatchRequest{CourseID: courseID, Status: ptr(models.EnrollmentStatus("paused"))}
			},
		},
		{
			name: "module outside curriculum",
			patch: func(courseID uint) *ProgressPatchRequest {
				return &ProgressPatchRequest{CourseID: courseID, ModuleIndex: ptr(2)}
			},
		},
		{
			name: "lesson outside module",
			patch: func(courseID uint) *ProgressPatchRequest {
				return &ProgressPatchRequest{CourseID: courseID, ModuleIndex: ptr(1), LessonIndex: ptr(2)}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			user := env.seedUser(t, "u1", models.RoleStudent)
			course := env.seedCourse(t, "Intro to Go", "0", twoModuleCurriculum())
			_, err := env.engine.Enroll(ctx, user, course.ID, nil)
			require.NoError(t, err)

			_, err = env.engine.UpdateProgress(ctx, user, tt.patch(course.ID))
			assert.ErrorIs(t, err, ErrValidationFailed)

			stored := env.storedEnrollment(t, "u1", course.ID)
			assert.Equal(t, 0, stored.Progress)
			assert.Equal(t, 0, stored.LastModuleIndex)
			assert.Equal(t, 0, stored.LastLessonIndex)
		})
	}
}

func TestUpdateProgress_LessonBookmarkUsesStoredModule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "u1", models.RoleStudent)
	course := env.seedCourse(t, "Intro to Go", "0", twoModuleCurriculum())
	_, err := env.engine.Enroll(ctx, user, course.ID, nil)
	require.NoError(t, err)

	// Module 0 has three lessons, module 1 has two
	_, err = env.engine.UpdateProgress(ctx, user, &ProgressPatchRequest{CourseID: course.ID, LessonIndex: ptr(2)})
	require.NoError(t, err)

	_, err = env.engine.UpdateProgress(ctx, user, &ProgressPatchRequest{CourseID: course.ID, ModuleIndex: ptr(1), LessonIndex: ptr(0)})
	require.NoError(t, err)

	_, err = env.engine.UpdateProgress(ctx, user, &ProgressPatchRequest{CourseID: course.ID, LessonIndex: ptr(2)})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestUpdateProgress_CertificateIDCollisionIsRetried(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	other := env.seedUser(t, "u2", models.RoleStudent)
	user := env.seedUser(t, "u1", models.RoleStudent)
	course := env.seedCourse(t, "Intro to Go", "0", nil)

	require.NoError(t, env.db.Create(&models.Enrollment{
		UserID:         other.ID,
		CourseID:       course.ID,
		Status:         models.EnrollmentCompleted,
		Progress:       100,
		CertificateID:  ptr("AIC-00000001"),
		CompletionDate: ptr(fixedNow),
	}).Error)

	ids := []string{"AIC-00000001", "AIC-00000002"}
	var calls int
	env.engine.newCertificateID = func() string {
		id := ids[calls]
		calls++
		return id
	}

	_, err := env.engine.Enroll(ctx, user, course.ID, nil)
	require.NoError(t, err)

	result, err := env.engine.UpdateProgress(ctx, user, completePatch(course.ID, 80))
	require.NoError(t, err)
	assert.True(t, result.NewlyCertified)
	assert.Equal(t, "AIC-00000002", *result.CertificateID)
	assert.Equal(t, 2, calls)

	stored := env.storedEnrollment(t, "u1", course.ID)
	assert.Equal(t, "AIC-00000002", *stored.CertificateID)
	assert.Equal(t, models.EnrollmentCompleted, stored.Status)
	assert.Equal(t, 100, stored.Progress)
}

func TestUpdateProgress_CertificateSurvivesStatusRollback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "u1", models.RoleStudent)
	course := env.seedCourse(t, "Intro to Go", "0", nil)
	_, err := env.engine.Enroll(ctx, user, course.ID, nil)
	require.NoError(t, err)

	certified, err := env.engine.UpdateProgress(ctx, user, completePatch(course.ID, 88))
	require.NoError(t, err)

	back, err := env.engine.UpdateProgress(ctx, user, &ProgressPatchRequest{
		CourseID: course.ID,
		Status:   ptr(models.EnrollmentInProgress),
		Progress: ptr(60),
	})
	require.NoError(t, err)
	assert.Equal(t, *certified.CertificateID, *back.CertificateID)

	view, err := env.engine.GetStatus(ctx, user, course.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentInProgress, view.Status)
	assert.Equal(t, *certified.CertificateID, *view.CertificateID)

	again, err := env.engine.UpdateProgress(ctx, user, completePatch(course.ID, 95))
	require.NoError(t, err)
	assert.False(t, again.NewlyCertified)
	assert.Equal(t, *certified.CertificateID, *again.CertificateID)
	assert.Len(t, env.publisher.EventsOfType(models.EventCertificateIssued), 1)
}

func TestUpdateProgress_ConcurrentCompletionMintsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "u1", models.RoleStudent)
	course := env.seedCourse(t, "Intro to Go", "0", nil)
	_, err := env.engine.Enroll(ctx, user, course.ID, nil)
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	results := make([]*ProgressResult, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = env.engine.UpdateProgress(ctx, user, completePatch(course.ID, float64(90+i)))
		}(i)
	}
	wg.Wait()

	newly := 0
	ids := make(map[string]struct{})
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i], fmt.Sprintf("worker %d", i))
		require.NotNil(t, results[i].CertificateID)
		ids[*results[i].CertificateID] = struct{}{}
		if results[i].NewlyCertified {
			newly++
		}
	}
	assert.Equal(t, 1, newly)
	assert.Len(t, ids, 1)
	assert.Len(t, env.publisher.EventsOfType(models.EventCertificateIssued), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CertificatesIssued))
}

func TestGetStatus_AdminPreviewIsSynthetic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedUser(t, "admin", models.RoleAdmin)
	course := env.seedCourse(t, "Advanced Go", "49.99", nil)

	view, err := env.engine.GetStatus(ctx, admin, course.ID)
	require.NoError(t, err)
	assert.True(t, view.IsPreview)
	assert.Equal(t, models.EnrollmentCompleted, view.Status)
	assert.Equal(t, 100, view.Progress)
	require.NotNil(t, view.CertificateID)
	assert.Equal(t, models.AdminPreviewCertificate, *view.CertificateID)

	assert.Equal(t, int64(0), env.enrollmentCount(t))
	assert.Empty(t, env.publisher.GetPublishedEvents())
	assert.Equal(t, 0.0, testutil.ToFloat64(env.metrics.CertificatesIssued))

	_, err = env.engine.GetStatus(ctx, admin, 4242)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestGetStatus_UnpaidStudentIsNotEnrolled(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "u1", models.RoleStudent)
	course := env.seedCourse(t, "Advanced Go", "49.99", nil)

	_, err := env.engine.GetStatus(context.Background(), user, course.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestGetStatus_RepairsCompletedRowWithoutCertificate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "u1", models.RoleStudent)
	course := env.seedCourse(t, "Intro to Go", "0", nil)
	require.NoError(t, env.db.Create(&models.Enrollment{
		UserID:   user.ID,
		CourseID: course.ID,
		Status:   models.EnrollmentCompleted,
		Progress: 100,
		Score:    ptr(77.0),
	}).Error)

	view, err := env.engine.GetStatus(ctx, user, course.ID)
	require.NoError(t, err)
	require.NotNil(t, view.CertificateID)
	assert.Regexp(t, `^AIC-[0-9A-F]{8}$`, *view.CertificateID)

	stored := env.storedEnrollment(t, "u1", course.ID)
	assert.Equal(t, *view.CertificateID, *stored.CertificateID)
	require.NotNil(t, stored.CertifiedScore)
	assert.Equal(t, 77.0, *stored.CertifiedScore)
	assert.Len(t, env.publisher.EventsOfType(models.EventCertificateIssued), 1)

	again, err := env.engine.GetStatus(ctx, user, course.ID)
	require.NoError(t, err)
	assert.Equal(t, *view.CertificateID, *again.CertificateID)
	assert.Len(t, env.publisher.EventsOfType(models.EventCertificateIssued), 1)
}

func TestRepairCertificate_LeavesInProgressRowAlone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "u1", models.RoleStudent)
	course := env.seedCourse(t, "Intro to Go", "0", nil)
	_, err := env.engine.Enroll(ctx, user, course.ID, nil)
	require.NoError(t, err)

	enrollment, err := env.engine.RepairCertificate(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Nil(t, enrollment.CertificateID)
	assert.Empty(t, env.publisher.EventsOfType(models.EventCertificateIssued))

	_, err = env.engine.RepairCertificate(ctx, "nobody", course.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestListMine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "u1", models.RoleStudent)
	env.seedUser(t, "u2", models.RoleStudent)
	withCurriculum := env.seedCourse(t, "Intro to Go", "0", twoModuleCurriculum())
	plain := env.seedCourse(t, "Go Tooling", "0", nil)

	_, err := env.engine.Enroll(ctx, user, withCurriculum.ID, nil)
	require.NoError(t, err)
	_, err = env.engine.Enroll(ctx, user, plain.ID, nil)
	require.NoError(t, err)
	_, err = env.engine.Enroll(ctx, &models.User{ID: "u2"}, plain.ID, nil)
	require.NoError(t, err)

	mine, err := env.engine.ListMine(ctx, user)
	require.NoError(t, err)
	require.Len(t, mine, 2)

	byCourse := make(map[uint]*MyEnrollmentResponse)
	for _, m := range mine {
		byCourse[m.CourseID] = m
	}
	require.Contains(t, byCourse, withCurriculum.ID)
	assert.Equal(t, "Intro to Go", byCourse[withCurriculum.ID].CourseTitle)
	assert.Equal(t, 5, byCourse[withCurriculum.ID].TotalLessons)
	assert.Equal(t, 2, byCourse[withCurriculum.ID].TotalModules)
	require.Contains(t, byCourse, plain.ID)
	assert.Equal(t, 0, byCourse[plain.ID].TotalLessons)
}

func TestNewCertificateID(t *testing.T) {
	assert.Regexp(t, `^AIC-[0-9A-F]{8}$`, NewCertificateID("aic"))
	assert.NotEqual(t, NewCertificateID("AIC"), NewCertificateID("AIC"))
}
