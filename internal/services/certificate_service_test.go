package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/course-service/internal/models"
)

// certifiedEnv enrolls u1 into a free course and completes it with score 92
func certifiedEnv(t *testing.T, client *redis.Client) (*testEnv, string) {
	t.Helper()

	env := newTestEnvWithRedis(t, client)
	ctx := context.Background()
	user := env.seedUser(t, "u1", models.RoleStudent)
	course := env.seedCourse(t, "Intro to Go", "0", nil)

	_, err := env.engine.Enroll(ctx, user, course.ID, nil)
	require.NoError(t, err)
	result, err := env.engine.UpdateProgress(ctx, user, completePatch(course.ID, 92))
	require.NoError(t, err)
	require.NotNil(t, result.CertificateID)

	return env, *result.CertificateID
}

func TestCertificateVerify_ValidCertificate(t *testing.T) {
	env, id := certifiedEnv(t, nil)
	svc := NewCertificateService(env.repo, env.cache, env.logger)

	got, err := svc.Verify(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, got.Valid)
	assert.Equal(t, id, got.CertificateID)
	assert.Equal(t, "User u1", got.StudentName)
	assert.Equal(t, "Intro to Go", got.CourseTitle)
	assert.Equal(t, "2026-03-14", got.CompletionDate)
	require.NotNil(t, got.Score)
	assert.Equal(t, 92.0, *got.Score)
}

func TestCertificateVerify_ScoreIsFrozenAtIssue(t *testing.T) {
	env, id := certifiedEnv(t, nil)
	ctx := context.Background()
	svc := NewCertificateService(env.repo, env.cache, env.logger)

	user := &models.User{ID: "u1"}
	_, err := env.engine.UpdateProgress(ctx, user, &ProgressPatchRequest{CourseID: firstCourseID(t, env), Score: ptr(40.0)})
	require.NoError(t, err)

	got, err := svc.Verify(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.Score)
	assert.Equal(t, 92.0, *got.Score)
}

func TestCertificateVerify_IsCaseInsensitive(t *testing.T) {
	env, id := certifiedEnv(t, nil)
	svc := NewCertificateService(env.repo, env.cache, env.logger)

	got, err := svc.Verify(context.Background(), "  "+strings.ToLower(id)+" ")
	require.NoError(t, err)
	assert.True(t, got.Valid)
	assert.Equal(t, id, got.CertificateID)
}

func TestCertificateVerify_InvalidIDs(t *testing.T) {
	env, _ := certifiedEnv(t, nil)
	svc := NewCertificateService(env.repo, env.cache, env.logger)

	tests := []struct {
		name string
		id   string
	}{
		{name: "unknown", id: "AIC-FFFFFFFF"},
		{name: "empty", id: ""},
		{name: "blank", id: "   "},
		{name: "admin preview", id: models.AdminPreviewCertificate},
		{name: "too long", id: strings.Repeat("A", 51)},
		{name: "injection", id: "' OR 1=1 --"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Verify(context.Background(), tt.id)
			require.NoError(t, err)
			assert.False(t, got.Valid)

			body, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, `{"valid":false}`, string(body))
		})
	}
}

func TestCertificateVerify_CachesOnlyValidResults(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	env, id := certifiedEnv(t, client)
	ctx := context.Background()
	svc := NewCertificateService(env.repo, env.cache, env.logger)

	miss, err := svc.Verify(ctx, "AIC-0000CAFE")
	require.NoError(t, err)
	assert.False(t, miss.Valid)
	assert.False(t, mr.Exists("certificate:id:AIC-0000CAFE"))

	got, err := svc.Verify(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Valid)
	assert.True(t, mr.Exists("certificate:id:"+id))

	// A rename that bypasses the account service is not seen until invalidation
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", "u1").Update("full_name", "Renamed Directly").Error)
	cached, err := svc.Verify(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "User u1", cached.StudentName)

	accounts := NewAccountService(env.repo, env.cache, env.logger, env.validator)
	_, err = accounts.UpdateProfile(ctx, "u1", &UpdateProfileRequest{FullName: "Ada Lovelace"})
	require.NoError(t, err)
	assert.False(t, mr.Exists("certificate:id:"+id))

	fresh, err := svc.Verify(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", fresh.StudentName)
}

func TestCertificateVerify_CourseRenameIsVisible(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	env, id := certifiedEnv(t, client)
	ctx := context.Background()
	svc := NewCertificateService(env.repo, env.cache, env.logger)

	before, err := svc.Verify(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Intro to Go", before.CourseTitle)
	require.True(t, mr.Exists("certificate:id:"+id))

	admin := env.seedUser(t, "admin", models.RoleAdmin)
	title := "Go in Practice"
	courses := NewCourseService(env.repo, env.logger, env.validator)
	_, err = courses.Update(ctx, admin, firstCourseID(t, env), &UpdateCourseRequest{Title: &title})
	require.NoError(t, err)
	assert.False(t, mr.Exists("certificate:id:"+id))

	after, err := svc.Verify(ctx, id)
	require.NoError(t, err)
	assert.True(t, after.Valid)
	assert.Equal(t, "Go in Practice", after.CourseTitle)
}

func firstCourseID(t *testing.T, env *testEnv) uint {
	t.Helper()
	var course models.Course
	require.NoError(t, env.db.Order("id").First(&course).Error)
	return course.ID
}
