package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/metrics"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/payments"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/course-service/internal/validator"
	"github.com/SAP-F-2025/course-service/pkg"
)

func ptr[T any](v T) *T { return &v }

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type fakeOracle struct {
	mu        sync.Mutex
	sessions  map[string]*payments.Verification
	checkouts []payments.CheckoutRequest
	verifyErr error
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{sessions: make(map[string]*payments.Verification)}
}

func (f *fakeOracle) CreateCheckout(ctx context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkouts = append(f.checkouts, req)
	id := fmt.Sprintf("cs_test_%d", len(f.checkouts))
	return &payments.CheckoutSession{SessionID: id, RedirectURL: "https://checkout.example.com/" + id}, nil
}

func (f *fakeOracle) Verify(ctx context.Context, sessionID string) (*payments.Verification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	v, ok := f.sessions[sessionID]
	if !ok {
		return nil, payments.ErrSessionNotFound
	}
	return v, nil
}

func (f *fakeOracle) addSession(id string, paid bool, amount int64, courseID uint, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[id] = &payments.Verification{
		SessionID:   id,
		Paid:        paid,
		AmountTotal: amount,
		Currency:    "usd",
		Metadata: map[string]string{
			payments.MetadataCourseID: strconv.FormatUint(uint64(courseID), 10),
			payments.MetadataUserID:   userID,
		},
	}
}

type testEnv struct {
	db        *gorm.DB
	repo      repositories.Repository
	cache     *cache.CacheManager
	logger    *slog.Logger
	validator *validator.Validator
	publisher *events.MockEventPublisher
	oracle    *fakeOracle
	metrics   *metrics.Metrics
	engine    *enrollmentService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, pkg.Migrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithRedis(t, nil)
}

// newTestEnvWithRedis wires the repository and cache manager to client; nil
// disables caching.
func newTestEnvWithRedis(t *testing.T, client *redis.Client) *testEnv {
	t.Helper()

	db := newTestDB(t)
	cm := cache.NewCacheManager(client)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validator.New()
	m := metrics.New()
	oracle := newFakeOracle()
	publisher := events.NewMockEventPublisher(log)
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db, RedisClient: client})

	engine := newEnrollmentService(repo, db, log, v, publisher, NewPaymentVerifier(oracle, "usd", m, log), m, EnrollmentConfig{
		CertificatePrefix: "AIC",
		Currency:          "usd",
	})
	engine.now = func() time.Time { return fixedNow }

	return &testEnv{
		db:        db,
		repo:      repo,
		cache:     cm,
		logger:    log,
		validator: v,
		publisher: publisher,
		oracle:    oracle,
		metrics:   m,
		engine:    engine,
	}
}

func (e *testEnv) seedUser(t *testing.T, id string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{ID: id, Email: id + "@example.com", FullName: "User " + id, Role: role}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) seedCourse(t *testing.T, title, price string, curriculum *models.Curriculum) *models.Course {
	t.Helper()
	course := &models.Course{Title: title, Price: decimal.RequireFromString(price), Category: "General", IsActive: true}
	if curriculum != nil {
		course.Curriculum = datatypes.NewJSONType(*curriculum)
	}
	require.NoError(t, e.db.Create(course).Error)
	return course
}

func (e *testEnv) enrollmentCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.Enrollment{}).Count(&count).Error)
	return count
}

func (e *testEnv) storedEnrollment(t *testing.T, userID string, courseID uint) *models.Enrollment {
	t.Helper()
	var enrollment models.Enrollment
	require.NoError(t, e.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error)
	return &enrollment
}

func twoModuleCurriculum() *models.Curriculum {
	return &models.Curriculum{Modules: []models.CurriculumModule{
		{Title: "Basics", Lessons: []models.CurriculumLesson{{Title: "Intro"}, {Title: "Types"}, {Title: "Funcs"}}},
		{Title: "Concurrency", Lessons: []models.CurriculumLesson{{Title: "Goroutines"}, {Title: "Channels"}}},
	}}
}
