package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/config"
	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/metrics"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/payments"
	"github.com/SAP-F-2025/course-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
	"github.com/SAP-F-2025/course-service/internal/validator"
	"github.com/SAP-F-2025/course-service/pkg"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeTokenParser accepts "token-<subject>" for every registered subject
type fakeTokenParser struct {
	claims map[string]*casdoorsdk.Claims
}

func (p *fakeTokenParser) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	claims, ok := p.claims[token]
	if !ok {
		return nil, errors.New("signature is invalid")
	}
	return claims, nil
}

type fakeOracle struct {
	mu       sync.Mutex
	sessions map[string]*payments.Verification
	created  int
}

func (f *fakeOracle) CreateCheckout(ctx context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	id := fmt.Sprintf("cs_test_%d", f.created)
	return &payments.CheckoutSession{SessionID: id, RedirectURL: "https://checkout.example.com/" + id}, nil
}

func (f *fakeOracle) Verify(ctx context.Context, sessionID string) (*payments.Verification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.sessions[sessionID]
	if !ok {
		return nil, payments.ErrSessionNotFound
	}
	return v, nil
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	tokens *fakeTokenParser
	oracle *fakeOracle
}

func newTestServer(t *testing.T) *testServer {
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

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	log := utils.NewSlogLogger(slogger)
	v := validator.New()
	m := metrics.New()
	oracle := &fakeOracle{sessions: make(map[string]*payments.Verification)}
	tokens := &fakeTokenParser{claims: make(map[string]*casdoorsdk.Claims)}

	sm := services.NewServiceManager(services.Dependencies{
		DB:        db,
		Repo:      postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db}),
		Cache:     cache.NewCacheManager(nil),
		Logger:    slogger,
		Validator: v,
		Publisher: events.NewMockEventPublisher(slogger),
		Oracle:    oracle,
		Metrics:   m,
	}, services.ServiceManagerConfig{
		CertificatePrefix: "AIC",
		Currency:          "usd",
		FrontendURL:       "https://learn.example.com",
	})
	require.NoError(t, sm.Initialize(context.Background()))

	cfg := &config.Config{RateLimit: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100}}
	router := gin.New()
	SetupMiddleware(router, log, cfg, m)
	NewHandlerManager(sm, v, log, tokens, cfg.RateLimit, m).SetupRoutes(router)

	return &testServer{router: router, db: db, tokens: tokens, oracle: oracle}
}

// login registers a token for subject and returns it
func (s *testServer) login(subject string, isAdmin bool) string {
	token := "token-" + subject
	s.tokens.claims[token] = &casdoorsdk.Claims{
		User: casdoorsdk.User{
			Id:          subject,
			Name:        subject,
			DisplayName: "User " + subject,
			Email:       subject + "@example.com",
			IsAdmin:     isAdmin,
		},
	}
	return token
}

func (s *testServer) seedCourse(t *testing.T, title, price string, active bool) *models.Course {
	t.Helper()
	course := &models.Course{Title: title, Price: decimal.RequireFromString(price), Category: "General", IsActive: true}
	require.NoError(t, s.db.Create(course).Error)
	if !active {
		require.NoError(t, s.db.Model(course).Update("is_active", false).Error)
	}
	return course
}

func (s *testServer) addPaidSession(id string, amount int64, courseID uint, userID string) {
	s.oracle.mu.Lock()
	defer s.oracle.mu.Unlock()
	s.oracle.sessions[id] = &payments.Verification{
		SessionID:   id,
		Paid:        true,
		AmountTotal: amount,
		Currency:    "usd",
		Metadata: map[string]string{
			payments.MetadataCourseID: strconv.FormatUint(uint64(courseID), 10),
			payments.MetadataUserID:   userID,
		},
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func urlf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
