package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/metrics"
	"github.com/SAP-F-2025/course-service/internal/payments"
	"github.com/SAP-F-2025/course-service/internal/repositories"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

// ServiceManagerConfig holds the startup configuration injected into services
type ServiceManagerConfig struct {
	CertificatePrefix string
	Currency          string
	FrontendURL       string
}

// Dependencies are the collaborators shared by all services
type Dependencies struct {
	DB        *gorm.DB
	Repo      repositories.Repository
	Cache     *cache.CacheManager
	Logger    *slog.Logger
	Validator *validator.Validator
	Publisher events.EventPublisher
	Oracle    payments.Oracle
	Metrics   *metrics.Metrics
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   Dependencies
	config ServiceManagerConfig

	// Service instances
	enrollmentService  EnrollmentService
	certificateService CertificateService
	paymentService     PaymentService
	accountService     AccountService
	courseService      CourseService
	reportService      ReportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps Dependencies, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		deps:   deps,
		config: config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if sm.deps.DB == nil || sm.deps.Repo == nil {
		return fmt.Errorf("failed to initialize services: database and repository are required")
	}
	if sm.deps.Oracle == nil {
		return fmt.Errorf("failed to initialize services: payment oracle is required")
	}

	sm.deps.Logger.Info("Initializing service manager")

	d := sm.deps
	var recorder metrics.Recorder = d.Metrics

	verifier := NewPaymentVerifier(d.Oracle, sm.config.Currency, recorder, d.Logger)
	sm.enrollmentService = NewEnrollmentService(d.Repo, d.DB, d.Logger, d.Validator, d.Publisher, verifier, recorder, EnrollmentConfig{
		CertificatePrefix: sm.config.CertificatePrefix,
		Currency:          sm.config.Currency,
	})
	sm.certificateService = NewCertificateService(d.Repo, d.Cache, d.Logger)
	sm.paymentService = NewPaymentService(d.Repo, d.Oracle, sm.enrollmentService, d.Logger, PaymentConfig{
		Currency:    sm.config.Currency,
		FrontendURL: sm.config.FrontendURL,
	})
	sm.accountService = NewAccountService(d.Repo, d.Cache, d.Logger, d.Validator)
	sm.courseService = NewCourseService(d.Repo, d.Logger, d.Validator)
	sm.reportService = NewReportService(d.Repo, d.Cache, d.Logger)

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Enrollment() EnrollmentService {
	sm.mustBeInitialized()
	return sm.enrollmentService
}

func (sm *serviceManager) Certificate() CertificateService {
	sm.mustBeInitialized()
	return sm.certificateService
}

func (sm *serviceManager) Payment() PaymentService {
	sm.mustBeInitialized()
	return sm.paymentService
}

func (sm *serviceManager) Account() AccountService {
	sm.mustBeInitialized()
	return sm.accountService
}

func (sm *serviceManager) Course() CourseService {
	sm.mustBeInitialized()
	return sm.courseService
}

func (sm *serviceManager) Report() ReportService {
	sm.mustBeInitialized()
	return sm.reportService
}

func (sm *serviceManager) mustBeInitialized() {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

// Shutdown flushes pending notifications. Connections are owned by the caller.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			sm.deps.Logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")

	return nil
}
