package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-service/internal/config"
	"github.com/SAP-F-2025/course-service/internal/metrics"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

const serviceName = "course-service"

type HandlerManager struct {
	enrollmentHandler  *EnrollmentHandler
	certificateHandler *CertificateHandler
	paymentHandler     *PaymentHandler
	courseHandler      *CourseHandler
	userHandler        *UserHandler
	adminHandler       *AdminHandler
	authMiddleware     *CasdoorAuthMiddleware
	verifyLimiter      *RateLimiter

	serviceManager services.ServiceManager
	metrics        *metrics.Metrics
	logger         utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	tokenParser TokenParser,
	rateLimit config.RateLimitConfig,
	m *metrics.Metrics,
) *HandlerManager {
	return &HandlerManager{
		enrollmentHandler:  NewEnrollmentHandler(serviceManager.Enrollment(), validator, logger),
		certificateHandler: NewCertificateHandler(serviceManager.Certificate(), logger),
		paymentHandler:     NewPaymentHandler(serviceManager.Payment(), validator, logger),
		courseHandler:      NewCourseHandler(serviceManager.Course(), logger),
		userHandler:        NewUserHandler(serviceManager.Account(), validator, logger),
		adminHandler:       NewAdminHandler(serviceManager.Report(), logger),
		authMiddleware:     NewCasdoorAuthMiddleware(tokenParser, serviceManager.Account(), logger),
		verifyLimiter:      NewRateLimiter(rateLimit),
		serviceManager:     serviceManager,
		metrics:            m,
		logger:             logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.health)
	if hm.metrics != nil {
		router.GET("/metrics", hm.metrics.Handler())
	}

	api := router.Group("/api")

	// Public routes
	public := api.Group("")
	public.Use(hm.authMiddleware.OptionalAuthMiddleware())
	{
		public.GET("/courses", hm.courseHandler.ListCourses)
		public.GET("/courses/:id", hm.courseHandler.GetCourse)
	}

	verify := api.Group("")
	verify.Use(hm.verifyLimiter.Middleware())
	{
		verify.GET("/verify-certificate/:cert_id", hm.certificateHandler.Verify)
		verify.GET("/verify/:cert_id", hm.certificateHandler.Verify)
	}

	// Authenticated routes
	authed := api.Group("")
	authed.Use(hm.authMiddleware.AuthMiddleware())
	{
		authed.POST("/enroll", hm.enrollmentHandler.Enroll)
		authed.POST("/update-progress", hm.enrollmentHandler.UpdateProgress)
		authed.GET("/enrollment/:course_id", hm.enrollmentHandler.GetStatus)
		authed.GET("/my-enrollments", hm.enrollmentHandler.ListMine)

		authed.POST("/create-checkout-session", hm.paymentHandler.CreateCheckoutSession)
		authed.POST("/verify-payment", hm.paymentHandler.VerifyPayment)

		authed.GET("/profile", hm.userHandler.GetProfile)
		authed.PUT("/profile", hm.userHandler.UpdateProfile)
	}

	// Admin routes
	admin := api.Group("")
	admin.Use(hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
	{
		admin.POST("/courses", hm.courseHandler.CreateCourse)
		admin.PUT("/courses/:id", hm.courseHandler.UpdateCourse)
		admin.DELETE("/courses/:id", hm.courseHandler.DeleteCourse)

		admin.GET("/users", hm.userHandler.ListUsers)
		admin.POST("/users/:id/ban", hm.userHandler.BanUser)
		admin.PUT("/users/:id/role", hm.userHandler.UpdateRole)
		admin.DELETE("/users/:id", hm.userHandler.DeleteUser)
		admin.POST("/users/:id/restore", hm.userHandler.RestoreUser)

		admin.GET("/admin/stats", hm.adminHandler.GetStats)
		admin.GET("/admin/transactions", hm.adminHandler.ListTransactions)
		admin.GET("/admin/transactions/export", hm.adminHandler.ExportTransactions)
		admin.GET("/admin/logs", hm.adminHandler.ListAuditLogs)
	}
}

func (hm *HandlerManager) health(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		utils.GetLogger(c, hm.logger).Error("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": serviceName,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}
