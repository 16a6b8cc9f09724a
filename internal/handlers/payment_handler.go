package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
	"github.com/SAP-F-2025/course-service/internal/validator"
)

type PaymentHandler struct {
	BaseHandler
	service   services.PaymentService
	validator *validator.Validator
}

func NewPaymentHandler(service services.PaymentService, validator *validator.Validator, logger utils.Logger) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		validator:   validator,
	}
}

// CreateCheckoutSession starts a hosted checkout for a priced course
// @Summary Create checkout session
// @Tags payments
// @Accept json
// @Produce json
// @Param request body validator.CheckoutRequest true "Checkout request"
// @Success 200 {object} payments.CheckoutSession
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 404 {object} ErrorResponse "Course not found"
// @Failure 409 {object} ErrorResponse "Free course or already enrolled"
// @Router /create-checkout-session [post]
func (h *PaymentHandler) CreateCheckoutSession(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	var req validator.CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: err})
		return
	}

	h.LogRequest(c, "Creating checkout session", "user_id", user.ID, "course_id", req.CourseID)

	session, err := h.service.CreateCheckout(c.Request.Context(), user, req.CourseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// VerifyPayment confirms a checkout session and enrolls the caller
// @Summary Verify payment
// @Tags payments
// @Accept json
// @Produce json
// @Param request body validator.VerifyPaymentRequest true "Verification request"
// @Success 201 {object} map[string]interface{} "Enrolled"
// @Success 200 {object} map[string]interface{} "Already enrolled"
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 402 {object} ErrorResponse "Payment not verified"
// @Router /verify-payment [post]
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	var req validator.VerifyPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: err})
		return
	}

	h.LogRequest(c, "Verifying payment", "user_id", user.ID, "course_id", req.CourseID)

	result, err := h.service.VerifyAndEnroll(c.Request.Context(), user, req.CourseID, req.SessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if !result.Created {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"msg": "Payment verified", "enrollment": result.Enrollment})
}
