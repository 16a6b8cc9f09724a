package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
)

type CertificateHandler struct {
	BaseHandler
	service services.CertificateService
}

func NewCertificateHandler(service services.CertificateService, logger utils.Logger) *CertificateHandler {
	return &CertificateHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Verify checks a certificate id publicly
// @Summary Verify a certificate
// @Description Unknown or malformed ids all answer {"valid": false}.
// @Tags certificates
// @Produce json
// @Param cert_id path string true "Certificate ID"
// @Success 200 {object} services.CertificateVerification
// @Failure 404 {object} services.CertificateVerification "Not a valid certificate"
// @Failure 429 {object} ErrorResponse "Too many requests"
// @Router /verify-certificate/{cert_id} [get]
func (h *CertificateHandler) Verify(c *gin.Context) {
	result, err := h.service.Verify(c.Request.Context(), c.Param("cert_id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if !result.Valid {
		c.JSON(http.StatusNotFound, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, result)
}
