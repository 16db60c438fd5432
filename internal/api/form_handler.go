package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/khabar-news/khabar/internal/mail"
	"github.com/khabar-news/khabar/internal/models"
	"github.com/khabar-news/khabar/internal/service"
	"github.com/khabar-news/khabar/internal/validation"
	"github.com/rs/zerolog"
)

// FormHandler handles the contact and submission forms
type FormHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewFormHandler creates a new FormHandler
func NewFormHandler(services *service.Services, log zerolog.Logger) *FormHandler {
	return &FormHandler{
		services: services,
		log:      log.With().Str("handler", "form").Logger(),
	}
}

// Contact handles POST /api/contact
func (h *FormHandler) Contact(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgBadRequest)
		return
	}

	if err := h.services.Dispatch.SendContact(c.Request.Context(), &req); err != nil {
		h.respondError(c, "contact", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": msgContactSent})
}

// Submission handles POST /api/submissions
func (h *FormHandler) Submission(c *gin.Context) {
	var req models.SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, msgBadRequest)
		return
	}

	if err := h.services.Dispatch.SendSubmission(c.Request.Context(), &req); err != nil {
		h.respondError(c, "submission", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": msgSubmissionSent})
}

// respondError maps dispatch errors to status codes; upstream details stay in the log
func (h *FormHandler) respondError(c *gin.Context, form string, err error) {
	var invalid *service.InvalidRequestError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   msgMissingFields,
			"fields":  validation.Fields(invalid.Errors),
		})
	case errors.Is(err, service.ErrChannelInactive):
		fail(c, http.StatusServiceUnavailable, msgChannelInactive)
	case errors.Is(err, mail.ErrUnsupportedProvider):
		h.log.Error().Err(err).Str("form", form).Msg("Unsupported email service selected")
		fail(c, http.StatusInternalServerError, msgUnsupported)
	case errors.Is(err, service.ErrMisconfigured):
		h.log.Error().Err(err).Str("form", form).Msg("Form delivery misconfigured")
		fail(c, http.StatusInternalServerError, msgMisconfigured)
	default:
		h.log.Error().Err(err).Str("form", form).Msg("Form delivery failed")
		fail(c, http.StatusInternalServerError, msgSendFailed)
	}
}
