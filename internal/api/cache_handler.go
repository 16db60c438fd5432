package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/khabar-news/khabar/internal/service"
	"github.com/rs/zerolog"
)

const revalidateSecretHeader = "X-Revalidate-Secret"

// CacheHandler handles on-demand revalidation
type CacheHandler struct {
	services *service.Services
	secret   string
	log      zerolog.Logger
}

// NewCacheHandler creates a new CacheHandler; an empty secret disables the check
func NewCacheHandler(services *service.Services, secret string, log zerolog.Logger) *CacheHandler {
	return &CacheHandler{
		services: services,
		secret:   secret,
		log:      log.With().Str("handler", "cache").Logger(),
	}
}

// Revalidate handles POST /api/cache {tag}
func (h *CacheHandler) Revalidate(c *gin.Context) {
	if h.secret != "" {
		given := c.GetHeader(revalidateSecretHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(h.secret)) != 1 {
			h.log.Warn().Str("client_ip", c.ClientIP()).Msg("Revalidation rejected")
			fail(c, http.StatusUnauthorized, msgUnauthorized)
			return
		}
	}

	var body struct {
		Tag string `json:"tag"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, msgBadRequest)
		return
	}
	tag := strings.TrimSpace(body.Tag)
	if tag == "" {
		badRequest(c, msgTagRequired)
		return
	}

	n, err := h.services.Cache.Invalidate(c.Request.Context(), tag)
	if err != nil {
		h.log.Error().Err(err).Str("tag", tag).Msg("Revalidation failed")
		fail(c, http.StatusInternalServerError, msgInternal)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"revalidated": true,
		"tag":         tag,
		"entries":     n,
	})
}
