package handler

import (
	"errors"
	"net/http"

	"github.com/SergeiKhy/quicklink/internal/models"
	"github.com/SergeiKhy/quicklink/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// URLHandler serves the short URL API and the redirect.
type URLHandler struct {
	registry service.URLRegistry
	resolver service.RedirectResolver
	baseURL  string
	logger   *zap.Logger
}

// NewURLHandler creates a new URL handler. baseURL prefixes returned short URLs.
func NewURLHandler(registry service.URLRegistry, resolver service.RedirectResolver, baseURL string, logger *zap.Logger) *URLHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &URLHandler{
		registry: registry,
		resolver: resolver,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// ShortenRequest is the body of POST /api/v1/shorten.
type ShortenRequest struct {
	URL         string  `json:"url" binding:"required"`
	CustomAlias *string `json:"custom_alias,omitempty"`
	ExpiryDays  *int    `json:"expiry_days,omitempty"`
}

// ShortenResponse describes a created short URL.
type ShortenResponse struct {
	ShortCode string `json:"short_code"`
	ShortURL  string `json:"short_url"`
	LongURL   string `json:"long_url"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt *int64 `json:"expires_at,omitempty"`
}

// UpdateURLRequest changes the expiry. A missing or null expiry_days clears it.
type UpdateURLRequest struct {
	ExpiryDays *int `json:"expiry_days"`
}

// StatsResponse reports a record whatever its state.
type StatsResponse struct {
	ShortCode  string `json:"short_code"`
	LongURL    string `json:"long_url"`
	ClickCount int64  `json:"click_count"`
	CreatedAt  int64  `json:"created_at"`
	ExpiresAt  *int64 `json:"expires_at,omitempty"`
	IsActive   bool   `json:"is_active"`
	IsAlias    bool   `json:"custom_alias"`
}

// ErrorResponse is returned for every failed request. Reason is set for 410.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

func (h *URLHandler) shortenResponse(rec *models.URLRecord) ShortenResponse {
	return ShortenResponse{
		ShortCode: rec.Code,
		ShortURL:  h.baseURL + "/" + rec.Code,
		LongURL:   rec.Destination,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}
}

// Shorten handles POST /api/v1/shorten.
func (h *URLHandler) Shorten(c *gin.Context) {
	var req ShortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	rec, err := h.registry.Create(c.Request.Context(), &models.CreateURLInput{
		Destination: req.URL,
		Alias:       req.CustomAlias,
		ExpiryDays:  req.ExpiryDays,
	})
	if err != nil {
		h.writeError(c, "", err)
		return
	}

	c.JSON(http.StatusCreated, h.shortenResponse(rec))
}

// Redirect handles GET /:code.
func (h *URLHandler) Redirect(c *gin.Context) {
	code, ok := h.codeParam(c)
	if !ok {
		return
	}

	dest, err := h.resolver.Resolve(c.Request.Context(), code, service.Visitor{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		h.writeError(c, code, err)
		return
	}

	// temporary redirect so every visit is counted
	c.Redirect(http.StatusFound, dest)
}

// UpdateURL handles PATCH /api/v1/urls/:code.
func (h *URLHandler) UpdateURL(c *gin.Context) {
	code, ok := h.codeParam(c)
	if !ok {
		return
	}

	var req UpdateURLRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: err.Error(),
			})
			return
		}
	}

	rec, err := h.registry.UpdateExpiry(c.Request.Context(), code, req.ExpiryDays)
	if err != nil {
		h.writeError(c, code, err)
		return
	}

	c.JSON(http.StatusOK, h.shortenResponse(rec))
}

// DeleteURL handles DELETE /api/v1/urls/:code.
func (h *URLHandler) DeleteURL(c *gin.Context) {
	code, ok := h.codeParam(c)
	if !ok {
		return
	}

	if err := h.registry.SoftDelete(c.Request.Context(), code); err != nil {
		h.writeError(c, code, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Stats handles GET /api/v1/stats/:code.
func (h *URLHandler) Stats(c *gin.Context) {
	code, ok := h.codeParam(c)
	if !ok {
		return
	}

	rec, err := h.registry.Stats(c.Request.Context(), code)
	if err != nil {
		h.writeError(c, code, err)
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		ShortCode:  rec.Code,
		LongURL:    rec.Destination,
		ClickCount: rec.ClickCount,
		CreatedAt:  rec.CreatedAt,
		ExpiresAt:  rec.ExpiresAt,
		IsActive:   rec.Active,
		IsAlias:    rec.IsAlias,
	})
}

// codeParam rejects codes that no record could have before they reach the services.
func (h *URLHandler) codeParam(c *gin.Context) (string, bool) {
	code := c.Param("code")
	if !service.ValidCode(code) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_code",
			Message: "Short code has an invalid format",
		})
		return "", false
	}
	return code, true
}

func (h *URLHandler) writeError(c *gin.Context, code string, err error) {
	var gone *service.GoneError

	switch {
	case errors.As(err, &gone):
		c.JSON(http.StatusGone, ErrorResponse{
			Error:   "gone",
			Message: gone.Error(),
			Reason:  gone.Reason,
		})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Short URL not found",
		})
	case errors.Is(err, service.ErrInvalidURL):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_url", Message: err.Error()})
	case errors.Is(err, service.ErrAliasInvalid):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_alias", Message: err.Error()})
	case errors.Is(err, service.ErrInvalidExpiry):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_expiry", Message: err.Error()})
	case errors.Is(err, service.ErrAliasConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "alias_conflict", Message: err.Error()})
	case errors.Is(err, service.ErrAllocationUnavailable):
		h.logger.Error("Identifier allocation unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "unavailable",
			Message: "Service temporarily unavailable, retry later",
		})
	default:
		h.logger.Error("Request failed",
			zap.String("short_code", code),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Internal server error",
		})
	}
}
