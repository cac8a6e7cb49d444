package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/instructor-directory-api/internal/middleware"
	"github.com/noah-isme/instructor-directory-api/internal/models"
	appErrors "github.com/noah-isme/instructor-directory-api/pkg/errors"
	"github.com/noah-isme/instructor-directory-api/pkg/response"
)

type settingsStore interface {
	Get(ctx context.Context, key string) (*models.Configuration, error)
	Set(ctx context.Context, key, value, actor string) (*models.Configuration, error)
}

// SettingRequest carries a new setting value.
type SettingRequest struct {
	Value string `json:"value" binding:"required"`
}

// SettingsHandler exposes runtime settings to administrators.
type SettingsHandler struct {
	settings settingsStore
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(settings settingsStore) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get godoc
// @Summary Read a setting
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Param key path string true "Setting key"
// @Success 200 {object} response.Envelope
// @Router /settings/{key} [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	cfg, err := h.settings.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg)
}

// Update godoc
// @Summary Change a setting
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Setting key"
// @Param payload body SettingRequest true "New value"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /settings/{key} [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req SettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid setting payload"))
		return
	}
	actor := ""
	if claims, ok := middleware.Claims(c); ok {
		actor = claims.Subject
	}
	cfg, err := h.settings.Set(c.Request.Context(), c.Param("key"), req.Value, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg)
}
