package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/instructor-directory-api/internal/models"
	appErrors "github.com/noah-isme/instructor-directory-api/pkg/errors"
)

type settingsRepository interface {
	Get(ctx context.Context, key string) (*models.Configuration, error)
	Upsert(ctx context.Context, cfg *models.Configuration) error
}

type allowedSetting struct {
	Type        models.ConfigurationType
	Description string
}

var allowedSettings = map[string]allowedSetting{
	models.SettingDisplayTestimonials: {
		Type:        models.ConfigurationTypeBoolean,
		Description: "Show instructor testimonials in listings and on profiles",
	},
}

// SettingsConfig carries the environment defaults used when a setting has no row.
type SettingsConfig struct {
	DisplayTestimonials bool
}

// SettingsService reads and writes runtime directory settings.
type SettingsService struct {
	repo     settingsRepository
	logger   *zap.Logger
	defaults map[string]string
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(repo settingsRepository, logger *zap.Logger, cfg SettingsConfig) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{
		repo:   repo,
		logger: logger,
		defaults: map[string]string{
			models.SettingDisplayTestimonials: strconv.FormatBool(cfg.DisplayTestimonials),
		},
	}
}

// Get returns a setting, falling back to its default when no row is stored.
func (s *SettingsService) Get(ctx context.Context, key string) (*models.Configuration, error) {
	meta, ok := allowedSettings[key]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported setting key")
	}
	cfg, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.Configuration{Key: key, Value: s.defaults[key], Type: meta.Type, Description: strPtr(meta.Description)}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get setting")
	}
	return cfg, nil
}

// DisplayTestimonials reports whether testimonials are shown.
func (s *SettingsService) DisplayTestimonials(ctx context.Context) (bool, error) {
	cfg, err := s.Get(ctx, models.SettingDisplayTestimonials)
	if err != nil {
		return false, err
	}
	enabled, err := strconv.ParseBool(strings.TrimSpace(cfg.Value))
	if err != nil {
		s.logger.Warn("invalid display_testimonials value", zap.String("value", cfg.Value))
		return false, nil
	}
	return enabled, nil
}

// Set stores a setting on behalf of actor.
func (s *SettingsService) Set(ctx context.Context, key, value, actor string) (*models.Configuration, error) {
	meta, ok := allowedSettings[key]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported setting key")
	}
	value = strings.TrimSpace(value)
	if meta.Type == models.ConfigurationTypeBoolean {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "value must be a boolean")
		}
		value = strconv.FormatBool(parsed)
	}

	cfg := &models.Configuration{
		Key:         key,
		Value:       value,
		Type:        meta.Type,
		Description: strPtr(meta.Description),
		UpdatedBy:   normalizeOptional(&actor),
	}
	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update setting")
	}
	s.logger.Info("setting updated", zap.String("key", key), zap.String("value", value), zap.String("actor", actor))
	return cfg, nil
}
