package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/instructor-directory-api/internal/models"
	appErrors "github.com/noah-isme/instructor-directory-api/pkg/errors"
)

type mockSettingsRepo struct {
	rows   map[string]*models.Configuration
	getErr error
}

func (m *mockSettingsRepo) Get(ctx context.Context, key string) (*models.Configuration, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	row, ok := m.rows[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return row, nil
}

func (m *mockSettingsRepo) Upsert(ctx context.Context, cfg *models.Configuration) error {
	if m.rows == nil {
		m.rows = map[string]*models.Configuration{}
	}
	m.rows[cfg.Key] = cfg
	return nil
}

func TestSettingsServiceDisplayTestimonialsFallsBackToDefault(t *testing.T) {
	repo := &mockSettingsRepo{}

	enabled, err := NewSettingsService(repo, nil, SettingsConfig{DisplayTestimonials: true}).DisplayTestimonials(context.Background())
	require.NoError(t, err)
	assert.True(t, enabled)

	enabled, err = NewSettingsService(repo, nil, SettingsConfig{}).DisplayTestimonials(context.Background())
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestSettingsServiceStoredValueWins(t *testing.T) {
	repo := &mockSettingsRepo{}
	svc := NewSettingsService(repo, nil, SettingsConfig{DisplayTestimonials: true})

	cfg, err := svc.Set(context.Background(), models.SettingDisplayTestimonials, " FALSE ", "ops")
	require.NoError(t, err)
	assert.Equal(t, "false", cfg.Value)
	require.NotNil(t, cfg.UpdatedBy)
	assert.Equal(t, "ops", *cfg.UpdatedBy)

	enabled, err := svc.DisplayTestimonials(context.Background())
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestSettingsServiceRejectsUnknownKeyAndBadValue(t *testing.T) {
	svc := NewSettingsService(&mockSettingsRepo{}, nil, SettingsConfig{})

	_, err := svc.Set(context.Background(), "colour", "blue", "ops")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Set(context.Background(), models.SettingDisplayTestimonials, "maybe", "ops")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Get(context.Background(), "colour")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSettingsServiceRepositoryFailure(t *testing.T) {
	svc := NewSettingsService(&mockSettingsRepo{getErr: errors.New("db down")}, nil, SettingsConfig{DisplayTestimonials: true})

	_, err := svc.DisplayTestimonials(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
