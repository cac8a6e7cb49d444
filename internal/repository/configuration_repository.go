package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/instructor-directory-api/internal/models"
)

// ConfigurationRepository persists runtime settings.
type ConfigurationRepository struct {
	db    *sqlx.DB
	table string
}

// NewConfigurationRepository constructs the repository.
func NewConfigurationRepository(db *sqlx.DB, table string) *ConfigurationRepository {
	if table == "" {
		table = "configurations"
	}
	return &ConfigurationRepository{db: db, table: pq.QuoteIdentifier(table)}
}

// Get fetches a single setting by key.
func (r *ConfigurationRepository) Get(ctx context.Context, key string) (*models.Configuration, error) {
	query := fmt.Sprintf("SELECT key, value, type, description, updated_by, updated_at FROM %s WHERE key = $1", r.table)
	var cfg models.Configuration
	if err := r.db.GetContext(ctx, &cfg, query, key); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Upsert inserts or updates a setting.
func (r *ConfigurationRepository) Upsert(ctx context.Context, cfg *models.Configuration) error {
	query := fmt.Sprintf(`INSERT INTO %s (key, value, type, description, updated_by, updated_at)
VALUES (:key, :value, :type, :description, :updated_by, :updated_at)
ON CONFLICT (key)
DO UPDATE SET value = EXCLUDED.value, type = EXCLUDED.type, description = EXCLUDED.description,
              updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`, r.table)
	cfg.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, query, cfg); err != nil {
		return fmt.Errorf("upsert configuration: %w", err)
	}
	return nil
}
