package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/instructor-directory-api/internal/models"
)

// TestimonialRepository reads instructor testimonials.
type TestimonialRepository struct {
	db    *sqlx.DB
	table string
}

// NewTestimonialRepository constructs a TestimonialRepository over table.
func NewTestimonialRepository(db *sqlx.DB, table string) *TestimonialRepository {
	if table == "" {
		table = "instructor_testimonials"
	}
	return &TestimonialRepository{db: db, table: pq.QuoteIdentifier(table)}
}

// ListRandom returns up to limit testimonials for fino in random order.
func (r *TestimonialRepository) ListRandom(ctx context.Context, fino int64, limit int) ([]models.Testimonial, error) {
	query := fmt.Sprintf("SELECT id, fino, testimonial, created_at FROM %s WHERE fino = $1 ORDER BY RANDOM() LIMIT $2", r.table)
	var testimonials []models.Testimonial
	if err := r.db.SelectContext(ctx, &testimonials, query, fino, clampLimit(limit)); err != nil {
		return nil, fmt.Errorf("list testimonials: %w", err)
	}
	return testimonials, nil
}
