package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/instructor-directory-api/internal/models"
	"github.com/noah-isme/instructor-directory-api/pkg/postcode"
)

const (
	instructorColumns = "fino, name, gender, email, website, password, password_legacy, postcodes, lat, lng, active, status, priority, priority_start, offer, notes, about, offers, created_at, updated_at"

	// Mean earth radius in miles.
	earthRadiusMiles = 3959

	defaultListLimit = 10
	maxListLimit     = 100
)

// Columns callers may filter on with equality.
var instructorFilterColumns = map[string]bool{
	"fino":     true,
	"name":     true,
	"gender":   true,
	"email":    true,
	"website":  true,
	"status":   true,
	"offer":    true,
	"priority": true,
	"active":   true,
}

// Columns a partial update may touch. fino is immutable.
var instructorUpdateColumns = map[string]bool{
	"name":            true,
	"gender":          true,
	"email":           true,
	"website":         true,
	"password":        true,
	"password_legacy": true,
	"postcodes":       true,
	"active":          true,
	"status":          true,
	"offer":           true,
	"notes":           true,
	"about":           true,
	"offers":          true,
}

// ErrDuplicateInstructor is returned by Create when the franchise number is taken.
var ErrDuplicateInstructor = errors.New("instructor already exists")

const uniqueViolation = "23505"

// UnknownColumnError is returned for filter or update keys outside the allowed set.
type UnknownColumnError struct {
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown instructor column %q", e.Column)
}

// InstructorRepository manages persistence for instructors.
type InstructorRepository struct {
	db    *sqlx.DB
	table string
}

// NewInstructorRepository constructs an InstructorRepository over table.
func NewInstructorRepository(db *sqlx.DB, table string) *InstructorRepository {
	if table == "" {
		table = "instructors"
	}
	return &InstructorRepository{db: db, table: pq.QuoteIdentifier(table)}
}

// FindByFino fetches an instructor by franchise number.
func (r *InstructorRepository) FindByFino(ctx context.Context, fino int64) (*models.Instructor, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE fino = $1", instructorColumns, r.table)
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, fino); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find instructor: %w", err)
	}
	return &instructor, nil
}

// Exists reports whether a franchise number is already registered.
func (r *InstructorRepository) Exists(ctx context.Context, fino int64) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE fino = $1 LIMIT 1", r.table)
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, fino); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check instructor fino: %w", err)
	}
	return true, nil
}

// Create inserts a new instructor record.
func (r *InstructorRepository) Create(ctx context.Context, instructor *models.Instructor) error {
	now := time.Now().UTC()
	if instructor.CreatedAt.IsZero() {
		instructor.CreatedAt = now
	}
	instructor.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES (:fino, :name, :gender, :email, :website, :password, :password_legacy, :postcodes, :lat, :lng, :active, :status, :priority, :priority_start, :offer, :notes, :about, :offers, :created_at, :updated_at)`,
		r.table, instructorColumns)
	if _, err := r.db.NamedExecContext(ctx, query, instructor); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateInstructor
		}
		return fmt.Errorf("create instructor: %w", err)
	}
	return nil
}

// Update applies a partial column update. It does not check that the row exists.
func (r *InstructorRepository) Update(ctx context.Context, fino int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	columns := sortedKeys(fields)
	sets := make([]string, 0, len(columns)+1)
	args := make([]interface{}, 0, len(columns)+2)
	for _, column := range columns {
		if !instructorUpdateColumns[column] {
			return &UnknownColumnError{Column: column}
		}
		args = append(args, fields[column])
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, fino)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE fino = $%d", r.table, strings.Join(sets, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update instructor: %w", err)
	}
	return nil
}

// UpdateLocation stores geocoded coordinates.
func (r *InstructorRepository) UpdateLocation(ctx context.Context, fino int64, lat, lng float64) error {
	query := fmt.Sprintf("UPDATE %s SET lat = $2, lng = $3, updated_at = $4 WHERE fino = $1", r.table)
	if _, err := r.db.ExecContext(ctx, query, fino, lat, lng, time.Now().UTC()); err != nil {
		return fmt.Errorf("update instructor location: %w", err)
	}
	return nil
}

// ListAll returns every instructor with the given active flag, newest franchise first.
func (r *InstructorRepository) ListAll(ctx context.Context, active bool) ([]models.Instructor, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE active = $1 ORDER BY fino DESC", instructorColumns, r.table)
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query, active); err != nil {
		return nil, fmt.Errorf("list all instructors: %w", err)
	}
	return instructors, nil
}

// List returns instructors matching an equality filter, priority first then random.
func (r *InstructorRepository) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, error) {
	base := fmt.Sprintf("FROM %s WHERE 1=1", r.table)
	var conditions []string
	var args []interface{}

	for _, column := range sortedKeys(filter.Where) {
		if !instructorFilterColumns[column] {
			return nil, &UnknownColumnError{Column: column}
		}
		args = append(args, filter.Where[column])
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "active = TRUE")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY priority DESC, RANDOM() LIMIT %d", instructorColumns, base, clampLimit(filter.Limit))
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query, args...); err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	return instructors, nil
}

// FindNearby runs the haversine distance search around a point. The acos
// argument is clamped because PostgreSQL rejects values a hair outside [-1, 1].
func (r *InstructorRepository) FindNearby(ctx context.Context, q models.NearbyQuery) ([]models.Instructor, error) {
	args := []interface{}{q.Lat, q.Lng}
	distance := fmt.Sprintf(`%d * ACOS(LEAST(1.0, GREATEST(-1.0, COS(RADIANS($1::float8)) * COS(RADIANS(lat)) * COS(RADIANS(lng) - RADIANS($2::float8)) + SIN(RADIANS($1::float8)) * SIN(RADIANS(lat)))))`, earthRadiusMiles)

	conditions := []string{"active = TRUE", "lat IS NOT NULL", "lng IS NOT NULL"}
	if q.MatchArea {
		args = append(args, likeContains(postcode.CoverageToken(q.Area)))
		conditions = append(conditions, fmt.Sprintf("postcodes LIKE $%d", len(args)))
	}
	args = append(args, q.MaxMiles)
	maxParam := len(args)

	order := []string{"priority DESC", "distance ASC"}
	if q.OfferFirst {
		order = append([]string{"offer DESC"}, order...)
	}

	query := fmt.Sprintf(`SELECT * FROM (SELECT %s, %s AS distance FROM %s WHERE %s) AS nearby WHERE distance <= $%d ORDER BY %s LIMIT %d`,
		instructorColumns, distance, r.table, strings.Join(conditions, " AND "), maxParam, strings.Join(order, ", "), clampLimit(q.Limit))

	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query, args...); err != nil {
		return nil, fmt.Errorf("find nearby instructors: %w", err)
	}
	return instructors, nil
}

// FindByArea returns active instructors whose coverage list contains the area.
func (r *InstructorRepository) FindByArea(ctx context.Context, q models.AreaQuery) ([]models.Instructor, error) {
	order := []string{"priority DESC", "RANDOM()"}
	if q.OfferFirst {
		order = append([]string{"offer DESC"}, order...)
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE active = TRUE AND postcodes LIKE $1 ORDER BY %s LIMIT %d",
		instructorColumns, r.table, strings.Join(order, ", "), clampLimit(q.Limit))

	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query, likeContains(postcode.CoverageToken(q.Area))); err != nil {
		return nil, fmt.Errorf("find instructors by area: %w", err)
	}
	return instructors, nil
}

// SetPriority starts a priority slot at start.
func (r *InstructorRepository) SetPriority(ctx context.Context, fino int64, start time.Time) error {
	query := fmt.Sprintf("UPDATE %s SET priority = TRUE, priority_start = $2, updated_at = $2 WHERE fino = $1", r.table)
	if _, err := r.db.ExecContext(ctx, query, fino, start); err != nil {
		return fmt.Errorf("set instructor priority: %w", err)
	}
	return nil
}

// ClearExpiredPriorities ends every priority slot that started before cutoff.
func (r *InstructorRepository) ClearExpiredPriorities(ctx context.Context, cutoff time.Time) (int64, error) {
	query := fmt.Sprintf("UPDATE %s SET priority = FALSE, priority_start = NULL, updated_at = $2 WHERE priority_start < $1", r.table)
	res, err := r.db.ExecContext(ctx, query, cutoff, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("clear expired priorities: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear expired priorities: %w", err)
	}
	return affected, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likeContains(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
