package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/instructor-directory-api/internal/models"
)

var instructorRowColumns = []string{"fino", "name", "gender", "email", "website", "password", "password_legacy", "postcodes", "lat", "lng", "active", "status", "priority", "priority_start", "offer", "notes", "about", "offers", "created_at", "updated_at"}

func newInstructorRepoMock(t *testing.T) (*InstructorRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewInstructorRepository(sqlx.NewDb(db, "sqlmock"), "instructors"), mock, func() { db.Close() }
}

func addInstructorRow(rows *sqlmock.Rows, fino int64, name string, extra ...interface{}) *sqlmock.Rows {
	now := time.Now()
	values := []driver.Value{fino, name, "F", "jane@example.com", nil, "hash", nil, "[AB1],[AB2]", 57.1, -2.1, true, int(models.InstructorStatusActive), false, nil, false, nil, nil, nil, now, now}
	for _, v := range extra {
		values = append(values, v)
	}
	return rows.AddRow(values...)
}

func TestInstructorRepositoryFindByFino(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + instructorColumns + ` FROM "instructors" WHERE fino = $1`)).
		WithArgs(int64(100)).
		WillReturnRows(addInstructorRow(sqlmock.NewRows(instructorRowColumns), 100, "Jane Smith"))

	instructor, err := repo.FindByFino(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), instructor.Fino)
	assert.Equal(t, models.InstructorStatusActive, instructor.Status)
	assert.Nil(t, instructor.About)
	require.NotNil(t, instructor.Postcodes)
	assert.Equal(t, "[AB1],[AB2]", *instructor.Postcodes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryFindByFinoNotFound(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(`FROM "instructors" WHERE fino = \$1`).WithArgs(int64(7)).WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByFino(context.Background(), 7)
	assert.Equal(t, sql.ErrNoRows, err)
}

func TestInstructorRepositoryExists(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM "instructors" WHERE fino = $1 LIMIT 1`)).
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM "instructors" WHERE fino = $1 LIMIT 1`)).
		WithArgs(int64(101)).
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.Exists(context.Background(), 100)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(context.Background(), 101)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryCreate(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO "instructors"`).
		WithArgs(int64(100), "Jane Smith", "F", "jane@example.com", nil, "hash", nil, nil, nil, nil, true, models.InstructorStatusPending, false, nil, false, nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	instructor := &models.Instructor{Fino: 100, Name: "Jane Smith", Gender: "F", Email: "jane@example.com", PasswordHash: "hash", Active: true}
	require.NoError(t, repo.Create(context.Background(), instructor))
	assert.False(t, instructor.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryCreateDuplicate(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO "instructors"`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &models.Instructor{Fino: 100, Name: "Jane Smith"})
	assert.ErrorIs(t, err, ErrDuplicateInstructor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryUpdateBuildsSortedSet(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "instructors" SET about = $1, name = $2, offers = $3, updated_at = $4 WHERE fino = $5`)).
		WithArgs(nil, "Jane", nil, sqlmock.AnyArg(), int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), 100, map[string]interface{}{"name": "Jane", "about": nil, "offers": nil})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryUpdateRejectsFino(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	err := repo.Update(context.Background(), 100, map[string]interface{}{"fino": 200})
	var unknown *UnknownColumnError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "fino", unknown.Column)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryListAll(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows(instructorRowColumns)
	addInstructorRow(rows, 200, "B")
	addInstructorRow(rows, 100, "A")
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "instructors" WHERE active = $1 ORDER BY fino DESC`)).
		WithArgs(true).
		WillReturnRows(rows)

	list, err := repo.ListAll(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(200), list[0].Fino)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryListFilter(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "instructors" WHERE 1=1 AND gender = $1 AND offer = $2 AND active = TRUE ORDER BY priority DESC, RANDOM() LIMIT 5`)).
		WithArgs("F", true).
		WillReturnRows(addInstructorRow(sqlmock.NewRows(instructorRowColumns), 100, "A"))

	list, err := repo.List(context.Background(), models.InstructorFilter{
		Where:      map[string]interface{}{"offer": true, "gender": "F"},
		ActiveOnly: true,
		Limit:      5,
	})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryListRejectsUnknownColumn(t *testing.T) {
	repo, _, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	_, err := repo.List(context.Background(), models.InstructorFilter{Where: map[string]interface{}{"password": "x"}})
	var unknown *UnknownColumnError
	assert.ErrorAs(t, err, &unknown)
}

func TestInstructorRepositoryFindNearbyWideArea(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	rows := addInstructorRow(sqlmock.NewRows(append(instructorRowColumns, "distance")), 100, "A", 12.5)
	mock.ExpectQuery(regexp.QuoteMeta(`3959 * ACOS(`)+`.*`+
		regexp.QuoteMeta(`WHERE active = TRUE AND lat IS NOT NULL AND lng IS NOT NULL AND postcodes LIKE $3) AS nearby WHERE distance <= $4 ORDER BY offer DESC, priority DESC, distance ASC LIMIT 10`)).
		WithArgs(57.1, -2.1, "%[AB1]%", 100.0).
		WillReturnRows(rows)

	list, err := repo.FindNearby(context.Background(), models.NearbyQuery{
		Lat: 57.1, Lng: -2.1, MaxMiles: 100, Area: "AB1", MatchArea: true, OfferFirst: true, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Distance)
	assert.InDelta(t, 12.5, *list[0].Distance, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryFindNearbyLocal(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE active = TRUE AND lat IS NOT NULL AND lng IS NOT NULL) AS nearby WHERE distance <= $3 ORDER BY priority DESC, distance ASC LIMIT 3`)).
		WithArgs(51.5, -0.1, 15.0).
		WillReturnRows(sqlmock.NewRows(append(instructorRowColumns, "distance")))

	list, err := repo.FindNearby(context.Background(), models.NearbyQuery{Lat: 51.5, Lng: -0.1, MaxMiles: 15, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryFindByArea(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE active = TRUE AND postcodes LIKE $1 ORDER BY priority DESC, RANDOM() LIMIT 10`)).
		WithArgs("%[SW1A]%").
		WillReturnRows(addInstructorRow(sqlmock.NewRows(instructorRowColumns), 100, "A"))

	list, err := repo.FindByArea(context.Background(), models.AreaQuery{Area: "SW1A"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryFindByAreaEscapesWildcards(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY offer DESC, priority DESC, RANDOM() LIMIT 2`)).
		WithArgs(`%[A\%\_]%`).
		WillReturnRows(sqlmock.NewRows(instructorRowColumns))

	_, err := repo.FindByArea(context.Background(), models.AreaQuery{Area: "A%_", OfferFirst: true, Limit: 2})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositorySetPriority(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "instructors" SET priority = TRUE, priority_start = $2, updated_at = $2 WHERE fino = $1`)).
		WithArgs(int64(100), start).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetPriority(context.Background(), 100, start))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryClearExpiredPriorities(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	cutoff := time.Date(2026, 7, 19, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "instructors" SET priority = FALSE, priority_start = NULL, updated_at = $2 WHERE priority_start < $1`)).
		WithArgs(cutoff, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	cleared, err := repo.ClearExpiredPriorities(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cleared)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryUpdateLocation(t *testing.T) {
	repo, mock, cleanup := newInstructorRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "instructors" SET lat = $2, lng = $3, updated_at = $4 WHERE fino = $1`)).
		WithArgs(int64(100), 57.1, -2.1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLocation(context.Background(), 100, 57.1, -2.1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, defaultListLimit, clampLimit(0))
	assert.Equal(t, 7, clampLimit(7))
	assert.Equal(t, maxListLimit, clampLimit(1000))
}
