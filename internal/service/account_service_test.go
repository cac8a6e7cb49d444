package service

import (
	"context"
	"database/sql"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/instructor-directory-api/internal/models"
	appErrors "github.com/noah-isme/instructor-directory-api/pkg/errors"
)

type mockAccountRepo struct {
	instructor *models.Instructor
	err        error
}

func (m *mockAccountRepo) FindByFino(ctx context.Context, fino int64) (*models.Instructor, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.instructor == nil || m.instructor.Fino != fino {
		return nil, sql.ErrNoRows
	}
	return m.instructor, nil
}

func newAccountService(repo accountRepository, legacy bool) *AccountService {
	return NewAccountService(repo, nil, nil, AccountConfig{
		TokenSecret:        "secret",
		TokenExpiry:        time.Hour,
		Issuer:             "instructor-directory",
		LegacyPasswordCopy: legacy,
		BcryptCost:         bcrypt.MinCost,
	})
}

func hashedInstructor(t *testing.T, password string) *models.Instructor {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.Instructor{Fino: 100, Name: "Jane Q Doe", PasswordHash: string(hash), Active: true, Status: models.InstructorStatusActive}
}

func TestAccountServiceLoginSuccess(t *testing.T) {
	svc := newAccountService(&mockAccountRepo{instructor: hashedInstructor(t, "Password1!")}, false)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Fino: "100", Password: "Password1!"})
	require.NoError(t, err)
	assert.Equal(t, int64(100), resp.Fino)
	assert.Equal(t, "Jane", resp.FirstName)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "100", claims.Subject)
	assert.Equal(t, models.RoleInstructor, claims.Role)
}

func TestAccountServiceLoginRejectsWrongPassword(t *testing.T) {
	svc := newAccountService(&mockAccountRepo{instructor: hashedInstructor(t, "Password1!")}, false)

	_, err := svc.Login(context.Background(), models.LoginRequest{Fino: "100", Password: "nope"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAccountServiceLoginUnknownFino(t *testing.T) {
	svc := newAccountService(&mockAccountRepo{instructor: hashedInstructor(t, "pw")}, false)

	_, err := svc.Login(context.Background(), models.LoginRequest{Fino: "999", Password: "pw"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAccountServiceLoginValidation(t *testing.T) {
	svc := newAccountService(&mockAccountRepo{}, false)

	_, err := svc.Login(context.Background(), models.LoginRequest{Fino: "abc", Password: "pw"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAccountServiceLoginRefusesDelisted(t *testing.T) {
	instructor := hashedInstructor(t, "pw")
	instructor.Status = models.InstructorStatusDelisted
	svc := newAccountService(&mockAccountRepo{instructor: instructor}, false)

	_, err := svc.Login(context.Background(), models.LoginRequest{Fino: "100", Password: "pw"})
	assert.ErrorIs(t, err, appErrors.ErrInactiveAccount)

	instructor.Status = models.InstructorStatusActive
	instructor.Active = false
	_, err = svc.Login(context.Background(), models.LoginRequest{Fino: "100", Password: "pw"})
	assert.ErrorIs(t, err, appErrors.ErrInactiveAccount)
}

func TestAccountServiceHashAndLegacyCopy(t *testing.T) {
	svc := newAccountService(nil, true)
	hash, err := svc.Hash("secret-pass")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret-pass")))

	legacy := svc.LegacyCopy("secret-pass")
	require.NotNil(t, legacy)
	decoded, err := base64.StdEncoding.DecodeString(*legacy)
	require.NoError(t, err)
	assert.Equal(t, "secret-pass", string(decoded))

	assert.Nil(t, newAccountService(nil, false).LegacyCopy("secret-pass"))
}

func TestAccountServiceTokens(t *testing.T) {
	svc := newAccountService(nil, false)

	token, _, err := svc.IssueToken("ops", models.RoleAdmin, time.Minute)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "ops", claims.Subject)

	other := NewAccountService(nil, nil, nil, AccountConfig{TokenSecret: "other", Issuer: "instructor-directory"})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, _, err = svc.IssueToken(" ", models.RoleAdmin, 0)
	assert.Error(t, err)
}
