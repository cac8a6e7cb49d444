package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/instructor-directory-api/internal/models"
	appErrors "github.com/noah-isme/instructor-directory-api/pkg/errors"
)

type authenticatorMock struct {
	req models.LoginRequest
	err error
}

func (m *authenticatorMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.LoginResponse{AccessToken: "token", Fino: 100}, nil
}

func TestAuthHandlerLogin(t *testing.T) {
	mock := &authenticatorMock{}
	h := NewAuthHandler(mock)
	c, w := newTestContext(http.MethodPost, "/auth/login", []byte(`{"fino":"100","password":"pw"}`))

	h.Login(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100", mock.req.Fino)
	assert.Contains(t, w.Body.String(), `"access_token":"token"`)
}

func TestAuthHandlerLoginFailures(t *testing.T) {
	h := NewAuthHandler(&authenticatorMock{err: appErrors.ErrInvalidCredentials})
	c, w := newTestContext(http.MethodPost, "/auth/login", []byte(`{"fino":"100","password":"bad"}`))
	h.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newTestContext(http.MethodPost, "/auth/login", []byte(`not json`))
	h.Login(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
