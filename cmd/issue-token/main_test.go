package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/instructor-directory-api/internal/models"
	"github.com/noah-isme/instructor-directory-api/internal/service"
	"github.com/noah-isme/instructor-directory-api/pkg/config"
)

func TestIssueProducesVerifiableToken(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "s3cret", Issuer: "instructor-directory", Expiration: time.Hour}}

	token, err := issue(cfg, "ops", "admin", time.Minute)
	require.NoError(t, err)

	accounts := service.NewAccountService(nil, nil, nil, service.AccountConfig{TokenSecret: "s3cret", Issuer: "instructor-directory"})
	claims, err := accounts.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "ops", claims.Subject)
}

func TestIssueRejectsBadInput(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "s3cret"}}

	_, err := issue(cfg, "ops", "superuser", time.Minute)
	assert.Error(t, err)

	_, err = issue(cfg, "", "ADMIN", time.Minute)
	assert.Error(t, err)
}
