package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/instructor-directory-api/internal/models"
)

func TestAuditLogsSuccessfulMutationsOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "ops"}})
	})
	r.POST("/instructors/:fino/priority", Audit(zap.New(core), "instructor.priority"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.PUT("/instructors/:fino", Audit(zap.New(core), "instructor.update"), func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/instructors/100/priority", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/instructors/100", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "instructor.priority", fields["action"])
	assert.Equal(t, "ops", fields["actor"])
	assert.Equal(t, "ADMIN", fields["role"])
	assert.Equal(t, "100", fields["fino"])
}
