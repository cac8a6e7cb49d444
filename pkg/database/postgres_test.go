package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/instructor-directory-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "directory",
		Password: "secret",
		Name:     "instructors",
		SSLMode:  "require",
	})
	assert.Equal(t, "host=db port=5433 user=directory password=secret dbname=instructors sslmode=require", dsn)
}
