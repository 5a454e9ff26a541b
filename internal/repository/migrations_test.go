package repository

import (
	"testing"

	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviousVersion(t *testing.T) {
	assert.Equal(t, database.NilVersion, previousVersion(1))
	assert.Equal(t, database.NilVersion, previousVersion(0))
	assert.Equal(t, 2, previousVersion(3))
}

func TestMigrations_Embedded(t *testing.T) {
	src, err := iofs.New(migrationsFS, "migrations")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	up, err := migrationsFS.ReadFile("migrations/000001_create_query_history.up.sql")
	require.NoError(t, err)
	// json keeps the model's key order, jsonb would not
	assert.Contains(t, string(up), "result     JSON        NOT NULL")
	assert.NotContains(t, string(up), "JSONB")
}
