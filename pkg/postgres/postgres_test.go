package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001_create_users.sql", files[0])
}

func TestParseTimestamp(t *testing.T) {
	assert.Nil(t, parseTimestamp(""))
	assert.Nil(t, parseTimestamp("yesterday"))

	ts := parseTimestamp("2024-03-01T10:00:00+05:30")
	require.NotNil(t, ts)
	assert.Equal(t, time.Date(2024, 3, 1, 4, 30, 0, 0, time.UTC), *ts)
}
