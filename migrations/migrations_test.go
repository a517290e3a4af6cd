package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	migrations, err := Load()
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, "0001_init", migrations[0].Version)
	assert.Equal(t, "0002_seed_categories", migrations[1].Version)

	for _, table := range []string{"categories", "experiences", "bookings", "payments", "reviews"} {
		assert.True(t, strings.Contains(migrations[0].SQL, "CREATE TABLE IF NOT EXISTS "+table), table)
	}
	for _, slug := range []string{"'guide'", "'photographer'", "'tripplanner'", "'combo'"} {
		assert.Contains(t, migrations[1].SQL, slug)
	}
}

func TestState_Applied(t *testing.T) {
	assert.False(t, State{Version: "0001_init"}.Applied())
}
