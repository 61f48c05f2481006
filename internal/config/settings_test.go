package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	s := FromEnv()

	assert.Equal(t, SourceCSV, s.ReferenceSource)
	assert.Equal(t, "*postcode*.csv", s.ReferencePattern)
	assert.Equal(t, "pcds", s.Columns.Primary)
	assert.Equal(t, "address", s.SourceColumn)
	assert.True(t, s.Extract)
	assert.Equal(t, 1, s.Workers)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("REFERENCE_SOURCE", "postgres")
	t.Setenv("REF_COL_PRIMARY", "postcode")
	t.Setenv("SOURCE_COLUMN", "site_address")
	t.Setenv("EXTRACT", "false")
	t.Setenv("WORKERS", "8")
	t.Setenv("COORDS_LATLON", "yes")

	s := FromEnv()
	assert.Equal(t, SourcePostgres, s.ReferenceSource)
	assert.Equal(t, "postcode", s.Columns.Primary)
	assert.Equal(t, "site_address", s.SourceColumn)
	assert.False(t, s.Extract)
	assert.Equal(t, 8, s.Workers)
	assert.True(t, s.LatLon)
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("FLAG", "on")
	assert.True(t, GetEnvBool("FLAG", false))

	t.Setenv("FLAG", "0")
	assert.False(t, GetEnvBool("FLAG", true))

	t.Setenv("FLAG", "garbage")
	assert.True(t, GetEnvBool("FLAG", true))
}
