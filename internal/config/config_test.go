package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/restopos")
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SIDE_EFFECT_TIMEOUT", "")
	t.Setenv("REPORT_TIMEZONE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.SideEffectTimeout)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, time.Local, cfg.ReportLocation)
}

func TestLoad_ProductionNeedsJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/restopos")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_ReportTimezone(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/restopos")
	t.Setenv("REPORT_TIMEZONE", "UTC")
	t.Setenv("DB_MAX_CONNS", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.ReportLocation.String())
	assert.Equal(t, int32(7), cfg.DBMaxConns)

	t.Setenv("REPORT_TIMEZONE", "Not/AZone")
	_, err = Load()
	require.Error(t, err)
}
