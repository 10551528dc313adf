package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBType)
	assert.Equal(t, 10, cfg.DBMaxOpenConn)
	assert.Equal(t, time.Duration(0), cfg.RefreshInterval)
	assert.Equal(t, "https://restcountries.com", cfg.CountriesAPIBaseURL)
	assert.Equal(t, "https://open.er-api.com", cfg.ExchangeAPIBaseURL)
}

func TestLoadBlankValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "   ")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("REFRESH_INTERVAL", "bogus")

	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 10, cfg.DBMaxOpenConn)
	assert.Equal(t, time.Duration(0), cfg.RefreshInterval)
}

func TestLoadRefreshInterval(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL", "30m")

	cfg := Load()

	assert.Equal(t, 30*time.Minute, cfg.RefreshInterval)
}

func TestCertUnescaping(t *testing.T) {
	t.Setenv("DB_CERT", `-----BEGIN CERTIFICATE-----\nMIIBIjAN\n-----END CERTIFICATE-----`)

	cfg := Load()

	assert.Equal(t, "-----BEGIN CERTIFICATE-----\nMIIBIjAN\n-----END CERTIFICATE-----", cfg.DBCACert)
}

func TestCertBlankIsUnset(t *testing.T) {
	t.Setenv("DB_CERT", "   ")

	cfg := Load()

	assert.Empty(t, cfg.DBCACert)
}
