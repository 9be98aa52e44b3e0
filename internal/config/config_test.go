package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, ":5050", cfg.Addr)
	assert.Equal(t, DevJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, DrugSourceStatic, cfg.Drugs.Source)
	assert.Equal(t, 500, cfg.LLM.MaxTokens)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	assert.False(t, cfg.OIDC.Enabled())
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"PORT":           "8081",
		"STORE_DRIVER":   "Postgres",
		"DATABASE_URL":   "postgres://localhost/pills",
		"DRUG_SOURCE":    "openfda",
		"TOKEN_TTL":      "1h",
		"CORS_ORIGINS":   "http://a.test, http://b.test ,",
		"OIDC_ISSUER":    "https://idp.test",
		"OIDC_CLIENT_ID": "client",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Addr)
	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Equal(t, DrugSourceOpenFDA, cfg.Drugs.Source)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.CORSOrigins)
	assert.True(t, cfg.OIDC.Enabled())
}

func TestFromLookup_AddrWinsOverPort(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{"PORT": "1", "ADDR": "127.0.0.1:9000"}))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
}

func TestFromLookup_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown store", map[string]string{"STORE_DRIVER": "mongo"}},
		{"postgres without url", map[string]string{"STORE_DRIVER": "postgres"}},
		{"unknown drug source", map[string]string{"DRUG_SOURCE": "magic"}},
		{"bad duration", map[string]string{"TOKEN_TTL": "a week"}},
		{"bad int", map[string]string{"LLM_MAX_TOKENS": "lots"}},
		{"zero tokens", map[string]string{"LLM_MAX_TOKENS": "0"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(tc.env))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
