// Package config loads service settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevJWTSecret is used when JWT_SECRET is unset. It is only fit for local
// development.
const DevJWTSecret = "your-secret-key-change-in-production"

var (
	// ErrInvalidConfig wraps every validation and parse failure.
	ErrInvalidConfig = errors.New("invalid config")
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreBolt     = "bolt"
)

// Drug source strategies.
const (
	DrugSourceStatic  = "static"
	DrugSourceOpenFDA = "openfda"
	DrugSourceLLM     = "llm"
)

type Config struct {
	Addr      string
	JWTSecret string
	TokenTTL  time.Duration

	Store StoreConfig
	Drugs DrugsConfig
	LLM   LLMConfig
	HTTP  HTTPConfig
	Log   LogConfig
	OIDC  OIDCConfig
}

type StoreConfig struct {
	Driver      string
	DatabaseURL string
	SQLitePath  string
	BoltPath    string
}

type DrugsConfig struct {
	Source          string
	RxNavBaseURL    string
	DailyMedBaseURL string
	OpenFDABaseURL  string
	OpenFDAAPIKey   string
}

type LLMConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

type HTTPConfig struct {
	UpstreamTimeout time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

type LogConfig struct {
	Level  string
	Format string
}

type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether SSO is configured.
func (c OIDCConfig) Enabled() bool {
	return c.Issuer != "" && c.ClientID != ""
}

// Load reads .env (if present) into the process environment without
// overriding variables that are already set, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: .env: %w", ErrInvalidConfig, err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an environment lookup function.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	e := env{lookup: lookup}

	cfg := &Config{
		Addr:      e.str("ADDR", ":"+e.str("PORT", "5050")),
		JWTSecret: e.str("JWT_SECRET", DevJWTSecret),
		TokenTTL:  e.duration("TOKEN_TTL", 7*24*time.Hour),
		Store: StoreConfig{
			Driver:      strings.ToLower(e.str("STORE_DRIVER", StoreMemory)),
			DatabaseURL: e.str("DATABASE_URL", ""),
			SQLitePath:  e.str("SQLITE_PATH", "spillthepill.db"),
			BoltPath:    e.str("BOLT_PATH", "spillthepill.bolt"),
		},
		Drugs: DrugsConfig{
			Source:          strings.ToLower(e.str("DRUG_SOURCE", DrugSourceStatic)),
			RxNavBaseURL:    e.str("RXNAV_BASE_URL", "https://rxnav.nlm.nih.gov/REST"),
			DailyMedBaseURL: e.str("DAILYMED_BASE_URL", "https://dailymed.nlm.nih.gov/dailymed/services/v2"),
			OpenFDABaseURL:  e.str("OPENFDA_BASE_URL", "https://api.fda.gov"),
			OpenFDAAPIKey:   e.str("OPENFDA_API_KEY", ""),
		},
		LLM: LLMConfig{
			APIKey:    e.str("OPENROUTER_API_KEY", ""),
			BaseURL:   e.str("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:     e.str("LLM_MODEL", "deepseek/deepseek-chat-v3-0324:free"),
			MaxTokens: e.number("LLM_MAX_TOKENS", 500),
		},
		HTTP: HTTPConfig{
			UpstreamTimeout: e.duration("UPSTREAM_TIMEOUT", 20*time.Second),
			RequestTimeout:  e.duration("REQUEST_TIMEOUT", 60*time.Second),
			ShutdownTimeout: e.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
			CORSOrigins:     e.list("CORS_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level:  e.str("LOG_LEVEL", "info"),
			Format: e.str("LOG_FORMAT", "text"),
		},
		OIDC: OIDCConfig{
			Issuer:       e.str("OIDC_ISSUER", ""),
			ClientID:     e.str("OIDC_CLIENT_ID", ""),
			ClientSecret: e.str("OIDC_CLIENT_SECRET", ""),
			RedirectURL:  e.str("OIDC_REDIRECT_URL", ""),
		},
	}

	if err := errors.Join(e.errs...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	switch c.Store.Driver {
	case StoreMemory, StoreSQLite, StoreBolt:
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}

	switch c.Drugs.Source {
	case DrugSourceStatic, DrugSourceOpenFDA, DrugSourceLLM:
	default:
		errs = append(errs, fmt.Errorf("unknown DRUG_SOURCE %q", c.Drugs.Source))
	}

	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, errors.New("LLM_MAX_TOKENS must be positive"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}

	return errors.Join(errs...)
}

// env collects parse errors so Load can report all of them at once.
type env struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *env) str(key, fallback string) string {
	if v, ok := e.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (e *env) number(key string, fallback int) int {
	v := e.str(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (e *env) duration(key string, fallback time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

func (e *env) list(key string, fallback []string) []string {
	v := e.str(key, "")
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
