package campusauth

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by [FromEnv].
const (
	EnvStoreURL           = "CAMPUS_STORE_URL"
	EnvStoreKey           = "CAMPUS_STORE_KEY"
	EnvStoreTimeout       = "CAMPUS_STORE_TIMEOUT"
	EnvPasswordIterations = "CAMPUS_PASSWORD_ITERATIONS"
	EnvSessionPrefix      = "CAMPUS_SESSION_PREFIX"
	EnvSessionTTL         = "CAMPUS_SESSION_TTL"
	EnvSessionSliding     = "CAMPUS_SESSION_SLIDING"
	EnvJWTEnabled         = "CAMPUS_JWT_ENABLED"
	EnvJWTMethod          = "CAMPUS_JWT_METHOD"
	EnvJWTSecret          = "CAMPUS_JWT_SECRET"
	EnvJWTTTL             = "CAMPUS_JWT_TTL"
	EnvJWTIssuer          = "CAMPUS_JWT_ISSUER"
	EnvSignupEnabled      = "CAMPUS_SIGNUP_ENABLED"
	EnvSignupMinPassword  = "CAMPUS_SIGNUP_MIN_PASSWORD"
	EnvAuditEnabled       = "CAMPUS_AUDIT_ENABLED"
	EnvMetricsEnabled     = "CAMPUS_METRICS_ENABLED"
)

// FromEnv returns [DefaultConfig] overlaid with values from the process
// environment. When dotenvPaths are given, each file is loaded first; a
// missing file is ignored so deployments without one keep working.
//
// FromEnv may return an error when input validation, dependency calls, or security checks fail.
// FromEnv does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func FromEnv(dotenvPaths ...string) (Config, error) {
	for _, p := range dotenvPaths {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err != nil {
				return Config{}, err
			}
		}
	}

	cfg := DefaultConfig()

	if v := os.Getenv(EnvStoreURL); v != "" {
		cfg.Store.BaseURL = v
	}
	if v := os.Getenv(EnvStoreKey); v != "" {
		cfg.Store.APIKey = v
	}
	if d, ok := envDuration(EnvStoreTimeout); ok {
		cfg.Store.Timeout = d
	}

	if n, ok := envInt(EnvPasswordIterations); ok {
		cfg.Password.Iterations = n
	}

	if v := os.Getenv(EnvSessionPrefix); v != "" {
		cfg.Session.RedisPrefix = v
	}
	if d, ok := envDuration(EnvSessionTTL); ok {
		cfg.Session.TTL = d
	}
	if b, ok := envBool(EnvSessionSliding); ok {
		cfg.Session.SlidingExpiration = b
	}

	if b, ok := envBool(EnvJWTEnabled); ok {
		cfg.JWT.Enabled = b
	}
	if v := os.Getenv(EnvJWTMethod); v != "" {
		cfg.JWT.SigningMethod = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		cfg.JWT.PrivateKey = []byte(v)
	}
	if d, ok := envDuration(EnvJWTTTL); ok {
		cfg.JWT.AccessTTL = d
	}
	if v := os.Getenv(EnvJWTIssuer); v != "" {
		cfg.JWT.Issuer = v
	}

	if b, ok := envBool(EnvSignupEnabled); ok {
		cfg.Signup.Enabled = b
	}
	if n, ok := envInt(EnvSignupMinPassword); ok {
		cfg.Signup.MinPasswordLength = n
	}

	if b, ok := envBool(EnvAuditEnabled); ok {
		cfg.Audit.Enabled = b
	}
	if b, ok := envBool(EnvMetricsEnabled); ok {
		cfg.Metrics.Enabled = b
	}

	return cfg, nil
}

func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}
