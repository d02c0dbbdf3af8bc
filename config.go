package campusauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/stellarmin/campusauth/batch"
)

// Config defines a public type used by campusauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Store    StoreConfig
	Intake   IntakeConfig
	Tables   TablesConfig
	Password PasswordConfig
	Session  SessionConfig
	JWT      JWTConfig
	Signup   SignupConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig defines a public type used by campusauth APIs.
//
// StoreConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StoreConfig struct {
	// BaseURL and APIKey configure the built-in record gateway. Ignored when
	// a custom RecordStore is injected through the builder.
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

/*
====================================
INTAKE CONFIG
====================================
*/

// IntakeConfig defines a public type used by campusauth APIs.
//
// IntakeConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type IntakeConfig struct {
	// Prefix is the leading byte of a roll-number-shaped identifier.
	Prefix byte
	// Codes maps the two-digit intake code after the prefix to a batch.
	// Updating this table is how a new academic year is rolled in.
	Codes map[string]string
}

/*
====================================
TABLES CONFIG
====================================
*/

// TablesConfig names every backend table the engine may touch. The union of
// these names becomes the gateway allow-list; nothing outside it is ever
// queried.
//
// TablesConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TablesConfig struct {
	Batches  batch.Tables
	Teachers string
	Admins   string
	// Aux tables readable through [Engine.FetchRecord].
	Grades   string
	Events   string
	Holidays string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by campusauth APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Iterations int
	SaltLength int
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by campusauth APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	RedisPrefix       string
	TTL               time.Duration
	SlidingExpiration bool
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig defines a public type used by campusauth APIs.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	Enabled       bool
	AccessTTL     time.Duration
	SigningMethod string // "ed25519" (default), "hs256" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
SIGNUP CONFIG
====================================
*/

// SignupConfig defines a public type used by campusauth APIs.
//
// SignupConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SignupConfig struct {
	Enabled           bool
	MinPasswordLength int
}

// AuditConfig defines a public type used by campusauth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by campusauth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the stock campus layout: four year-sharded student
// tables with matching marks and attendance shards, intake codes 25 through
// 22, and signup enabled with an eight character password floor.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Timeout: 10 * time.Second,
		},
		Intake: IntakeConfig{
			Prefix: batch.DefaultPrefix,
			Codes:  batch.DefaultIntakeCodes(),
		},
		Tables: TablesConfig{
			Batches:  batch.DefaultTables(),
			Teachers: "teachers",
			Admins:   "admins",
			Grades:   "grades",
			Events:   "events",
			Holidays: "holidays",
		},
		Password: PasswordConfig{
			Iterations: 600_000,
			SaltLength: 16,
		},
		Session: SessionConfig{
			RedisPrefix:       "campus:session:",
			TTL:               12 * time.Hour,
			SlidingExpiration: true,
		},
		JWT: JWTConfig{
			Enabled:       false,
			AccessTTL:     15 * time.Minute,
			SigningMethod: "ed25519",
			Issuer:        "campusauth",
		},
		Signup: SignupConfig{
			Enabled:           true,
			MinPasswordLength: 8,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// Validate checks Config for internal consistency. Store connectivity is
// checked at build time, not here, because a custom RecordStore may replace
// the built-in gateway.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if len(c.Intake.Codes) == 0 {
		return errors.New("intake codes must not be empty")
	}
	for code, b := range c.Intake.Codes {
		if len(code) != 2 || !isTwoDigits(code) {
			return fmt.Errorf("intake code %q must be two digits", code)
		}
		if _, ok := c.Tables.Batches.Students[b]; !ok {
			return fmt.Errorf("intake code %q maps to unknown batch %q", code, b)
		}
	}

	if len(c.Tables.Batches.Students) == 0 {
		return errors.New("at least one student shard required")
	}
	for b := range c.Tables.Batches.Students {
		if _, ok := c.Tables.Batches.Marks[b]; !ok {
			return fmt.Errorf("batch %q has no marks table", b)
		}
		if _, ok := c.Tables.Batches.Attendance[b]; !ok {
			return fmt.Errorf("batch %q has no attendance table", b)
		}
		if y, ok := c.Tables.Batches.Years[b]; !ok || y < 1 {
			return fmt.Errorf("batch %q has no valid study year", b)
		}
	}

	if c.Tables.Teachers == "" || c.Tables.Admins == "" {
		return errors.New("teacher and admin tables required")
	}

	if c.Signup.Enabled && c.Signup.MinPasswordLength < 8 {
		return errors.New("signup password floor must be at least 8")
	}

	if c.Session.TTL < 0 {
		return errors.New("session TTL must not be negative")
	}

	if c.JWT.Enabled && c.JWT.AccessTTL <= 0 {
		return errors.New("JWT access TTL must be positive")
	}

	return nil
}

func isTwoDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) == 2
}

func cloneConfig(cfg Config) Config {
	out := cfg

	if cfg.Intake.Codes != nil {
		codes := make(map[string]string, len(cfg.Intake.Codes))
		for k, v := range cfg.Intake.Codes {
			codes[k] = v
		}
		out.Intake.Codes = codes
	}

	out.Tables.Batches = batch.Tables{
		Students:   cloneStringMap(cfg.Tables.Batches.Students),
		Marks:      cloneStringMap(cfg.Tables.Batches.Marks),
		Attendance: cloneStringMap(cfg.Tables.Batches.Attendance),
		Years:      cloneIntMap(cfg.Tables.Batches.Years),
	}

	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)

	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneIntMap(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
