package campusauth

import "errors"

var (
	// ErrInvalidCredentials is an exported constant or variable used by the campus auth engine.
	// It covers both an unknown identifier and a wrong password; callers must
	// not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnknownBatch is an exported constant or variable used by the campus auth engine.
	ErrUnknownBatch = errors.New("unknown batch")
	// ErrAccountExists is an exported constant or variable used by the campus auth engine.
	ErrAccountExists = errors.New("account already exists")
	// ErrPasswordPolicy is an exported constant or variable used by the campus auth engine.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrSignupInvalid is an exported constant or variable used by the campus auth engine.
	ErrSignupInvalid = errors.New("invalid signup request")
	// ErrSignupDisabled is an exported constant or variable used by the campus auth engine.
	ErrSignupDisabled = errors.New("signup disabled")
	// ErrSignupUnavailable is an exported constant or variable used by the campus auth engine.
	ErrSignupUnavailable = errors.New("signup backend unavailable")
	// ErrSessionsDisabled is an exported constant or variable used by the campus auth engine.
	ErrSessionsDisabled = errors.New("session store not configured")
	// ErrSessionNotFound is an exported constant or variable used by the campus auth engine.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionUnavailable is an exported constant or variable used by the campus auth engine.
	ErrSessionUnavailable = errors.New("session backend unavailable")
	// ErrTokensDisabled is an exported constant or variable used by the campus auth engine.
	ErrTokensDisabled = errors.New("token issuance not configured")
	// ErrTokenInvalid is an exported constant or variable used by the campus auth engine.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrStoreUnavailable is an exported constant or variable used by the campus auth engine.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrEngineNotReady is an exported constant or variable used by the campus auth engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
