package campusauth

import (
	"context"
	"errors"
	"time"

	"github.com/stellarmin/campusauth/gateway"
	"github.com/stellarmin/campusauth/internal/flows"
	"github.com/stellarmin/campusauth/session"
)

// Resolve maps one identifier and password to the single identity they
// denote, or [ErrInvalidCredentials]. The error never distinguishes an
// unknown identifier from a wrong password.
//
// Resolve may return an error when input validation, dependency calls, or security checks fail.
// Resolve does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Resolve(ctx context.Context, identifier, password string) (*Identity, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	resolved, err := flows.Resolve(ctx, identifier, password, e.resolveDeps())
	e.metricObserve(MetricResolveLatency, time.Since(start))

	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, AuditEvent{
				EventType:  AuditLoginFailure,
				Identifier: identifier,
				Error:      ErrInvalidCredentials.Error(),
			})
		}
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, AuditEvent{
		EventType:  AuditLoginSuccess,
		Identifier: identifier,
		Role:       resolved.Role,
		Batch:      resolved.Batch,
		Success:    true,
	})

	return identityFromFlow(resolved), nil
}

// Login resolves the identity and, when the matching subsystems are
// configured, opens a session and issues an access token for it.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identity, err := e.Resolve(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{Identity: identity}

	if e.sessions != nil {
		sid, err := e.sessions.Create(ctx, session.Record{
			Role:        string(identity.Role),
			PrimaryKey:  identity.PrimaryKey,
			DisplayName: identity.DisplayName,
			Batch:       identity.Batch,
			Email:       identity.Email,
			Attributes:  identity.Attributes,
		})
		if err != nil {
			return nil, errors.Join(ErrSessionUnavailable, err)
		}
		result.SessionID = sid

		e.metricInc(MetricSessionCreated)
		e.emitAudit(ctx, AuditEvent{
			EventType:  AuditSessionCreated,
			Identifier: identifier,
			Role:       string(identity.Role),
			Batch:      identity.Batch,
			SessionID:  sid,
			Success:    true,
		})
	}

	if e.jwtManager != nil {
		token, err := e.jwtManager.CreateAccess(identity.PrimaryKey, string(identity.Role), identity.Batch, result.SessionID)
		if err != nil {
			return nil, err
		}
		result.AccessToken = token
	}

	return result, nil
}

// SessionIdentity loads the identity bound to an open session.
//
// SessionIdentity may return an error when input validation, dependency calls, or security checks fail.
// SessionIdentity does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SessionIdentity(ctx context.Context, sessionID string) (*Identity, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if e.sessions == nil {
		return nil, ErrSessionsDisabled
	}

	rec, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrSessionCorrupt):
			return nil, ErrSessionNotFound
		default:
			return nil, errors.Join(ErrSessionUnavailable, err)
		}
	}

	return &Identity{
		Role:        Role(rec.Role),
		PrimaryKey:  rec.PrimaryKey,
		DisplayName: rec.DisplayName,
		Batch:       rec.Batch,
		Email:       rec.Email,
		Attributes:  rec.Attributes,
	}, nil
}

// Logout closes a session. Logging out an absent session is not an error.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context, sessionID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.sessions == nil {
		return ErrSessionsDisabled
	}

	existed, err := e.sessions.Delete(ctx, sessionID)
	if err != nil {
		return errors.Join(ErrSessionUnavailable, err)
	}

	if existed {
		e.metricInc(MetricSessionInvalidated)
		e.emitAudit(ctx, AuditEvent{
			EventType: AuditLogout,
			SessionID: sessionID,
			Success:   true,
		})
	}

	return nil
}

// IssueToken signs a fresh access token for an already-resolved identity.
//
// IssueToken may return an error when input validation, dependency calls, or security checks fail.
// IssueToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IssueToken(identity *Identity, sessionID string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	if e.jwtManager == nil {
		return "", ErrTokensDisabled
	}
	if identity == nil {
		return "", ErrTokenInvalid
	}
	return e.jwtManager.CreateAccess(identity.PrimaryKey, string(identity.Role), identity.Batch, sessionID)
}

// ValidateToken verifies an access token and returns its claims.
//
// ValidateToken may return an error when input validation, dependency calls, or security checks fail.
// ValidateToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ValidateToken(token string) (*TokenClaims, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if e.jwtManager == nil {
		return nil, ErrTokensDisabled
	}

	claims, err := e.jwtManager.ParseAccess(token)
	if err != nil {
		return nil, errors.Join(ErrTokenInvalid, err)
	}

	out := &TokenClaims{
		PrimaryKey: claims.Subject,
		Role:       Role(claims.Role),
		Batch:      claims.Batch,
		SessionID:  claims.SID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// resolveDeps wires the resolve flow to the engine's subsystems. Built per
// call; the closures capture only the engine pointer.
func (e *Engine) resolveDeps() flows.ResolveDeps {
	return flows.ResolveDeps{
		Classify:     e.classifier.Classify,
		StudentTable: e.router.StudentTable,
		Batches:      e.router.Batches(),

		TeacherTable: e.config.Tables.Teachers,
		AdminTable:   e.config.Tables.Admins,

		FetchOne: func(ctx context.Context, table, field, value string) (map[string]any, error) {
			return e.store.FetchOne(ctx, table, field, value)
		},
		Verify: e.hasher.Verify,

		IsNotFound:  func(err error) bool { return errors.Is(err, gateway.ErrNotFound) },
		IsAmbiguous: func(err error) bool { return errors.Is(err, gateway.ErrAmbiguousMatch) },
		IsForbidden: func(err error) bool { return errors.Is(err, gateway.ErrForbiddenTable) },

		OnAmbiguous: func(ctx context.Context, table, field string) {
			e.metricInc(MetricAmbiguousMatch)
			e.emitAudit(ctx, AuditEvent{
				EventType: AuditAmbiguousMatch,
				Table:     table,
				Metadata:  map[string]string{"field": field},
			})
		},
		OnShardError: func(ctx context.Context, table string, err error) {
			e.metricInc(MetricShardQueryError)
			e.emitAudit(ctx, AuditEvent{
				EventType: AuditShardQueryError,
				Table:     table,
				Error:     err.Error(),
			})
		},

		Errors: flows.ResolveErrors{
			NoMatch: ErrInvalidCredentials,
		},
	}
}
