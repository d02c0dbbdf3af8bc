package campusauth

import (
	"context"
	"time"

	"github.com/stellarmin/campusauth/gateway"
	"github.com/stellarmin/campusauth/internal/flows"
)

// Role defines a public type used by campusauth APIs.
//
// Role instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Role string

const (
	// RoleStudent is an exported constant or variable used by the campus auth engine.
	RoleStudent Role = flows.RoleStudent
	// RoleTeacher is an exported constant or variable used by the campus auth engine.
	RoleTeacher Role = flows.RoleTeacher
	// RoleAdmin is an exported constant or variable used by the campus auth engine.
	RoleAdmin Role = flows.RoleAdmin
	// RoleParent is an exported constant or variable used by the campus auth engine.
	RoleParent Role = flows.RoleParent
)

// Identity is the canonical result of a successful resolution. It carries
// exactly one role and never any credential material.
//
// Identity instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Identity struct {
	Role        Role
	PrimaryKey  string
	DisplayName string
	// Batch is set only for student and parent identities.
	Batch      string
	Email      string
	Attributes map[string]string
}

// LoginResult bundles everything produced by a completed login. SessionID
// and AccessToken are empty when the corresponding subsystem is not
// configured.
//
// LoginResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LoginResult struct {
	Identity    *Identity
	SessionID   string
	AccessToken string
}

// StudentSignup is the input to [Engine.RegisterStudent].
//
// StudentSignup instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StudentSignup struct {
	RollNo      string
	Name        string
	Email       string
	ParentEmail string
	Password    string
}

// TokenClaims is the verified claim set of an access token.
//
// TokenClaims instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenClaims struct {
	PrimaryKey string
	Role       Role
	Batch      string
	SessionID  string
	ExpiresAt  time.Time
}

// RecordStore abstracts the keyed-record backend. [gateway.Client] is the
// production implementation; tests substitute in-memory fakes.
type RecordStore interface {
	Allowed(table string) bool
	FetchOne(ctx context.Context, table, field, value string) (gateway.Record, error)
	Insert(ctx context.Context, table string, record gateway.Record) error
	Update(ctx context.Context, table, field, value string, changes gateway.Record) error
	Delete(ctx context.Context, table, field, value string) error
}

func identityFromFlow(r *flows.ResolvedIdentity) *Identity {
	if r == nil {
		return nil
	}
	return &Identity{
		Role:        Role(r.Role),
		PrimaryKey:  r.PrimaryKey,
		DisplayName: r.DisplayName,
		Batch:       r.Batch,
		Email:       r.Email,
		Attributes:  r.Attributes,
	}
}
