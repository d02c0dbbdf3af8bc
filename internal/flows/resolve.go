package flows

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Role labels carried on a resolved identity. Exactly one per identity.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
	RoleParent  = "parent"
)

// Lookup field names in the backing tables.
const (
	FieldRollNo       = "roll_no"
	FieldUsername     = "username"
	FieldStudentEmail = "student_email"
	FieldParentEmail  = "parent_email"
)

// Credential columns per user class. These are stripped from every record
// before it becomes an identity.
const (
	colStudentPassword = "student_password"
	colTeacherPassword = "teacher_password"
	colAdminPassword   = "password"
	colParentPassword  = "parent_password"
)

// ResolvedIdentity is the flow-local canonical identity produced by a
// successful resolution. It never carries credential material.
type ResolvedIdentity struct {
	Role        string
	PrimaryKey  string
	DisplayName string
	Batch       string
	Email       string
	Attributes  map[string]string
}

// ResolveErrors carries host-level sentinel errors used by the resolve flow.
type ResolveErrors struct {
	// NoMatch is returned when every strategy is exhausted. The same value
	// covers unknown identifier and wrong password so callers cannot tell
	// which identifier format matched.
	NoMatch error
}

// ResolveDeps captures resolution dependencies. All function fields are
// required unless noted.
type ResolveDeps struct {
	// Classify maps a roll-number-shaped identifier to a batch.
	Classify func(identifier string) (string, bool)
	// StudentTable maps a batch to its student record shard.
	StudentTable func(b string) (string, bool)
	// Batches is the fixed scan order for cross-shard strategies.
	Batches []string

	TeacherTable string
	AdminTable   string

	// FetchOne performs one read-only shard query.
	FetchOne func(ctx context.Context, table, field, value string) (map[string]any, error)
	// Verify compares a stored hash against a candidate password.
	Verify func(storedHash, candidate string) (bool, error)

	// Error classifiers for FetchOne results.
	IsNotFound  func(error) bool
	IsAmbiguous func(error) bool
	IsForbidden func(error) bool

	// Observability hooks; optional.
	OnAmbiguous  func(ctx context.Context, table, field string)
	OnShardError func(ctx context.Context, table string, err error)

	Errors ResolveErrors
}

// Resolve runs the five lookup strategies in fixed precedence order and
// returns the first identity with exactly one matching row and a verified
// password.
//
// Strategies run sequentially: a later strategy must never run once an
// earlier one has succeeded, and the shards share no transactional
// relationship, so ordering is the correctness property that matters here.
// A shard-level store failure or ambiguous match never aborts resolution —
// that shard simply produced no usable match and the scan moves on, with no
// retry. A forbidden table is different: it means the allow-list and the
// router disagree, which is a bug, and it fails the whole call.
func Resolve(ctx context.Context, identifier, password string, d ResolveDeps) (*ResolvedIdentity, error) {
	id := strings.ToLower(strings.TrimSpace(identifier))
	if id == "" || password == "" {
		return nil, d.Errors.NoMatch
	}

	// Strategy 1: student by roll number in the classified shard. Skipped
	// outright when the identifier is not roll-number-shaped.
	if b, ok := d.Classify(id); ok {
		if table, ok := d.StudentTable(b); ok {
			rec, verified, err := d.lookup(ctx, table, FieldRollNo, id, colStudentPassword, password)
			if err != nil {
				return nil, err
			}
			if verified {
				return buildIdentity(RoleStudent, rec, FieldRollNo, b), nil
			}
		}
	}

	// Strategy 2: teacher by username.
	rec, verified, err := d.lookup(ctx, d.TeacherTable, FieldUsername, id, colTeacherPassword, password)
	if err != nil {
		return nil, err
	}
	if verified {
		return buildIdentity(RoleTeacher, rec, FieldUsername, ""), nil
	}

	// Strategy 3: admin by username.
	rec, verified, err = d.lookup(ctx, d.AdminTable, FieldUsername, id, colAdminPassword, password)
	if err != nil {
		return nil, err
	}
	if verified {
		return buildIdentity(RoleAdmin, rec, FieldUsername, ""), nil
	}

	// Strategy 4: parent by contact address across every student shard. A
	// parent identifier is not roll-number-shaped, so there is nothing to
	// classify and all shards are candidates. A matched row whose password
	// fails verification does not stop the scan: shards are independent and
	// the same contact address may legitimately appear in another batch.
	for _, b := range d.Batches {
		table, ok := d.StudentTable(b)
		if !ok {
			continue
		}
		rec, verified, err = d.lookup(ctx, table, FieldParentEmail, id, colParentPassword, password)
		if err != nil {
			return nil, err
		}
		if verified {
			return buildIdentity(RoleParent, rec, FieldRollNo, b), nil
		}
	}

	// Strategy 5: student by email, across every student shard.
	for _, b := range d.Batches {
		table, ok := d.StudentTable(b)
		if !ok {
			continue
		}
		rec, verified, err = d.lookup(ctx, table, FieldStudentEmail, id, colStudentPassword, password)
		if err != nil {
			return nil, err
		}
		if verified {
			return buildIdentity(RoleStudent, rec, FieldRollNo, b), nil
		}
	}

	return nil, d.Errors.NoMatch
}

// lookup performs one read-only shard probe and verifies the candidate
// password against the record's credential column. The returned error is
// non-nil only for forbidden-table failures; every other failure mode is a
// non-match.
func (d ResolveDeps) lookup(ctx context.Context, table, field, value, credentialCol, password string) (map[string]any, bool, error) {
	rec, err := d.FetchOne(ctx, table, field, value)
	if err != nil {
		switch {
		case d.IsForbidden(err):
			return nil, false, err
		case d.IsAmbiguous(err):
			if d.OnAmbiguous != nil {
				d.OnAmbiguous(ctx, table, field)
			}
		case d.IsNotFound(err):
			// Plain miss; nothing to report.
		default:
			if d.OnShardError != nil {
				d.OnShardError(ctx, table, err)
			}
		}
		return nil, false, nil
	}

	stored, _ := rec[credentialCol].(string)
	ok, err := d.Verify(stored, password)
	if err != nil || !ok {
		// Malformed stored hash behaves exactly like a mismatch.
		return rec, false, nil
	}

	return rec, true, nil
}

func buildIdentity(role string, rec map[string]any, keyField, batch string) *ResolvedIdentity {
	attrs := make(map[string]string, len(rec))
	for k, v := range rec {
		if isCredentialField(k) {
			continue
		}
		attrs[k] = stringify(v)
	}

	return &ResolvedIdentity{
		Role:        role,
		PrimaryKey:  attrs[keyField],
		DisplayName: firstNonEmpty(attrs["student_name"], attrs["teacher_name"], attrs["admin_name"], attrs[FieldUsername]),
		Batch:       batch,
		Email:       firstNonEmpty(attrs[FieldStudentEmail], attrs["email"]),
		Attributes:  attrs,
	}
}

// isCredentialField guards the invariant that no hash or password material
// survives into an identity, whatever the column happens to be called.
func isCredentialField(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "password") ||
		strings.Contains(n, "hash") ||
		strings.Contains(n, "secret")
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; render integers without a point.
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
