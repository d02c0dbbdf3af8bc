package campusauth

import (
	"context"
	"errors"
	"strings"

	"github.com/stellarmin/campusauth/gateway"
	"github.com/stellarmin/campusauth/internal/flows"
)

// RegisterStudent creates a student record in the shard the roll number
// classifies into and returns the assigned batch. The roll number decides
// the shard; there is no cross-shard uniqueness check beyond the target
// shard's own roll and email probes.
//
// RegisterStudent may return an error when input validation, dependency calls, or security checks fail.
// RegisterStudent does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RegisterStudent(ctx context.Context, req StudentSignup) (string, error) {
	if e == nil || e.store == nil {
		return "", ErrEngineNotReady
	}
	if !e.config.Signup.Enabled {
		return "", ErrSignupDisabled
	}

	roll := strings.ToLower(strings.TrimSpace(req.RollNo))
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if roll == "" || name == "" || email == "" || req.Password == "" {
		return "", ErrSignupInvalid
	}
	if len(req.Password) < e.config.Signup.MinPasswordLength {
		e.metricInc(MetricSignupFailure)
		return "", ErrPasswordPolicy
	}

	b, ok := e.classifier.Classify(roll)
	if !ok {
		e.metricInc(MetricSignupFailure)
		return "", ErrUnknownBatch
	}
	table, ok := e.router.StudentTable(b)
	if !ok {
		e.metricInc(MetricSignupFailure)
		return "", ErrUnknownBatch
	}

	// Duplicate probes run before the hash is computed so a retried signup
	// fails fast.
	for _, probe := range []struct{ field, value string }{
		{flows.FieldRollNo, roll},
		{flows.FieldStudentEmail, email},
	} {
		if err := e.probeAbsent(ctx, table, probe.field, probe.value); err != nil {
			if errors.Is(err, ErrAccountExists) {
				e.metricInc(MetricSignupDuplicate)
				e.emitAudit(ctx, AuditEvent{
					EventType:  AuditSignupDuplicate,
					Identifier: roll,
					Batch:      b,
					Table:      table,
					Error:      ErrAccountExists.Error(),
				})
			} else {
				e.metricInc(MetricSignupFailure)
			}
			return "", err
		}
	}

	hashed, err := e.hasher.Hash(req.Password)
	if err != nil {
		e.metricInc(MetricSignupFailure)
		return "", err
	}

	record := gateway.Record{
		"roll_no":          roll,
		"student_name":     name,
		"student_email":    email,
		"student_password": hashed,
	}
	if pe := strings.ToLower(strings.TrimSpace(req.ParentEmail)); pe != "" {
		record["parent_email"] = pe
	}

	if err := e.store.Insert(ctx, table, record); err != nil {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, AuditEvent{
			EventType:  AuditSignupFailure,
			Identifier: roll,
			Batch:      b,
			Table:      table,
			Error:      err.Error(),
		})
		return "", errors.Join(ErrSignupUnavailable, err)
	}

	e.metricInc(MetricSignupSuccess)
	e.emitAudit(ctx, AuditEvent{
		EventType:  AuditSignupSuccess,
		Identifier: roll,
		Role:       flows.RoleStudent,
		Batch:      b,
		Table:      table,
		Success:    true,
	})

	return b, nil
}

// probeAbsent confirms no row in table has field equal to value. An
// ambiguous result means duplicates already exist and is treated the same
// as a single match.
func (e *Engine) probeAbsent(ctx context.Context, table, field, value string) error {
	_, err := e.store.FetchOne(ctx, table, field, value)
	switch {
	case err == nil, errors.Is(err, gateway.ErrAmbiguousMatch):
		return ErrAccountExists
	case errors.Is(err, gateway.ErrNotFound):
		return nil
	default:
		return errors.Join(ErrSignupUnavailable, err)
	}
}
