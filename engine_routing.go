package campusauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stellarmin/campusauth/gateway"
)

// Classify derives the batch for a roll-number-shaped identifier. The second
// return is false for anything unclassifiable.
func (e *Engine) Classify(identifier string) (string, bool) {
	if e == nil {
		return "", false
	}
	return e.classifier.Classify(identifier)
}

// Batches returns every configured batch in scan order.
func (e *Engine) Batches() []string {
	if e == nil {
		return nil
	}
	return e.router.Batches()
}

// StudentTable resolves the student record shard for a batch.
//
// StudentTable may return an error when input validation, dependency calls, or security checks fail.
// StudentTable does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) StudentTable(b string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	t, ok := e.router.StudentTable(b)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownBatch, b)
	}
	return t, nil
}

// MarksTable resolves the marks shard for a batch.
//
// MarksTable may return an error when input validation, dependency calls, or security checks fail.
// MarksTable does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MarksTable(b string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	t, ok := e.router.MarksTable(b)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownBatch, b)
	}
	return t, nil
}

// AttendanceTable resolves the attendance shard for a batch.
//
// AttendanceTable may return an error when input validation, dependency calls, or security checks fail.
// AttendanceTable does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AttendanceTable(b string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	t, ok := e.router.AttendanceTable(b)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownBatch, b)
	}
	return t, nil
}

// CurrentSemester derives the active semester for a batch at the given
// instant.
//
// CurrentSemester may return an error when input validation, dependency calls, or security checks fail.
// CurrentSemester does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CurrentSemester(b string, now time.Time) (int, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}
	sem, ok := e.router.CurrentSemester(b, now)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownBatch, b)
	}
	return sem, nil
}

// FetchRecord reads one allow-listed record by exact field match, with
// credential columns stripped. This is the supported path for portal
// features that read marks, attendance, or the aux tables after login.
//
// FetchRecord may return an error when input validation, dependency calls, or security checks fail.
// FetchRecord does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) FetchRecord(ctx context.Context, table, field, value string) (gateway.Record, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	rec, err := e.store.FetchOne(ctx, table, field, value)
	if err != nil {
		if gateway.IsStoreError(err) {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
		return nil, err
	}

	return stripCredentials(rec), nil
}

// stripCredentials removes password and hash material from a raw record
// before it leaves the engine.
func stripCredentials(rec gateway.Record) gateway.Record {
	out := make(gateway.Record, len(rec))
	for k, v := range rec {
		n := strings.ToLower(k)
		if strings.Contains(n, "password") || strings.Contains(n, "hash") || strings.Contains(n, "secret") {
			continue
		}
		out[k] = v
	}
	return out
}
