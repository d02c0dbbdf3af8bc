// Package session stores the canonical login identity in Redis for the
// lifetime of a session.
//
// A session record is written exactly once at login, read on subsequent
// requests, and deleted at logout — there is no update path, because an
// identity is immutable after creation; a changed record means a fresh
// login, never an in-place patch.
//
// # What this package must NOT do
//
//   - Hold credential material. Records arrive already stripped.
//   - Import any other campusauth package; it has its own record model.
package session
