// Package password implements credential hashing and verification with
// salted, iterated PBKDF2.
//
// # Output format
//
// Hashes use the werkzeug string format so records written by the portal's
// earlier admin tooling keep verifying unchanged:
//
//	pbkdf2:<digest>:<iterations>$<salt>$<hex hash>
//
// The [PBKDF2] hasher supports transparent parameter upgrades: if a stored
// hash was produced with fewer iterations, [PBKDF2.NeedsUpgrade] returns true
// so the caller can re-hash on the next successful login.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy (minimum
// length at signup) is enforced by the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other campusauth package.
//   - Treat an empty stored hash as anything but a non-match.
package password
