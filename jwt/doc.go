// Package jwt issues and verifies short-lived access tokens carrying a
// resolved campus identity. Tokens are bearer proofs of a completed login;
// they never substitute for the session record, which stays authoritative.
package jwt
