package password

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	algorithmID   = "pbkdf2"
	minIterations = 100_000
	minSaltLength = 8

	// DefaultIterations matches the iteration count the portal's admin
	// tooling has been writing into the password columns.
	DefaultIterations = 600_000
	// DefaultSaltLength is the werkzeug salt length in characters.
	DefaultSaltLength = 16
)

// saltAlphabet mirrors the character set used by the original hash tooling.
const saltAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Config defines the PBKDF2 parameters used for newly created hashes.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Iterations int
	SaltLength int
}

// PBKDF2 hashes and verifies credentials in the werkzeug pbkdf2 format.
//
// PBKDF2 instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PBKDF2 struct {
	config Config
}

type parsedHash struct {
	digest     func() hash.Hash
	digestSize int
	iterations int
	salt       string
	hash       []byte
}

// NewPBKDF2 validates cfg and returns a hasher. Zero-valued fields take the
// package defaults.
func NewPBKDF2(cfg Config) (*PBKDF2, error) {
	if cfg.Iterations == 0 {
		cfg.Iterations = DefaultIterations
	}
	if cfg.SaltLength == 0 {
		cfg.SaltLength = DefaultSaltLength
	}
	if cfg.Iterations < minIterations {
		return nil, errors.New("password iterations must be >= 100000")
	}
	if cfg.SaltLength < minSaltLength {
		return nil, errors.New("password salt length must be >= 8")
	}

	return &PBKDF2{config: cfg}, nil
}

// Hash derives a new salted hash for password.
func (p *PBKDF2) Hash(password string) (string, error) {
	// Password processing uses raw string bytes exactly as provided (no Unicode normalization).
	if password == "" {
		return "", errors.New("password must not be empty")
	}

	salt, err := newSalt(p.config.SaltLength)
	if err != nil {
		return "", err
	}

	derived := pbkdf2.Key([]byte(password), []byte(salt), p.config.Iterations, sha256.Size, sha256.New)

	var b strings.Builder
	b.WriteString(algorithmID)
	b.WriteString(":sha256:")
	b.WriteString(strconv.Itoa(p.config.Iterations))
	b.WriteByte('$')
	b.WriteString(salt)
	b.WriteByte('$')
	b.WriteString(hex.EncodeToString(derived))

	return b.String(), nil
}

// Verify reports whether candidate matches storedHash. An empty storedHash is
// a plain non-match. The digest comparison is constant-time; the derivation
// itself runs for every structurally valid hash regardless of outcome, so
// "no such hash" and "hash mismatch" share the same shape.
func (p *PBKDF2) Verify(storedHash, candidate string) (bool, error) {
	if storedHash == "" {
		return false, nil
	}

	parsed, err := parseWerkzeug(storedHash)
	if err != nil {
		return false, err
	}

	computed := pbkdf2.Key([]byte(candidate), []byte(parsed.salt), parsed.iterations, parsed.digestSize, parsed.digest)

	return subtle.ConstantTimeCompare(computed, parsed.hash) == 1, nil
}

// NeedsUpgrade reports whether storedHash was produced with fewer iterations
// than the hasher's current configuration.
func (p *PBKDF2) NeedsUpgrade(storedHash string) (bool, error) {
	parsed, err := parseWerkzeug(storedHash)
	if err != nil {
		return false, err
	}

	return parsed.iterations < p.config.Iterations, nil
}

func parseWerkzeug(encoded string) (*parsedHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 {
		return nil, errors.New("invalid hash format")
	}

	method := strings.Split(parts[0], ":")
	if len(method) != 3 || method[0] != algorithmID {
		return nil, errors.New("unsupported hash method")
	}

	var digest func() hash.Hash
	var digestSize int
	switch method[1] {
	case "sha256":
		digest, digestSize = sha256.New, sha256.Size
	case "sha1":
		// Legacy rows only; new hashes are always sha256.
		digest, digestSize = sha1.New, sha1.Size
	default:
		return nil, errors.New("unsupported hash digest")
	}

	iterations, err := strconv.Atoi(method[2])
	if err != nil || iterations < 1 {
		return nil, errors.New("invalid iteration count")
	}

	salt := parts[1]
	if salt == "" {
		return nil, errors.New("missing salt")
	}

	raw, err := hex.DecodeString(parts[2])
	if err != nil {
		return nil, errors.New("invalid hash encoding")
	}
	if len(raw) != digestSize {
		return nil, errors.New("invalid hash length")
	}

	return &parsedHash{
		digest:     digest,
		digestSize: digestSize,
		iterations: iterations,
		salt:       salt,
		hash:       raw,
	}, nil
}

func newSalt(length int) (string, error) {
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	for i, b := range raw {
		raw[i] = saltAlphabet[int(b)%len(saltAlphabet)]
	}

	return string(raw), nil
}
