package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

func newEdKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ed25519 key: %v", err)
	}
	return pub, priv
}

func TestCreateAndParseRoundTrip(t *testing.T) {
	pub, priv := newEdKeys(t)
	m, err := NewManager(Config{
		AccessTTL:     time.Minute,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        "campusauth",
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	token, err := m.CreateAccess("b2512345", "student", "b1", "sess-1")
	if err != nil {
		t.Fatalf("create access: %v", err)
	}

	claims, err := m.ParseAccess(token)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.Subject != "b2512345" {
		t.Fatalf("Subject = %q, want b2512345", claims.Subject)
	}
	if claims.Role != "student" || claims.Batch != "b1" || claims.SID != "sess-1" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Issuer != "campusauth" {
		t.Fatalf("Issuer = %q", claims.Issuer)
	}
}

func TestHS256RoundTrip(t *testing.T) {
	m, err := NewManager(Config{
		AccessTTL:     time.Minute,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("a-long-enough-shared-hmac-secret"),
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	token, err := m.CreateAccess("t_arvind", "teacher", "", "")
	if err != nil {
		t.Fatalf("create access: %v", err)
	}
	claims, err := m.ParseAccess(token)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.Subject != "t_arvind" || claims.Role != "teacher" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseRejectsWrongAlgorithm(t *testing.T) {
	pub, _ := newEdKeys(t)
	m, err := NewManager(Config{AccessTTL: time.Minute, SigningMethod: MethodEd25519, PublicKey: pub})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	claims := AccessClaims{Role: "admin", RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "admin1",
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	tok := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims)
	token, err := tok.SignedString([]byte("secret-secret-secret-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := m.ParseAccess(token); err == nil {
		t.Fatal("expected wrong algorithm to be rejected")
	}
}

func TestParseRejectsExpiredAndForeignKey(t *testing.T) {
	pub, priv := newEdKeys(t)
	m, err := NewManager(Config{
		AccessTTL:     time.Minute,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        "campusauth",
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	expired := AccessClaims{Role: "student", RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "b2512345",
		Issuer:    "campusauth",
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
		IssuedAt:  gjwt.NewNumericDate(time.Now().Add(-3 * time.Minute)),
	}}
	expiredSigned, _ := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, expired).SignedString(priv)
	if _, err := m.ParseAccess(expiredSigned); err == nil {
		t.Fatal("expected expired token to fail")
	}

	_, otherPriv := newEdKeys(t)
	fresh := AccessClaims{Role: "student", RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "b2512345",
		Issuer:    "campusauth",
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	foreign, _ := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, fresh).SignedString(otherPriv)
	if _, err := m.ParseAccess(foreign); err == nil {
		t.Fatal("expected token signed with a foreign key to fail")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	pub, priv := newEdKeys(t)
	m, err := NewManager(Config{
		AccessTTL:     time.Minute,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        "campusauth",
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	claims := AccessClaims{Role: "student", RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "b2512345",
		Issuer:    "someone-else",
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, _ := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, claims).SignedString(priv)
	if _, err := m.ParseAccess(token); err == nil {
		t.Fatal("expected wrong issuer to fail")
	}
}

func TestParseRejectsMissingIdentityClaims(t *testing.T) {
	pub, priv := newEdKeys(t)
	m, err := NewManager(Config{
		AccessTTL:     time.Minute,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	claims := AccessClaims{RegisteredClaims: gjwt.RegisteredClaims{
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, _ := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, claims).SignedString(priv)
	if _, err := m.ParseAccess(token); err == nil {
		t.Fatal("expected token without subject and role to fail")
	}
}

func TestNewManagerValidation(t *testing.T) {
	pub, _ := newEdKeys(t)

	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero ttl", Config{SigningMethod: MethodHS256, PrivateKey: []byte("k")}},
		{"hs256 without key", Config{AccessTTL: time.Minute, SigningMethod: MethodHS256}},
		{"ed25519 without public key", Config{AccessTTL: time.Minute, SigningMethod: MethodEd25519}},
		{"bad method", Config{AccessTTL: time.Minute, SigningMethod: "rs512", PrivateKey: []byte("k")}},
		{"excessive leeway", Config{AccessTTL: time.Minute, SigningMethod: MethodEd25519, PublicKey: pub, Leeway: time.Hour}},
	}
	for _, tc := range cases {
		if _, err := NewManager(tc.cfg); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestCreateAccessRequiresIdentity(t *testing.T) {
	m, err := NewManager(Config{AccessTTL: time.Minute, SigningMethod: MethodHS256, PrivateKey: []byte("secret")})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if _, err := m.CreateAccess("", "student", "b1", ""); err == nil {
		t.Fatal("expected empty primary key to fail")
	}
	if _, err := m.CreateAccess("b2512345", "", "b1", ""); err == nil {
		t.Fatal("expected empty role to fail")
	}
}
