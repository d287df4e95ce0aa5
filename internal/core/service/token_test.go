package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTIssuer_IssueAndVerify(t *testing.T) {
	issuer := NewJWTIssuer("secret")

	token, err := issuer.Issue("user-42", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	sub, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if sub != "user-42" {
		t.Fatalf("expected subject user-42, got %q", sub)
	}
}

func TestJWTIssuer_UniquePerIssue(t *testing.T) {
	issuer := NewJWTIssuer("secret")
	exp := time.Now().Add(time.Hour)

	a, _ := issuer.Issue("u", exp)
	b, _ := issuer.Issue("u", exp)
	if a == b {
		t.Fatalf("expected distinct tokens for the same user and expiry")
	}
}

func TestJWTIssuer_Verify_IgnoresExpClaim(t *testing.T) {
	issuer := NewJWTIssuer("secret")

	token, err := issuer.Issue("u", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if _, err := issuer.Verify(token); err != nil {
		t.Fatalf("expiry is decided by the session row, got %v", err)
	}
}

func TestJWTIssuer_Verify_Rejects(t *testing.T) {
	issuer := NewJWTIssuer("secret")

	foreign, _ := NewJWTIssuer("other").Issue("u", time.Now().Add(time.Hour))
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).SignedString([]byte("secret"))

	for name, token := range map[string]string{
		"wrong secret": foreign,
		"alg none":     none,
		"no subject":   noSubject,
		"garbage":      "not.a.token",
	} {
		if _, err := issuer.Verify(token); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", hash)
	}
	if err := h.Compare(hash, "correct horse"); err != nil {
		t.Fatalf("Compare rejected the right password: %v", err)
	}
	if err := h.Compare(hash, "battery staple"); err == nil {
		t.Fatalf("Compare accepted the wrong password")
	}

	again, _ := h.Hash("correct horse")
	if again == hash {
		t.Fatalf("expected salted hashes to differ")
	}
}

func TestNewBcryptHasher_ClampsCost(t *testing.T) {
	if got := NewBcryptHasher(0).cost; got != DefaultBcryptCost {
		t.Fatalf("expected default cost %d, got %d", DefaultBcryptCost, got)
	}
	if got := NewBcryptHasher(99).cost; got != DefaultBcryptCost {
		t.Fatalf("expected default cost %d, got %d", DefaultBcryptCost, got)
	}
}
