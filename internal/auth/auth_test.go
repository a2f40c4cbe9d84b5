package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignAndParse(t *testing.T) {
	tok, err := Sign("s3cret", "ops", ScopePublish, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	c, err := Parse("s3cret", tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Subject != "ops" || c.Issuer != Issuer || !c.HasScope(ScopePublish) || c.ExpiresAt == nil {
		t.Fatalf("claims=%+v", c)
	}
}

func TestParseRejects(t *testing.T) {
	tok, _ := Sign("s3cret", "ops", "", 0)
	if _, err := Parse("other", tok); err == nil {
		t.Fatal("expected signature error")
	}
	expired, _ := Sign("s3cret", "ops", "", -1)
	if _, err := Parse("s3cret", expired); err != nil {
		t.Fatalf("non-positive ttl means no expiry: %v", err)
	}
	past := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer: Issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}})
	s, _ := past.SignedString([]byte("s3cret"))
	if _, err := Parse("s3cret", s); err == nil {
		t.Fatal("expected expiry error")
	}
	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer}})
	s, _ = hs512.SignedString([]byte("s3cret"))
	if _, err := Parse("s3cret", s); err == nil {
		t.Fatal("expected HS512 to be rejected")
	}
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"}})
	s, _ = foreign.SignedString([]byte("s3cret"))
	if _, err := Parse("s3cret", s); err == nil {
		t.Fatal("expected issuer mismatch")
	}
	if _, err := Sign("", "x", "", 0); err == nil {
		t.Fatal("expected empty secret error")
	}
}

func TestBearerToken(t *testing.T) {
	if tok, err := BearerToken("Bearer abc"); err != nil || tok != "abc" {
		t.Fatalf("tok=%q err=%v", tok, err)
	}
	for _, h := range []string{"", "Basic abc", "Bearer ", "bearer abc"} {
		if _, err := BearerToken(h); err != ErrMissingToken {
			t.Fatalf("%q: expected ErrMissingToken, got %v", h, err)
		}
	}
}

func TestHasScope(t *testing.T) {
	if !(&Claims{}).HasScope(ScopePublish) {
		t.Fatal("unscoped tokens are unrestricted")
	}
	if !(&Claims{Scope: "read " + ScopePublish}).HasScope(ScopePublish) {
		t.Fatal("expected scope match")
	}
	if (&Claims{Scope: "read"}).HasScope(ScopePublish) {
		t.Fatal("unexpected scope match")
	}
}
