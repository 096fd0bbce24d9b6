package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

func TestTOTPRoundTrip(t *testing.T) {
	g := NewTOTPGenerator("QR Ordering")
	secret, uri, err := g.GenerateSecret("alice@x.com")
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}
	if secret == "" {
		t.Fatal("empty secret")
	}
	if !strings.HasPrefix(uri, "otpauth://totp/") || !strings.Contains(uri, "secret="+secret) {
		t.Fatalf("unexpected provisioning uri %q", uri)
	}

	code, err := totp.GenerateCode(secret, time.Now().UTC())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if !g.VerifyCode(secret, code) {
		t.Fatal("current code should verify")
	}
}

func TestTOTPSkewWindow(t *testing.T) {
	g := NewTOTPGenerator("QR Ordering")
	secret, _, err := g.GenerateSecret("alice@x.com")
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}

	opts := totp.ValidateOpts{Period: 30, Skew: 0, Digits: otp.DigitsSix, Algorithm: otp.AlgorithmSHA1}
	for _, offset := range []time.Duration{-30 * time.Second, 30 * time.Second} {
		code, err := totp.GenerateCodeCustom(secret, time.Now().UTC().Add(offset), opts)
		if err != nil {
			t.Fatalf("generate code: %v", err)
		}
		if !g.VerifyCode(secret, code) {
			t.Fatalf("code generated at offset %v should verify", offset)
		}
	}
}

func TestTOTPWrongSecret(t *testing.T) {
	g := NewTOTPGenerator("QR Ordering")
	secretA, _, err := g.GenerateSecret("alice@x.com")
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}
	secretB, _, err := g.GenerateSecret("bob@x.com")
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}
	code, err := totp.GenerateCode(secretB, time.Now().UTC())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if g.VerifyCode(secretA, code) {
		t.Fatal("code from a different secret should not verify")
	}
}
