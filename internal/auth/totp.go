package auth

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTPGenerator issues and verifies RFC 6238 codes: SHA1, 6 digits, 30s
// period, 20-byte secret. Verification tolerates one step of clock skew.
type TOTPGenerator struct {
	Issuer string
}

func NewTOTPGenerator(issuer string) *TOTPGenerator {
	return &TOTPGenerator{Issuer: issuer}
}

// GenerateSecret creates a fresh secret and its provisioning URI for the
// given account label.
func (g *TOTPGenerator) GenerateSecret(label string) (secret, uri string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      g.Issuer,
		AccountName: label,
		SecretSize:  20,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// VerifyCode reports whether code is valid for the base32 secret within a
// ±1 step window.
func (g *TOTPGenerator) VerifyCode(secretBase32, code string) bool {
	ok, err := totp.ValidateCustom(code, secretBase32, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
