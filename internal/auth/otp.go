package auth

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

// GenerateOTPCode returns a 6-digit numeric code drawn from a cryptographically
// secure source, uniform over [100000, 999999].
func GenerateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
