package security

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	passwordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	digitAlphabet    = "0123456789"

	// GeneratedPasswordLength is the length of provisioned passwords.
	GeneratedPasswordLength = 12
)

// HashPassword returns the bcrypt hash of a secret.
func HashPassword(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether secret matches the bcrypt hash.
func CheckPassword(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// RandomPassword returns a random password of GeneratedPasswordLength
// characters without look-alike glyphs.
func RandomPassword() (string, error) {
	return randomString(passwordAlphabet, GeneratedPasswordLength)
}

// RandomDigits returns n random decimal digits, used for verification codes
// and username suffixes.
func RandomDigits(n int) (string, error) {
	return randomString(digitAlphabet, n)
}

func randomString(alphabet string, n int) (string, error) {
	buf := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return string(buf), nil
}
