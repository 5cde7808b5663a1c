package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

const (
	// DefaultSessionTokenBytes is the number of random bytes in a session token.
	// The hex encoding is twice as long.
	DefaultSessionTokenBytes = 30

	// MinSessionTokenBytes keeps session tokens at 128 bits of entropy or more.
	MinSessionTokenBytes = 16

	// DefaultCodeDigits is the length of a confirmation code.
	DefaultCodeDigits = 6

	maxCodeDigits = 18
)

// NewSessionToken generates a cryptographically random hex token of nBytes random bytes.
// Values below MinSessionTokenBytes are raised to it.
func NewSessionToken(nBytes int) (string, error) {
	if nBytes < MinSessionTokenBytes {
		nBytes = MinSessionTokenBytes
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewConfirmationCode returns a zero-padded decimal code of the given length.
// Codes are scoped to one email, so collisions between emails are harmless.
func NewConfirmationCode(digits int) (string, error) {
	if digits <= 0 {
		digits = DefaultCodeDigits
	}
	if digits > maxCodeDigits {
		digits = maxCodeDigits
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n.Int64()), nil
}
