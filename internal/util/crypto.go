package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var alphabetSize = big.NewInt(int64(len(alphanumeric)))

// CryptoRandomizer produces token values, secrets and verifiers from crypto/rand.
type CryptoRandomizer struct{}

// RandomAlphanumeric returns length characters drawn uniformly from [A-Za-z0-9].
// rand.Int avoids the modulo bias of mapping random bytes onto 62 symbols.
func (CryptoRandomizer) RandomAlphanumeric(length int) (string, error) {
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		out[i] = alphanumeric[n.Int64()]
	}
	return string(out), nil
}

// Fingerprint returns a short, non-reversible label for a token value, safe
// to write to logs and audit records. Token values are random, so no salt
// is needed.
func Fingerprint(s string) string {
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:6])
}
