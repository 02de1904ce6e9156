package utils

import (
	"crypto/rand"
	"math/big"
)

const (
	passwordLength   = 12
	passwordAlphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@#$%"
)

// GeneratePassword returns a random password for the reset flow. Look-alike
// characters (0/O, 1/l/I) are left out since the password is read from an email.
func GeneratePassword() (string, error) {
	out := make([]byte, passwordLength)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}
