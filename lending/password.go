package lending

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const bcryptHashPrefix = "$2"

// HashPassword hashes a plaintext password with bcrypt at the default cost.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Join(ErrDatabaseOperation, err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext matches the stored bcrypt hash.
func VerifyPassword(plaintext string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// IsHashedPassword reports whether the value already is a bcrypt hash.
// Saving a user loaded from storage must not hash the hash again.
func IsHashedPassword(value string) bool {
	return strings.HasPrefix(value, bcryptHashPrefix)
}
