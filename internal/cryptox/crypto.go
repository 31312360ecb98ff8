// Package cryptox holds the password and token hashing used by the
// development backend.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/dmitrijs2005/learnportal/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of a freshly generated password salt.
const SaltSize = 16

// NewSalt returns SaltSize random bytes.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// MakeVerifier hashes a derived key so the key itself is never stored.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// DerivePasswordKey stretches password with argon2id.
func DerivePasswordKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// HashPassword returns a new salt and the verifier for password under it.
func HashPassword(password string) (salt, verifier []byte) {
	salt = NewSalt()
	return salt, MakeVerifier(DerivePasswordKey([]byte(password), salt))
}

// CheckPassword reports whether password matches the stored verifier.
// The comparison runs in constant time.
func CheckPassword(password string, salt, verifier []byte) bool {
	candidate := MakeVerifier(DerivePasswordKey([]byte(password), salt))
	return subtle.ConstantTimeCompare(verifier, candidate) == 1
}

// HashToken returns the hex SHA-256 of a one-time token. Only the hash is
// kept server-side.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
