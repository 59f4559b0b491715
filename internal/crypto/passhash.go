// Package crypto hashes and verifies dev server account passwords.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// SaltLen is the size of a per-user password salt.
const SaltLen = 16

// Argon2id parameters. Dev server accounts are hashed interactively, so
// memory stays at the OWASP minimum for argon2id.
const (
	argonTime    uint32 = 2
	argonMemory  uint32 = 19 * 1024 // KiB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
)

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// NewSalt returns a fresh SaltLen-byte salt.
func NewSalt() ([]byte, error) { return RandBytes(SaltLen) }

// HashPassword returns the Argon2id hash of password under salt.
func HashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifyPassword compares password against a stored hash in constant time.
// A missing salt or hash never verifies.
func VerifyPassword(password, salt, expected []byte) bool {
	if len(salt) == 0 || len(expected) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(HashPassword(password, salt), expected) == 1
}
