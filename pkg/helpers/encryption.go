package helpers

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/argon2"
)

const saltBytes = 16

// argon2id parameters for password hashing
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// GenerateSalt returns a fresh random salt, base64-encoded.
func GenerateSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawStdEncoding.EncodeToString(b), nil
}

// Encrypt derives an argon2id hash of payload under the given salt.
// The same (payload, salt) pair always yields the same output.
func Encrypt(payload, salt string) string {
	key := argon2.IDKey([]byte(payload), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
	return base64.RawStdEncoding.EncodeToString(key)
}

// IsCorrect reports whether payload hashes to the stored hash under salt.
// A mismatch is a normal false, not an error.
func IsCorrect(payload, salt, hash string) bool {
	computed := Encrypt(payload, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}
