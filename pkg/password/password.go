// Package password implements one-way hashing and verification of user
// credentials on top of bcrypt. Hashes embed their own salt, so two calls
// with the same plaintext produce different, mutually verifiable
// outputs.
package password

import "golang.org/x/crypto/bcrypt"

// Hash derives a salted, non-reversible digest from plaintext.
func Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches the stored hash. The underlying
// compare runs in constant time with respect to where a mismatch occurs.
// Malformed or truncated hashes fail the comparison; Verify never panics.
func Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
