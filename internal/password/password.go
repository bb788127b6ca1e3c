// Package password wraps bcrypt hashing for account credentials.
package password

import "golang.org/x/crypto/bcrypt"

// Hash generates a salted bcrypt digest. Two calls with the same input
// produce different digests.
func Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether plain matches digest. A malformed digest is
// treated as a mismatch rather than an error.
func Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
