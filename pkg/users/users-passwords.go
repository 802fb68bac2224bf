package users

import "golang.org/x/crypto/bcrypt"

// hashCost leans towards the expensive side of bcrypt's range, targeting
// offline brute force resistance comparable to PBKDF2-SHA256 at 600k rounds.
const hashCost = 12

// HashPassword derives a salted bcrypt hash from a plaintext password.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext candidate against a stored hash through
// bcrypt's own routine, which runs in constant time with respect to contents.
func VerifyPassword(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
