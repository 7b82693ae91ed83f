package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

const specialChars = "!@#?"

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// ValidatePasswordStrength enforces the registration password policy:
// at least 8 characters with an uppercase letter, a lowercase letter, a
// digit and one special character from !@#?.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return apperrors.NewWeakPassword()
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(specialChars, r):
			hasSpecial = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return apperrors.NewWeakPassword()
	}
	return nil
}
