package auth

import (
	"errors"
	"regexp"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidUsername is returned for usernames outside 5-10 alphanumeric characters.
	ErrInvalidUsername = errors.New("username must be 5-10 letters or digits")

	// ErrInvalidPassword is returned for passwords outside the accepted pattern.
	ErrInvalidPassword = errors.New("password must be 6-18 characters and contain at least one letter and one digit")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]{5,10}$`)

// HashPassword returns a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword validates a password against a stored bcrypt hash.
func CheckPassword(password, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// ValidateUsername enforces the registration username pattern.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidatePassword enforces the registration password pattern: 6-18
// characters with at least one letter and at least one digit.
func ValidatePassword(password string) error {
	runes := []rune(password)
	if len(runes) < 6 || len(runes) > 18 {
		return ErrInvalidPassword
	}
	var hasLetter, hasDigit bool
	for _, r := range runes {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrInvalidPassword
	}
	return nil
}
