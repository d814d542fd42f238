package validation

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

var commonPasswords = map[string]struct{}{
	"password":   {},
	"password1":  {},
	"12345678":   {},
	"123456789":  {},
	"1234567890": {},
	"qwerty123":  {},
	"iloveyou":   {},
	"sunshine":   {},
	"princess":   {},
	"football":   {},
	"baseball":   {},
	"welcome1":   {},
	"abc12345":   {},
	"qwertyuiop": {},
	"letmein1":   {},
}

// ValidatePassword applies the account password rules: length bounds, not
// purely numeric, not a well-known password and not built from the
// username or the email's local part.
func ValidatePassword(password, username, email string) error {
	n := len([]rune(password))
	if n < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	if n > maxPasswordLength {
		return fmt.Errorf("password must not exceed %d characters", maxPasswordLength)
	}

	numeric := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		return fmt.Errorf("password must not be entirely numeric")
	}

	lower := strings.ToLower(password)
	if _, ok := commonPasswords[lower]; ok {
		return fmt.Errorf("password is too common")
	}

	local, _, _ := strings.Cut(email, "@")
	for _, attr := range []string{username, local} {
		attr = strings.ToLower(attr)
		if len(attr) >= 3 && strings.Contains(lower, attr) {
			return fmt.Errorf("password is too similar to the account details")
		}
	}
	return nil
}

// ValidateUsername checks the username pattern and length.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len([]rune(username)) > 150 {
		return fmt.Errorf("username must not exceed 150 characters")
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username may contain only letters, digits and @/./+/-/_ characters")
	}
	if strings.EqualFold(username, "me") {
		return fmt.Errorf("username %q is reserved", username)
	}
	return nil
}
