package validation

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
)

const maxEmailLength = 254

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9_-]{1,28}[A-Za-z0-9])$`)

// ValidateUsername allows 3 to 30 letters, digits, '_' and '-', starting and
// ending with a letter or digit.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return errors.New("username must be 3-30 letters, digits, '_' or '-' and start and end with a letter or digit")
	}
	return nil
}

// ValidateEmail accepts a bare address such as user@example.com.
func ValidateEmail(email string) error {
	if len(email) > maxEmailLength {
		return errors.New("email must be at most 254 characters")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email address")
	}
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") {
		return errors.New("invalid email domain")
	}
	return nil
}
