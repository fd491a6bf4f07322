package auth

import "regexp"

var emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}$`)

// IsValidEmail accepts local@domain.tld with exactly one @.
func IsValidEmail(email string) bool {
	return len(email) <= 254 && emailRegex.MatchString(email)
}
