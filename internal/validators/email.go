package validators

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsEmail checks shape only; no DNS lookups.
func IsEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}
