package validators

import (
	"regexp"
	"strings"
)

// E.164, with the leading plus optional since channels differ on it.
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

func IsPhone(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}
