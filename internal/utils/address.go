package utils

import (
	"net/mail"
	"regexp"
	"strings"
)

var addressPattern = regexp.MustCompile(`[\w.+-]+@[\w.-]+\.\w+`)

// ParseAddress splits a free-form From header value into display name and
// lowercased address. It never fails: when structured parsing yields no
// usable address the raw string is scanned for anything address-shaped, and
// as a last resort the raw input itself is returned as the address so that
// downstream records always have a key.
func ParseAddress(raw string) (name string, address string) {
	trimmed := strings.TrimSpace(raw)

	parsed, err := mail.ParseAddress(trimmed)
	if err == nil && parsed.Address != "" {
		name = strings.TrimSpace(parsed.Name)
		name = strings.Trim(name, `"'`)
		name = strings.TrimSpace(name)
		return name, strings.ToLower(parsed.Address)
	}

	if match := addressPattern.FindString(trimmed); match != "" {
		return "", strings.ToLower(match)
	}

	return "", raw
}
