package services

import (
	"net/mail"
	"strings"
)

// NormEmail trims and lower-cases s and reports whether it parses as an address.
func NormEmail(s string) (string, bool) {
	e := strings.TrimSpace(strings.ToLower(s))
	if e == "" {
		return "", false
	}
	_, err := mail.ParseAddress(e)
	return e, err == nil
}

// AgentName derives the display name from an email: the local part with the
// first letter upper-cased and the rest lower-cased. Empty email gives "Unknown".
func AgentName(email string) string {
	if email == "" {
		return "Unknown"
	}
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return "Unknown"
	}
	r := []rune(local)
	return strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
}

// WelcomeName is the agent dashboard greeting: the raw local part, or "Agent".
func WelcomeName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return "Agent"
	}
	return local
}
