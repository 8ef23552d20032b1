package services

import (
	"strings"
	"unicode/utf8"
)

// PhoneMaxLen is the registration form's phone length limit.
const PhoneMaxLen = 10

// NormPhone trims p and strips spaces, dashes and parentheses.
func NormPhone(p string) string {
	s := strings.TrimSpace(p)
	if s == "" {
		return ""
	}
	repl := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "\n", "", "\r", "")
	return repl.Replace(s)
}

func phoneTooLong(p string) bool {
	return utf8.RuneCountInString(p) > PhoneMaxLen
}
