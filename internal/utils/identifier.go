package utils

import "strings"

// IdentifierKind is the shape of a login or registration identifier.
type IdentifierKind int

const (
	IdentifierUsername IdentifierKind = iota
	IdentifierEmail
	IdentifierPhone
)

// ClassifyIdentifier routes an identifier by shape: anything containing '@'
// is an email, a non-empty string that is all digits once separators are
// stripped is a phone number, everything else is a username.
func ClassifyIdentifier(identifier string) IdentifierKind {
	if strings.Contains(identifier, "@") {
		return IdentifierEmail
	}
	if digits := NormalizePhone(identifier); digits != "" && isAllDigits(digits) {
		return IdentifierPhone
	}
	return IdentifierUsername
}

// NormalizePhone strips spaces, dashes, dots, parentheses and a leading
// plus sign so the same number always compares equal.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")
	replacer := strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")
	return replacer.Replace(s)
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
