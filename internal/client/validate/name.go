package validate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	NameMinLength = 2
	NameMaxLength = 50
)

// Name validates a display name. Rules, in order: required, minimum length,
// maximum length, no digits, allowed characters (letters, space, hyphen,
// apostrophe), starts with a letter.
func Name(raw string) Result {
	name := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(name)

	switch {
	case n == 0:
		return fail("Name is required")
	case n < NameMinLength:
		return fail("Name must be at least 2 characters")
	case n > NameMaxLength:
		return fail("Name must be less than 50 characters")
	case strings.IndexFunc(name, unicode.IsDigit) >= 0:
		return fail("Name cannot contain numbers")
	case strings.IndexFunc(name, notNameRune) >= 0:
		return fail("Name can only contain letters, spaces, hyphens, and apostrophes")
	}

	first, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsLetter(first) {
		return fail("Name must start with a letter")
	}
	return ok()
}

func notNameRune(r rune) bool {
	return !(unicode.IsLetter(r) || r == ' ' || r == '-' || r == '\'')
}
