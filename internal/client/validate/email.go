package validate

import (
	"regexp"
	"strings"
)

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// commonTypos maps misspelled mail domains to the intended ones.
var commonTypos = map[string]string{
	"gmial.com":   "gmail.com",
	"gmai.com":    "gmail.com",
	"gmal.com":    "gmail.com",
	"gamil.com":   "gmail.com",
	"gnail.com":   "gmail.com",
	"gmail.co":    "gmail.com",
	"gmail.con":   "gmail.com",
	"yahooo.com":  "yahoo.com",
	"yaho.com":    "yahoo.com",
	"yahoo.co":    "yahoo.com",
	"hotmial.com": "hotmail.com",
	"hotmal.com":  "hotmail.com",
	"hotmail.co":  "hotmail.com",
	"outlok.com":  "outlook.com",
	"outloo.com":  "outlook.com",
	"iclod.com":   "icloud.com",
	"icloud.co":   "icloud.com",
}

var disposableDomains = map[string]struct{}{
	"mailinator.com":    {},
	"10minutemail.com":  {},
	"guerrillamail.com": {},
	"tempmail.com":      {},
	"temp-mail.org":     {},
	"throwaway.email":   {},
	"yopmail.com":       {},
	"trashmail.com":     {},
	"sharklasers.com":   {},
	"getnada.com":       {},
	"maildrop.cc":       {},
	"dispostable.com":   {},
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Email validates an address. Rules, in order: required, local@domain.tld
// shape, known domain typo (reported with a Suggestion), top-level label of
// at least two characters, not a disposable provider.
//
// The shape check already rejects an empty local part.
func Email(raw string) Result {
	email := NormalizeEmail(raw)
	if email == "" {
		return fail("Email is required")
	}
	if !emailShape.MatchString(email) {
		return fail("Please enter a valid email address")
	}

	at := strings.LastIndex(email, "@")
	local, domain := email[:at], email[at+1:]

	if fixed, typo := commonTypos[domain]; typo {
		return Result{
			Message:    "Did you mean " + local + "@" + fixed + "?",
			Suggestion: local + "@" + fixed,
		}
	}

	tld := domain[strings.LastIndex(domain, ".")+1:]
	if len(tld) < 2 {
		return fail("Please enter a valid email domain")
	}

	if _, disposable := disposableDomains[domain]; disposable {
		return fail("Disposable email addresses are not allowed")
	}

	return ok()
}

// IsAdvisory reports whether r is a typo suggestion rather than a hard failure.
func (r Result) IsAdvisory() bool {
	return !r.Valid && r.Suggestion != ""
}
