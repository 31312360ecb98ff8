package validate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Check is one password requirement and whether it is met.
type Check struct {
	Label    string
	Met      bool
	Required bool
}

// Strength is derived from a password; it is never stored.
type Strength struct {
	Score  int
	Label  string
	Checks []Check
}

const (
	LabelWeak   = "Weak"
	LabelFair   = "Fair"
	LabelGood   = "Good"
	LabelStrong = "Strong"
)

const (
	requiredWeight = 20
	bonusWeight    = 15
	maxScore       = 100
)

const specialChars = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?`~"

// PasswordStrength evaluates the six checks: length>=8, uppercase, lowercase,
// digit (required) and special character, length>=12 (bonus). Required checks
// weigh more than bonus ones; the score is capped at 100.
func PasswordStrength(password string) Strength {
	n := utf8.RuneCountInString(password)
	checks := []Check{
		{Label: "At least 8 characters", Met: n >= 8, Required: true},
		{Label: "One uppercase letter", Met: strings.IndexFunc(password, unicode.IsUpper) >= 0, Required: true},
		{Label: "One lowercase letter", Met: strings.IndexFunc(password, unicode.IsLower) >= 0, Required: true},
		{Label: "One number", Met: strings.IndexFunc(password, unicode.IsDigit) >= 0, Required: true},
		{Label: "One special character", Met: strings.ContainsAny(password, specialChars)},
		{Label: "12 or more characters", Met: n >= 12},
	}

	score := 0
	for _, c := range checks {
		if !c.Met {
			continue
		}
		if c.Required {
			score += requiredWeight
		} else {
			score += bonusWeight
		}
	}
	score = min(score, maxScore)

	return Strength{Score: score, Label: StrengthLabel(score), Checks: checks}
}

// StrengthLabel maps a score to its label: <40 Weak, <60 Fair, <80 Good, else Strong.
func StrengthLabel(score int) string {
	switch {
	case score < 40:
		return LabelWeak
	case score < 60:
		return LabelFair
	case score < 80:
		return LabelGood
	default:
		return LabelStrong
	}
}

// Acceptable is true when every required check is met. Bonus checks never block.
func (s Strength) Acceptable() bool {
	for _, c := range s.Checks {
		if c.Required && !c.Met {
			return false
		}
	}
	return true
}

// Password validates a new password for submission.
func Password(password string) Result {
	if password == "" {
		return fail("Password is required")
	}
	if !PasswordStrength(password).Acceptable() {
		return fail("Password does not meet all requirements")
	}
	return ok()
}

// ConfirmPassword checks the confirmation against the live password value.
func ConfirmPassword(password, confirm string) Result {
	if confirm == "" {
		return fail("Please confirm your password")
	}
	if password != confirm {
		return fail("Passwords do not match")
	}
	return ok()
}
