package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
		msg   string
	}{
		{"valid", "user@example.com", true, ""},
		{"normalized", "  User@Example.COM ", true, ""},
		{"empty", "", false, "Email is required"},
		{"no at", "user.example.com", false, "Please enter a valid email address"},
		{"no tld", "user@example", false, "Please enter a valid email address"},
		{"empty local", "@example.com", false, "Please enter a valid email address"},
		{"whitespace inside", "us er@example.com", false, "Please enter a valid email address"},
		{"short tld", "user@example.c", false, "Please enter a valid email domain"},
		{"disposable", "user@mailinator.com", false, "Disposable email addresses are not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Email(tt.input)
			assert.Equal(t, tt.valid, r.Valid)
			assert.Equal(t, tt.msg, r.Message)
			assert.Empty(t, r.Suggestion)
		})
	}
}

func TestEmail_TypoSuggestion(t *testing.T) {
	for typo, fixed := range commonTypos {
		r := Email("user@" + typo)
		assert.False(t, r.Valid, typo)
		assert.True(t, r.IsAdvisory(), typo)
		assert.Equal(t, "user@"+fixed, r.Suggestion, typo)

		// the suggestion itself must be a valid address
		assert.True(t, Email(r.Suggestion).Valid, r.Suggestion)
	}
}

func TestEmail_TypoSuggestionIsNormalized(t *testing.T) {
	r := Email(" User@GMIAL.com")
	assert.Equal(t, "user@gmail.com", r.Suggestion)
	assert.Equal(t, "Did you mean user@gmail.com?", r.Message)
}
