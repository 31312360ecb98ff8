package validate

// Result is the outcome of validating one field.
//
// Suggestion is only set for the email typo case and always holds a
// syntactically valid, corrected address.
type Result struct {
	Valid      bool
	Message    string
	Suggestion string
}

func ok() Result { return Result{Valid: true} }

func fail(msg string) Result { return Result{Message: msg} }
