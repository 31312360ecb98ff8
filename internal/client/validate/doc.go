// Package validate implements the synchronous credential checks run before
// any network call: name, email, password strength and password confirmation.
//
// Validators never panic and never return errors; every outcome is a Result.
// When several rules fail, the message of the first failing rule (in the
// documented order) is reported, so messages are deterministic.
package validate
