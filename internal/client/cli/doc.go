// Package cli provides the interactive LearnPortal terminal client.
//
// Each command plays the part of a screen: register, login, verify, forgot
// and reset drive the auth forms, and every location change goes through the
// route guard, so a protected page opened while signed out lands on the
// sign-in page and comes back after a successful login.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits
// or input ends. See App and runREPL for details.
package cli
