package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isVerified() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	OAuth(ctx context.Context, provider string) error
	Verify(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context, token string) error
	Open(ctx context.Context, path string) error
	WhoAmI(ctx context.Context) error
	Stats(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them to a. The loop
// ends on EOF, on "exit" or "quit", or when ctx is cancelled.
//
// The prompt shows the current status (from statusFn). Commands:
//
//	Signed out:
//	  register, login, oauth <provider>, forgot, reset <token>, open <path>
//	Signed in, email not verified:
//	  verify, whoami, open <path>, logout
//	Signed in and verified:
//	  whoami, open <path>, logout
//	Always:
//	  help, stats, exit | quit
//
// Errors returned by handlers are reported and the loop continues; only
// input errors end it.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "learnportal %s> ", statusFn())

		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, arg := parts[0], ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "help", "h", "?":
			fmt.Fprintln(w, helpText(a))
		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "oauth":
			err = a.OAuth(ctx, arg)
		case "verify":
			err = a.Verify(ctx)
		case "forgot":
			err = a.Forgot(ctx)
		case "reset":
			err = a.Reset(ctx, arg)
		case "open", "go":
			err = a.Open(ctx, arg)
		case "whoami":
			err = a.WhoAmI(ctx)
		case "stats":
			err = a.Stats(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "exit", "quit", "q":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintf(w, "Unknown command %q. Type 'help' for the list.\n", cmd)
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(w)
				return
			}
			fmt.Fprintln(w, "Error:", err)
		}
	}
}

func helpText(a execIface) string {
	switch {
	case !a.isLoggedIn():
		return "Available commands: register, login, oauth <google|github>, forgot, reset <token>, open <path>, stats, exit"
	case !a.isVerified():
		return "Available commands: verify, whoami, open <path>, stats, logout, exit"
	default:
		return "Available commands: whoami, open <path>, stats, logout, exit"
	}
}
