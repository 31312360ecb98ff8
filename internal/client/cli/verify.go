package cli

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/learnportal/internal/client/countdown"
	"github.com/dmitrijs2005/learnportal/internal/client/guard"
	"github.com/dmitrijs2005/learnportal/internal/client/otp"
)

// Verify opens the email verification screen and reads the code. Digits may
// be typed in any number per line; the code is submitted as soon as all
// slots are filled.
func (a *App) Verify(ctx context.Context) error {
	if a.goTo(ctx, guard.PathVerifyEmail) != guard.PathVerifyEmail {
		return nil
	}

	ticks, tick := cooldownTicks(a.config.ResendCooldown)
	c := otp.New(otp.Options{
		Verify:   a.auth.VerifyEmail,
		Resend:   a.auth.ResendOTP,
		Cooldown: ticks,
		Tick:     tick,
	}, a.logger)
	c.Start()
	defer c.Teardown()

	a.println("Type the digits, 'paste <code>', 'back', 'resend' or 'cancel'.")
	for {
		a.println(renderSlots(c.State()))

		line, err := a.prompt("Code")
		if err != nil {
			return err
		}

		switch {
		case line == "cancel":
			return nil
		case line == "back":
			err = backspace(c)
		case line == "resend":
			err = c.Resend(ctx)
			if err == nil {
				a.println("A new code is on its way.")
			}
		case strings.HasPrefix(line, "paste "):
			err = c.Paste(ctx, strings.TrimPrefix(line, "paste "))
		default:
			err = typeDigits(ctx, c, line)
		}

		st := c.State()
		switch {
		case errors.Is(err, otp.ErrCooldownActive):
			a.printf("You can request a new code in %d s.\n", st.CooldownRemaining)
		case errors.Is(err, otp.ErrNotDigit):
			a.println("Only digits are allowed.")
		case st.Error != "":
			a.println(st.Error)
		}

		if st.Verified {
			a.println("Email verified.")
			a.goTo(ctx, guard.PathLanding)
			return nil
		}
		// The session may have been rejected while verifying.
		if !a.isLoggedIn() {
			return nil
		}
	}
}

// typeDigits feeds each character of s into the focused slot, stopping at
// the first error.
func typeDigits(ctx context.Context, c *otp.Controller, s string) error {
	for _, r := range s {
		if r == ' ' {
			continue
		}
		if err := c.Input(ctx, c.State().Focus, string(r)); err != nil {
			return err
		}
	}
	return nil
}

// backspace deletes the digit left of the cursor. Focus sits on the next
// empty slot after typing, so an empty focused slot first moves back.
func backspace(c *otp.Controller) error {
	st := c.State()
	slot := st.Focus
	if st.Digits[slot] == "" && slot > 0 {
		if err := c.Backspace(slot); err != nil {
			return err
		}
		slot--
	}
	return c.Backspace(slot)
}

func renderSlots(st otp.State) string {
	var b strings.Builder
	b.WriteString("  ")
	for i, d := range st.Digits {
		if d == "" {
			d = "_"
		}
		if i == st.Focus {
			b.WriteString("[" + d + "]")
		} else {
			b.WriteString(" " + d + " ")
		}
	}
	if st.CanResend() {
		b.WriteString("   resend available")
	} else if st.CooldownRemaining > 0 {
		b.WriteString("   resend in " + strconv.Itoa(st.CooldownRemaining) + "s")
	}
	return b.String()
}

// cooldownTicks splits the resend cooldown the way the reset redirect delay
// is split. An unset cooldown falls back to the controller default.
func cooldownTicks(d time.Duration) (int, time.Duration) {
	if d <= 0 {
		return otp.DefaultCooldown, time.Second
	}
	return countdown.Ticks(d)
}
