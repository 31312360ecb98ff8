// Package otp implements the six-slot verification code entry: per-slot
// typing and backspace, paste, a single automatic submission per completed
// code, and the resend cooldown.
package otp

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/learnportal/internal/client/client"
	"github.com/dmitrijs2005/learnportal/internal/client/countdown"
	"github.com/dmitrijs2005/learnportal/internal/common"
	"github.com/dmitrijs2005/learnportal/internal/logging"
)

// Length is the number of digit slots.
const Length = common.OTPLength

// DefaultCooldown is the resend cooldown in seconds.
const DefaultCooldown = 60

var (
	ErrCooldownActive = errors.New("resend is not available yet")
	ErrNotDigit       = errors.New("only digits are allowed")
	ErrSlotRange      = errors.New("slot out of range")
	ErrSubmitting     = errors.New("verification in progress")
	ErrVerified       = errors.New("code already accepted")
	ErrClosed         = errors.New("verification screen closed")
)

// VerifyFunc submits a complete code.
type VerifyFunc func(ctx context.Context, code string) error

// ResendFunc requests a new code.
type ResendFunc func(ctx context.Context) error

// Options configures a Controller.
type Options struct {
	Verify VerifyFunc
	Resend ResendFunc

	// Cooldown is the resend cooldown in ticks, Tick apart.
	Cooldown int
	Tick     time.Duration

	// OnChange, if set, receives the state after every change.
	OnChange func(State)
}

// State is what the verification screen renders.
type State struct {
	Digits            [Length]string
	Focus             int
	CooldownRemaining int
	Submitting        bool
	Verified          bool
	Error             string
}

// Code joins the digits.
func (s State) Code() string {
	return strings.Join(s.Digits[:], "")
}

// CanResend is true once the cooldown ran out.
func (s State) CanResend() bool {
	return s.CooldownRemaining == 0 && !s.Submitting && !s.Verified
}

// Controller is the state of the code entry.
type Controller struct {
	opts     Options
	log      logging.Logger
	cooldown *countdown.Countdown

	mu         sync.Mutex
	digits     [Length]string
	focus      int
	submitted  bool
	submitting bool
	verified   bool
	errMsg     string
	closed     bool
}

// New creates a controller. Start must be called before use.
func New(opts Options, log logging.Logger) *Controller {
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	c := &Controller{opts: opts, log: log.With("component", "otp")}
	c.cooldown = countdown.New(opts.Tick, func(int) { c.changed() }, func() {
		c.log.Debug(context.Background(), "resend available")
	})
	return c
}

// Start begins the first resend cooldown; the code was just sent.
func (c *Controller) Start() {
	c.cooldown.Start(c.opts.Cooldown)
	c.changed()
}

// Teardown stops the cooldown. Later calls fail with ErrClosed and results
// of a verification still in flight are dropped.
func (c *Controller) Teardown() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cooldown.Stop()
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	return State{
		Digits:            c.digits,
		Focus:             c.focus,
		CooldownRemaining: c.cooldown.Remaining(),
		Submitting:        c.submitting,
		Verified:          c.verified,
		Error:             c.errMsg,
	}
}

func (c *Controller) changed() {
	if c.opts.OnChange == nil {
		return
	}
	c.mu.Lock()
	closed := c.closed
	st := c.stateLocked()
	c.mu.Unlock()
	if !closed {
		c.opts.OnChange(st)
	}
}

// usableLocked reports why the slots cannot be edited right now.
func (c *Controller) usableLocked() error {
	switch {
	case c.closed:
		return ErrClosed
	case c.verified:
		return ErrVerified
	case c.submitting:
		return ErrSubmitting
	}
	return nil
}

// Input stores digit in slot and moves focus to the next slot. Completing
// the code submits it.
func (c *Controller) Input(ctx context.Context, slot int, digit string) error {
	if slot < 0 || slot >= Length {
		return ErrSlotRange
	}
	if len(digit) != 1 || digit[0] < '0' || digit[0] > '9' {
		return ErrNotDigit
	}

	c.mu.Lock()
	if err := c.usableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.digits[slot] = digit
	c.errMsg = ""
	if slot+1 < Length {
		c.focus = slot + 1
	} else {
		c.focus = slot
	}
	c.mu.Unlock()

	c.changed()
	return c.maybeSubmit(ctx)
}

// Backspace clears slot, or moves focus back when slot is already empty.
func (c *Controller) Backspace(slot int) error {
	if slot < 0 || slot >= Length {
		return ErrSlotRange
	}

	c.mu.Lock()
	if err := c.usableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.digits[slot] != "" {
		c.digits[slot] = ""
		c.focus = slot
		c.submitted = false
	} else if slot > 0 {
		c.focus = slot - 1
	}
	c.mu.Unlock()

	c.changed()
	return nil
}

// Paste strips everything but digits from text and fills the slots from the
// left with at most Length of them. Focus lands on the last filled slot.
func (c *Controller) Paste(ctx context.Context, text string) error {
	digits := make([]string, 0, Length)
	for _, r := range text {
		if len(digits) == Length {
			break
		}
		if r >= '0' && r <= '9' {
			digits = append(digits, string(r))
		}
	}
	if len(digits) == 0 {
		return ErrNotDigit
	}

	c.mu.Lock()
	if err := c.usableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	for i := range c.digits {
		if i < len(digits) {
			c.digits[i] = digits[i]
		} else {
			c.digits[i] = ""
		}
	}
	c.focus = len(digits) - 1
	c.errMsg = ""
	c.submitted = false
	c.mu.Unlock()

	c.changed()
	return c.maybeSubmit(ctx)
}

// maybeSubmit runs the verification once per completed fill. A failure
// clears every slot and puts focus back on the first one.
func (c *Controller) maybeSubmit(ctx context.Context) error {
	c.mu.Lock()
	if c.submitted || !c.completeLocked() {
		c.mu.Unlock()
		return nil
	}
	c.submitted = true
	c.submitting = true
	code := strings.Join(c.digits[:], "")
	c.mu.Unlock()
	c.changed()

	err := c.opts.Verify(ctx, code)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.log.Debug(ctx, "dropped verification result after teardown")
		return ErrClosed
	}
	c.submitting = false
	if err != nil {
		c.resetLocked()
		c.errMsg = client.Message(err)
	} else {
		c.verified = true
	}
	c.mu.Unlock()

	if err == nil {
		c.cooldown.Stop()
	}
	c.changed()
	return err
}

func (c *Controller) completeLocked() bool {
	for _, d := range c.digits {
		if d == "" {
			return false
		}
	}
	return true
}

func (c *Controller) resetLocked() {
	c.digits = [Length]string{}
	c.focus = 0
	c.submitted = false
}

// Resend requests a new code once the cooldown is over, then clears the
// slots and restarts the cooldown.
func (c *Controller) Resend(ctx context.Context) error {
	c.mu.Lock()
	if err := c.usableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	if c.cooldown.Active() {
		return ErrCooldownActive
	}

	if err := c.opts.Resend(ctx); err != nil {
		c.mu.Lock()
		c.errMsg = client.Message(err)
		c.mu.Unlock()
		c.changed()
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.resetLocked()
	c.errMsg = ""
	c.mu.Unlock()

	c.cooldown.Start(c.opts.Cooldown)
	c.changed()
	return nil
}
