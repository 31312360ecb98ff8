package users

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/learnportal/internal/logging"
)

// Mailer delivers one-time secrets to a user's inbox.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string)
	SendResetToken(ctx context.Context, email, token string)
}

// Outbox is the development mailer: it logs deliveries at debug level and
// remembers the latest secret per address so tests and operators can read it.
type Outbox struct {
	log logging.Logger

	mu     sync.Mutex
	codes  map[string]string
	resets map[string]string
}

func NewOutbox(log logging.Logger) *Outbox {
	return &Outbox{
		log:    log.With("module", "outbox"),
		codes:  make(map[string]string),
		resets: make(map[string]string),
	}
}

func (o *Outbox) SendVerificationCode(ctx context.Context, email, code string) {
	o.mu.Lock()
	o.codes[email] = code
	o.mu.Unlock()
	o.log.Debug(ctx, "verification code issued", "email", email, "code", code)
}

func (o *Outbox) SendResetToken(ctx context.Context, email, token string) {
	o.mu.Lock()
	o.resets[email] = token
	o.mu.Unlock()
	o.log.Debug(ctx, "reset token issued", "email", email, "token", token)
}

// LastCode returns the most recent verification code sent to email.
func (o *Outbox) LastCode(email string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	c, ok := o.codes[NormalizeEmail(email)]
	return c, ok
}

// LastResetToken returns the most recent reset token sent to email.
func (o *Outbox) LastResetToken(email string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	t, ok := o.resets[NormalizeEmail(email)]
	return t, ok
}
