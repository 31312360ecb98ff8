// Package users implements the account lifecycle of the development
// backend: registration, sign-in, email verification and password reset.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/learnportal/internal/common"
	"github.com/dmitrijs2005/learnportal/internal/cryptox"
	"github.com/dmitrijs2005/learnportal/internal/logging"
	"github.com/dmitrijs2005/learnportal/internal/server/auth"
	"github.com/dmitrijs2005/learnportal/internal/server/config"
)

// Session is the outcome of a successful sign-in or registration.
type Session struct {
	Token                string
	User                 *User
	RequiresVerification bool
}

type otpEntry struct {
	hash    string
	expires time.Time
	sentAt  time.Time
}

type resetEntry struct {
	userID  string
	expires time.Time
}

type Service struct {
	repo   Repository
	mailer Mailer
	log    logging.Logger

	jwtSecret      []byte
	tokenTTL       time.Duration
	otpTTL         time.Duration
	resetTTL       time.Duration
	resendCooldown time.Duration
	now            func() time.Time

	mu     sync.Mutex
	otps   map[string]otpEntry   // by user ID
	resets map[string]resetEntry // by token hash
}

func NewService(repo Repository, mailer Mailer, cfg *config.Config, log logging.Logger) *Service {
	return &Service{
		repo:           repo,
		mailer:         mailer,
		log:            log.With("module", "users"),
		jwtSecret:      []byte(cfg.SecretKey),
		tokenTTL:       cfg.TokenTTL,
		otpTTL:         cfg.OTPTTL,
		resetTTL:       cfg.ResetTokenTTL,
		resendCooldown: cfg.ResendCooldown,
		now:            time.Now,
		otps:           make(map[string]otpEntry),
		resets:         make(map[string]resetEntry),
	}
}

// Register creates an unverified account, mails a verification code and
// signs the new user in.
func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	email = NormalizeEmail(email)
	salt, verifier := cryptox.HashPassword(password)

	user, err := s.repo.Create(ctx, &User{
		Name:      strings.TrimSpace(name),
		Email:     email,
		Role:      roleFor(email),
		Salt:      salt,
		Verifier:  verifier,
		CreatedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.issueCode(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.token(user)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return &Session{Token: token, User: user, RequiresVerification: true}, nil
}

// Login checks the password. Unknown emails and wrong passwords are
// indistinguishable: both yield common.ErrorUnauthorized.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Burn the same work as a real check.
			cryptox.CheckPassword(password, cryptox.NewSalt(), nil)
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !cryptox.CheckPassword(password, user.Salt, user.Verifier) {
		return nil, common.ErrorUnauthorized
	}

	token, err := s.token(user)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return &Session{Token: token, User: user}, nil
}

// Authenticate validates a bearer token and returns its user ID.
func (s *Service) Authenticate(token string) (string, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// Me returns the profile behind an authenticated request. A token whose
// user vanished is treated as unauthorized.
func (s *Service) Me(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// VerifyEmail consumes the user's pending code. Verifying an already
// verified account succeeds without a code check.
func (s *Service) VerifyEmail(ctx context.Context, userID, code string) (*User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.EmailVerified {
		return user, nil
	}

	s.mu.Lock()
	entry, ok := s.otps[userID]
	valid := ok && s.now().Before(entry.expires) && entry.hash == cryptox.HashToken(code)
	if valid {
		delete(s.otps, userID)
	}
	s.mu.Unlock()

	if !valid {
		s.log.Info(ctx, "verification code rejected", "user_id", userID)
		return nil, common.ErrInvalidOTP
	}

	user.EmailVerified = true
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.log.Info(ctx, "email verified", "user_id", userID)
	return user, nil
}

// ResendOTP replaces the pending code. Calls closer together than the
// resend cooldown yield common.ErrTooManyRequests.
func (s *Service) ResendOTP(ctx context.Context, userID string) error {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return common.ErrAlreadyVerified
	}

	s.mu.Lock()
	entry, ok := s.otps[userID]
	s.mu.Unlock()
	if ok && s.now().Sub(entry.sentAt) < s.resendCooldown {
		return common.ErrTooManyRequests
	}

	return s.issueCode(ctx, user)
}

// ForgotPassword mails a single-use reset token. Unknown emails are a
// silent no-op.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Info(ctx, "password reset requested for unknown email")
			return nil
		}
		return common.ErrorInternal
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	s.mu.Lock()
	s.resets[cryptox.HashToken(token)] = resetEntry{userID: user.ID, expires: s.now().Add(s.resetTTL)}
	s.mu.Unlock()

	s.mailer.SendResetToken(ctx, user.Email, token)
	s.log.Info(ctx, "password reset requested", "user_id", user.ID)
	return nil
}

// ResetPassword sets a new password. The token is consumed on success, and
// every other outstanding token of the same user is revoked with it.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	hash := cryptox.HashToken(token)

	s.mu.Lock()
	entry, ok := s.resets[hash]
	if ok {
		delete(s.resets, hash)
	}
	s.mu.Unlock()

	if !ok || !s.now().Before(entry.expires) {
		return common.ErrInvalidResetToken
	}

	user, err := s.repo.GetByID(ctx, entry.userID)
	if err != nil {
		return common.ErrInvalidResetToken
	}
	user.Salt, user.Verifier = cryptox.HashPassword(password)
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.mu.Lock()
	for h, e := range s.resets {
		if e.userID == user.ID {
			delete(s.resets, h)
		}
	}
	s.mu.Unlock()

	s.log.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}

// OAuthSignIn stands in for a real identity provider: it signs in a fixed,
// already verified account per provider, creating it on first use.
func (s *Service) OAuthSignIn(ctx context.Context, provider string) (*Session, error) {
	email := NormalizeEmail(provider + ".user@learnportal.dev")

	user, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, common.ErrorNotFound) {
		salt, verifier := cryptox.HashPassword(string(common.GenerateRandByteArray(32)))
		user, err = s.repo.Create(ctx, &User{
			Name:          strings.ToUpper(provider[:1]) + provider[1:] + " User",
			Email:         email,
			Role:          RoleUser,
			EmailVerified: true,
			Salt:          salt,
			Verifier:      verifier,
			CreatedAt:     s.now(),
		})
	}
	if err != nil {
		return nil, fmt.Errorf("oauth user: %w", err)
	}

	token, err := s.token(user)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "oauth sign-in", "provider", provider, "user_id", user.ID)
	return &Session{Token: token, User: user}, nil
}

func (s *Service) issueCode(ctx context.Context, user *User) error {
	code, err := common.RandomDigits(common.OTPLength)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	now := s.now()
	s.mu.Lock()
	s.otps[user.ID] = otpEntry{hash: cryptox.HashToken(code), expires: now.Add(s.otpTTL), sentAt: now}
	s.mu.Unlock()

	s.mailer.SendVerificationCode(ctx, user.Email, code)
	return nil
}

func (s *Service) token(user *User) (string, error) {
	token, err := auth.GenerateToken(user.ID, user.Role, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}
