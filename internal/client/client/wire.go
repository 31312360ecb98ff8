package client

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/learnportal/internal/client/models"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type registerBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyEmailBody struct {
	OTP string `json:"otp"`
}

type forgotPasswordBody struct {
	Email string `json:"email"`
}

type resetPasswordBody struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type userDTO struct {
	ID              string `json:"id" validate:"required"`
	Name            string `json:"name"`
	Email           string `json:"email" validate:"required"`
	Role            string `json:"role" validate:"omitempty,oneof=user admin"`
	IsEmailVerified bool   `json:"isEmailVerified"`
}

func (u userDTO) model() *models.User {
	role := models.Role(u.Role)
	if role == "" {
		role = models.RoleUser
	}
	return &models.User{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            role,
		IsEmailVerified: u.IsEmailVerified,
	}
}

type authResponse struct {
	Token                string   `json:"token" validate:"required"`
	User                 *userDTO `json:"user" validate:"required"`
	RequiresVerification bool     `json:"requiresVerification"`
}

type userResponse struct {
	User *userDTO `json:"user" validate:"required"`
}

// errorResponse accepts both {"message": "..."} and
// {"error": {"code": "...", "message": "..."}} bodies.
type errorResponse struct {
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e errorResponse) text() string {
	if e.Error != nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return e.Message
}

// decodeValidated reads a JSON body into dst and checks its validate tags,
// so callers only ever see fully-populated results.
func decodeValidated(r io.Reader, dst any) error {
	if err := json.NewDecoder(io.LimitReader(r, 1<<20)).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("validate response: %w", err)
	}
	return nil
}

// readErrorMessage extracts the backend's message from an error body.
func readErrorMessage(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil || len(b) == 0 {
		return ""
	}
	var body errorResponse
	if json.Unmarshal(b, &body) == nil {
		return strings.TrimSpace(body.text())
	}
	return ""
}
