package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/learnportal/internal/common"
	"github.com/go-chi/chi/v5"
)

var oauthProviders = map[string]struct{}{
	"google": {},
	"github": {},
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}

	sess, err := s.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			writeMessage(w, http.StatusConflict, "An account with this email already exists")
			return
		}
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Token:                sess.Token,
		User:                 toUserResponse(sess.User),
		RequiresVerification: sess.RequiresVerification,
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	sess, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: sess.Token, User: toUserResponse(sess.User)})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Me(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{User: toUserResponse(user)})
}

func (s *Server) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, err := s.users.VerifyEmail(r.Context(), userIDFrom(r.Context()), req.OTP)
	switch {
	case errors.Is(err, common.ErrInvalidOTP):
		writeMessage(w, http.StatusBadRequest, "Invalid or expired verification code")
	case errors.Is(err, common.ErrorUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
	case err != nil:
		s.internalError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, profileResponse{User: toUserResponse(user)})
	}
}

func (s *Server) resendOTP(w http.ResponseWriter, r *http.Request) {
	err := s.users.ResendOTP(r.Context(), userIDFrom(r.Context()))
	switch {
	case errors.Is(err, common.ErrTooManyRequests):
		writeMessage(w, http.StatusTooManyRequests, "Please wait before requesting another code")
	case errors.Is(err, common.ErrAlreadyVerified):
		writeMessage(w, http.StatusConflict, "Email is already verified")
	case errors.Is(err, common.ErrorUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
	case err != nil:
		s.internalError(w, r, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.users.ForgotPassword(r.Context(), req.Email); err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "If the address is registered, a reset link is on its way"})
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !s.decode(w, r, &req) {
		return
	}

	err := s.users.ResetPassword(r.Context(), req.Token, req.Password)
	switch {
	case errors.Is(err, common.ErrInvalidResetToken):
		writeMessage(w, http.StatusBadRequest, "Invalid or expired reset token")
	case err != nil:
		s.internalError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, messageResponse{Message: "Password updated"})
	}
}

// oauthStart plays the identity provider: it signs the caller in and sends
// the browser back to redirect_uri with the token appended to its query.
func (s *Server) oauthStart(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	if _, ok := oauthProviders[provider]; !ok {
		writeMessage(w, http.StatusNotFound, "Unknown sign-in provider")
		return
	}

	target, err := url.Parse(r.URL.Query().Get("redirect_uri"))
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		writeMessage(w, http.StatusBadRequest, "redirect_uri must be an absolute http(s) URL")
		return
	}

	sess, err := s.users.OAuthSignIn(r.Context(), provider)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	q := target.Query()
	q.Set("token", sess.Token)
	target.RawQuery = q.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}

// decode reads and validates a JSON body; on failure it has already
// written the response.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeMessage(w, http.StatusUnprocessableEntity, validationMessage(err))
		return false
	}
	return true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), "request failed", "error", err, "request_id", requestIDFrom(r.Context()))
	writeMessage(w, http.StatusInternalServerError, "Internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}
