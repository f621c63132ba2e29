package auth

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/auth"
	"github.com/MattyO101/Legalassist-MPV/internal/users"
)

var (
	hasLetter = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit  = regexp.MustCompile(`\d`)
)

var passwordRules = []validation.Rule{
	validation.Required,
	validation.Length(8, 72),
	validation.Match(hasLetter).Error("must contain at least one letter and one number"),
	validation.Match(hasDigit).Error("must contain at least one letter and one number"),
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, passwordRules...),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required),
	)
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// validatePassword applies the register password rules to a bare value.
func validatePassword(password string) error {
	return validation.Errors{"password": validation.Validate(password, passwordRules...)}.Filter()
}

type AuthResponse struct {
	User   users.User     `json:"user"`
	Tokens auth.TokenPair `json:"tokens"`
}

type ForgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken,omitempty"`
}
