package auth

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"messenger-lab/errors"
)

var validate = validator.New()

// RegisterRequest carries the credential rules: usernames are at least
// 3 characters, passwords at least 6. Usernames are case-sensitive and
// must not contain spaces.
type RegisterRequest struct {
	Username string `validate:"required,min=3,max=32,excludesall= "`
	Password string `validate:"required,min=6,max=72"`
}

// ProfileRequest carries the mutable profile fields. Bio is capped at
// 100 characters; oversized updates are rejected, never truncated, so
// the persisted value is always exactly what the user confirmed.
type ProfileRequest struct {
	DisplayName string `validate:"required,min=1,max=64"`
	Bio         string `validate:"max=100"`
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidRegistration, err)
	}
	return nil
}

func ValidateProfile(req ProfileRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidProfile, err)
	}
	return nil
}
