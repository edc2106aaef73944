package handler

import (
	"github.com/go-playground/validator/v10"

	"github.com/destru/catalog-api/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to
// echo.Echo.Validator. Two custom rules are registered:
//   - username: 3–100 characters from [0-9a-zA-Z_-]
//   - hexdigest: a 64-digit hexadecimal string (the client-side password digest)
func NewValidator() *echoValidator {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return domain.ValidName(fl.Field().String())
	})
	_ = v.RegisterValidation("hexdigest", func(fl validator.FieldLevel) bool {
		return domain.ValidPasswordDigest(fl.Field().String())
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. Failures come back as
// validator.ValidationErrors; handlers map them onto the domain error
// taxonomy so responses carry machine-readable reasons.
func (ev *echoValidator) Validate(i any) error {
	return ev.v.Struct(i)
}

// fieldReason maps a validation failure to the domain error for its field.
func fieldReason(err error) error {
	ve, ok := err.(validator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return domain.ErrInvalidName
	}
	switch ve[0].Field() {
	case "Password":
		return domain.ErrInvalidPassword
	default:
		return domain.ErrInvalidName
	}
}
