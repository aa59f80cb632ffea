package chat

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

func (m NewMessage) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if m.Meta != nil && !m.Meta.Liked.Valid() {
		return fmt.Errorf("%w: liked=%q", ErrInvalidMeta, m.Meta.Liked)
	}
	return nil
}

func (p MetaPatch) Validate() error {
	if p.Liked != nil && !p.Liked.Valid() {
		return fmt.Errorf("%w: liked=%q", ErrInvalidMeta, *p.Liked)
	}
	return nil
}
