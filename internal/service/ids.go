package service

import (
	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/language-school-api/pkg/errors"
)

func validateID(v *validator.Validate, id, label string) error {
	if err := v.Var(id, "required,uuid"); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+label+" id")
	}
	return nil
}
