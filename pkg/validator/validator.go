package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/carepulse/hms-api/internal/model"
)

// New returns a validator with the application's custom rules registered.
func New() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := Register(v); err != nil {
		return nil, err
	}
	return v, nil
}

// Register adds the application's custom rules to an existing validator,
// typically gin's binding engine.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("userrole", validateUserRole); err != nil {
		return err
	}
	return v.RegisterValidation("tipslot", validateTipSlot)
}

func validateUserRole(fl validator.FieldLevel) bool {
	return model.Role(fl.Field().String()).Valid()
}

func validateTipSlot(fl validator.FieldLevel) bool {
	_, err := model.ParseTipSlot(fl.Field().String())
	return err == nil
}
