package account

import (
	"github.com/go-playground/validator/v10"

	"github.com/edulane/gurukul/core"
)

var (
	regRoleTag   = "regrole"
	regRoleText  = "role must be one of: tutor, student, parent"
	requiredText = "this field is required"
)

// InitValidators registers account-specific validation tags.
// core.InitValidators must have been called first.
func InitValidators() {
	_ = core.Validate.RegisterValidation(regRoleTag, regRoleValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, regRoleTag, regRoleText)
}

// regRoleValidation only allows self-registerable roles.
func regRoleValidation(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	for _, r := range SelfRegisterableRoles {
		if role == r {
			return true
		}
	}
	return false
}
