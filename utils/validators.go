package utils

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	registerOnce   sync.Once
)

// RegisterValidators adds the custom binding rules to gin's validator.
// It is safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("pincode", validatePincode)
		}
	})
}

func validatePincode(fl validator.FieldLevel) bool {
	return pincodePattern.MatchString(fl.Field().String())
}
