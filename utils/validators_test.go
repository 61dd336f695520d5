package utils

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func TestPincodeValidator(t *testing.T) {
	RegisterValidators()
	RegisterValidators()

	type address struct {
		Pincode string `binding:"omitempty,pincode"`
	}

	cases := map[string]bool{
		"411001":  true,
		"":        true,
		"011001":  false,
		"41100":   false,
		"4110011": false,
		"41A001":  false,
	}
	for pincode, valid := range cases {
		err := binding.Validator.ValidateStruct(address{Pincode: pincode})
		if valid {
			assert.NoError(t, err, pincode)
		} else {
			assert.Error(t, err, pincode)
		}
	}
}
