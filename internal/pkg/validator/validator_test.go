package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type moneyPayload struct {
	Amount string `json:"amount" validate:"required,money"`
}

func TestMoneyValidation(t *testing.T) {
	valid := []string{"500", "500.00", "0.5", "1000.5", "12.34"}
	for _, v := range valid {
		assert.Nil(t, Validate(moneyPayload{Amount: v}), "expected %q to be valid", v)
	}

	invalid := []string{"", "-5", "12.345", "12.", ".50", "abc", "1,000", "1e3"}
	for _, v := range invalid {
		errs := Validate(moneyPayload{Amount: v})
		assert.NotNil(t, errs, "expected %q to be rejected", v)
		assert.Contains(t, errs, "amount")
	}
}

type rolePayload struct {
	Role string `json:"role" validate:"omitempty,role"`
}

func TestRoleValidation(t *testing.T) {
	assert.Nil(t, Validate(rolePayload{Role: "user"}))
	assert.Nil(t, Validate(rolePayload{Role: "creator"}))
	assert.Nil(t, Validate(rolePayload{}))
	assert.NotNil(t, Validate(rolePayload{Role: "admin"}))
}
