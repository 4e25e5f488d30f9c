package render

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestValidator_Phone(t *testing.T) {
	validate := validator.New()
	configureValidator(validate)

	type T struct {
		Phone string `json:"phone" validate:"phone"`
	}

	tests := []struct {
		name    string
		phone   string
		isValid bool
	}{
		{"valid number", "+375 (29) 123-45-67", true},
		{"another operator code", "+375 (44) 765-43-21", true},
		{"missing country code", "(29) 123-45-67", false},
		{"no spaces", "+375(29)123-45-67", false},
		{"letters inside", "+375 (29) abc-45-67", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(T{Phone: tt.phone})
			if tt.isValid {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
		})
	}
}
