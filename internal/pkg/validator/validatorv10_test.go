package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type credentialInput struct {
	Name      string `json:"name" validate:"required"`
	Secret    string `json:"secret" validate:"required,base32"`
	Algorithm string `json:"algorithm" validate:"omitempty,otpalg"`
	Digits    int    `json:"digits" validate:"omitempty,min=1,max=10"`
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	tests := []struct {
		name   string
		input  credentialInput
		fields map[string]string
	}{
		{
			name:  "valid",
			input: credentialInput{Name: "alice", Secret: "JBSWY3DPEHPK3PXP", Algorithm: "SHA256", Digits: 8},
		},
		{
			name:  "padded lowercase secret",
			input: credentialInput{Name: "alice", Secret: "mfrgg==="},
		},
		{
			name:  "missing fields",
			input: credentialInput{},
			fields: map[string]string{
				"name":   "name is a required field",
				"secret": "secret is a required field",
			},
		},
		{
			name:  "custom rules",
			input: credentialInput{Name: "alice", Secret: "SECRET1!", Algorithm: "md5", Digits: 11},
			fields: map[string]string{
				"secret":    "secret must be a base32 encoded string",
				"algorithm": "algorithm must be one of sha1, sha256 or sha512",
				"digits":    "digits must be 10 or less",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			var verr V10ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.fields, verr.Values())
		})
	}
}
