package goerror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		typ  Type
	}{
		{name: "server", err: NewServer(errors.New("disk full")), want: http.StatusInternalServerError, typ: TypeServer},
		{name: "not found", err: NewBusiness("credential not found", CodeNotFound), want: http.StatusNotFound, typ: TypeBusiness},
		{name: "unavailable", err: NewBusiness("storage disabled", CodeUnavailable), want: http.StatusServiceUnavailable, typ: TypeBusiness},
		{name: "invalid input", err: NewInvalidInput(errors.New("name is required")), want: http.StatusUnprocessableEntity, typ: TypeValidation},
		{name: "invalid format", err: NewInvalidFormat(), want: http.StatusBadRequest, typ: TypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gerr *Error
			require.ErrorAs(t, tt.err, &gerr)
			assert.Equal(t, tt.want, gerr.StatusCode())
			assert.Equal(t, tt.typ, gerr.Type())
		})
	}
}

func TestNewBusinessWrap_KeepsCause(t *testing.T) {
	cause := errors.New("otp: invalid otpauth uri")
	err := NewBusinessWrap(cause, "Invalid otpauth URI", CodeInvalidFormat)

	assert.ErrorIs(t, err, cause)

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "Invalid otpauth URI", gerr.Msg())
	assert.Equal(t, http.StatusBadRequest, gerr.StatusCode())
}

func TestNewInvalidInput_Fields(t *testing.T) {
	err := NewInvalidInput(nil, "uri", "uri or name and secret is required")

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, map[string]string{"uri": "uri or name and secret is required"}, gerr.Fields())

	err = NewInvalidInput(nil, "odd")
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, CodeInvalidFormat, gerr.Code())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(NewBusiness("missing", CodeNotFound)))
	assert.Equal(t, CodeInvalidInput, CodeOf(fmt.Errorf("wrapped: %w", NewInvalidInput(nil, "name", "required"))))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	assert.Equal(t, "ERROR_CODE_UNAVAILABLE", CodeUnavailable.String())
	assert.Equal(t, "ERROR_CODE_INTERNAL", Code(99).String())
	assert.Equal(t, "ERROR_TYPE_UNKNOWN", Type(99).String())
}
