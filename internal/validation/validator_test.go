package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/booklendapp/booklend-server/internal/errors"
)

type registerPayload struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestValidatePasses(t *testing.T) {
	v := New()

	err := v.Validate(registerPayload{
		Username: "alice42",
		Email:    "alice@example.com",
		Password: "correcthorse",
	})
	require.NoError(t, err)
}

func TestValidateReturnsDomainErrorWithFieldDetails(t *testing.T) {
	v := New()

	err := v.Validate(registerPayload{
		Username: "a!",
		Email:    "not-an-email",
		Password: "short",
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "username")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
}

func TestValidateUsesJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(registerPayload{})
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)

	details := domainErr.Details.(map[string]string)
	assert.Equal(t, "is required", details["username"])
}
