package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitshare/errs"
)

type signup struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	UserID   string `json:"userId,omitempty" validate:"omitempty,mongodb"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(signup{Name: "Ada", Email: "ada@example.com", Password: "secret1"}))
}

func TestValidate_FieldDetails(t *testing.T) {
	v := New()
	err := v.Validate(signup{Email: "nope", Password: "123", UserID: "xyz"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValidation)

	var e *errs.Error
	require.True(t, errors.As(err, &e))
	details, ok := e.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "must be a valid email address", details["email"])
	assert.Equal(t, "must be at least 6 characters", details["password"])
	assert.Equal(t, "must be a valid id", details["userId"])
}
