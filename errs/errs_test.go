package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeNotFound:      http.StatusNotFound,
		CodeAlreadyExists: http.StatusConflict,
		CodeConflict:      http.StatusConflict,
		CodeValidation:    http.StatusBadRequest,
		CodeUnauthorized:  http.StatusUnauthorized,
		CodeForbidden:     http.StatusForbidden,
		CodeRateLimited:   http.StatusTooManyRequests,
		CodeInternal:      http.StatusInternalServerError,
		Code("UNKNOWN"):   http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, code.HTTPStatus(), code)
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := NotFound("post not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))

	wrapped := fmt.Errorf("liking post: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
	assert.Equal(t, http.StatusNotFound, StatusOf(wrapped))
}

func TestWithCauseUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("finding user").WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "finding user: connection reset", err.Error())
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}
