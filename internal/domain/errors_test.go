// internal/domain/errors_test.go
package domain

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusForMapsKnownErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"missing field", NewErrInputMissing("file_path"), http.StatusBadRequest},
		{"invalid input", NewErrInputInvalid("decoding body", errors.New("boom")), http.StatusBadRequest},
		{"not found", NewNotFoundError("file", "/tmp/x.png"), http.StatusNotFound},
		{"too large", NewErrTooLarge("x.png", 10, 5), http.StatusRequestEntityTooLarge},
		{"unsupported format", NewErrUnsupportedFormat("x.exe", ".exe"), http.StatusBadRequest},
		{"recognizer unavailable", NewErrRecognizerUnavailable("not ready", nil), http.StatusOK},
		{"processing timeout", NewErrProcessingTimeout("OCRHandler.Image"), http.StatusOK},
		{"transient io", NewErrTransientIO("reading file", errors.New("disk")), http.StatusOK},
		{"fatal", NewErrFatal("panic recovered", errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, HTTPStatusFor(tc.err))
		})
	}
}

func TestHTTPStatusForFallsBackToInternalServerError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFor(errors.New("plain error")))
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(NewNotFoundError("file", "missing.png")))
	assert.False(t, IsNotFoundError(errors.New("other")))
}

func TestErrInputInvalidUnwraps(t *testing.T) {
	cause := errors.New("underlying cause")
	err := NewErrInputInvalid("decoding request body", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "underlying cause")
}

func TestErrorsSupportErrorsAs(t *testing.T) {
	var target *NotFoundError
	err := NewNotFoundError("file", "a.png")
	assert.ErrorAs(t, error(err), &target)
}
