package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("direct match", func(t *testing.T) {
		err := New(CodeNotFound, "listing not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("walks the wrap chain", func(t *testing.T) {
		inner := New(CodeConflict, "already rented")
		outer := Wrap(inner, CodePartialFailure, "history append failed")
		assert.True(t, HasCode(outer, CodePartialFailure))
		assert.True(t, HasCode(outer, CodeConflict))
		assert.False(t, HasCode(outer, CodeNotFound))
	})

	t.Run("sees through fmt.Errorf wrapping", func(t *testing.T) {
		err := fmt.Errorf("confirm rent: %w", New(CodeConflict, "already rented"))
		assert.True(t, HasCode(err, CodeConflict))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeNotFound, GetCode(New(CodeNotFound, "gone")))
	assert.Equal(t, CodeValidation, GetCode(Wrap(errors.New("boom"), CodeValidation, "bad field")))
	// Outermost code wins.
	assert.Equal(t, CodePartialFailure, GetCode(Wrap(New(CodeConflict, "inner"), CodePartialFailure, "outer")))
	assert.Equal(t, CodeInternal, GetCode(errors.New("uncoded")))
}

func TestErrorsIsOnSharedSentinels(t *testing.T) {
	sentinel := New(CodeConflict, "already rented")
	wrapped := fmt.Errorf("op: %w", sentinel)
	assert.ErrorIs(t, wrapped, sentinel)
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "not_found: listing not found", New(CodeNotFound, "listing not found").Error())
	assert.Equal(t, "internal: save failed: boom", Wrap(errors.New("boom"), CodeInternal, "save failed").Error())
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeNotFound:       http.StatusNotFound,
		CodeConflict:       http.StatusConflict,
		CodeInvalidInput:   http.StatusBadRequest,
		CodeBadRequest:     http.StatusBadRequest,
		CodeValidation:     http.StatusBadRequest,
		CodePartialFailure: http.StatusBadGateway,
		CodeUnauthorized:   http.StatusUnauthorized,
		CodeForbidden:      http.StatusForbidden,
		CodeTimeout:        http.StatusGatewayTimeout,
		CodeInternal:       http.StatusInternalServerError,
		Code("mystery"):    http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
