package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"direct", Validation("bad input"), KindValidation},
		{"wrapped", fmt.Errorf("creating booking: %w", Conflict("overlap")), KindConflict},
		{"unknown error counts as storage", stderrors.New("boom"), KindStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{New(KindAlreadyStarted, "too late"), http.StatusBadRequest},
		{NotFound("no such booking"), http.StatusNotFound},
		{Authorization("not yours"), http.StatusForbidden},
		{Conflict("overlap"), http.StatusConflict},
		{New(KindInsufficientBalance, "broke"), http.StatusUnprocessableEntity},
		{New(KindInsufficientCredits, "no credits"), http.StatusUnprocessableEntity},
		{New(KindStorage, "db down"), http.StatusInternalServerError},
		{stderrors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(KindOf(tt.err)), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("gone"))
	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindConflict))
}
