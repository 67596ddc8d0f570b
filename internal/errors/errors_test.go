package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesCode(t *testing.T) {
	base := FetchError("https://example.com/data.csv", fmt.Errorf("connection refused"))
	wrapped := Wrap(base, "loading dashboard")

	assert.Equal(t, CodeFetchError, GetCode(wrapped))
	assert.Contains(t, wrapped.Error(), "loading dashboard")
	assert.Contains(t, wrapped.Error(), "connection refused")
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrapPlainError(t *testing.T) {
	err := Wrapf(fmt.Errorf("boom"), "step %d", 3)
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Equal(t, "step 3: boom", err.Error())

	assert.Nil(t, Wrap(nil, "ignored"))
	assert.Nil(t, WithCode(CodeNotFound, nil))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeConfigInvalid, NotFound("schema profile \"x\""))
	assert.True(t, IsCode(err, CodeConfigInvalid))
	assert.Contains(t, err.Error(), "not found")

	plain := WithCode(CodeInvalidInput, fmt.Errorf("bad"))
	assert.True(t, IsCode(plain, CodeInvalidInput))
}

func TestGetCodeUnknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{InvalidInput("year"), http.StatusBadRequest},
		{New(CodeInvalidInput, "x"), http.StatusBadRequest},
		{NotFound("chart"), http.StatusNotFound},
		{FetchError("x", nil), http.StatusBadGateway},
		{ExternalServiceError("sheets", nil), http.StatusBadGateway},
		{Wrap(FetchError("x", nil), "outer"), http.StatusBadGateway},
		{SchemaMismatch("columns"), http.StatusInternalServerError},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}
