package errs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodeAndMessage(t *testing.T) {
	err := Errorf(EINVALID, "Post text must not be empty.")
	assert.Equal(t, EINVALID, ErrorCode(err))
	assert.Equal(t, "Post text must not be empty.", ErrorMessage(err))

	// Wrapped application errors keep their code.
	wrapped := errors.Wrap(err, "creating post")
	assert.Equal(t, EINVALID, ErrorCode(wrapped))

	// Anything else is internal.
	assert.Equal(t, EINTERNAL, ErrorCode(errors.New("boom")))
	assert.Equal(t, "Internal error.", ErrorMessage(errors.New("boom")))

	assert.Equal(t, "", ErrorCode(nil))
}

func TestReturnError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{Errorf(ENOTFOUND, "The post does not exist."), http.StatusNotFound},
		{Errorf(EFORBIDDEN, "Nope."), http.StatusForbidden},
		{Errorf(EUNAUTHORIZED, "Log in."), http.StatusUnauthorized},
		{Errorf(ECONFLICT, "Taken."), http.StatusConflict},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		ReturnError(w, r, tt.err)

		assert.Equal(t, tt.status, w.Code)
		var body ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, ErrorMessage(tt.err), body.Error)
	}
}
