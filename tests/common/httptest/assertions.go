//go:build unit || e2e

package httptest

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ErrorBody is the envelope written by the auth and error middleware.
type ErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// AssertSuccessResponse stops the test on an unexpected status, then decodes
// the body into out when out is non-nil.
func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder, status int, out any) {
	t.Helper()
	require.Equalf(t, status, w.Code, "response: %s", w.Body.String())
	if out != nil {
		decodeBody(t, w, out)
	}
}

// AssertErrorResponse checks the status and that the error message contains
// want. An empty want only checks the envelope decodes.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, status int, want string) ErrorBody {
	t.Helper()
	assert.Equalf(t, status, w.Code, "response: %s", w.Body.String())

	var body ErrorBody
	decodeBody(t, w, &body)
	if want != "" {
		assert.Contains(t, body.Error.Message, want)
	}
	return body
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoErrorf(t, json.Unmarshal(w.Body.Bytes(), out), "undecodable response: %s", w.Body.String())
}
