package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picstash/service/internal/apperr"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]string{"id": "p1"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	env := decode(t, rec)
	assert.Equal(t, 0, env.Code)
	assert.Empty(t, env.Message)
}

func TestFailStatusMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   int
	}{
		{apperr.Params("bad"), http.StatusBadRequest, 40000},
		{apperr.NoAuth("nope"), http.StatusUnauthorized, 40101},
		{apperr.NotFound("gone"), http.StatusNotFound, 40400},
		{apperr.Operation("conflict"), http.StatusConflict, 50001},
		{apperr.System("boom", errors.New("io")), http.StatusInternalServerError, 50000},
		{errors.New("plain"), http.StatusInternalServerError, 50000},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		Fail(rec, tt.err)
		assert.Equal(t, tt.wantStatus, rec.Code)
		assert.Equal(t, tt.wantCode, decode(t, rec).Code)
	}
}

func TestFailHidesWrappedCause(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, apperr.System("store picture", fmt.Errorf("minio: access denied for key %s", "secret-bucket/k")))

	env := decode(t, rec)
	assert.Equal(t, "store picture", env.Message)
	assert.NotContains(t, rec.Body.String(), "secret-bucket", "causes must never reach clients")
}

func TestFailUnwrapsCodedErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, fmt.Errorf("handler: %w", apperr.NotFound("picture not found")))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "picture not found", decode(t, rec).Message)
}

func TestBadRequestAndUnauthorized(t *testing.T) {
	rec := httptest.NewRecorder()
	BadRequest(rec, "id required")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	Unauthorized(rec, "login required")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "login required", decode(t, rec).Message)
}
