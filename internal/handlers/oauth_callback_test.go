package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(state string) (*gin.Engine, chan CallbackResult) {
	gin.SetMode(gin.TestMode)
	results := make(chan CallbackResult, 1)
	return NewCallbackRouter(NewOAuthCallbackHandler(state, results)), results
}

func serve(router *gin.Engine, target string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCallbackDeliversCode(t *testing.T) {
	router, results := newTestRouter("state-1")

	w := serve(router, "/oauth2/callback?state=state-1&code=abc")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization complete")

	require.Len(t, results, 1)
	result := <-results
	assert.NoError(t, result.Err)
	assert.Equal(t, "abc", result.Code)
}

func TestCallbackRejectsWrongState(t *testing.T) {
	router, results := newTestRouter("state-1")

	w := serve(router, "/oauth2/callback?state=other&code=abc")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, results)
}

func TestCallbackMissingCode(t *testing.T) {
	router, results := newTestRouter("state-1")

	w := serve(router, "/oauth2/callback?state=state-1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, results)
}

func TestCallbackDeliversDenial(t *testing.T) {
	router, results := newTestRouter("state-1")

	w := serve(router, "/oauth2/callback?state=state-1&error=access_denied")

	assert.Equal(t, http.StatusForbidden, w.Code)
	require.Len(t, results, 1)
	result := <-results
	assert.ErrorContains(t, result.Err, "access_denied")
}

func TestCallbackDeliversOnlyOnce(t *testing.T) {
	router, results := newTestRouter("state-1")

	serve(router, "/oauth2/callback?state=state-1&code=first")
	w := serve(router, "/oauth2/callback?state=state-1&code=second")

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, results, 1)
	assert.Equal(t, "first", (<-results).Code)
}

func TestUnknownRoute(t *testing.T) {
	router, _ := newTestRouter("state-1")

	w := serve(router, "/favicon.ico")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Nothing is served at /favicon.ico")
}
