package handlers

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

const callbackPage = `<!DOCTYPE html>
<html>
<head><title>gdocscope</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 4em;">
<h2>%s</h2>
<p>%s</p>
</body>
</html>`

// CallbackResult carries the outcome of the consent screen back to the flow
type CallbackResult struct {
	Code string
	Err  error
}

// OAuthCallbackHandler receives the redirect of the OAuth consent screen on
// the loopback address. Only the first valid callback is delivered.
type OAuthCallbackHandler struct {
	state   string
	results chan<- CallbackResult
	once    sync.Once
}

func NewOAuthCallbackHandler(state string, results chan<- CallbackResult) *OAuthCallbackHandler {
	return &OAuthCallbackHandler{
		state:   state,
		results: results,
	}
}

// Callback handles GET /oauth2/callback
func (h *OAuthCallbackHandler) Callback(c *gin.Context) {
	if c.Query("state") != h.state {
		renderCallbackPage(c, http.StatusBadRequest, "Authorization failed", "The request state did not match. Start the tool again.")
		return
	}

	if errMsg := c.Query("error"); errMsg != "" {
		h.deliver(CallbackResult{Err: fmt.Errorf("authorization denied: %s", errMsg)})
		renderCallbackPage(c, http.StatusForbidden, "Authorization denied", "You can close this window.")
		return
	}

	code := c.Query("code")
	if code == "" {
		renderCallbackPage(c, http.StatusBadRequest, "Authorization failed", "No authorization code was received.")
		return
	}

	h.deliver(CallbackResult{Code: code})
	renderCallbackPage(c, http.StatusOK, "Authorization complete", "You can close this window and return to the terminal.")
}

func (h *OAuthCallbackHandler) deliver(result CallbackResult) {
	h.once.Do(func() {
		select {
		case h.results <- result:
		default:
		}
	})
}

func renderCallbackPage(c *gin.Context, status int, title, message string) {
	c.Data(status, "text/html; charset=utf-8", []byte(fmt.Sprintf(callbackPage, title, message)))
}

// NewCallbackRouter builds the router served during the consent flow
func NewCallbackRouter(handler *OAuthCallbackHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/oauth2/callback", handler.Callback)
	router.NoRoute(NewNotFoundHandler().NotFound)
	return router
}
