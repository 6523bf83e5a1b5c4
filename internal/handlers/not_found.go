package handlers

import (
	"fmt"
	"html"
	"net/http"

	"github.com/gin-gonic/gin"
)

type NotFoundHandler struct{}

func NewNotFoundHandler() *NotFoundHandler {
	return &NotFoundHandler{}
}

// NotFound handles requests to anything but the callback path
func (h *NotFoundHandler) NotFound(c *gin.Context) {
	message := fmt.Sprintf("Nothing is served at %s.", html.EscapeString(c.Request.URL.Path))
	renderCallbackPage(c, http.StatusNotFound, "404 - Page Not Found", message)
}
