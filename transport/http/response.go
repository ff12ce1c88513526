package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/polywallet/core"
)

const (
	msgAuthFailed   = "authentication failed"
	msgInvalidToken = "invalid or expired token"
)

// Response is the envelope of every API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func ok(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Message: message})
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Error: msg})
}

// failAuth collapses every login-flow failure into one response so callers
// cannot tell which step rejected them.
func failAuth(c *gin.Context, err error) {
	switch core.KindOf(err) {
	case core.KindValidation:
		fail(c, http.StatusBadRequest, "message and signature are required")
	case core.KindInvalidNonce, core.KindMalformedMessage, core.KindInvalidSignature, core.KindInvalidToken:
		fail(c, http.StatusUnauthorized, msgAuthFailed)
	default:
		fail(c, http.StatusInternalServerError, "internal server error")
	}
}
