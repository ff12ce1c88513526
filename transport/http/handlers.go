package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/polywallet/core"
	"github.com/layer-3/polywallet/service"
	"github.com/rs/zerolog"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
	log         zerolog.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, log zerolog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		log:         log,
	}
}

// Nonce issues a login nonce
func (h *AuthHandlers) Nonce(c *gin.Context) {
	nonce, err := h.authService.Nonce(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to generate nonce")
		fail(c, http.StatusInternalServerError, "failed to generate nonce")
		return
	}

	ok(c, gin.H{"nonce": nonce}, "")
}

// Message renders a SIWE message for the client to sign
func (h *AuthHandlers) Message(c *gin.Context) {
	address := c.Query("address")
	nonce := c.Query("nonce")
	chainID, err := strconv.ParseInt(c.Query("chainId"), 10, 64)
	if err != nil || address == "" || nonce == "" {
		fail(c, http.StatusBadRequest, "address, chainId and nonce are required")
		return
	}

	message, err := h.authService.Message(address, chainID, nonce)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid message parameters")
		return
	}

	ok(c, gin.H{"message": message}, "")
}

// Verify handles the login request
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req struct {
		Message   string `json:"message" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "message and signature are required")
		return
	}

	token, session, err := h.authService.Login(c.Request.Context(), req.Message, req.Signature)
	if err != nil {
		h.log.Warn().Err(err).Str("kind", core.KindOf(err).String()).Str("ip", c.ClientIP()).Msg("login rejected")
		failAuth(c, err)
		return
	}

	ok(c, gin.H{
		"token":   token,
		"address": session.Address,
		"chainId": session.ChainID,
	}, "Authentication successful")
}

// Me returns information about the authenticated user
func (h *AuthHandlers) Me(c *gin.Context) {
	session, exists := sessionFrom(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	ok(c, gin.H{
		"address": session.Address,
		"chainId": session.ChainID,
	}, "")
}

// Logout acknowledges a logout; the client discards its token
func (h *AuthHandlers) Logout(c *gin.Context) {
	session, exists := sessionFrom(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), session); err != nil {
		fail(c, http.StatusInternalServerError, "logout failed")
		return
	}

	ok(c, nil, "Logged out successfully")
}

// HealthHandler reports liveness and the active store backend
func HealthHandler(storeKind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"store":     storeKind,
		})
	}
}
