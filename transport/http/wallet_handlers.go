package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/polywallet/service"
	"github.com/rs/zerolog"
)

// WalletHandlers contains HTTP handlers for wallet and token lookups
type WalletHandlers struct {
	walletService *service.WalletService
	log           zerolog.Logger
}

// NewWalletHandlers creates new wallet handlers
func NewWalletHandlers(walletService *service.WalletService, log zerolog.Logger) *WalletHandlers {
	return &WalletHandlers{walletService: walletService, log: log}
}

// Create generates a new wallet
func (h *WalletHandlers) Create(c *gin.Context) {
	w, err := h.walletService.Create()
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to create wallet")
		return
	}

	ok(c, gin.H{
		"address":    w.Address(),
		"privateKey": w.PrivateKeyHex(),
	}, "Wallet created successfully. Please store the private key securely!")
}

// Validate checks an address
func (h *WalletHandlers) Validate(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "address is required")
		return
	}

	ok(c, gin.H{
		"address": req.Address,
		"isValid": h.walletService.ValidAddress(req.Address),
	}, "")
}

// Balance returns the native balance of an address
func (h *WalletHandlers) Balance(c *gin.Context) {
	address := c.Param("address")
	if !h.walletService.ValidAddress(address) {
		fail(c, http.StatusBadRequest, "invalid wallet address")
		return
	}

	balance, err := h.walletService.Balance(c.Request.Context(), address)
	if err != nil {
		h.log.Error().Err(err).Str("address", address).Msg("failed to get balance")
		fail(c, http.StatusBadGateway, "failed to get balance")
		return
	}

	ok(c, gin.H{
		"address":  address,
		"balance":  balance,
		"currency": "MATIC",
	}, "")
}

// Network returns information about the connected chain
func (h *WalletHandlers) Network(c *gin.Context) {
	info, err := h.walletService.Network(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to get network info")
		fail(c, http.StatusBadGateway, "failed to get network information")
		return
	}

	ok(c, info, "")
}

// TokenInfo returns ERC-20 metadata
func (h *WalletHandlers) TokenInfo(c *gin.Context) {
	address := c.Param("address")
	if !h.walletService.ValidAddress(address) {
		fail(c, http.StatusBadRequest, "invalid token address")
		return
	}

	info, err := h.walletService.TokenInfo(c.Request.Context(), address)
	if err != nil {
		h.log.Error().Err(err).Str("token", address).Msg("failed to get token info")
		fail(c, http.StatusNotFound, "failed to get token information")
		return
	}

	h.readEvent(c).Str("token", address).Msg("token info read")
	ok(c, info, "")
}

// TokenBalance returns the ERC-20 balance of a wallet
func (h *WalletHandlers) TokenBalance(c *gin.Context) {
	token := c.Query("tokenAddress")
	holder := c.Query("walletAddress")
	if !h.walletService.ValidAddress(token) || !h.walletService.ValidAddress(holder) {
		fail(c, http.StatusBadRequest, "token address and wallet address are required")
		return
	}

	balance, err := h.walletService.TokenBalance(c.Request.Context(), token, holder)
	if err != nil {
		h.log.Error().Err(err).Str("token", token).Msg("failed to get token balance")
		fail(c, http.StatusBadGateway, "failed to get token balance")
		return
	}

	h.readEvent(c).Str("token", token).Str("holder", holder).Msg("token balance read")
	ok(c, gin.H{
		"tokenAddress":  token,
		"walletAddress": holder,
		"balance":       balance,
	}, "")
}

// readEvent starts a debug log line carrying the caller address when the
// request is authenticated.
func (h *WalletHandlers) readEvent(c *gin.Context) *zerolog.Event {
	ev := h.log.Debug()
	if session, found := sessionFrom(c); found {
		ev = ev.Str("caller", session.Address)
	}
	return ev
}
