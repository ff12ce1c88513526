package service

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/layer-3/polywallet/ports"
	"github.com/layer-3/polywallet/wallet"
	"github.com/shopspring/decimal"
)

const (
	weiDecimals  = 18
	gweiDecimals = 9
)

// NetworkSummary is the network information returned to clients
type NetworkSummary struct {
	ChainID       int64  `json:"chainId"`
	Name          string `json:"name"`
	LatestBlock   uint64 `json:"latestBlock"`
	GasTipCapGwei string `json:"maxPriorityFeePerGas"`
}

// TokenInfo is the formatted ERC-20 metadata of a token
type TokenInfo struct {
	Address     string `json:"address"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply string `json:"totalSupply"`
}

// WalletService wraps wallet generation and read-only chain lookups
type WalletService struct {
	chain ports.ChainReader
}

// NewWalletService creates a wallet service reading from chain
func NewWalletService(chain ports.ChainReader) *WalletService {
	return &WalletService{chain: chain}
}

// Create generates a new local wallet
func (s *WalletService) Create() (*wallet.Wallet, error) {
	return wallet.Generate()
}

// ValidAddress reports whether address is a well-formed hex address
func (s *WalletService) ValidAddress(address string) bool {
	return common.IsHexAddress(address)
}

// Balance returns the native balance of address in ether units
func (s *WalletService) Balance(ctx context.Context, address string) (string, error) {
	wei, err := s.chain.Balance(ctx, address)
	if err != nil {
		return "", err
	}
	return FormatUnits(wei, weiDecimals), nil
}

// Network describes the connected chain
func (s *WalletService) Network(ctx context.Context) (*NetworkSummary, error) {
	info, err := s.chain.Network(ctx)
	if err != nil {
		return nil, err
	}
	return &NetworkSummary{
		ChainID:       info.ChainID.Int64(),
		Name:          NetworkName(info.ChainID.Int64()),
		LatestBlock:   info.LatestBlockNum,
		GasTipCapGwei: FormatUnits(info.GasTipCap, gweiDecimals),
	}, nil
}

// TokenInfo reads ERC-20 metadata for token
func (s *WalletService) TokenInfo(ctx context.Context, token string) (*TokenInfo, error) {
	md, err := s.chain.TokenMetadata(ctx, token)
	if err != nil {
		return nil, err
	}
	return &TokenInfo{
		Address:     token,
		Name:        md.Name,
		Symbol:      md.Symbol,
		Decimals:    md.Decimals,
		TotalSupply: FormatUnits(md.TotalSupply, int32(md.Decimals)),
	}, nil
}

// TokenBalance returns the ERC-20 balance of holder in token units
func (s *WalletService) TokenBalance(ctx context.Context, token, holder string) (string, error) {
	raw, decimals, err := s.chain.TokenBalance(ctx, token, holder)
	if err != nil {
		return "", err
	}
	return FormatUnits(raw, int32(decimals)), nil
}

// FormatUnits renders an integer amount with the given number of decimals
func FormatUnits(amount *big.Int, decimals int32) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -decimals).String()
}

// NetworkName maps well-known Polygon chain ids to names
func NetworkName(chainID int64) string {
	switch chainID {
	case 137:
		return "polygon"
	case 80002:
		return "amoy"
	case 80001:
		return "mumbai"
	case 1:
		return "mainnet"
	default:
		return "unknown"
	}
}
