package ports

import (
	"context"
	"math/big"
)

// NetworkInfo describes the connected chain
type NetworkInfo struct {
	ChainID        *big.Int
	GasTipCap      *big.Int
	LatestBlockNum uint64
}

// TokenMetadata is the ERC-20 metadata of a token contract
type TokenMetadata struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
}

// ChainReader performs read-only chain lookups
type ChainReader interface {
	Balance(ctx context.Context, address string) (*big.Int, error)
	Network(ctx context.Context) (*NetworkInfo, error)
	TokenMetadata(ctx context.Context, token string) (*TokenMetadata, error)
	TokenBalance(ctx context.Context, token, holder string) (*big.Int, uint8, error)
}
