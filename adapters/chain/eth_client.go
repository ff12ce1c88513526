package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/layer-3/polywallet/ports"
)

const erc20ABI = `[
	{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"totalSupply","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"}
]`

// Backend is the subset of ethclient.Client used by Client
type Backend interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Client implements the ChainReader interface over a JSON-RPC backend
type Client struct {
	backend Backend
	erc20   abi.ABI
}

var _ ports.ChainReader = (*Client)(nil)

// Dial connects to the JSON-RPC endpoint at rpcURL
func Dial(ctx context.Context, rpcURL string) (*Client, *ethclient.Client, error) {
	ec, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dial rpc: %w", err)
	}
	c, err := New(ec)
	if err != nil {
		ec.Close()
		return nil, nil, err
	}
	return c, ec, nil
}

// New creates a chain client over backend
func New(backend Backend) (*Client, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc20 abi: %w", err)
	}
	return &Client{backend: backend, erc20: parsed}, nil
}

// Balance returns the native balance of address in wei
func (c *Client) Balance(ctx context.Context, address string) (*big.Int, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	balance, err := c.backend.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// Network returns the chain id, suggested tip and latest block
func (c *Client) Network(ctx context.Context) (*ports.NetworkInfo, error) {
	chainID, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	tip, err := c.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas tip: %w", err)
	}
	block, err := c.backend.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get block number: %w", err)
	}
	return &ports.NetworkInfo{ChainID: chainID, GasTipCap: tip, LatestBlockNum: block}, nil
}

// TokenMetadata reads name, symbol, decimals and total supply of an ERC-20 token
func (c *Client) TokenMetadata(ctx context.Context, token string) (*ports.TokenMetadata, error) {
	addr, err := parseAddress(token)
	if err != nil {
		return nil, err
	}

	var md ports.TokenMetadata
	if err := c.call(ctx, addr, "name", &md.Name); err != nil {
		return nil, err
	}
	if err := c.call(ctx, addr, "symbol", &md.Symbol); err != nil {
		return nil, err
	}
	if err := c.call(ctx, addr, "decimals", &md.Decimals); err != nil {
		return nil, err
	}
	if err := c.call(ctx, addr, "totalSupply", &md.TotalSupply); err != nil {
		return nil, err
	}
	return &md, nil
}

// TokenBalance returns the raw ERC-20 balance of holder and the token decimals
func (c *Client) TokenBalance(ctx context.Context, token, holder string) (*big.Int, uint8, error) {
	tokenAddr, err := parseAddress(token)
	if err != nil {
		return nil, 0, err
	}
	holderAddr, err := parseAddress(holder)
	if err != nil {
		return nil, 0, err
	}

	var decimals uint8
	if err := c.call(ctx, tokenAddr, "decimals", &decimals); err != nil {
		return nil, 0, err
	}
	var balance *big.Int
	if err := c.call(ctx, tokenAddr, "balanceOf", &balance, holderAddr); err != nil {
		return nil, 0, err
	}
	return balance, decimals, nil
}

func (c *Client) call(ctx context.Context, to common.Address, method string, out interface{}, args ...interface{}) error {
	data, err := c.erc20.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("failed to pack %s: %w", method, err)
	}
	raw, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	if err := c.erc20.UnpackIntoInterface(out, method, raw); err != nil {
		return fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	return nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}
