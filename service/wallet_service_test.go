package service

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/layer-3/polywallet/ports"
	"github.com/stretchr/testify/require"
)

type fakeChain struct {
	balances map[string]*big.Int
	network  *ports.NetworkInfo
	tokens   map[string]*ports.TokenMetadata
	holdings map[string]*big.Int
	err      error
}

func (c *fakeChain) Balance(_ context.Context, address string) (*big.Int, error) {
	if c.err != nil {
		return nil, c.err
	}
	if b, ok := c.balances[address]; ok {
		return b, nil
	}
	return new(big.Int), nil
}

func (c *fakeChain) Network(context.Context) (*ports.NetworkInfo, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.network, nil
}

func (c *fakeChain) TokenMetadata(_ context.Context, token string) (*ports.TokenMetadata, error) {
	md, ok := c.tokens[token]
	if !ok {
		return nil, errors.New("no contract code")
	}
	return md, nil
}

func (c *fakeChain) TokenBalance(_ context.Context, token, holder string) (*big.Int, uint8, error) {
	md, ok := c.tokens[token]
	if !ok {
		return nil, 0, errors.New("no contract code")
	}
	return c.holdings[holder], md.Decimals, nil
}

func wei(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad integer " + s)
	}
	return v
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		amount   *big.Int
		decimals int32
		want     string
	}{
		{nil, 18, "0"},
		{big.NewInt(0), 18, "0"},
		{wei("1000000000000000000"), 18, "1"},
		{wei("1500000000000000000"), 18, "1.5"},
		{big.NewInt(1), 18, "0.000000000000000001"},
		{big.NewInt(30000000000), 9, "30"},
		{big.NewInt(12345), 2, "123.45"},
		{big.NewInt(7), 0, "7"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, FormatUnits(tt.amount, tt.decimals))
	}
}

func TestNetworkName(t *testing.T) {
	require.Equal(t, "polygon", NetworkName(137))
	require.Equal(t, "amoy", NetworkName(80002))
	require.Equal(t, "mumbai", NetworkName(80001))
	require.Equal(t, "mainnet", NetworkName(1))
	require.Equal(t, "unknown", NetworkName(31337))
}

func TestWalletService(t *testing.T) {
	ctx := context.Background()
	const (
		holder = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
		token  = "0x0000000000000000000000000000000000001010"
	)

	chain := &fakeChain{
		balances: map[string]*big.Int{holder: wei("2250000000000000000")},
		network: &ports.NetworkInfo{
			ChainID:        big.NewInt(80002),
			GasTipCap:      big.NewInt(25000000000),
			LatestBlockNum: 1234,
		},
		tokens: map[string]*ports.TokenMetadata{
			token: {Name: "Test USD", Symbol: "TUSD", Decimals: 6, TotalSupply: big.NewInt(1000000000000)},
		},
		holdings: map[string]*big.Int{holder: big.NewInt(2500000)},
	}
	svc := NewWalletService(chain)

	balance, err := svc.Balance(ctx, holder)
	require.NoError(t, err)
	require.Equal(t, "2.25", balance)

	network, err := svc.Network(ctx)
	require.NoError(t, err)
	require.Equal(t, &NetworkSummary{ChainID: 80002, Name: "amoy", LatestBlock: 1234, GasTipCapGwei: "25"}, network)

	info, err := svc.TokenInfo(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "TUSD", info.Symbol)
	require.Equal(t, "1000000", info.TotalSupply)

	tb, err := svc.TokenBalance(ctx, token, holder)
	require.NoError(t, err)
	require.Equal(t, "2.5", tb)

	_, err = svc.TokenInfo(ctx, "0x0000000000000000000000000000000000000001")
	require.Error(t, err)

	chain.err = errors.New("rpc down")
	_, err = svc.Balance(ctx, holder)
	require.Error(t, err)

	w, err := svc.Create()
	require.NoError(t, err)
	require.True(t, svc.ValidAddress(w.Address()))
	require.False(t, svc.ValidAddress("0x1234"))
}
