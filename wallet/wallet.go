// Package wallet holds a local secp256k1 key and signs SIWE challenges with it.
package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet is a locally held key pair
type Wallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// Generate creates a wallet with a fresh random key
func Generate() (*Wallet, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return fromKey(key), nil
}

// Import loads a wallet from a hex private key, with or without the 0x prefix
func Import(privateKeyHex string) (*Wallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return fromKey(key), nil
}

func fromKey(key *ecdsa.PrivateKey) *Wallet {
	return &Wallet{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}
}

// Address returns the EIP-55 checksummed address
func (w *Wallet) Address() string {
	return w.address.Hex()
}

// PrivateKeyHex returns the 0x-prefixed private key
func (w *Wallet) PrivateKeyHex() string {
	return hexutil.Encode(crypto.FromECDSA(w.key))
}

// SignMessage signs text with the personal_sign scheme and returns the
// 65-byte signature hex encoded with a 27/28 recovery id.
func (w *Wallet) SignMessage(text string) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash([]byte(text)), w.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}
