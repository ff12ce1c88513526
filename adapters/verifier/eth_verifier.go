package verifier

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/layer-3/polywallet/core"
	"github.com/layer-3/polywallet/ports"
)

const signatureLength = 65

// EthVerifier recovers personal_sign (EIP-191) signers with go-ethereum
type EthVerifier struct{}

// NewEthVerifier creates a new signature verifier
func NewEthVerifier() ports.SignatureVerifier {
	return EthVerifier{}
}

// Verify recovers the signer of message and checks it against claimedAddress.
// The returned address is lowercase.
func (EthVerifier) Verify(message, signature, claimedAddress string) (string, error) {
	const op = "verifier.Verify"

	if !common.IsHexAddress(claimedAddress) {
		return "", core.Ef(core.KindInvalidSignature, op, "invalid claimed address %q", claimedAddress)
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return "", core.Ef(core.KindInvalidSignature, op, "failed to decode signature: %v", err)
	}
	if len(sig) != signatureLength {
		return "", core.Ef(core.KindInvalidSignature, op, "signature must be %d bytes, got %d", signatureLength, len(sig))
	}

	// Wallets emit v as 27/28; crypto.SigToPub expects 0/1.
	v := sig[crypto.RecoveryIDOffset]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return "", core.Ef(core.KindInvalidSignature, op, "invalid recovery id %d", sig[crypto.RecoveryIDOffset])
	}
	r, s := new(big.Int).SetBytes(sig[:32]), new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(v, r, s, true) {
		return "", core.Ef(core.KindInvalidSignature, op, "signature values out of range")
	}
	normalized := make([]byte, signatureLength)
	copy(normalized, sig)
	normalized[crypto.RecoveryIDOffset] = v

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), normalized)
	if err != nil {
		return "", core.Ef(core.KindInvalidSignature, op, "failed to recover public key: %v", err)
	}

	recovered := crypto.PubkeyToAddress(*pub)
	if recovered != common.HexToAddress(claimedAddress) {
		return "", core.Ef(core.KindInvalidSignature, op, "recovered address %s does not match %s", recovered.Hex(), claimedAddress)
	}

	return strings.ToLower(recovered.Hex()), nil
}
