package ports

// SignatureVerifier recovers the signer of a message
type SignatureVerifier interface {
	// Verify returns the lowercase signer address when it equals claimedAddress
	Verify(message, signature, claimedAddress string) (string, error)
}
