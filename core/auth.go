package core

import "time"

// NonceRecord is the stored form of an outstanding login nonce
type NonceRecord struct {
	Nonce     string `json:"nonce"`
	ExpiresAt int64  `json:"expiresAt"` // unix milliseconds
}

// Expired reports whether the record is past its expiry at the given instant
func (r NonceRecord) Expired(now time.Time) bool {
	return now.UnixMilli() >= r.ExpiresAt
}

// Identity is an address proven to be controlled by the caller
type Identity struct {
	Address string // lowercase hex with 0x prefix
	ChainID int64
}

// Session is the decoded content of a session token
type Session struct {
	ID        string    // token identifier
	Address   string    // lowercase signer address
	ChainID   int64     // chain the login message was scoped to
	IssuedAt  time.Time // when the token was issued
	ExpiresAt time.Time // when the token stops being accepted
}

// Identity returns the identity the session was issued for
func (s *Session) Identity() Identity {
	return Identity{Address: s.Address, ChainID: s.ChainID}
}
