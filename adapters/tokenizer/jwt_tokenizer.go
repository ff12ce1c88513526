package tokenizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/polywallet/core"
	"github.com/layer-3/polywallet/ports"
)

const AudienceSession = "session:access"

// JWTTokenizer implements the Tokenizer interface with HS256 JWTs
type JWTTokenizer struct {
	secret []byte
	now    func() time.Time
}

var _ ports.Tokenizer = (*JWTTokenizer)(nil)

// Option configures a JWTTokenizer
type Option func(*JWTTokenizer)

// WithTimeFunc sets the clock used to validate expiry
func WithTimeFunc(now func() time.Time) Option {
	return func(j *JWTTokenizer) { j.now = now }
}

// NewJWTTokenizer creates a new JWT tokenizer signing with secret
func NewJWTTokenizer(secret []byte, opts ...Option) *JWTTokenizer {
	j := &JWTTokenizer{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// SessionToToken signs a session into a JWT
func (j *JWTTokenizer) SessionToToken(session *core.Session) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strings.ToLower(session.Address),
			ID:        session.ID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceSession},
		},
		Address: strings.ToLower(session.Address),
		ChainID: session.ChainID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// TokenToSession verifies a JWT and returns the session it carries.
// Any signature, format or expiry problem yields core.ErrInvalidToken.
func (j *JWTTokenizer) TokenToSession(tokenStr string) (*core.Session, error) {
	const op = "tokenizer.TokenToSession"

	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(AudienceSession),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(j.now),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		return nil, core.E(core.KindInvalidToken, op, err)
	}

	// Validate token
	if !token.Valid {
		return nil, core.E(core.KindInvalidToken, op, nil)
	}

	// Extract claims
	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, core.Ef(core.KindInvalidToken, op, "invalid claims type")
	}
	if !common.IsHexAddress(claims.Address) || claims.Address != strings.ToLower(claims.Address) {
		return nil, core.Ef(core.KindInvalidToken, op, "invalid address claim")
	}
	if claims.ChainID <= 0 {
		return nil, core.Ef(core.KindInvalidToken, op, "invalid chain id claim")
	}
	if claims.IssuedAt == nil {
		return nil, core.Ef(core.KindInvalidToken, op, "missing issued at claim")
	}

	return &core.Session{
		ID:        claims.ID,
		Address:   claims.Address,
		ChainID:   claims.ChainID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
