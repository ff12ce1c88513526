package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/polywallet/core"
	"github.com/layer-3/polywallet/ports"
	"github.com/layer-3/polywallet/siwe"
	"github.com/rs/zerolog"
)

// DefaultSessionTTL is the lifetime of a session token
const DefaultSessionTTL = 7 * 24 * time.Hour

// AuthConfig holds the parameters of the login flow
type AuthConfig struct {
	SessionTTL time.Duration
	// Domain, URI and Statement fill server-rendered messages
	Domain    string
	URI       string
	Statement string
	// EnforceDomain rejects messages whose domain differs from Domain
	EnforceDomain bool
}

// AuthService handles authentication business logic
type AuthService struct {
	nonces    *NonceService
	verifier  ports.SignatureVerifier
	tokenizer ports.Tokenizer
	eventPub  ports.EventPublisher
	log       zerolog.Logger

	cfg AuthConfig
	now func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	nonces *NonceService,
	verifier ports.SignatureVerifier,
	tokenizer ports.Tokenizer,
	eventPub ports.EventPublisher,
	log zerolog.Logger,
	cfg AuthConfig,
) *AuthService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	return &AuthService{
		nonces:    nonces,
		verifier:  verifier,
		tokenizer: tokenizer,
		eventPub:  eventPub,
		log:       log.With().Str("component", "auth").Logger(),
		cfg:       cfg,
		now:       time.Now,
	}
}

// Nonce issues a fresh login nonce
func (s *AuthService) Nonce(ctx context.Context) (string, error) {
	return s.nonces.Generate(ctx)
}

// Message renders a SIWE challenge for address using the configured
// domain, uri and statement.
func (s *AuthService) Message(address string, chainID int64, nonce string) (string, error) {
	msg := &siwe.Message{
		Domain:    s.cfg.Domain,
		Address:   address,
		Statement: s.cfg.Statement,
		URI:       s.cfg.URI,
		Version:   siwe.Version,
		ChainID:   chainID,
		Nonce:     nonce,
		IssuedAt:  siwe.FormatTime(s.now()),
	}
	if err := msg.Validate(); err != nil {
		return "", core.E(core.KindValidation, "auth.Message", err)
	}
	return msg.String(), nil
}

// Login verifies a signed SIWE message and issues a session token.
//
// The message is parsed first, then its nonce is consumed, then the
// signature is checked. A nonce consumed by a failed attempt stays consumed.
func (s *AuthService) Login(ctx context.Context, message, signature string) (string, *core.Session, error) {
	const op = "auth.Login"

	if strings.TrimSpace(message) == "" || strings.TrimSpace(signature) == "" {
		return "", nil, core.Ef(core.KindValidation, op, "message and signature are required")
	}

	msg, err := siwe.Parse(message)
	if err != nil {
		return "", nil, core.E(core.KindMalformedMessage, op, err)
	}
	if err := msg.CheckTime(s.now()); err != nil {
		return "", nil, core.E(core.KindMalformedMessage, op, err)
	}
	if s.cfg.EnforceDomain && msg.Domain != s.cfg.Domain {
		return "", nil, core.Ef(core.KindMalformedMessage, op, "unexpected domain %q", msg.Domain)
	}

	if err := s.nonces.Consume(ctx, msg.Nonce); err != nil {
		return "", nil, err
	}

	address, err := s.verifier.Verify(message, signature, msg.Address)
	if err != nil {
		if core.KindOf(err) != core.KindInvalidSignature {
			err = core.E(core.KindInvalidSignature, op, err)
		}
		return "", nil, err
	}

	now := s.now()
	session := &core.Session{
		ID:        uuid.NewString(),
		Address:   address,
		ChainID:   msg.ChainID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}

	token, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		return "", nil, err
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishLogin(ctx, session); err != nil {
			s.log.Warn().Err(err).Str("address", address).Msg("failed to publish login event")
		}
	}

	s.log.Info().Str("address", address).Int64("chain_id", session.ChainID).Msg("login succeeded")

	return token, session, nil
}

// ValidateToken verifies a session token
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*core.Session, error) {
	if token == "" {
		return nil, core.Ef(core.KindInvalidToken, "auth.ValidateToken", "missing token")
	}
	session, err := s.tokenizer.TokenToSession(token)
	if err != nil {
		if core.KindOf(err) != core.KindInvalidToken {
			err = core.E(core.KindInvalidToken, "auth.ValidateToken", err)
		}
		return nil, err
	}
	return session, nil
}

// Logout records the end of a session. Tokens are stateless, so the
// client discards its token and nothing is revoked server-side.
func (s *AuthService) Logout(ctx context.Context, session *core.Session) error {
	if s.eventPub != nil {
		if err := s.eventPub.PublishLogout(ctx, session); err != nil {
			s.log.Warn().Err(err).Str("address", session.Address).Msg("failed to publish logout event")
		}
	}
	return nil
}
