package tokenizer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/polywallet/adapters/tokenizer"
	"github.com/layer-3/polywallet/core"
	"github.com/stretchr/testify/require"
)

var secret = []byte("unit-test-secret")

const checksumAddress = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func newSession(now time.Time) *core.Session {
	return &core.Session{
		ID:        "token-1",
		Address:   checksumAddress,
		ChainID:   80002,
		IssuedAt:  now,
		ExpiresAt: now.Add(7 * 24 * time.Hour),
	}
}

func TestJWTTokenizer_RoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	tk := tokenizer.NewJWTTokenizer(secret)

	token, err := tk.SessionToToken(newSession(now))
	require.NoError(t, err)

	session, err := tk.TokenToSession(token)
	require.NoError(t, err)
	require.Equal(t, strings.ToLower(checksumAddress), session.Address)
	require.Equal(t, int64(80002), session.ChainID)
	require.Equal(t, "token-1", session.ID)
	require.True(t, session.IssuedAt.Equal(now))
	require.True(t, session.ExpiresAt.Equal(now.Add(7*24*time.Hour)))
}

func TestJWTTokenizer_Expiry(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	token, err := tokenizer.NewJWTTokenizer(secret).SessionToToken(newSession(issued))
	require.NoError(t, err)

	t.Run("before expiry", func(t *testing.T) {
		tk := tokenizer.NewJWTTokenizer(secret, tokenizer.WithTimeFunc(func() time.Time {
			return issued.Add(7*24*time.Hour - time.Minute)
		}))
		_, err := tk.TokenToSession(token)
		require.NoError(t, err)
	})

	t.Run("after expiry", func(t *testing.T) {
		tk := tokenizer.NewJWTTokenizer(secret, tokenizer.WithTimeFunc(func() time.Time {
			return issued.Add(7*24*time.Hour + time.Minute)
		}))
		_, err := tk.TokenToSession(token)
		require.ErrorIs(t, err, core.ErrInvalidToken)
	})

	t.Run("issued in the future", func(t *testing.T) {
		tk := tokenizer.NewJWTTokenizer(secret, tokenizer.WithTimeFunc(func() time.Time {
			return issued.Add(-time.Hour)
		}))
		_, err := tk.TokenToSession(token)
		require.ErrorIs(t, err, core.ErrInvalidToken)
	})
}

const base64URLAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

func TestJWTTokenizer_Rejects(t *testing.T) {
	now := time.Now()
	tk := tokenizer.NewJWTTokenizer(secret)
	token, err := tk.SessionToToken(newSession(now))
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := tokenizer.NewJWTTokenizer([]byte("other-secret")).TokenToSession(token)
		require.ErrorIs(t, err, core.ErrInvalidToken)
	})

	t.Run("mutated characters", func(t *testing.T) {
		// Flip the lowest bit of the base64url index at every position,
		// including the padding bits of each segment's last character.
		for pos := 0; pos < len(token); pos++ {
			if token[pos] == '.' {
				continue
			}
			idx := strings.IndexByte(base64URLAlphabet, token[pos])
			require.NotEqual(t, -1, idx, "position %d", pos)

			b := []byte(token)
			b[pos] = base64URLAlphabet[idx^1]
			_, err := tk.TokenToSession(string(b))
			require.ErrorIs(t, err, core.ErrInvalidToken, "position %d", pos)
		}
	})

	t.Run("padding bits of signature", func(t *testing.T) {
		last := token[len(token)-1]
		idx := strings.IndexByte(base64URLAlphabet, last)
		b := []byte(token)
		b[len(b)-1] = base64URLAlphabet[idx^1]

		_, err := tk.TokenToSession(string(b))
		require.ErrorIs(t, err, core.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		for _, s := range []string{"", "abc", "a.b.c", token + "."} {
			_, err := tk.TokenToSession(s)
			require.ErrorIs(t, err, core.ErrInvalidToken)
		}
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		claims := tokenizer.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(now),
				Audience:  jwt.ClaimStrings{tokenizer.AudienceSession},
			},
			Address: strings.ToLower(checksumAddress),
			ChainID: 1,
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
		require.NoError(t, err)
		_, err = tk.TokenToSession(signed)
		require.ErrorIs(t, err, core.ErrInvalidToken)

		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tk.TokenToSession(unsigned)
		require.ErrorIs(t, err, core.ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := tokenizer.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt: jwt.NewNumericDate(now),
				Audience: jwt.ClaimStrings{tokenizer.AudienceSession},
			},
			Address: strings.ToLower(checksumAddress),
			ChainID: 1,
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
		require.NoError(t, err)
		_, err = tk.TokenToSession(signed)
		require.ErrorIs(t, err, core.ErrInvalidToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		claims := tokenizer.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(now),
				Audience:  jwt.ClaimStrings{"session:refresh"},
			},
			Address: strings.ToLower(checksumAddress),
			ChainID: 1,
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
		require.NoError(t, err)
		_, err = tk.TokenToSession(signed)
		require.ErrorIs(t, err, core.ErrInvalidToken)
	})

	t.Run("bad address claim", func(t *testing.T) {
		claims := tokenizer.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(now),
				Audience:  jwt.ClaimStrings{tokenizer.AudienceSession},
			},
			Address: "not-an-address",
			ChainID: 1,
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
		require.NoError(t, err)
		_, err = tk.TokenToSession(signed)
		require.ErrorIs(t, err, core.ErrInvalidToken)
	})
}
