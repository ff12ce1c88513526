package siwe_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/layer-3/polywallet/siwe"
	"github.com/stretchr/testify/require"
)

const checksumAddress = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func validMessage() *siwe.Message {
	return &siwe.Message{
		Domain:    "example.com",
		Address:   checksumAddress,
		Statement: "Sign in with Ethereum to the app.",
		URI:       "https://example.com",
		Version:   "1",
		ChainID:   80002,
		Nonce:     "0x3f9a0b1c2d3e4f5061728394a5b6c7d8",
		IssuedAt:  "2024-05-01T12:00:00.000Z",
	}
}

func TestRender(t *testing.T) {
	expected := "example.com wants you to sign in with your Ethereum account:\n" +
		checksumAddress + "\n" +
		"\n" +
		"Sign in with Ethereum to the app.\n" +
		"\n" +
		"URI: https://example.com\n" +
		"Version: 1\n" +
		"Chain ID: 80002\n" +
		"Nonce: 0x3f9a0b1c2d3e4f5061728394a5b6c7d8\n" +
		"Issued At: 2024-05-01T12:00:00.000Z"

	require.Equal(t, expected, siwe.Render(validMessage()))
	require.Equal(t, expected, validMessage().String())
}

func TestParse_RoundTrip(t *testing.T) {
	t.Run("required fields", func(t *testing.T) {
		m := validMessage()
		parsed, err := siwe.Parse(siwe.Render(m))
		require.NoError(t, err)
		require.Equal(t, m, parsed)
	})

	t.Run("without statement", func(t *testing.T) {
		m := validMessage()
		m.Statement = ""
		text := siwe.Render(m)
		require.Contains(t, text, checksumAddress+"\n\n\nURI: https://example.com\n")

		parsed, err := siwe.Parse(text)
		require.NoError(t, err)
		require.Equal(t, m, parsed)
	})

	t.Run("optional fields", func(t *testing.T) {
		m := validMessage()
		m.ExpirationTime = "2024-05-01T12:05:00.000Z"
		m.NotBefore = "2024-05-01T11:59:00.000Z"
		m.RequestID = "req-42"
		m.Resources = []string{"ipfs://bafybeiemxf5abjwjbikoz4mc3a3dla6ual3jsgpdr4cjr3oz3evfyavhwq", "https://example.com/terms"}

		text := siwe.Render(m)
		parsed, err := siwe.Parse(text)
		require.NoError(t, err)
		require.Equal(t, m, parsed)
		require.Equal(t, text, siwe.Render(parsed))
	})

	t.Run("lowercase address", func(t *testing.T) {
		m := validMessage()
		m.Address = strings.ToLower(checksumAddress)
		parsed, err := siwe.Parse(siwe.Render(m))
		require.NoError(t, err)
		require.Equal(t, m.Address, parsed.Address)
	})
}

func TestParse_NoStatement(t *testing.T) {
	text := "example.com wants you to sign in with your Ethereum account:\n" +
		checksumAddress + "\n" +
		"\n" +
		"\n" +
		"URI: https://example.com\n" +
		"Version: 1\n" +
		"Chain ID: 80002\n" +
		"Nonce: 0x3f9a0b1c2d3e4f5061728394a5b6c7d8\n" +
		"Issued At: 2024-05-01T12:00:00.000Z"

	parsed, err := siwe.Parse(text)
	require.NoError(t, err)
	require.Empty(t, parsed.Statement)
	require.Equal(t, "https://example.com", parsed.URI)
	require.Equal(t, text, siwe.Render(parsed))
}

func TestParse_Rejects(t *testing.T) {
	mutate := func(f func(m *siwe.Message)) string {
		m := validMessage()
		f(m)
		return siwe.Render(m)
	}

	cases := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"bad header", strings.Replace(siwe.Render(validMessage()), "wants you to sign in", "wants you to log in", 1)},
		{"unsupported version", mutate(func(m *siwe.Message) { m.Version = "2" })},
		{"bad checksum", mutate(func(m *siwe.Message) { m.Address = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAeD" })},
		{"short address", mutate(func(m *siwe.Message) { m.Address = "0x1234" })},
		{"address without prefix", mutate(func(m *siwe.Message) { m.Address = strings.TrimPrefix(strings.ToLower(checksumAddress), "0x") })},
		{"short nonce", mutate(func(m *siwe.Message) { m.Nonce = "abc" })},
		{"non alphanumeric nonce", mutate(func(m *siwe.Message) { m.Nonce = "abc-def-ghi" })},
		{"zero chain id", mutate(func(m *siwe.Message) { m.ChainID = 0 })},
		{"bad issued at", mutate(func(m *siwe.Message) { m.IssuedAt = "yesterday" })},
		{"relative uri", mutate(func(m *siwe.Message) { m.URI = "example.com/login" })},
		{"missing issued at", strings.TrimSuffix(siwe.Render(validMessage()), "\nIssued At: 2024-05-01T12:00:00.000Z")},
		{"trailing newline", siwe.Render(validMessage()) + "\n"},
		{"trailing garbage", siwe.Render(validMessage()) + "\nFoo: bar"},
		{"non canonical chain id", strings.Replace(siwe.Render(validMessage()), "Chain ID: 80002", "Chain ID: 080002", 1)},
		{"swapped fields", strings.Replace(siwe.Render(validMessage()), "Version: 1\nChain ID: 80002", "Chain ID: 80002\nVersion: 1", 1)},
		{"crlf line endings", strings.ReplaceAll(siwe.Render(validMessage()), "\n", "\r\n")},
		{"no statement with two line feeds", strings.Replace(siwe.Render(validMessage()), "\nSign in with Ethereum to the app.\n", "", 1)},
		{"statement without blank line", strings.Replace(siwe.Render(validMessage()), "the app.\n\n", "the app.\n", 1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := siwe.Parse(tc.text)
			require.Error(t, err)
			require.Nil(t, m)
			require.True(t, errors.Is(err, siwe.ErrMalformed))
		})
	}
}

func TestCheckTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 1, 0, 0, time.UTC)

	m := validMessage()
	require.NoError(t, m.CheckTime(now))

	m.ExpirationTime = "2024-05-01T12:00:30.000Z"
	require.ErrorIs(t, m.CheckTime(now), siwe.ErrMalformed)

	m.ExpirationTime = ""
	m.NotBefore = "2024-05-01T12:02:00.000Z"
	require.ErrorIs(t, m.CheckTime(now), siwe.ErrMalformed)

	m.NotBefore = "2024-05-01T12:00:00.000Z"
	require.NoError(t, m.CheckTime(now))
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 5, 1, 14, 0, 0, 123456789, time.FixedZone("CEST", 2*60*60))
	require.Equal(t, "2024-05-01T12:00:00.123Z", siwe.FormatTime(ts))
}
