// Package siwe renders and parses Sign-In with Ethereum (EIP-4361) messages.
//
// The rendered text is what the wallet signs, so Render and Parse are exact
// inverses: every byte, line break and field position is fixed.
package siwe

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Version is the only message version this package understands.
const Version = "1"

const (
	headerSuffix    = " wants you to sign in with your Ethereum account:"
	uriTag          = "URI: "
	versionTag      = "Version: "
	chainIDTag      = "Chain ID: "
	nonceTag        = "Nonce: "
	issuedAtTag     = "Issued At: "
	expirationTag   = "Expiration Time: "
	notBeforeTag    = "Not Before: "
	requestIDTag    = "Request ID: "
	resourcesHeader = "Resources:"
	resourcePrefix  = "- "

	minNonceLength = 8
)

// ErrMalformed is wrapped by every error returned from Parse and Validate.
var ErrMalformed = errors.New("malformed siwe message")

// Message holds the fields of a SIWE challenge.
// Timestamps are kept as the exact strings that appear in the text.
type Message struct {
	Domain         string
	Address        string
	Statement      string
	URI            string
	Version        string
	ChainID        int64
	Nonce          string
	IssuedAt       string
	ExpirationTime string
	NotBefore      string
	RequestID      string
	Resources      []string
}

// FormatTime renders t the way issuedAt timestamps are written.
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// Render produces the canonical text of m. It does not validate m.
func Render(m *Message) string {
	var b strings.Builder

	b.WriteString(m.Domain)
	b.WriteString(headerSuffix)
	b.WriteByte('\n')
	b.WriteString(m.Address)
	b.WriteString("\n\n")
	if m.Statement != "" {
		b.WriteString(m.Statement)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	writeField(&b, uriTag, m.URI)
	b.WriteByte('\n')
	writeField(&b, versionTag, m.Version)
	b.WriteByte('\n')
	writeField(&b, chainIDTag, strconv.FormatInt(m.ChainID, 10))
	b.WriteByte('\n')
	writeField(&b, nonceTag, m.Nonce)
	b.WriteByte('\n')
	writeField(&b, issuedAtTag, m.IssuedAt)

	if m.ExpirationTime != "" {
		b.WriteByte('\n')
		writeField(&b, expirationTag, m.ExpirationTime)
	}
	if m.NotBefore != "" {
		b.WriteByte('\n')
		writeField(&b, notBeforeTag, m.NotBefore)
	}
	if m.RequestID != "" {
		b.WriteByte('\n')
		writeField(&b, requestIDTag, m.RequestID)
	}
	if len(m.Resources) > 0 {
		b.WriteByte('\n')
		b.WriteString(resourcesHeader)
		for _, r := range m.Resources {
			b.WriteByte('\n')
			b.WriteString(resourcePrefix)
			b.WriteString(r)
		}
	}

	return b.String()
}

// String returns the canonical text of m.
func (m *Message) String() string {
	return Render(m)
}

func writeField(b *strings.Builder, tag, value string) {
	b.WriteString(tag)
	b.WriteString(value)
}

// Parse reads a message produced by Render and validates every field.
func Parse(text string) (*Message, error) {
	p := &parser{lines: strings.Split(text, "\n")}
	m := &Message{}

	header, err := p.next("header")
	if err != nil {
		return nil, err
	}
	domain, ok := strings.CutSuffix(header, headerSuffix)
	if !ok {
		return nil, malformed("unexpected header line %q", header)
	}
	m.Domain = domain

	if m.Address, err = p.next("address"); err != nil {
		return nil, err
	}
	if err := p.blank(); err != nil {
		return nil, err
	}

	// The statement line is optional but the blank line after it is not,
	// so a message without a statement has three line feeds after the address.
	line, err := p.next("statement")
	if err != nil {
		return nil, err
	}
	if line != "" {
		m.Statement = line
		if err := p.blank(); err != nil {
			return nil, err
		}
	}

	if m.URI, err = p.tagged(uriTag); err != nil {
		return nil, err
	}
	if m.Version, err = p.tagged(versionTag); err != nil {
		return nil, err
	}
	chainID, err := p.tagged(chainIDTag)
	if err != nil {
		return nil, err
	}
	if m.ChainID, err = strconv.ParseInt(chainID, 10, 64); err != nil || strconv.FormatInt(m.ChainID, 10) != chainID {
		return nil, malformed("chain id %q is not a canonical integer", chainID)
	}
	if m.Nonce, err = p.tagged(nonceTag); err != nil {
		return nil, err
	}
	if m.IssuedAt, err = p.tagged(issuedAtTag); err != nil {
		return nil, err
	}

	for _, opt := range []struct {
		tag string
		dst *string
	}{
		{expirationTag, &m.ExpirationTime},
		{notBeforeTag, &m.NotBefore},
		{requestIDTag, &m.RequestID},
	} {
		if !p.has(opt.tag) {
			continue
		}
		if *opt.dst, err = p.tagged(opt.tag); err != nil {
			return nil, err
		}
	}
	if p.pos < len(p.lines) && p.lines[p.pos] == resourcesHeader {
		p.pos++
		for p.pos < len(p.lines) && strings.HasPrefix(p.lines[p.pos], resourcePrefix) {
			m.Resources = append(m.Resources, strings.TrimPrefix(p.lines[p.pos], resourcePrefix))
			p.pos++
		}
		if len(m.Resources) == 0 {
			return nil, malformed("empty resources list")
		}
	}

	if p.pos != len(p.lines) {
		return nil, malformed("unexpected trailing content at line %d", p.pos+1)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks that every required field is present and well formed.
func (m *Message) Validate() error {
	if m.Domain == "" || strings.ContainsAny(m.Domain, " \t\n") {
		return malformed("invalid domain %q", m.Domain)
	}
	if !isAddress(m.Address) {
		return malformed("invalid address %q", m.Address)
	}
	if strings.Contains(m.Statement, "\n") || strings.HasPrefix(m.Statement, uriTag) {
		return malformed("invalid statement %q", m.Statement)
	}
	if u, err := url.Parse(m.URI); err != nil || u.Scheme == "" {
		return malformed("invalid uri %q", m.URI)
	}
	if m.Version != Version {
		return malformed("unsupported version %q", m.Version)
	}
	if m.ChainID <= 0 {
		return malformed("invalid chain id %d", m.ChainID)
	}
	if !isNonce(m.Nonce) {
		return malformed("invalid nonce %q", m.Nonce)
	}
	if _, err := time.Parse(time.RFC3339Nano, m.IssuedAt); err != nil {
		return malformed("invalid issued at %q", m.IssuedAt)
	}
	if m.ExpirationTime != "" {
		if _, err := time.Parse(time.RFC3339Nano, m.ExpirationTime); err != nil {
			return malformed("invalid expiration time %q", m.ExpirationTime)
		}
	}
	if m.NotBefore != "" {
		if _, err := time.Parse(time.RFC3339Nano, m.NotBefore); err != nil {
			return malformed("invalid not before %q", m.NotBefore)
		}
	}
	for _, r := range m.Resources {
		if _, err := url.Parse(r); err != nil || strings.Contains(r, "\n") {
			return malformed("invalid resource %q", r)
		}
	}
	return nil
}

// CheckTime rejects a message whose validity window does not contain now.
func (m *Message) CheckTime(now time.Time) error {
	if m.ExpirationTime != "" {
		exp, err := time.Parse(time.RFC3339Nano, m.ExpirationTime)
		if err != nil {
			return malformed("invalid expiration time %q", m.ExpirationTime)
		}
		if !now.Before(exp) {
			return malformed("message expired at %s", m.ExpirationTime)
		}
	}
	if m.NotBefore != "" {
		nbf, err := time.Parse(time.RFC3339Nano, m.NotBefore)
		if err != nil {
			return malformed("invalid not before %q", m.NotBefore)
		}
		if now.Before(nbf) {
			return malformed("message not valid before %s", m.NotBefore)
		}
	}
	return nil
}

type parser struct {
	lines []string
	pos   int
}

func (p *parser) next(what string) (string, error) {
	line, err := p.peek(what)
	if err != nil {
		return "", err
	}
	p.pos++
	return line, nil
}

func (p *parser) peek(what string) (string, error) {
	if p.pos >= len(p.lines) {
		return "", malformed("missing %s", what)
	}
	return p.lines[p.pos], nil
}

func (p *parser) blank() error {
	line, err := p.next("blank line")
	if err != nil {
		return err
	}
	if line != "" {
		return malformed("expected blank line at line %d", p.pos)
	}
	return nil
}

func (p *parser) has(tag string) bool {
	return p.pos < len(p.lines) && strings.HasPrefix(p.lines[p.pos], tag)
}

func (p *parser) tagged(tag string) (string, error) {
	field := strings.TrimSuffix(tag, ": ")
	line, err := p.next(field)
	if err != nil {
		return "", err
	}
	value, ok := strings.CutPrefix(line, tag)
	if !ok {
		return "", malformed("expected %q at line %d", field, p.pos)
	}
	if value == "" {
		return "", malformed("empty %s", field)
	}
	return value, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// isAddress accepts 0x-prefixed hex addresses in lowercase, uppercase or
// valid EIP-55 checksum form.
func isAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") || !common.IsHexAddress(s) {
		return false
	}
	hex := s[2:]
	if hex == strings.ToLower(hex) || hex == strings.ToUpper(hex) {
		return true
	}
	return common.HexToAddress(s).Hex() == s
}

func isNonce(s string) bool {
	if len(s) < minNonceLength {
		return false
	}
	for _, r := range s {
		if !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9') {
			return false
		}
	}
	return true
}
