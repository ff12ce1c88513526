package core

import (
	"errors"
	"fmt"
)

// Kind classifies failures of the authentication flow.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindInvalidNonce
	KindMalformedMessage
	KindInvalidSignature
	KindInvalidToken
	KindStoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvalidNonce:
		return "invalid_or_expired_nonce"
	case KindMalformedMessage:
		return "malformed_message"
	case KindInvalidSignature:
		return "invalid_signature"
	case KindInvalidToken:
		return "invalid_token"
	case KindStoreUnavailable:
		return "store_unavailable"
	default:
		return "unknown"
	}
}

// Error carries a Kind together with the operation that failed and the cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrInvalidNonce     = &Error{Kind: KindInvalidNonce}
	ErrMalformedMessage = &Error{Kind: KindMalformedMessage}
	ErrInvalidSignature = &Error{Kind: KindInvalidSignature}
	ErrInvalidToken     = &Error{Kind: KindInvalidToken}
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable}
)

// E builds an *Error of the given kind.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Ef builds an *Error of the given kind with a formatted cause.
func Ef(kind Kind, op string, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
