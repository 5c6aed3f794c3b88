// Package sigverify holds the signature schemes an address holder can use to answer
// an ownership challenge. The ledger core only sees the SignatureVerifier interface.
package sigverify

import (
	"fmt"
	"strings"
)

const (
	SchemeBitcoin  = "bitcoin"
	SchemeEd25519  = "ed25519"
	SchemeMinisign = "minisign"
)

// SignatureVerifier checks that signature is a signature of message by the key behind
// address. Implementations must be safe for concurrent use and free of side effects.
type SignatureVerifier interface {
	Verify(message, address, signature string) bool
}

// VerifierFunc adapts a plain function to SignatureVerifier.
type VerifierFunc func(message, address, signature string) bool

func (f VerifierFunc) Verify(message, address, signature string) bool {
	return f(message, address, signature)
}

// NewVerifier returns the verifier for a configured scheme name.
func NewVerifier(scheme string) (SignatureVerifier, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", SchemeBitcoin:
		return NewBitcoinMessageVerifier(), nil
	case SchemeEd25519:
		return Ed25519Verifier{}, nil
	case SchemeMinisign:
		return MinisignVerifier{}, nil
	default:
		return nil, fmt.Errorf("unknown signature scheme %q", scheme)
	}
}
