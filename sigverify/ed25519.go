package sigverify

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// Ed25519Verifier uses the base58 encoded public key as the address and a base58
// encoded signature over the raw message bytes.
type Ed25519Verifier struct{}

func (Ed25519Verifier) Verify(message, address, signature string) bool {
	pub, err := base58.Decode(address)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	sig, err := base58.Decode(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), []byte(message), sig)
}

// Ed25519Address is the address form of pub.
func Ed25519Address(pub ed25519.PublicKey) string {
	return base58.Encode(pub)
}

// SignEd25519 signs message in the encoding Ed25519Verifier expects.
func SignEd25519(priv ed25519.PrivateKey, message string) string {
	return base58.Encode(ed25519.Sign(priv, []byte(message)))
}
