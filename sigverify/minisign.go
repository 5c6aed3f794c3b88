package sigverify

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/jedisct1/go-minisign"
)

const minisignTrustedCommentPrefix = "trusted comment: "

// MinisignVerifier takes the base64 minisign public key as the address and the full
// minisign signature text as the signature.
type MinisignVerifier struct{}

func (MinisignVerifier) Verify(message, address, signature string) bool {
	pub, err := minisign.NewPublicKey(address)
	if err != nil {
		return false
	}
	sig, err := minisign.DecodeSignature(signature)
	if err != nil {
		return false
	}
	ok, err := pub.Verify([]byte(message), sig)
	return err == nil && ok
}

// MinisignPublicKey encodes pub with keyID the way minisign prints public keys.
func MinisignPublicKey(pub ed25519.PublicKey, keyID [8]byte) string {
	raw := make([]byte, 0, 2+8+ed25519.PublicKeySize)
	raw = append(raw, 'E', 'd')
	raw = append(raw, keyID[:]...)
	raw = append(raw, pub...)
	return base64.StdEncoding.EncodeToString(raw)
}

// SignMinisign produces a legacy (non prehashed) minisign signature of message.
func SignMinisign(priv ed25519.PrivateKey, keyID [8]byte, message, trustedComment string) string {
	sig := ed25519.Sign(priv, []byte(message))

	sigBlob := make([]byte, 0, 2+8+ed25519.SignatureSize)
	sigBlob = append(sigBlob, 'E', 'd')
	sigBlob = append(sigBlob, keyID[:]...)
	sigBlob = append(sigBlob, sig...)

	global := ed25519.Sign(priv, append(append([]byte{}, sig...), []byte(trustedComment)...))

	return fmt.Sprintf("untrusted comment: signature from starledger\n%s\n%s%s\n%s",
		base64.StdEncoding.EncodeToString(sigBlob),
		minisignTrustedCommentPrefix, trustedComment,
		base64.StdEncoding.EncodeToString(global),
	)
}
