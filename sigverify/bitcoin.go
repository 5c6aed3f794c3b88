package sigverify

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"
)

const (
	bitcoinMessageMagic = "Bitcoin Signed Message:\n"

	// P2PKH version bytes
	MainNetPubKeyHashVersion byte = 0x00
	TestNetPubKeyHashVersion byte = 0x6f

	compactSignatureSize = 65
	addressPayloadSize   = 1 + ripemd160.Size + 4
)

var ErrInvalidAddress = errors.New("sigverify: invalid address")

// BitcoinMessageVerifier verifies Bitcoin signed messages (the format produced by
// Bitcoin Core and Electrum "sign message") against P2PKH addresses.
type BitcoinMessageVerifier struct {
	versions map[byte]struct{}
}

// NewBitcoinMessageVerifier accepts mainnet and testnet addresses unless versions are given.
func NewBitcoinMessageVerifier(versions ...byte) *BitcoinMessageVerifier {
	if len(versions) == 0 {
		versions = []byte{MainNetPubKeyHashVersion, TestNetPubKeyHashVersion}
	}
	v := &BitcoinMessageVerifier{versions: make(map[byte]struct{}, len(versions))}
	for _, version := range versions {
		v.versions[version] = struct{}{}
	}
	return v
}

func (v *BitcoinMessageVerifier) Verify(message, address, signature string) bool {
	version, wantHash, err := decodeP2PKHAddress(address)
	if err != nil {
		return false
	}
	if _, ok := v.versions[version]; !ok {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil || len(sig) != compactSignatureSize {
		return false
	}
	pub, compressed, err := ecdsa.RecoverCompact(sig, BitcoinMessageHash(message))
	if err != nil {
		return false
	}
	return bytes.Equal(hash160(serializePubKey(pub, compressed)), wantHash)
}

// BitcoinMessageHash is double sha256 over the magic prefix and the message, both
// encoded as var-strings.
func BitcoinMessageHash(message string) []byte {
	var buf bytes.Buffer
	writeVarString(&buf, bitcoinMessageMagic)
	writeVarString(&buf, message)
	first := sha256.Sum256(buf.Bytes())
	second := sha256.Sum256(first[:])
	return second[:]
}

// SignBitcoinMessage produces the base64 compact signature Verify expects.
func SignBitcoinMessage(priv *secp256k1.PrivateKey, message string, compressed bool) string {
	sig := ecdsa.SignCompact(priv, BitcoinMessageHash(message), compressed)
	return base64.StdEncoding.EncodeToString(sig)
}

// P2PKHAddress derives the base58check address of pub for the given version byte.
func P2PKHAddress(pub *secp256k1.PublicKey, compressed bool, version byte) string {
	payload := make([]byte, 0, addressPayloadSize)
	payload = append(payload, version)
	payload = append(payload, hash160(serializePubKey(pub, compressed))...)
	payload = append(payload, checksum(payload)...)
	return base58.Encode(payload)
}

func decodeP2PKHAddress(address string) (byte, []byte, error) {
	raw, err := base58.Decode(address)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) != addressPayloadSize {
		return 0, nil, ErrInvalidAddress
	}
	body, sum := raw[:len(raw)-4], raw[len(raw)-4:]
	if !bytes.Equal(checksum(body), sum) {
		return 0, nil, ErrInvalidAddress
	}
	return body[0], body[1:], nil
}

func serializePubKey(pub *secp256k1.PublicKey, compressed bool) []byte {
	if compressed {
		return pub.SerializeCompressed()
	}
	return pub.SerializeUncompressed()
}

func hash160(data []byte) []byte {
	sum := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(sum[:])
	return h.Sum(nil)
}

func checksum(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:4]
}

func writeVarString(buf *bytes.Buffer, s string) {
	writeVarInt(buf, uint64(len(s)))
	buf.WriteString(s)
}

func writeVarInt(buf *bytes.Buffer, n uint64) {
	var scratch [9]byte
	switch {
	case n < 0xfd:
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		scratch[0] = 0xfd
		binary.LittleEndian.PutUint16(scratch[1:], uint16(n))
		buf.Write(scratch[:3])
	case n <= 0xffffffff:
		scratch[0] = 0xfe
		binary.LittleEndian.PutUint32(scratch[1:], uint32(n))
		buf.Write(scratch[:5])
	default:
		scratch[0] = 0xff
		binary.LittleEndian.PutUint64(scratch[1:], n)
		buf.Write(scratch[:9])
	}
}
