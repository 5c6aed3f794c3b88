package block

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/mezonai/starledger/jsonx"
)

var (
	ErrNilBlock      = errors.New("block: nil block")
	ErrAlreadySealed = errors.New("block: block is already sealed")
)

// Factory builds unsealed blocks and seals them with its Hasher.
type Factory struct {
	hasher Hasher
}

// NewFactory returns a Factory using h, or sha256 when h is nil.
func NewFactory(h Hasher) *Factory {
	if h == nil {
		h = SHA256Hasher()
	}
	return &Factory{hasher: h}
}

func (f *Factory) Hasher() Hasher {
	return f.hasher
}

// Create wraps payload into an unsealed block. Height, Time, PreviousBlockHash and
// Hash stay unset until Seal.
func (f *Factory) Create(payload interface{}) (*Block, error) {
	body, err := encodeBody(payload)
	if err != nil {
		return nil, err
	}
	return &Block{Body: body}, nil
}

// Seal returns a copy of b with its position in the chain assigned and its hash computed.
// b itself is left untouched.
func (f *Factory) Seal(b *Block, height int64, previousHash string, timestamp int64) (*Block, error) {
	if b == nil {
		return nil, ErrNilBlock
	}
	if b.IsSealed() {
		return nil, ErrAlreadySealed
	}
	sealed := Block{
		Height:            height,
		Time:              timestamp,
		Body:              b.Body,
		PreviousBlockHash: previousHash,
	}
	hash, err := f.ComputeHash(sealed)
	if err != nil {
		return nil, fmt.Errorf("seal block %d: %w", height, err)
	}
	sealed.Hash = hash
	return &sealed, nil
}

// ComputeHash recomputes the digest of b over every field except Hash.
func (f *Factory) ComputeHash(b Block) (string, error) {
	raw, err := jsonx.MarshalCanonical(b.hashedFields())
	if err != nil {
		return "", fmt.Errorf("canonical encoding: %w", err)
	}
	return hex.EncodeToString(f.hasher.Sum(raw)), nil
}

// Verify reports whether the stored hash of b matches its content.
func (f *Factory) Verify(b Block) (bool, error) {
	hash, err := f.ComputeHash(b)
	if err != nil {
		return false, err
	}
	return hash == b.Hash, nil
}
