package block

import (
	"encoding/hex"
	"fmt"

	"github.com/mezonai/starledger/jsonx"
)

// Block is one entry of the chain. Body is the hex encoding of the payload's
// canonical JSON; Hash covers every other field and is assigned once, at append time.
type Block struct {
	Height            int64  `json:"height"`
	Time              int64  `json:"time"`
	Body              string `json:"body"`
	PreviousBlockHash string `json:"previousBlockHash"`
	Hash              string `json:"hash"`
}

// hashedFields is the canonical form a block's hash is computed over. Field order is
// part of the hash format and must not change.
type hashedFields struct {
	Height            int64  `json:"height"`
	Time              int64  `json:"time"`
	Body              string `json:"body"`
	PreviousBlockHash string `json:"previousBlockHash"`
}

func (b Block) hashedFields() hashedFields {
	return hashedFields{
		Height:            b.Height,
		Time:              b.Time,
		Body:              b.Body,
		PreviousBlockHash: b.PreviousBlockHash,
	}
}

func (b Block) IsGenesis() bool {
	return b.Height == 0
}

// IsSealed reports whether the block went through Factory.Seal.
func (b Block) IsSealed() bool {
	return b.Hash != ""
}

// DecodeBody decodes the block payload into v.
func (b Block) DecodeBody(v interface{}) error {
	raw, err := hex.DecodeString(b.Body)
	if err != nil {
		return fmt.Errorf("decode block body: %w", err)
	}
	if err := jsonx.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal block body: %w", err)
	}
	return nil
}

// StarRecord decodes the payload of a non-genesis block. ok is false for the genesis
// block and for bodies that do not carry an owner.
func (b Block) StarRecord() (record StarRecord, ok bool) {
	if b.IsGenesis() {
		return StarRecord{}, false
	}
	if err := b.DecodeBody(&record); err != nil {
		return StarRecord{}, false
	}
	if record.Owner == "" {
		return StarRecord{}, false
	}
	return record, true
}

func encodeBody(payload interface{}) (string, error) {
	raw, err := jsonx.MarshalCanonical(payload)
	if err != nil {
		return "", fmt.Errorf("marshal block body: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
