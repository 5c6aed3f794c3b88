package events

import (
	"time"

	"github.com/mezonai/starledger/block"
)

// EventType is an enum-like string type for ledger events
type EventType string

const (
	EventBlockAppended      EventType = "BlockAppended"
	EventChainValidated     EventType = "ChainValidated"
	EventSubmissionRejected EventType = "SubmissionRejected"
)

// LedgerEvent represents anything that happened to the chain
type LedgerEvent interface {
	Type() EventType
	Timestamp() time.Time
	// Subject is the block hash or address the event is about
	Subject() string
}

// BlockAppended is emitted once per committed block, in chain order
type BlockAppended struct {
	block     block.Block
	timestamp time.Time
}

func NewBlockAppended(b block.Block) *BlockAppended {
	return &BlockAppended{
		block:     b,
		timestamp: time.Now(),
	}
}

func (e *BlockAppended) Type() EventType {
	return EventBlockAppended
}

func (e *BlockAppended) Timestamp() time.Time {
	return e.timestamp
}

func (e *BlockAppended) Subject() string {
	return e.block.Hash
}

func (e *BlockAppended) Block() block.Block {
	return e.block
}

// ChainValidated summarizes one full validation run
type ChainValidated struct {
	height     int64
	checked    int
	findings   int
	valid      bool
	incomplete bool
	timestamp  time.Time
}

func NewChainValidated(height int64, checked, findings int, valid, incomplete bool) *ChainValidated {
	return &ChainValidated{
		height:     height,
		checked:    checked,
		findings:   findings,
		valid:      valid,
		incomplete: incomplete,
		timestamp:  time.Now(),
	}
}

func (e *ChainValidated) Type() EventType {
	return EventChainValidated
}

func (e *ChainValidated) Timestamp() time.Time {
	return e.timestamp
}

func (e *ChainValidated) Subject() string {
	return "chain"
}

func (e *ChainValidated) Height() int64 {
	return e.height
}

func (e *ChainValidated) Checked() int {
	return e.checked
}

func (e *ChainValidated) Findings() int {
	return e.findings
}

func (e *ChainValidated) Valid() bool {
	return e.valid
}

func (e *ChainValidated) Incomplete() bool {
	return e.incomplete
}

// SubmissionRejected is emitted when a star submission does not pass admission
type SubmissionRejected struct {
	address   string
	reason    string
	timestamp time.Time
}

func NewSubmissionRejected(address, reason string) *SubmissionRejected {
	return &SubmissionRejected{
		address:   address,
		reason:    reason,
		timestamp: time.Now(),
	}
}

func (e *SubmissionRejected) Type() EventType {
	return EventSubmissionRejected
}

func (e *SubmissionRejected) Timestamp() time.Time {
	return e.timestamp
}

func (e *SubmissionRejected) Subject() string {
	return e.address
}

func (e *SubmissionRejected) Reason() string {
	return e.reason
}
