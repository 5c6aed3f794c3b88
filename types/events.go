package types

import "github.com/mezonai/starledger/block"

// SubscribeLedgerEventsRequest filters a ledger event subscription. Empty fields
// match everything.
type SubscribeLedgerEventsRequest struct {
	EventTypes []string `json:"eventTypes,omitempty"`
	// Address keeps only blocks owned by, and rejections of, this address
	Address string `json:"address,omitempty"`
}

// LedgerEventMessage is the wire form of one bus event. Exactly one of Block,
// Validation or Reason is set, depending on Type.
type LedgerEventMessage struct {
	Type       string       `json:"type"`
	Timestamp  int64        `json:"timestamp"`
	Subject    string       `json:"subject"`
	Block      *block.Block `json:"block,omitempty"`
	Validation *Validation  `json:"validation,omitempty"`
	Reason     string       `json:"reason,omitempty"`
}
