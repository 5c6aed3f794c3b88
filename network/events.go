package network

import (
	"github.com/mezonai/starledger/events"
	"github.com/mezonai/starledger/types"
)

// convertEvent maps a bus event to its wire form. Unknown events map to nil.
func convertEvent(event events.LedgerEvent) *types.LedgerEventMessage {
	msg := &types.LedgerEventMessage{
		Type:      string(event.Type()),
		Timestamp: event.Timestamp().Unix(),
		Subject:   event.Subject(),
	}
	switch e := event.(type) {
	case *events.BlockAppended:
		b := e.Block()
		msg.Block = &b
	case *events.ChainValidated:
		msg.Validation = &types.Validation{
			Valid:     e.Valid(),
			Height:    e.Height(),
			Findings:  e.Findings(),
			Timestamp: msg.Timestamp,
		}
	case *events.SubmissionRejected:
		msg.Reason = e.Reason()
	default:
		return nil
	}
	return msg
}

func matchesSubscription(in *types.SubscribeLedgerEventsRequest, msg *types.LedgerEventMessage) bool {
	if len(in.EventTypes) > 0 {
		found := false
		for _, t := range in.EventTypes {
			if t == msg.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if in.Address == "" {
		return true
	}
	switch {
	case msg.Block != nil:
		record, ok := msg.Block.StarRecord()
		return ok && record.Owner == in.Address
	case msg.Type == string(events.EventSubmissionRejected):
		return msg.Subject == in.Address
	default:
		return false
	}
}
