package events

import (
	"github.com/mezonai/starledger/block"
)

// EventRouter turns ledger activity into bus events. It is registered with the
// block store as an append observer, so BlockAppended events keep chain order.
type EventRouter struct {
	eventBus *EventBus
}

func NewEventRouter(eventBus *EventBus) *EventRouter {
	return &EventRouter{eventBus: eventBus}
}

func (er *EventRouter) Bus() *EventBus {
	return er.eventBus
}

// OnBlockAppended implements mem_blockstore.AppendObserver.
func (er *EventRouter) OnBlockAppended(b block.Block) {
	er.eventBus.Publish(NewBlockAppended(b))
}

func (er *EventRouter) PublishChainValidated(height int64, checked, findings int, valid, incomplete bool) {
	er.eventBus.Publish(NewChainValidated(height, checked, findings, valid, incomplete))
}

func (er *EventRouter) PublishSubmissionRejected(address, reason string) {
	er.eventBus.Publish(NewSubmissionRejected(address, reason))
}
