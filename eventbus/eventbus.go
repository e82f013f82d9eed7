// Package eventbus implements C9 (§6 "Event bus topics"): a
// process-wide pub/sub connecting the block service, sync, mempool and
// RPC layer, so none of them import each other directly to exchange
// notifications.
package eventbus

import (
	"github.com/tendermint/tendermint/libs/events"
)

// Topic names the nine event-bus topics §6 lists, each carrying the
// serialized entity named in its comment.
type Topic string

const (
	// BlockReceive carries a *types.Block the sync layer handed to C7.
	BlockReceive Topic = "BLOCK_RECEIVE"
	// BlockGenerate carries a *types.Block this node just produced.
	BlockGenerate Topic = "BLOCK_GENERATE"
	// BlockchainReady fires once after startup catch-up completes.
	BlockchainReady Topic = "BLOCKCHAIN_READY"
	// NewBlocks carries []*types.Block appended since the last fire.
	NewBlocks Topic = "NEW_BLOCKS"
	// ApplyBlock carries the *types.Block just durably applied.
	ApplyBlock Topic = "APPLY_BLOCK"
	// UndoBlock carries the *types.Block just rolled back.
	UndoBlock Topic = "UNDO_BLOCK"
	// EmitSyncBlocks signals the sync layer to fetch missing height
	// range; carries the triggering *types.Block (§4.7.4 fork cause).
	EmitSyncBlocks Topic = "EMIT_SYNC_BLOCKS"
	// TransactionReceive carries a *types.Transaction from a peer.
	TransactionReceive Topic = "TRANSACTION_RECEIVE"
	// TransactionCreate carries a *types.Transaction created locally.
	TransactionCreate Topic = "TRANSACTION_CREATE"
)

// Bus wraps tendermint/libs/events.EventSwitch, the same pub/sub the
// teacher's consensus/state.go drives its reactor notifications
// through (`eventSwitch.FireEvent`/`AddListenerForEvent`), generalized
// from two ad hoc string constants (EventNewProposal/EventNewVote) to
// the nine typed topics above.
type Bus struct {
	sw events.EventSwitch
}

func New() *Bus {
	sw := events.NewEventSwitch()
	return &Bus{sw: sw}
}

func (b *Bus) Start() error { return b.sw.Start() }
func (b *Bus) Stop() error  { return b.sw.Stop() }

// Publish fires data to every listener subscribed to topic.
func (b *Bus) Publish(topic Topic, data events.EventData) {
	b.sw.FireEvent(string(topic), data)
}

// Subscribe registers fn under subscriber for topic. subscriber must be
// unique per listener so Unsubscribe can target it precisely.
func (b *Bus) Subscribe(subscriber string, topic Topic, fn events.EventCallback) {
	b.sw.AddListenerForEvent(subscriber, string(topic), fn)
}

// Unsubscribe removes subscriber's listener for topic.
func (b *Bus) Unsubscribe(subscriber string, topic Topic) {
	b.sw.RemoveListenerForEvent(string(topic), subscriber)
}

// UnsubscribeAll removes every listener registered under subscriber.
func (b *Bus) UnsubscribeAll(subscriber string) {
	b.sw.RemoveListener(subscriber)
}
