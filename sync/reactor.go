// Package sync implements C8, the peer-facing half of block/transaction
// propagation: a p2p reactor that gossips blocks and transactions and
// feeds them into C7/C4. It does not subscribe to EMIT_SYNC_BLOCKS and
// does no common-block negotiation with peers.
//
// Grounded on the teacher's consensus/reactor.go (the channel-per-
// message-kind p2p.BaseReactor pattern: ProposalChannel/VoteChannel,
// json-encoded messages, eventSwitch-driven broadcast) and the
// never-wired scaffold in slot/reactor.go (p2p.BaseReactor embedding,
// GetChannels/AddPeer/Receive skeleton) — generalized from "gossip BFT
// proposals and votes" to "gossip DPoS blocks and transactions",
// carrying over the teacher's channel/message/broadcast shape wholesale
// since the shape itself (not the payload) is what DPoS needs too.
package sync

import (
	"fmt"

	"forgechain/blockchain"
	"forgechain/eventbus"
	"forgechain/mempool"
	"forgechain/types"

	"github.com/tendermint/tendermint/libs/events"
	tmjson "github.com/tendermint/tendermint/libs/json"
	"github.com/tendermint/tendermint/p2p"
)

const (
	// BlockChannel carries gossiped *types.Block (BLOCK_RECEIVE, §6).
	BlockChannel = byte(0x40)
	// TransactionChannel carries gossiped *types.Transaction
	// (TRANSACTION_RECEIVE, §6).
	TransactionChannel = byte(0x41)

	maxMsgSize = 1048576
)

const broadcastSubscriber = "sync-reactor"

// Reactor is C8.
type Reactor struct {
	p2p.BaseReactor

	chain *blockchain.Service
	queue *mempool.Queue
	bus   *eventbus.Bus
}

func NewReactor(chain *blockchain.Service, queue *mempool.Queue, bus *eventbus.Bus) *Reactor {
	r := &Reactor{chain: chain, queue: queue, bus: bus}
	r.BaseReactor = *p2p.NewBaseReactor("Sync", r)
	return r
}

func (r *Reactor) OnStart() error {
	r.subscribeToBroadcastEvents()
	r.Logger.Info("sync reactor started")
	return nil
}

func (r *Reactor) OnStop() {
	r.bus.UnsubscribeAll(broadcastSubscriber)
}

func (r *Reactor) GetChannels() []*p2p.ChannelDescriptor {
	return []*p2p.ChannelDescriptor{
		{ID: BlockChannel, Priority: 10, SendQueueCapacity: 100, RecvBufferCapacity: maxMsgSize},
		{ID: TransactionChannel, Priority: 5, SendQueueCapacity: 1000, RecvBufferCapacity: maxMsgSize},
	}
}

func (r *Reactor) InitPeer(peer p2p.Peer) p2p.Peer              { return peer }
func (r *Reactor) AddPeer(peer p2p.Peer)                        {}
func (r *Reactor) RemovePeer(peer p2p.Peer, reason interface{}) {}

// Receive dispatches an incoming peer message to C7 (blocks) or C4
// (transactions), mirroring the teacher's chID-switched Receive.
func (r *Reactor) Receive(chID byte, src p2p.Peer, msgBytes []byte) {
	switch chID {
	case BlockChannel:
		block := new(types.Block)
		if err := tmjson.Unmarshal(msgBytes, block); err != nil {
			r.Logger.Error("unmarshal gossiped block failed", "err", err, "peer", src.ID())
			return
		}
		if r.chain.Syncing() {
			r.Logger.Debug("dropping received block while syncing", "id", block.ID)
			return
		}
		if err := r.chain.ValidateReceivedBlock(block); err != nil {
			r.Logger.Debug("received block rejected by fork decision", "id", block.ID, "err", err)
			return
		}
		if errs := r.chain.ReceiveBlock(block); len(errs) > 0 {
			r.Logger.Error("receive block failed", "id", block.ID, "errs", errs)
		}

	case TransactionChannel:
		tx := new(types.Transaction)
		if err := tmjson.Unmarshal(msgBytes, tx); err != nil {
			r.Logger.Error("unmarshal gossiped transaction failed", "err", err, "peer", src.ID())
			return
		}
		r.queue.Enqueue(tx)

	default:
		r.Logger.Error(fmt.Sprintf("unknown chID %X", chID))
	}
}

// subscribeToBroadcastEvents relays locally-applied/generated blocks
// and locally-created transactions to peers, mirroring the teacher's
// subscribeToBroadcastEvents/FireEvent wiring.
func (r *Reactor) subscribeToBroadcastEvents() {
	r.bus.Subscribe(broadcastSubscriber, eventbus.ApplyBlock, func(data events.EventData) {
		block, ok := data.(*types.Block)
		if !ok {
			return
		}
		r.RelayBlock(block)
	})
	r.bus.Subscribe(broadcastSubscriber, eventbus.TransactionCreate, func(data events.EventData) {
		tx, ok := data.(*types.Transaction)
		if !ok {
			return
		}
		bz, err := tmjson.Marshal(tx)
		if err != nil {
			r.Logger.Error("marshal transaction for broadcast failed", "err", err)
			return
		}
		r.Switch.Broadcast(TransactionChannel, bz)
	})
}

// RelayBlock satisfies blockchain.Broadcaster: it gossips a locally
// applied or generated block to every connected peer.
func (r *Reactor) RelayBlock(block *types.Block) {
	bz, err := tmjson.Marshal(block)
	if err != nil {
		r.Logger.Error("marshal block for broadcast failed", "err", err)
		return
	}
	r.Switch.Broadcast(BlockChannel, bz)
}
