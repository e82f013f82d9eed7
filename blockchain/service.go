// Package blockchain implements C7 (§4.7), the block service core:
// build, verify, receive, process, generate and roll back blocks,
// driving C1 (slot), C2 (accounts), C3 (dispatcher), C5 (pool), and C6
// (storage) as a single serialized "consensus sequence" (§5).
//
// Grounded on the teacher's consensus/state.go, which owns the
// equivalent responsibility (the only place block validation, vote
// tallying, and commit happen) behind one struct guarded by its own
// run loop — generalized here from BFT round/vote bookkeeping to DPoS
// slot-ownership bookkeeping, with the same "one struct, one serialized
// sequence" shape.
package blockchain

import (
	"forgechain/config"
	"forgechain/eventbus"
	"forgechain/mempool"
	"forgechain/slot"
	"forgechain/state"
	"forgechain/store"
	"forgechain/txs"
	"forgechain/types"

	"github.com/tendermint/tendermint/libs/log"
)

// Broadcaster is the minimal slice of C8 (sync) that C7 needs: relay a
// just-applied block to peers. A detected gap is not reported through
// it; it is published on the bus as EMIT_SYNC_BLOCKS. Declared here (not imported from a sync package)
// so the dependency graph stays acyclic — sync will import blockchain,
// not the reverse.
type Broadcaster interface {
	RelayBlock(block *types.Block)
}

// FailInjector is the testability hook §4.7.6 calls `failInjection`: a
// way for tests to force a received block's signature/id/payload
// checks to be skipped without threading a bool through every caller.
// Production code uses NoFailInjection, which never skips anything.
type FailInjector interface {
	SkipVerify(blockID string) bool
}

type noFailInjection struct{}

func (noFailInjection) SkipVerify(string) bool { return false }

// NoFailInjection is the production FailInjector: verification is
// never skipped.
var NoFailInjection FailInjector = noFailInjection{}

// Service is C7.
type Service struct {
	logger log.Logger
	params config.ChainParams

	accounts   *state.Accounts
	dispatcher *txs.Dispatcher
	ctx        *txs.Context
	pool       *mempool.Pool
	queue      *mempool.Queue
	window     *store.Window
	durable    *store.Durable
	slotSvc    *slot.Service
	bus        *eventbus.Bus
	broadcast  Broadcaster
	fail       FailInjector

	activeDelegates [][]byte

	syncing bool
}

// Option configures optional Service collaborators at construction.
type Option func(*Service)

func WithBroadcaster(b Broadcaster) Option {
	return func(s *Service) { s.broadcast = b }
}

// SetBroadcaster binds the sync-layer broadcaster after construction.
// node/ needs this: sync.Reactor's constructor takes a *Service, so the
// two can't be built in a single WithBroadcaster call without a cycle —
// node builds Service first, then the Reactor, then wires it back here.
func (s *Service) SetBroadcaster(b Broadcaster) { s.broadcast = b }

// ActiveDelegatePublicKeys returns the round-schedule input node/'s
// block-producer loop needs to regenerate a round (§4.1).
func (s *Service) ActiveDelegatePublicKeys() [][]byte { return s.activeDelegates }

func WithFailInjection(f FailInjector) Option {
	return func(s *Service) { s.fail = f }
}

func NewService(
	params config.ChainParams,
	accounts *state.Accounts,
	dispatcher *txs.Dispatcher,
	ctx *txs.Context,
	pool *mempool.Pool,
	queue *mempool.Queue,
	window *store.Window,
	durable *store.Durable,
	slotSvc *slot.Service,
	bus *eventbus.Bus,
	activeDelegates [][]byte,
	logger log.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		logger:          logger,
		params:          params,
		accounts:        accounts,
		dispatcher:      dispatcher,
		ctx:             ctx,
		pool:            pool,
		queue:           queue,
		window:          window,
		durable:         durable,
		slotSvc:         slotSvc,
		bus:             bus,
		activeDelegates: activeDelegates,
		fail:            NoFailInjection,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetSyncing marks whether this node is currently catching up (§4.7.5's
// "local is not in own consensus", §5's receive-during-sync policy).
func (s *Service) SetSyncing(syncing bool) { s.syncing = syncing }

func (s *Service) Syncing() bool { return s.syncing }

// Create is §4.7.1: build a new unsigned-but-for-payload block atop
// previous, with the given transactions and timestamp. AddPayloadHash
// fills amount, fee, payloadHash, signature and id.
func (s *Service) Create(transactions types.Txs, createdAt int32, previous *types.Block, keyPair *types.KeyPair) *types.Block {
	txsCopy := append(types.Txs(nil), transactions...)
	types.SortTransactions(txsCopy)

	block := &types.Block{
		Version:          s.params.CurrentBlockVersion,
		Height:           previous.Height + 1,
		PreviousBlockID:  previous.ID,
		CreatedAt:        createdAt,
		Transactions:     txsCopy,
		TransactionCount: uint32(len(txsCopy)),
	}
	if keyPair != nil {
		block.GeneratorPublicKey = append([]byte(nil), keyPair.PublicKey...)
	}
	s.AddPayloadHash(block, keyPair)
	return block
}

// AddPayloadHash is §4.7.2: accumulate fee/amount across the block's
// transactions while streaming their canonical bytes into SHA-256 for
// payloadHash, then sign and compute the block id. keyPair is nil on
// the receive path, where the block already carries its generator's
// signature.
func (s *Service) AddPayloadHash(block *types.Block, keyPair *types.KeyPair) {
	hasher := newPayloadHasher()

	var amount, fee uint64
	for _, tx := range block.Transactions {
		fee += tx.Fee
		if sendAsset, ok := tx.Asset.(types.SendAsset); ok {
			amount += sendAsset.Amount
		}
		hasher.Write(s.dispatcher.GetBytes(tx))
	}
	block.Amount = amount
	block.Fee = fee
	block.PayloadHash = hasher.Sum()

	if keyPair != nil {
		block.Signature = keyPair.Sign(types.SigningHash(block))
	}
	block.ID = types.ComputeBlockID(block)

	for _, tx := range block.Transactions {
		tx.BlockID = block.ID
	}
}
