package mempool

import (
	"sync"

	"forgechain/txs"
	"forgechain/types"

	"github.com/tendermint/tendermint/libs/log"
)

// AccountResolver is the minimal slice of txs.Registry the queue
// worker needs to resolve a transaction's sender (§4.4).
type AccountResolver interface {
	GetByAddress(addr types.Address) (*types.Account, bool)
	GetOrCreate(addr types.Address) *types.Account
}

// Queue is C4 (§4.4): a FIFO of candidate transactions drained by a
// single worker into the pool. Grounded on the teacher's addTx/CheckTx
// split in list_mempool.go, generalized from a single accept/reject
// gate into the validate→resolve→verify→admit pipeline §4.4 specifies.
type Queue struct {
	logger     log.Logger
	dispatcher *txs.Dispatcher
	ctx        *txs.Context
	accounts   AccountResolver
	pool       *Pool

	mu      sync.Mutex
	pending []*types.Transaction
	notify  chan struct{}
}

func NewQueue(dispatcher *txs.Dispatcher, ctx *txs.Context, accounts AccountResolver, pool *Pool, logger log.Logger) *Queue {
	return &Queue{
		logger:     logger,
		dispatcher: dispatcher,
		ctx:        ctx,
		accounts:   accounts,
		pool:       pool,
		notify:     make(chan struct{}, 1),
	}
}

// Enqueue stages tx for the drain worker.
func (q *Queue) Enqueue(tx *types.Transaction) {
	q.mu.Lock()
	q.pending = append(q.pending, tx)
	q.pool.metric.MarkQueueSize(len(q.pending))
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Notify signals the owning node's drain worker that at least one
// transaction is staged (§4.4: "a single worker continuously drains").
func (q *Queue) Notify() <-chan struct{} {
	return q.notify
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain runs the worker pass once, processing every currently staged
// transaction (§4.4): validate structure, skip duplicates, resolve
// sender, verifyUnconfirmed, and on success push into the pool.
// Failures are logged and the transaction dropped.
func (q *Queue) Drain() {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.pool.metric.MarkQueueSize(0)
	q.mu.Unlock()

	for _, tx := range batch {
		q.processOne(tx)
	}
}

func (q *Queue) processOne(tx *types.Transaction) {
	q.dispatcher.ObjectNormalize(tx)

	if err := tx.ValidateBasic(); err != nil {
		q.logger.Info("dropping transaction: failed structural validation", "id", tx.ID, "err", err)
		return
	}
	if err := q.dispatcher.Verify(q.ctx, tx, nil); err != nil {
		q.logger.Info("dropping transaction: failed verify", "id", tx.ID, "err", err)
		return
	}
	if q.pool.Has(tx.ID) {
		q.logger.Debug("dropping transaction: duplicate of pooled transaction", "id", tx.ID)
		return
	}

	// A sender with an already-staged transaction is guaranteed to have
	// a real account (it was created, or found, when that transaction
	// was staged): skip the stub-creating path and look it up instead
	// (§4.4 [EXPANDED — C5], hasPendingTransaction).
	var sender *types.Account
	if q.pool.HasPendingTransaction(tx.SenderAddress) {
		sender, _ = q.accounts.GetByAddress(tx.SenderAddress)
	}
	if sender == nil {
		sender = q.accounts.GetOrCreate(tx.SenderAddress)
	}
	if err := q.dispatcher.VerifyUnconfirmed(q.ctx, tx, sender); err != nil {
		q.logger.Info("dropping transaction: failed verifyUnconfirmed", "id", tx.ID, "err", err)
		return
	}

	if q.pool.IsPotentialConflict(tx) {
		q.logger.Info("dropping transaction: potential conflict with staged dependent", "id", tx.ID)
		return
	}

	if err := q.pool.Push(tx, sender); err != nil {
		q.logger.Info("dropping transaction: pool rejected", "id", tx.ID, "err", err)
	}
}
