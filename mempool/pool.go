// Package mempool implements C4 (queue) and C5 (pool), the two-tier
// transaction staging system (§4.4, §4.5).
//
// Grounded on the teacher's list_mempool.go: a clist.CList backs the
// gossip-ordered transaction list (so a future sync reactor can block
// on TxsWaitChan the same way), while the sender/recipient secondary
// indices are the plain ordered slices the design notes (§9) call for
// — "list-with-remove preserving order... acceptable because
// per-sender/per-recipient lists are short" — rather than the
// teacher's single sync.Map, since C5 needs two additional indices the
// teacher never had.
package mempool

import (
	"forgechain/txs"
	"forgechain/types"

	"github.com/tendermint/tendermint/libs/clist"
	"github.com/tendermint/tendermint/libs/log"
)

// Pool is C5 (§4.5).
type Pool struct {
	logger log.Logger
	dispatcher *txs.Dispatcher
	ctx        *txs.Context

	order *clist.CList // gossip/sort order, oldest first

	pool            map[string]*types.Transaction
	poolBySender    map[types.Address][]*types.Transaction
	poolByRecipient map[types.Address][]*types.Transaction

	metric *poolMetric
}

func NewPool(dispatcher *txs.Dispatcher, ctx *txs.Context, logger log.Logger) *Pool {
	return &Pool{
		logger:          logger,
		dispatcher:      dispatcher,
		ctx:             ctx,
		order:           clist.New(),
		pool:            make(map[string]*types.Transaction),
		poolBySender:    make(map[types.Address][]*types.Transaction),
		poolByRecipient: make(map[types.Address][]*types.Transaction),
		metric:          newPoolMetric(),
	}
}

func (p *Pool) Size() int { return len(p.pool) }

func (p *Pool) Has(id string) bool {
	_, ok := p.pool[id]
	return ok
}

func (p *Pool) Get(id string) (*types.Transaction, bool) {
	tx, ok := p.pool[id]
	return tx, ok
}

// recipientsOf returns every address a transaction indexes in
// poolByRecipient: direct SEND recipient, or every airdrop sponsor for
// VOTE (when reward or unstake) and for STAKE (§4.5).
func recipientsOf(tx *types.Transaction) []types.Address {
	switch a := tx.Asset.(type) {
	case types.SendAsset:
		return []types.Address{a.Recipient}
	case types.VoteAsset:
		if a.Reward || a.Unstake {
			return a.Sponsors
		}
	case types.StakeAsset:
		return a.Sponsors
	}
	return nil
}

// Push is push(trs, sender, broadcast) (§4.5); broadcast signaling to
// C8 is the caller's responsibility once Push returns nil.
func (p *Pool) Push(tx *types.Transaction, sender *types.Account) error {
	if p.Has(tx.ID) {
		return ErrTxAlreadyInPool
	}

	if err := p.dispatcher.ApplyUnconfirmed(p.ctx, tx, sender); err != nil {
		return err
	}

	p.pool[tx.ID] = tx
	p.order.PushBack(tx)
	p.poolBySender[tx.SenderAddress] = append(p.poolBySender[tx.SenderAddress], tx)
	for _, r := range recipientsOf(tx) {
		p.poolByRecipient[r] = append(p.poolByRecipient[r], tx)
	}

	p.markMetrics()
	return nil
}

// Remove is remove(trs) (§4.5): undoes the unconfirmed apply and
// strips the transaction from all three indices.
func (p *Pool) Remove(tx *types.Transaction, sender *types.Account) error {
	if !p.Has(tx.ID) {
		return ErrUnknownTxID
	}
	if err := p.dispatcher.UndoUnconfirmed(p.ctx, tx, sender); err != nil {
		return err
	}
	p.removeFromIndices(tx)
	p.markMetrics()
	return nil
}

func (p *Pool) removeFromIndices(tx *types.Transaction) {
	delete(p.pool, tx.ID)
	p.poolBySender[tx.SenderAddress] = removeTxByID(p.poolBySender[tx.SenderAddress], tx.ID)
	for _, r := range recipientsOf(tx) {
		p.poolByRecipient[r] = removeTxByID(p.poolByRecipient[r], tx.ID)
	}
	for e := p.order.Front(); e != nil; e = e.Next() {
		if e.Value.(*types.Transaction).ID == tx.ID {
			p.order.Remove(e)
			break
		}
	}
}

func removeTxByID(list []*types.Transaction, id string) []*types.Transaction {
	out := list[:0]
	for _, tx := range list {
		if tx.ID != id {
			out = append(out, tx)
		}
	}
	return out
}

// BatchRemove is batchRemove(trs[]) (§4.5): for every input
// transaction, removes every pool entry indexed by its sender address
// via both the sender and recipient maps — an over-approximation of the
// conflict set, since a staged STAKE/VOTE naming this address as an
// airdrop sponsor also has unconfirmed effects on it that must be
// undone. sender resolves an address to its Account (needed to call
// UndoUnconfirmed). Returns the removed transactions.
func (p *Pool) BatchRemove(incoming types.Txs, lookupSender func(types.Address) (*types.Account, bool)) types.Txs {
	seenSenders := make(map[types.Address]bool)
	var removed types.Txs
	for _, tx := range incoming {
		if seenSenders[tx.SenderAddress] {
			continue
		}
		seenSenders[tx.SenderAddress] = true

		entangled := make(map[string]*types.Transaction)
		for _, staged := range p.poolBySender[tx.SenderAddress] {
			entangled[staged.ID] = staged
		}
		for _, staged := range p.poolByRecipient[tx.SenderAddress] {
			entangled[staged.ID] = staged
		}
		for _, staged := range entangled {
			sender, ok := lookupSender(staged.SenderAddress)
			if !ok {
				continue
			}
			if err := p.Remove(staged, sender); err == nil {
				removed = append(removed, staged)
			}
		}
	}
	return removed
}

// PopSortedUnconfirmedTransactions is popSortedUnconfirmedTransactions
// (§4.5): returns up to limit transactions in transactionSortFunc
// order and removes them in reverse of that order, per §8 invariant 6.
func (p *Pool) PopSortedUnconfirmedTransactions(limit int, lookupSender func(types.Address) (*types.Account, bool)) types.Txs {
	all := make(types.Txs, 0, len(p.pool))
	for _, tx := range p.pool {
		all = append(all, tx)
	}
	types.SortTransactions(all)

	if limit >= 0 && limit < len(all) {
		all = all[:limit]
	}

	for i := len(all) - 1; i >= 0; i-- {
		tx := all[i]
		sender, ok := lookupSender(tx.SenderAddress)
		if !ok {
			continue
		}
		_ = p.Remove(tx, sender)
	}
	return all
}

// GetUnconfirmedTransactionList is getUnconfirmedTransactionList(limit,
// offset) (§4.5 [EXPANDED — C5]): a read-only, transactionSortFunc-ordered
// page of the pool for RPC listing. A negative limit returns every
// transaction from offset onward.
func (p *Pool) GetUnconfirmedTransactionList(limit, offset int) types.Txs {
	all := make(types.Txs, 0, len(p.pool))
	for _, tx := range p.pool {
		all = append(all, tx)
	}
	types.SortTransactions(all)

	if offset < 0 || offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]

	if limit >= 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

// HasPendingTransaction is hasPendingTransaction(address) (§4.5
// [EXPANDED — C5]): reports whether address already has a staged
// transaction indexed by poolBySender, which the queue worker uses to
// tell whether address's account is guaranteed to already exist rather
// than needing a stub created (§4.4).
func (p *Pool) HasPendingTransaction(address types.Address) bool {
	return len(p.poolBySender[address]) > 0
}

// IsPotentialConflict is isPotentialConflict(trs) (§4.5).
func (p *Pool) IsPotentialConflict(tx *types.Transaction) bool {
	switch tx.Type {
	case types.TxSignature:
		return len(p.poolBySender[tx.SenderAddress]) > 0
	case types.TxRegister:
		for _, staged := range p.poolBySender[tx.SenderAddress] {
			if staged.Type == types.TxRegister {
				return true
			}
		}
		return false
	}

	dependents := append([]*types.Transaction(nil), p.poolBySender[tx.SenderAddress]...)
	dependents = append(dependents, tx)
	types.SortTransactions(dependents)
	return dependents[len(dependents)-1].ID != tx.ID
}

func (p *Pool) markMetrics() {
	p.metric.MarkPoolSize(len(p.pool))
	p.metric.MarkSendersIndexed(len(p.poolBySender))
}

// Metric exposes the pool's JSON-serializable snapshot.
func (p *Pool) Metric() *poolMetric { return p.metric }
