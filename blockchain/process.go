package blockchain

import (
	"forgechain/eventbus"
	"forgechain/types"

	"github.com/pkg/errors"
)

// ReceiveBlock is §4.7.6: the entry point for a block arriving from a
// peer. It clears mempool entries conflicting with the incoming block,
// ensures a round exists, and delegates to Process; on success it
// requeues any removed-but-not-included conflicting transactions, on
// failure it returns every removed transaction to the pool unchanged.
func (s *Service) ReceiveBlock(received *types.Block) []error {
	s.logger.Info("received block", "id", received.ID, "height", received.Height)

	if err := received.ValidateBasic(); err != nil {
		return []error{err}
	}

	removed := s.pool.BatchRemove(received.Transactions, s.accounts.GetByAddress)

	if s.slotSvc.CurrentRound() == nil {
		firstSlot := s.slotSvc.GetFirstSlotNumberInRound(s.createdAtToTime(received.CreatedAt), s.params.ActiveDelegates)
		s.slotSvc.Generate(firstSlot, s.slotSvc.CalcRound(received.Height), s.activeDelegates)
	}

	verify := !s.fail.SkipVerify(received.ID)
	errs := s.Process(received, true, nil, verify)
	if len(errs) > 0 {
		for _, tx := range removed {
			if sender, ok := s.accounts.GetByAddress(tx.SenderAddress); ok {
				_ = s.pool.Push(tx, sender)
			}
		}
		return errs
	}

	included := make(map[string]bool, len(received.Transactions))
	for _, tx := range received.Transactions {
		included[tx.ID] = true
	}
	for _, tx := range removed {
		if included[tx.ID] {
			continue
		}
		if s.pool.IsPotentialConflict(tx) {
			s.queue.Enqueue(tx)
			continue
		}
		if sender, ok := s.accounts.GetByAddress(tx.SenderAddress); ok {
			_ = s.pool.Push(tx, sender)
		}
	}
	return nil
}

// Process is §4.7.7.
func (s *Service) Process(block *types.Block, broadcast bool, keyPair *types.KeyPair, verify bool) []error {
	if verify {
		var errs []error
		errs = append(errs, s.VerifyBlock(block, verify)...)
		if err := s.VerifyBlockSlot(block); err != nil {
			errs = append(errs, err)
		}
		if len(errs) > 0 {
			return errs
		}
	}

	if s.window.Has(block.ID) {
		return []error{types.NewStateConflictError("already processed")}
	}

	applied, err := s.checkTransactionsAndApplyUnconfirmed(block, verify)
	if err != nil {
		return []error{err}
	}

	if err := s.applyBlock(block, broadcast, keyPair, applied); err != nil {
		return []error{err}
	}
	return nil
}

// checkTransactionsAndApplyUnconfirmed is §4.7.7 step 3: applies each
// transaction's unconfirmed effect in order, rolling back in reverse
// (LIFO, §8 ordering guarantee 3) on the first failure.
func (s *Service) checkTransactionsAndApplyUnconfirmed(block *types.Block, verify bool) (types.Txs, error) {
	applied := make(types.Txs, 0, len(block.Transactions))

	rollback := func() {
		for i := len(applied) - 1; i >= 0; i-- {
			tx := applied[i]
			sender, ok := s.accounts.GetByAddress(tx.SenderAddress)
			if !ok {
				continue
			}
			_ = s.dispatcher.UndoUnconfirmed(s.ctx, tx, sender)
		}
	}

	for _, tx := range block.Transactions {
		sender := s.accounts.GetOrCreate(tx.SenderAddress)
		s.accounts.Add(tx.SenderAddress, tx.SenderPublicKey)

		if verify {
			if err := s.dispatcher.VerifyUnconfirmed(s.ctx, tx, sender); err != nil {
				rollback()
				return nil, types.NewTransactionVerifyError(err.Error())
			}
		} else if tx.Type == types.TxVote {
			tx.Fee = s.dispatcher.CalculateFee(s.ctx, tx, sender)
		}

		if err := s.dispatcher.ApplyUnconfirmed(s.ctx, tx, sender); err != nil {
			rollback()
			return nil, types.NewTransactionVerifyError(err.Error())
		}
		applied = append(applied, tx)
	}
	return applied, nil
}

// applyBlock is §4.7.7 step 4.
func (s *Service) applyBlock(block *types.Block, broadcast bool, keyPair *types.KeyPair, appliedUnconfirmed types.Txs) error {
	if keyPair != nil {
		s.AddPayloadHash(block, keyPair)
	}

	if err := s.durable.BatchSave(block); err != nil {
		// §9 open question: the spec does not roll back unconfirmed
		// applies when durable save itself fails; behavior preserved
		// even though it is flagged as likely-buggy.
		return types.NewPersistenceError(err.Error())
	}

	s.window.Push(block)

	var appliedConfirmed types.Txs
	var applyErr error
	for _, tx := range block.Transactions {
		sender := s.accounts.GetOrCreate(tx.SenderAddress)
		if err := s.dispatcher.Apply(s.ctx, tx, sender); err != nil {
			applyErr = err
			break
		}
		appliedConfirmed = append(appliedConfirmed, tx)
	}

	if applyErr != nil {
		// Local recovery (§7): failed confirmed apply after a
		// successful persist reverses undoUnconfirmed over the
		// block's transactions and returns them to the queue, rather
		// than leaving them stranded mid-apply.
		s.window.PopLast()
		for i := len(appliedConfirmed) - 1; i >= 0; i-- {
			tx := appliedConfirmed[i]
			if sender, ok := s.accounts.GetByAddress(tx.SenderAddress); ok {
				_ = s.dispatcher.Undo(s.ctx, tx, sender)
			}
		}
		for i := len(appliedUnconfirmed) - 1; i >= 0; i-- {
			tx := appliedUnconfirmed[i]
			if sender, ok := s.accounts.GetByAddress(tx.SenderAddress); ok {
				_ = s.dispatcher.UndoUnconfirmed(s.ctx, tx, sender)
			}
			s.queue.Enqueue(tx)
		}
		return errors.Wrap(applyErr, "applyBlock: confirmed apply failed after persistence")
	}

	if block.Height >= s.params.MinRoundBlockHeight {
		if round := s.slotSvc.CurrentRound(); round != nil {
			round.MarkForged(block.GeneratorPublicKey, true)
		}
	}

	s.bus.Publish(eventbus.ApplyBlock, block)
	if broadcast && !s.syncing && s.broadcast != nil {
		s.broadcast.RelayBlock(block)
	}
	return nil
}

// GenerateBlock is §4.7.8: pop up to MaxTransactionsPerBlock from the
// pool, build and process a block locally. On failure, the popped
// transactions go back through the queue's conflict-detecting
// admission path rather than straight back into the pool.
func (s *Service) GenerateBlock(createdAt int32, keyPair *types.KeyPair) []error {
	last := s.window.GetLast()
	if last == nil {
		return []error{types.NewValidationError("no last block to build on")}
	}

	popped := s.pool.PopSortedUnconfirmedTransactions(s.params.MaxTransactionsPerBlock, s.accounts.GetByAddress)
	block := s.Create(popped, createdAt, last, keyPair)

	errs := s.Process(block, true, keyPair, false)
	if len(errs) > 0 {
		for _, tx := range popped {
			s.queue.Enqueue(tx)
		}
		return errs
	}

	s.bus.Publish(eventbus.BlockGenerate, block)
	return nil
}

// DeleteLastBlock is §4.7.9.
func (s *Service) DeleteLastBlock() error {
	last := s.window.GetLast()
	if last == nil {
		return types.NewValidationError("no last block")
	}
	if last.Height == 1 {
		return types.NewValidationError("cannot delete genesis block")
	}

	if err := s.durable.DeleteByID(last.ID); err != nil {
		return types.NewPersistenceError(err.Error())
	}

	blockSlot := s.slotSvc.GetSlotNumber(s.createdAtToTime(last.CreatedAt))
	s.slotSvc.RestoreToSlot(blockSlot)
	if round := s.slotSvc.CurrentRound(); round != nil {
		round.MarkForged(last.GeneratorPublicKey, false)
	}

	s.window.PopLast()

	for i := len(last.Transactions) - 1; i >= 0; i-- {
		tx := last.Transactions[i]
		sender, ok := s.accounts.GetByAddress(tx.SenderAddress)
		if !ok {
			continue
		}
		_ = s.dispatcher.Undo(s.ctx, tx, sender)
		_ = s.dispatcher.UndoUnconfirmed(s.ctx, tx, sender)
	}

	s.bus.Publish(eventbus.UndoBlock, last)
	return nil
}

// ApplyGenesisBlock is §4.7.10: pre-register every sender in C2,
// deserialize and sort the genesis transaction set, and process the
// resulting block unverified and unbroadcast.
func (s *Service) ApplyGenesisBlock(transactions types.Txs) []error {
	for _, tx := range transactions {
		s.accounts.Add(tx.SenderAddress, tx.SenderPublicKey)
	}

	sorted := append(types.Txs(nil), transactions...)
	types.SortTransactions(sorted)

	block := &types.Block{
		Version:          s.params.CurrentBlockVersion,
		Height:           1,
		CreatedAt:        0,
		Transactions:     sorted,
		TransactionCount: uint32(len(sorted)),
	}
	s.AddPayloadHash(block, nil)

	return s.Process(block, false, nil, false)
}
