package blockchain

import (
	"time"

	"forgechain/types"
)

// VerifyBlock is §4.7.3: collects every structural failure instead of
// short-circuiting, then returns them most-recent-first so the first
// entry a caller logs is the most actionable one.
func (s *Service) VerifyBlock(block *types.Block, verify bool) []error {
	var errs []error

	if verify && !types.VerifyBlockSignature(block) {
		errs = append(errs, types.NewVerificationError("block signature does not verify"))
	}

	if block.Height != 1 && block.PreviousBlockID == "" {
		errs = append(errs, types.NewVerificationError("block missing previousBlockId"))
	}

	if block.Version != s.params.CurrentBlockVersion {
		errs = append(errs, types.NewVerificationError("block version does not match configured current version"))
	}

	if verify {
		if recomputed := types.ComputeBlockID(block); recomputed != block.ID {
			errs = append(errs, types.NewVerificationError("block id does not match recomputed id"))
		}
	}

	if err := s.verifyPayload(block); err != nil {
		errs = append(errs, err)
	}

	if err := s.verifyBlockSlotRange(block); err != nil {
		errs = append(errs, err)
	}

	reverse(errs)
	return errs
}

// verifyPayload re-derives payloadHash/amount/fee from the block's
// transactions and checks them against the stored values, plus the
// structural constraints on the transaction set itself.
func (s *Service) verifyPayload(block *types.Block) error {
	if uint32(len(block.Transactions)) != block.TransactionCount {
		return types.NewVerificationError("transactionCount does not match transaction list length")
	}
	if len(block.Transactions) > s.params.MaxTransactionsPerBlock {
		return types.NewVerificationError("block exceeds max transactions per block")
	}

	seen := make(map[string]bool, len(block.Transactions))
	hasher := newPayloadHasher()
	var amount, fee uint64
	for _, tx := range block.Transactions {
		if seen[tx.ID] {
			return types.NewVerificationError("duplicate transaction id in block")
		}
		seen[tx.ID] = true

		fee += tx.Fee
		if sendAsset, ok := tx.Asset.(types.SendAsset); ok {
			amount += sendAsset.Amount
		}
		hasher.Write(s.dispatcher.GetBytes(tx))
	}

	if amount != block.Amount {
		return types.NewVerificationError("block amount does not match re-derived amount")
	}
	if fee != block.Fee {
		return types.NewVerificationError("block fee does not match re-derived fee")
	}
	sum := hasher.Sum()
	if !equalBytes(sum, block.PayloadHash) {
		return types.NewVerificationError("block payloadHash does not match re-derived payload hash")
	}
	return nil
}

// verifyBlockSlotRange checks the block's slot number falls in
// (lastBlockSlotNumber, currentSlotNumber + activeDelegatesCount - 1]
// (§4.7.3).
func (s *Service) verifyBlockSlotRange(block *types.Block) error {
	last := s.window.GetLast()
	if last == nil {
		return nil
	}
	lastSlot := s.slotSvc.GetSlotNumber(s.createdAtToTime(last.CreatedAt))
	blockSlot := s.slotSvc.GetSlotNumber(s.createdAtToTime(block.CreatedAt))
	currentSlot := s.slotSvc.GetSlotNumber(time.Time{})
	upper := currentSlot + uint64(s.params.ActiveDelegates) - 1

	if blockSlot <= lastSlot || blockSlot > upper {
		return types.NewVerificationError("block slot number out of acceptable range")
	}
	return nil
}

// VerifyBlockSlot is §4.7.4: for height > 1, the block's slot must
// equal the generatorSlot assigned to its generator in the current
// round, unless the fail-injection service suppresses the check.
func (s *Service) VerifyBlockSlot(block *types.Block) error {
	if block.Height <= 1 {
		return nil
	}
	if s.fail.SkipVerify(block.ID) {
		return nil
	}

	round := s.slotSvc.CurrentRound()
	if round == nil {
		return types.NewVerificationError("no current round to verify slot against")
	}

	generatorSlot, ok := round.SlotFor(block.GeneratorPublicKey)
	if !ok {
		return types.NewVerificationError("GeneratorPublicKey does not exist in current round")
	}

	blockSlot := s.slotSvc.GetSlotNumber(s.createdAtToTime(block.CreatedAt))
	if blockSlot != generatorSlot {
		return types.NewVerificationError("blockSlot does not equal generatorSlot")
	}
	return nil
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func reverse(errs []error) {
	for i, j := 0, len(errs)-1; i < j; i, j = i+1, j-1 {
		errs[i], errs[j] = errs[j], errs[i]
	}
}
