package blockchain

import (
	"forgechain/eventbus"
	"forgechain/types"
)

// ValidateReceivedBlock is §4.7.5's decision tree: L is the last local
// block, R the received one. Returns nil to accept, or the rejection
// error otherwise. Cases producing EMIT_SYNC_BLOCKS publish on the
// event bus as a side effect before returning their error.
func (s *Service) ValidateReceivedBlock(received *types.Block) error {
	last := s.window.GetLast()
	if last == nil {
		return nil
	}

	switch {
	case received.ID == last.ID:
		return types.NewStateConflictError("already processed")

	case received.Height < last.Height:
		return types.NewStateConflictError("less than last block")

	case received.Height > last.Height:
		if received.Height == last.Height+1 && received.PreviousBlockID == last.ID {
			return nil
		}
		s.bus.Publish(eventbus.EmitSyncBlocks, received)
		return types.NewStateConflictError("height gap, sync required")

	case received.Height == last.Height:
		if isNewer(received, last) && !s.syncing && received.PreviousBlockID == last.PreviousBlockID {
			return s.verifyEqualBlock(received, last)
		}
		return types.NewStateConflictError("equal height, not a valid replacement")

	default:
		return types.NewStateConflictError("unreachable fork case")
	}
}

// isNewer reports whether a is strictly "newer" than b in the §4.7.5
// sense: earlier createdAt wins ties broken by lower lexicographic id.
func isNewer(a, b *types.Block) bool {
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt < b.CreatedAt
	}
	return a.ID < b.ID
}

// verifyEqualBlock re-verifies received against the structural and
// signature checks (fork cause 5, §8 scenario 2) before it is allowed
// to replace the local block at the same height.
func (s *Service) verifyEqualBlock(received, local *types.Block) error {
	if len(received.GeneratorPublicKey) > 0 && equalBytes(received.GeneratorPublicKey, local.GeneratorPublicKey) {
		s.logger.Error("equivocation: same generator forged two blocks at the same height", "height", received.Height, "generator", received.GeneratorPublicKey)
	}
	if errs := s.VerifyBlock(received, true); len(errs) > 0 {
		return errs[0]
	}
	return nil
}
