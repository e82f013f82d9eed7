package txs

import (
	"encoding/hex"

	"forgechain/types"
)

// voteHandler adds/removes delegate votes on the sender's account and
// keeps each referenced delegate's Votes tally in sync (§3, §4.5).
type voteHandler struct{}

func (voteHandler) Verify(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset, ok := tx.Asset.(types.VoteAsset)
	if !ok {
		return types.NewValidationError("vote: wrong asset type")
	}
	if len(asset.Added) == 0 && len(asset.Removed) == 0 {
		return types.NewValidationError("vote: must add or remove at least one delegate")
	}
	return nil
}

func (voteHandler) VerifyUnconfirmed(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset := tx.Asset.(types.VoteAsset)
	for _, add := range asset.Added {
		if sender.HasVoted(add) {
			return types.NewValidationError("vote: already voted for delegate " + add)
		}
	}
	for _, rem := range asset.Removed {
		if !sender.HasVoted(rem) {
			return types.NewValidationError("vote: not currently voting for delegate " + rem)
		}
	}
	return nil
}

func (voteHandler) CalculateFee(ctx *Context, tx *types.Transaction, sender *types.Account) uint64 {
	return ctx.Fees.Vote
}

func (voteHandler) GetBytes(tx *types.Transaction) []byte { return types.GetBytes(tx) }

func (voteHandler) ApplyUnconfirmedAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	return nil
}

func (voteHandler) UndoUnconfirmedAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	return nil
}

func (voteHandler) ApplyAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset := tx.Asset.(types.VoteAsset)
	for _, add := range asset.Added {
		sender.Votes = append(sender.Votes, add)
		adjustDelegateVotes(ctx, add, int64(sender.Balance))
	}
	sender.Votes = removeVotes(sender.Votes, asset.Removed)
	for _, rem := range asset.Removed {
		adjustDelegateVotes(ctx, rem, -int64(sender.Balance))
	}
	return nil
}

func (voteHandler) UndoAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset := tx.Asset.(types.VoteAsset)
	for _, add := range asset.Added {
		adjustDelegateVotes(ctx, add, -int64(sender.Balance))
	}
	sender.Votes = removeVotes(sender.Votes, asset.Added)
	for _, rem := range asset.Removed {
		sender.Votes = append(sender.Votes, rem)
		adjustDelegateVotes(ctx, rem, int64(sender.Balance))
	}
	return nil
}

func (voteHandler) Ready(tx *types.Transaction, sender *types.Account) bool {
	return !sender.IsMultisig() || len(tx.SecondSignature) > 0
}

func (voteHandler) ObjectNormalize(tx *types.Transaction) {}

func (voteHandler) DbRead(row map[string]interface{}) (types.Asset, error) {
	var asset types.VoteAsset
	if err := rowToAsset(row, &asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (voteHandler) DbSave(tx *types.Transaction) (map[string]interface{}, error) {
	return assetToRow(tx.Asset)
}

func adjustDelegateVotes(ctx *Context, delegatePubKeyHex string, delta int64) {
	pub, err := hex.DecodeString(delegatePubKeyHex)
	if err != nil {
		return
	}
	account, ok := ctx.Registry.GetByPublicKey(pub)
	if !ok || account.Delegate == nil {
		return
	}
	if delta >= 0 {
		account.Delegate.Votes += uint64(delta)
	} else {
		d := uint64(-delta)
		if d > account.Delegate.Votes {
			d = account.Delegate.Votes
		}
		account.Delegate.Votes -= d
	}
}

func removeVotes(votes []string, toRemove []string) []string {
	if len(toRemove) == 0 {
		return votes
	}
	drop := make(map[string]bool, len(toRemove))
	for _, r := range toRemove {
		drop[r] = true
	}
	out := votes[:0]
	for _, v := range votes {
		if !drop[v] {
			out = append(out, v)
		}
	}
	return out
}
