package txs

import "forgechain/types"

// stakeHandler bonds Amount out of the sender's balance and indexes
// every sponsor address as an airdrop recipient (§4.5).
type stakeHandler struct{}

func (stakeHandler) Verify(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset, ok := tx.Asset.(types.StakeAsset)
	if !ok {
		return types.NewValidationError("stake: wrong asset type")
	}
	if asset.Amount == 0 {
		return types.NewValidationError("stake: amount must be positive")
	}
	return nil
}

func (stakeHandler) VerifyUnconfirmed(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset := tx.Asset.(types.StakeAsset)
	if sender.UBalance < asset.Amount {
		return types.NewValidationError("stake: sender u_balance insufficient for amount")
	}
	return nil
}

func (stakeHandler) CalculateFee(ctx *Context, tx *types.Transaction, sender *types.Account) uint64 {
	return ctx.Fees.Stake
}

func (stakeHandler) GetBytes(tx *types.Transaction) []byte { return types.GetBytes(tx) }

func (stakeHandler) ApplyUnconfirmedAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset := tx.Asset.(types.StakeAsset)
	if sender.UBalance < asset.Amount {
		return types.NewStateConflictError("stake: u_balance went negative")
	}
	sender.UBalance -= asset.Amount
	for _, s := range asset.Sponsors {
		ctx.Registry.GetOrCreate(s)
	}
	return nil
}

func (stakeHandler) UndoUnconfirmedAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset := tx.Asset.(types.StakeAsset)
	sender.UBalance += asset.Amount
	return nil
}

func (stakeHandler) ApplyAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset := tx.Asset.(types.StakeAsset)
	if sender.Balance < asset.Amount {
		return types.NewStateConflictError("stake: balance went negative")
	}
	sender.Balance -= asset.Amount
	share := asset.Amount
	if n := len(asset.Sponsors); n > 0 {
		share = asset.Amount / uint64(n)
	}
	for _, s := range asset.Sponsors {
		recipient := ctx.Registry.GetOrCreate(s)
		recipient.Balance += share
	}
	return nil
}

func (stakeHandler) UndoAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset := tx.Asset.(types.StakeAsset)
	sender.Balance += asset.Amount
	share := asset.Amount
	if n := len(asset.Sponsors); n > 0 {
		share = asset.Amount / uint64(n)
	}
	for _, s := range asset.Sponsors {
		if recipient, ok := ctx.Registry.GetByAddress(s); ok {
			recipient.Balance -= share
		}
	}
	return nil
}

func (stakeHandler) Ready(tx *types.Transaction, sender *types.Account) bool {
	return !sender.IsMultisig() || len(tx.SecondSignature) > 0
}

func (stakeHandler) ObjectNormalize(tx *types.Transaction) {}

func (stakeHandler) DbRead(row map[string]interface{}) (types.Asset, error) {
	var asset types.StakeAsset
	if err := rowToAsset(row, &asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (stakeHandler) DbSave(tx *types.Transaction) (map[string]interface{}, error) {
	return assetToRow(tx.Asset)
}
