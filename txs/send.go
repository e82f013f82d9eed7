package txs

import "forgechain/types"

// sendHandler moves Amount from sender to asset.Recipient (§4.3). It is
// the only handler whose asset effect touches a second account.
type sendHandler struct{}

func (sendHandler) Verify(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset, ok := tx.Asset.(types.SendAsset)
	if !ok {
		return types.NewValidationError("send: wrong asset type")
	}
	if asset.Amount == 0 {
		return types.NewValidationError("send: amount must be positive")
	}
	if asset.Recipient.IsZero() {
		return types.NewValidationError("send: recipient must not be the zero address")
	}
	return nil
}

func (sendHandler) VerifyUnconfirmed(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset := tx.Asset.(types.SendAsset)
	if sender.UBalance < asset.Amount {
		return types.NewValidationError("send: sender u_balance insufficient for amount")
	}
	return nil
}

func (sendHandler) CalculateFee(ctx *Context, tx *types.Transaction, sender *types.Account) uint64 {
	return ctx.Fees.Send
}

func (sendHandler) GetBytes(tx *types.Transaction) []byte { return types.GetBytes(tx) }

func (sendHandler) ApplyUnconfirmedAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset := tx.Asset.(types.SendAsset)
	if sender.UBalance < asset.Amount {
		return types.NewStateConflictError("send: u_balance went negative")
	}
	sender.UBalance -= asset.Amount
	recipient := ctx.Registry.GetOrCreate(asset.Recipient)
	recipient.UBalance += asset.Amount
	return nil
}

func (sendHandler) UndoUnconfirmedAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset := tx.Asset.(types.SendAsset)
	sender.UBalance += asset.Amount
	if recipient, ok := ctx.Registry.GetByAddress(asset.Recipient); ok {
		recipient.UBalance -= asset.Amount
	}
	return nil
}

func (sendHandler) ApplyAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset := tx.Asset.(types.SendAsset)
	if sender.Balance < asset.Amount {
		return types.NewStateConflictError("send: balance went negative")
	}
	sender.Balance -= asset.Amount
	recipient := ctx.Registry.GetOrCreate(asset.Recipient)
	recipient.Balance += asset.Amount
	return nil
}

func (sendHandler) UndoAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset := tx.Asset.(types.SendAsset)
	sender.Balance += asset.Amount
	if recipient, ok := ctx.Registry.GetByAddress(asset.Recipient); ok {
		recipient.Balance -= asset.Amount
	}
	return nil
}

func (sendHandler) Ready(tx *types.Transaction, sender *types.Account) bool {
	return !sender.IsMultisig() || len(tx.SecondSignature) > 0
}

func (sendHandler) ObjectNormalize(tx *types.Transaction) {}

func (sendHandler) DbRead(row map[string]interface{}) (types.Asset, error) {
	var asset types.SendAsset
	if err := rowToAsset(row, &asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (sendHandler) DbSave(tx *types.Transaction) (map[string]interface{}, error) {
	return assetToRow(tx.Asset)
}
