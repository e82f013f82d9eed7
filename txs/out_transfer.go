package txs

import "forgechain/types"

// outTransferHandler demonstrates the canonical-byte extensibility
// point named in §6: it carries no balance effect of its own, only a
// dapp-scoped reference pair recorded for off-chain settlement.
type outTransferHandler struct{}

func (outTransferHandler) Verify(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset, ok := tx.Asset.(types.OutTransferAsset)
	if !ok {
		return types.NewValidationError("out_transfer: wrong asset type")
	}
	if asset.DappID == "" || asset.TransactionID == "" {
		return types.NewValidationError("out_transfer: dappId and transactionId are required")
	}
	return nil
}

func (outTransferHandler) VerifyUnconfirmed(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	return nil
}

func (outTransferHandler) CalculateFee(ctx *Context, tx *types.Transaction, sender *types.Account) uint64 {
	return ctx.Fees.Send
}

func (outTransferHandler) GetBytes(tx *types.Transaction) []byte { return types.GetBytes(tx) }

func (outTransferHandler) ApplyUnconfirmedAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	return nil
}

func (outTransferHandler) UndoUnconfirmedAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	return nil
}

func (outTransferHandler) ApplyAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	return nil
}

func (outTransferHandler) UndoAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	return nil
}

func (outTransferHandler) Ready(tx *types.Transaction, sender *types.Account) bool {
	return !sender.IsMultisig() || len(tx.SecondSignature) > 0
}

func (outTransferHandler) ObjectNormalize(tx *types.Transaction) {}

func (outTransferHandler) DbRead(row map[string]interface{}) (types.Asset, error) {
	var asset types.OutTransferAsset
	if err := rowToAsset(row, &asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (outTransferHandler) DbSave(tx *types.Transaction) (map[string]interface{}, error) {
	return assetToRow(tx.Asset)
}
