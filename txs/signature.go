package txs

import "forgechain/types"

// signatureHandler registers a second Ed25519 public key on the
// account (§3: SIGNATURE transactions). It has no balance-affecting
// asset effect beyond the dispatcher's generic fee debit.
type signatureHandler struct{}

func (signatureHandler) Verify(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset, ok := tx.Asset.(types.SignatureAsset)
	if !ok {
		return types.NewValidationError("signature: wrong asset type")
	}
	if len(asset.PublicKey) != 32 {
		return types.NewValidationError("signature: publicKey must be 32 bytes")
	}
	return nil
}

func (signatureHandler) VerifyUnconfirmed(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	if sender.SecondPublicKey != nil {
		return types.NewValidationError("signature: account already has a second public key")
	}
	return nil
}

func (signatureHandler) CalculateFee(ctx *Context, tx *types.Transaction, sender *types.Account) uint64 {
	return ctx.Fees.Signature
}

func (signatureHandler) GetBytes(tx *types.Transaction) []byte { return types.GetBytes(tx) }

func (signatureHandler) ApplyUnconfirmedAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	return nil
}

func (signatureHandler) UndoUnconfirmedAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	return nil
}

func (signatureHandler) ApplyAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset := tx.Asset.(types.SignatureAsset)
	sender.SecondPublicKey = append([]byte(nil), asset.PublicKey...)
	return nil
}

func (signatureHandler) UndoAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	sender.SecondPublicKey = nil
	return nil
}

func (signatureHandler) Ready(tx *types.Transaction, sender *types.Account) bool {
	return !sender.IsMultisig() || len(tx.SecondSignature) > 0
}

func (signatureHandler) ObjectNormalize(tx *types.Transaction) {}

func (signatureHandler) DbRead(row map[string]interface{}) (types.Asset, error) {
	var asset types.SignatureAsset
	if err := rowToAsset(row, &asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (signatureHandler) DbSave(tx *types.Transaction) (map[string]interface{}, error) {
	return assetToRow(tx.Asset)
}
