package txs

import (
	"strings"

	"forgechain/types"
)

// delegateHandler registers the sender's account as a block-producing
// delegate under a unique username (§3, GLOSSARY).
type delegateHandler struct{}

func (delegateHandler) Verify(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset, ok := tx.Asset.(types.DelegateAsset)
	if !ok {
		return types.NewValidationError("delegate: wrong asset type")
	}
	return types.ValidateUsername(asset.Username)
}

func (delegateHandler) VerifyUnconfirmed(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset := tx.Asset.(types.DelegateAsset)
	if sender.Delegate != nil {
		return types.NewValidationError("delegate: account already registered as a delegate")
	}
	if ctx.Registry.UsernameTaken(asset.Username) {
		return types.NewValidationError("delegate: username already taken")
	}
	return nil
}

func (delegateHandler) CalculateFee(ctx *Context, tx *types.Transaction, sender *types.Account) uint64 {
	return ctx.Fees.Delegate
}

func (delegateHandler) GetBytes(tx *types.Transaction) []byte { return types.GetBytes(tx) }

func (delegateHandler) ApplyUnconfirmedAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	return nil
}

func (delegateHandler) UndoUnconfirmedAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	return nil
}

func (delegateHandler) ApplyAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset := tx.Asset.(types.DelegateAsset)
	ctx.Registry.AttachDelegate(sender, &types.Delegate{
		Username:  asset.Username,
		PublicKey: append([]byte(nil), sender.PublicKey...),
	})
	return nil
}

func (delegateHandler) UndoAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	ctx.Registry.AttachDelegate(sender, nil)
	return nil
}

func (delegateHandler) Ready(tx *types.Transaction, sender *types.Account) bool {
	return !sender.IsMultisig() || len(tx.SecondSignature) > 0
}

// ObjectNormalize trims and lowercases Username before Verify/
// VerifyUnconfirmed run, so "Alice " and "alice" collide at
// UsernameTaken the same way they would on a case-insensitive unique
// index (§4.3 [EXPANDED — C3]).
func (delegateHandler) ObjectNormalize(tx *types.Transaction) {
	asset, ok := tx.Asset.(types.DelegateAsset)
	if !ok {
		return
	}
	asset.Username = strings.ToLower(strings.TrimSpace(asset.Username))
	tx.Asset = asset
}

func (delegateHandler) DbRead(row map[string]interface{}) (types.Asset, error) {
	var asset types.DelegateAsset
	if err := rowToAsset(row, &asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (delegateHandler) DbSave(tx *types.Transaction) (map[string]interface{}, error) {
	return assetToRow(tx.Asset)
}
