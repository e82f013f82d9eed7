package txs

import "forgechain/types"

// registerHandler installs a multisignature keys group on the sender's
// account (§3 Account.multisignatures/multimin, §4.3 ready()).
type registerHandler struct{}

func (registerHandler) Verify(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset, ok := tx.Asset.(types.RegisterAsset)
	if !ok {
		return types.NewValidationError("register: wrong asset type")
	}
	if len(asset.Keysgroup) == 0 {
		return types.NewValidationError("register: keysgroup must not be empty")
	}
	if asset.Min <= 0 || asset.Min > len(asset.Keysgroup) {
		return types.NewValidationError("register: min must be between 1 and len(keysgroup)")
	}
	for _, k := range asset.Keysgroup {
		if len(k) != 32 {
			return types.NewValidationError("register: each keysgroup entry must be 32 bytes")
		}
	}
	return nil
}

func (registerHandler) VerifyUnconfirmed(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	if sender.IsMultisig() {
		return types.NewValidationError("register: account already has a multisignature group")
	}
	return nil
}

func (registerHandler) CalculateFee(ctx *Context, tx *types.Transaction, sender *types.Account) uint64 {
	return ctx.Fees.Register
}

func (registerHandler) GetBytes(tx *types.Transaction) []byte { return types.GetBytes(tx) }

func (registerHandler) ApplyUnconfirmedAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	return nil
}

func (registerHandler) UndoUnconfirmedAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	return nil
}

func (registerHandler) ApplyAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	asset := tx.Asset.(types.RegisterAsset)
	sender.Multisignatures = make([][]byte, len(asset.Keysgroup))
	for i, k := range asset.Keysgroup {
		sender.Multisignatures[i] = append([]byte(nil), k...)
	}
	sender.Multimin = asset.Min
	return nil
}

func (registerHandler) UndoAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	sender.Multisignatures = nil
	sender.Multimin = 0
	return nil
}

// Ready always requires the registering transaction itself to carry the
// founding signature directly; the multisig group it is creating cannot
// yet be used to authorize its own creation.
func (registerHandler) Ready(tx *types.Transaction, sender *types.Account) bool {
	return true
}

func (registerHandler) ObjectNormalize(tx *types.Transaction) {}

func (registerHandler) DbRead(row map[string]interface{}) (types.Asset, error) {
	var asset types.RegisterAsset
	if err := rowToAsset(row, &asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (registerHandler) DbSave(tx *types.Transaction) (map[string]interface{}, error) {
	return assetToRow(tx.Asset)
}
