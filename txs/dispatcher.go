// Package txs implements C3, the type-indexed transaction dispatcher
// (§4.3): one handler per transaction type, looked up from a table by
// TxType and driven through a uniform capability set so callers never
// type-switch on the transaction themselves.
package txs

import (
	"forgechain/types"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Registry is the account-lookup surface a handler needs. It is
// satisfied structurally by state.Accounts (§4.2) — this package never
// imports the state package, and state does not import txs either, so
// the two stay decoupled.
type Registry interface {
	GetByAddress(addr types.Address) (*types.Account, bool)
	GetByPublicKey(pub []byte) (*types.Account, bool)
	GetOrCreate(addr types.Address) *types.Account
	UsernameTaken(username string) bool
	AttachDelegate(account *types.Account, delegate *types.Delegate)
}

// FeeSchedule is the configured constants of §6 ("fees.{send, vote,
// stake, delegate, signature, register}").
type FeeSchedule struct {
	Send      uint64
	Vote      uint64
	Stake     uint64
	Delegate  uint64
	Signature uint64
	Register  uint64
}

// Context bundles the collaborators a handler call needs, so the
// Handler interface doesn't grow a parameter per dependency.
type Context struct {
	Registry Registry
	Fees     FeeSchedule
}

// Handler is the per-type capability set described in §4.3. The
// dispatcher (below) owns the capabilities common to every type — fee
// debit/credit against balance/u_balance — so each handler implements
// only its asset-specific slice of verify/apply/undo.
type Handler interface {
	// Verify checks the asset's structural correctness (§4.3); the
	// dispatcher verifies the signature before calling it.
	Verify(ctx *Context, tx *types.Transaction, sender *types.Account) error

	// VerifyUnconfirmed checks against current unconfirmed state:
	// balance sufficiency, uniqueness, absence of forbidden conflicts.
	VerifyUnconfirmed(ctx *Context, tx *types.Transaction, sender *types.Account) error

	// CalculateFee returns the fee this transaction owes. It receives
	// sender so a handler can price by sender state; every stock
	// handler, VOTE included, returns a flat fee from ctx.Fees.
	CalculateFee(ctx *Context, tx *types.Transaction, sender *types.Account) uint64

	// GetBytes produces the canonical byte encoding used in id and
	// signature computation (§4.3, §6).
	GetBytes(tx *types.Transaction) []byte

	// ApplyUnconfirmedAsset mutates unconfirmed secondary state beyond
	// the generic fee debit the dispatcher already applies.
	ApplyUnconfirmedAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error

	// UndoUnconfirmedAsset is ApplyUnconfirmedAsset's exact inverse.
	UndoUnconfirmedAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error

	// ApplyAsset mutates confirmed secondary state beyond the generic
	// fee debit the dispatcher already applies.
	ApplyAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error

	// UndoAsset is ApplyAsset's exact inverse.
	UndoAsset(ctx *Context, tx *types.Transaction, sender *types.Account) error

	// Ready reports whether sender's multisig quorum (if any) is
	// satisfied for this transaction.
	Ready(tx *types.Transaction, sender *types.Account) bool

	// ObjectNormalize canonicalizes a wire-decoded transaction's asset
	// before Verify runs (§4.3 [EXPANDED — C3]) — e.g. case/whitespace
	// the wire format lets through but the domain treats as equivalent.
	// Most handlers have nothing to normalize.
	ObjectNormalize(tx *types.Transaction)

	// DbRead maps a row of asset-specific columns from the external SQL
	// repository (e.g. a trs_votes table for VOTE) into this type's
	// Asset (§4.3 [EXPANDED — C3]). The repository itself is out of
	// scope; this is the seam a real one would call through.
	DbRead(row map[string]interface{}) (types.Asset, error)

	// DbSave is DbRead's exact inverse.
	DbSave(tx *types.Transaction) (map[string]interface{}, error)
}

// assetToRow and rowToAsset are the generic marshal/unmarshal the stock
// handlers' DbSave/DbRead delegate to: every Asset struct already
// carries the json tags a SQL repository's column mapping would use.
func assetToRow(asset types.Asset) (map[string]interface{}, error) {
	bz, err := jsoniter.Marshal(asset)
	if err != nil {
		return nil, err
	}
	row := make(map[string]interface{})
	if err := jsoniter.Unmarshal(bz, &row); err != nil {
		return nil, err
	}
	return row, nil
}

func rowToAsset(row map[string]interface{}, out interface{}) error {
	bz, err := jsoniter.Marshal(row)
	if err != nil {
		return err
	}
	return jsoniter.Unmarshal(bz, out)
}

// Dispatcher is the type-indexed table of handlers (§4.3).
type Dispatcher struct {
	handlers map[types.TxType]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[types.TxType]Handler)}
}

// NewDefaultDispatcher registers the stock handler set.
func NewDefaultDispatcher() *Dispatcher {
	d := NewDispatcher()
	d.Register(types.TxSend, &sendHandler{})
	d.Register(types.TxSignature, &signatureHandler{})
	d.Register(types.TxDelegate, &delegateHandler{})
	d.Register(types.TxVote, &voteHandler{})
	d.Register(types.TxRegister, &registerHandler{})
	d.Register(types.TxStake, &stakeHandler{})
	d.Register(types.TxOutTransfer, &outTransferHandler{})
	return d
}

func (d *Dispatcher) Register(t types.TxType, h Handler) {
	d.handlers[t] = h
}

func (d *Dispatcher) Get(t types.TxType) (Handler, bool) {
	h, ok := d.handlers[t]
	return h, ok
}

var ErrUnknownTransactionType = errors.New("txs: unknown transaction type")

func (d *Dispatcher) handlerFor(tx *types.Transaction) (Handler, error) {
	h, ok := d.handlers[tx.Type]
	if !ok {
		return nil, ErrUnknownTransactionType
	}
	return h, nil
}

// Verify checks the signature and address-derivation invariant common
// to every type (§3 Transaction invariant), then dispatches to the
// type's Verify for its asset-specific structural checks.
func (d *Dispatcher) Verify(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	h, err := d.handlerFor(tx)
	if err != nil {
		return err
	}
	if !types.VerifySignature(tx) {
		return types.NewVerificationError("transaction signature does not verify")
	}
	return h.Verify(ctx, tx, sender)
}

// VerifyUnconfirmed dispatches to the type's VerifyUnconfirmed after
// the one check common to every type: u_balance must cover the fee.
func (d *Dispatcher) VerifyUnconfirmed(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	h, err := d.handlerFor(tx)
	if err != nil {
		return err
	}
	if sender.UBalance < tx.Fee {
		return types.NewValidationError("sender u_balance insufficient for fee")
	}
	return h.VerifyUnconfirmed(ctx, tx, sender)
}

// CalculateFee dispatches to the type's CalculateFee.
func (d *Dispatcher) CalculateFee(ctx *Context, tx *types.Transaction, sender *types.Account) uint64 {
	h, err := d.handlerFor(tx)
	if err != nil {
		return 0
	}
	return h.CalculateFee(ctx, tx, sender)
}

// GetBytes dispatches to the type's GetBytes, falling back to the
// type-agnostic common encoding (types.GetBytes) if no handler is
// registered — every stock handler simply delegates to it.
func (d *Dispatcher) GetBytes(tx *types.Transaction) []byte {
	if h, ok := d.handlers[tx.Type]; ok {
		return h.GetBytes(tx)
	}
	return types.GetBytes(tx)
}

// ApplyUnconfirmed debits the fee from sender.UBalance then applies the
// type's asset-specific unconfirmed effect (§4.5 invariant: for every
// trs in pool, u_balance reflects the effect of its applyUnconfirmed).
func (d *Dispatcher) ApplyUnconfirmed(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	h, err := d.handlerFor(tx)
	if err != nil {
		return err
	}
	sender.UBalance -= tx.Fee
	if err := h.ApplyUnconfirmedAsset(ctx, tx, sender); err != nil {
		sender.UBalance += tx.Fee
		return err
	}
	return nil
}

// UndoUnconfirmed is ApplyUnconfirmed's exact inverse.
func (d *Dispatcher) UndoUnconfirmed(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	h, err := d.handlerFor(tx)
	if err != nil {
		return err
	}
	if err := h.UndoUnconfirmedAsset(ctx, tx, sender); err != nil {
		return err
	}
	sender.UBalance += tx.Fee
	return nil
}

// Apply debits the fee from sender.Balance then applies the type's
// asset-specific confirmed effect.
func (d *Dispatcher) Apply(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	h, err := d.handlerFor(tx)
	if err != nil {
		return err
	}
	sender.Balance -= tx.Fee
	if err := h.ApplyAsset(ctx, tx, sender); err != nil {
		sender.Balance += tx.Fee
		return err
	}
	return nil
}

// Undo is Apply's exact inverse.
func (d *Dispatcher) Undo(ctx *Context, tx *types.Transaction, sender *types.Account) error {
	h, err := d.handlerFor(tx)
	if err != nil {
		return err
	}
	if err := h.UndoAsset(ctx, tx, sender); err != nil {
		return err
	}
	sender.Balance += tx.Fee
	return nil
}

// Ready dispatches to the type's Ready.
func (d *Dispatcher) Ready(tx *types.Transaction, sender *types.Account) bool {
	h, ok := d.handlers[tx.Type]
	if !ok {
		return false
	}
	return h.Ready(tx, sender)
}

// ObjectNormalize dispatches to the type's ObjectNormalize, a no-op for
// an unregistered type (Verify's handlerFor lookup will reject it).
func (d *Dispatcher) ObjectNormalize(tx *types.Transaction) {
	if h, ok := d.handlers[tx.Type]; ok {
		h.ObjectNormalize(tx)
	}
}

// DbSave dispatches to the type's DbSave.
func (d *Dispatcher) DbSave(tx *types.Transaction) (map[string]interface{}, error) {
	h, err := d.handlerFor(tx)
	if err != nil {
		return nil, err
	}
	return h.DbSave(tx)
}

// DbRead dispatches to t's DbRead.
func (d *Dispatcher) DbRead(t types.TxType, row map[string]interface{}) (types.Asset, error) {
	h, ok := d.handlers[t]
	if !ok {
		return nil, ErrUnknownTransactionType
	}
	return h.DbRead(row)
}
