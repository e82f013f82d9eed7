package types

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
)

// TxType tags the polymorphic transaction variants dispatched by C3
// (§4.3). Values are ascending in the order transactionSortFunc uses as
// its primary key; the ordering itself is an implementation decision
// (§9 Open Questions do not pin one) recorded in DESIGN.md.
type TxType uint8

const (
	TxSend TxType = iota
	TxSignature
	TxDelegate
	TxVote
	TxRegister
	TxStake
	TxOutTransfer
)

func (t TxType) String() string {
	switch t {
	case TxSend:
		return "SEND"
	case TxSignature:
		return "SIGNATURE"
	case TxDelegate:
		return "DELEGATE"
	case TxVote:
		return "VOTE"
	case TxRegister:
		return "REGISTER"
	case TxStake:
		return "STAKE"
	case TxOutTransfer:
		return "OUT_TRANSFER"
	default:
		return "UNKNOWN"
	}
}

// TxStatus tracks a transaction's position in the lifecycle described
// in §3: CREATED → VALIDATED → QUEUED → PUT_IN_POOL →
// UNCONFIRM_APPLIED → (POP_FOR_BLOCK → CONFIRMED) or back to QUEUED.
type TxStatus uint8

const (
	StatusCreated TxStatus = iota
	StatusValidated
	StatusQueued
	StatusPutInPool
	StatusUnconfirmApplied
	StatusPopForBlock
	StatusConfirmed
)

// Asset is the type-discriminated payload of a Transaction (§3, §4.3).
// Each concrete asset type below satisfies it as a marker.
type Asset interface {
	assetType() TxType
}

type SendAsset struct {
	Recipient Address `json:"recipientAddress"`
	Amount    uint64  `json:"amount"`
	Data      string  `json:"data,omitempty"`
}

func (SendAsset) assetType() TxType { return TxSend }

type SignatureAsset struct {
	PublicKey []byte `json:"publicKey"`
}

func (SignatureAsset) assetType() TxType { return TxSignature }

type DelegateAsset struct {
	Username string `json:"username"`
}

func (DelegateAsset) assetType() TxType { return TxDelegate }

// VoteAsset adds/removes delegate votes. Reward and Unstake select
// whether Sponsors (the airdrop addresses, §4.5) are indexed as
// mempool recipients.
type VoteAsset struct {
	Added    []string  `json:"added,omitempty"`
	Removed  []string  `json:"removed,omitempty"`
	Reward   bool      `json:"reward"`
	Unstake  bool      `json:"unstake"`
	Sponsors []Address `json:"sponsors,omitempty"`
}

func (VoteAsset) assetType() TxType { return TxVote }

// RegisterAsset registers a multisignature keys group on the sender's
// account (§3 Account.multisignatures/multimin, §4.3 ready()).
type RegisterAsset struct {
	Keysgroup [][]byte `json:"keysgroup"`
	Min       int      `json:"min"`
}

func (RegisterAsset) assetType() TxType { return TxRegister }

// StakeAsset bonds Amount and indexes every sponsor as an airdrop
// recipient (§4.5).
type StakeAsset struct {
	Amount   uint64    `json:"amount"`
	Sponsors []Address `json:"sponsors,omitempty"`
}

func (StakeAsset) assetType() TxType { return TxStake }

// OutTransferAsset demonstrates the canonical-byte extensibility point
// named in §6 ("OUT_TRANSFER appends UTF-8 dappId then UTF-8
// transactionId").
type OutTransferAsset struct {
	DappID        string `json:"dappId"`
	TransactionID string `json:"transactionId"`
}

func (OutTransferAsset) assetType() TxType { return TxOutTransfer }

// Transaction is the wire/storage representation described in §3.
type Transaction struct {
	ID              string   `json:"id"`
	Type            TxType   `json:"type"`
	SenderPublicKey []byte   `json:"senderPublicKey"`
	SenderAddress   Address  `json:"senderAddress"`
	Fee             uint64   `json:"fee"`
	CreatedAt       int32    `json:"createdAt"`
	Signature       []byte   `json:"signature"`
	SecondSignature []byte   `json:"secondSignature,omitempty"`
	Asset           Asset    `json:"asset"`
	BlockID         string   `json:"blockId,omitempty"`
	Status          TxStatus `json:"status"`
}

// transactionWire is Transaction's on-the-wire shape: Asset is a
// type-tagged `interface{}` (§3), so it round-trips through JSON as a
// raw message that UnmarshalJSON dispatches on the sibling Type field
// before decoding into the matching concrete asset struct — the same
// "decode the discriminator first" idiom Go code reaches for whenever
// a sum type crosses a JSON boundary without a registry.
type transactionWire struct {
	ID              string          `json:"id"`
	Type            TxType          `json:"type"`
	SenderPublicKey []byte          `json:"senderPublicKey"`
	SenderAddress   Address         `json:"senderAddress"`
	Fee             uint64          `json:"fee"`
	CreatedAt       int32           `json:"createdAt"`
	Signature       []byte          `json:"signature"`
	SecondSignature []byte          `json:"secondSignature,omitempty"`
	Asset           json.RawMessage `json:"asset"`
	BlockID         string          `json:"blockId,omitempty"`
	Status          TxStatus        `json:"status"`
}

func (tx Transaction) MarshalJSON() ([]byte, error) {
	assetBytes, err := json.Marshal(tx.Asset)
	if err != nil {
		return nil, err
	}
	return json.Marshal(transactionWire{
		ID:              tx.ID,
		Type:            tx.Type,
		SenderPublicKey: tx.SenderPublicKey,
		SenderAddress:   tx.SenderAddress,
		Fee:             tx.Fee,
		CreatedAt:       tx.CreatedAt,
		Signature:       tx.Signature,
		SecondSignature: tx.SecondSignature,
		Asset:           assetBytes,
		BlockID:         tx.BlockID,
		Status:          tx.Status,
	})
}

func (tx *Transaction) UnmarshalJSON(data []byte) error {
	var wire transactionWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	asset, err := decodeAsset(wire.Type, wire.Asset)
	if err != nil {
		return err
	}

	tx.ID = wire.ID
	tx.Type = wire.Type
	tx.SenderPublicKey = wire.SenderPublicKey
	tx.SenderAddress = wire.SenderAddress
	tx.Fee = wire.Fee
	tx.CreatedAt = wire.CreatedAt
	tx.Signature = wire.Signature
	tx.SecondSignature = wire.SecondSignature
	tx.Asset = asset
	tx.BlockID = wire.BlockID
	tx.Status = wire.Status
	return nil
}

func decodeAsset(t TxType, raw json.RawMessage) (Asset, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch t {
	case TxSend:
		var a SendAsset
		err := json.Unmarshal(raw, &a)
		return a, err
	case TxSignature:
		var a SignatureAsset
		err := json.Unmarshal(raw, &a)
		return a, err
	case TxDelegate:
		var a DelegateAsset
		err := json.Unmarshal(raw, &a)
		return a, err
	case TxVote:
		var a VoteAsset
		err := json.Unmarshal(raw, &a)
		return a, err
	case TxRegister:
		var a RegisterAsset
		err := json.Unmarshal(raw, &a)
		return a, err
	case TxStake:
		var a StakeAsset
		err := json.Unmarshal(raw, &a)
		return a, err
	case TxOutTransfer:
		var a OutTransferAsset
		err := json.Unmarshal(raw, &a)
		return a, err
	default:
		return nil, errors.Errorf("transaction: unknown type %d", t)
	}
}

// ValidateBasic checks the structural invariants that do not require
// external state: type/asset agreement and presence of required fields.
func (tx *Transaction) ValidateBasic() error {
	if tx == nil {
		return NewValidationError("transaction is nil")
	}
	if len(tx.SenderPublicKey) != 32 {
		return NewValidationError("transaction: senderPublicKey must be 32 bytes")
	}
	if len(tx.Signature) != 64 {
		return NewValidationError("transaction: signature must be 64 bytes")
	}
	if tx.Asset == nil {
		return NewValidationError("transaction: missing asset")
	}
	if tx.Asset.assetType() != tx.Type {
		return NewValidationError("transaction: asset does not match declared type")
	}
	if da, ok := tx.Asset.(DelegateAsset); ok {
		if err := ValidateUsername(da.Username); err != nil {
			return NewValidationError(err.Error())
		}
	}
	return nil
}

// recipientForCommonPrefix resolves the 8-byte recipient slot of the
// common byte prefix (§6): the SEND recipient or STAKE's first sponsor
// for types that have one, and the zero address otherwise.
func (tx *Transaction) recipientForCommonPrefix() Address {
	switch a := tx.Asset.(type) {
	case SendAsset:
		return a.Recipient
	case StakeAsset:
		if len(a.Sponsors) > 0 {
			return a.Sponsors[0]
		}
	}
	return Address{}
}

// amountForCommonPrefix resolves the u64 amount slot of the common byte
// prefix: SEND/STAKE amount, zero otherwise.
func (tx *Transaction) amountForCommonPrefix() uint64 {
	switch a := tx.Asset.(type) {
	case SendAsset:
		return a.Amount
	case StakeAsset:
		return a.Amount
	}
	return 0
}

// GetBytes produces the canonical byte encoding used for tx.ID and
// signing (§6): common prefix, then asset-specific bytes, then the
// signature (present once the transaction has been signed).
func GetBytes(tx *Transaction) []byte {
	buf := new(bytes.Buffer)

	buf.WriteByte(byte(tx.Type))

	var createdAt [4]byte
	binary.LittleEndian.PutUint32(createdAt[:], uint32(tx.CreatedAt))
	buf.Write(createdAt[:])

	buf.Write(tx.SenderPublicKey)

	recipient := tx.recipientForCommonPrefix()
	buf.Write(recipient[:])

	var amount [8]byte
	binary.LittleEndian.PutUint64(amount[:], tx.amountForCommonPrefix())
	buf.Write(amount[:])

	writeAssetBytes(buf, tx.Asset)

	buf.Write(tx.Signature)

	return buf.Bytes()
}

func writeAssetBytes(buf *bytes.Buffer, asset Asset) {
	switch a := asset.(type) {
	case SendAsset:
		buf.WriteString(a.Data)
	case SignatureAsset:
		buf.Write(a.PublicKey)
	case DelegateAsset:
		buf.WriteString(a.Username)
	case VoteAsset:
		for _, v := range a.Added {
			buf.WriteByte('+')
			buf.WriteString(v)
		}
		for _, v := range a.Removed {
			buf.WriteByte('-')
			buf.WriteString(v)
		}
	case RegisterAsset:
		var min [4]byte
		binary.LittleEndian.PutUint32(min[:], uint32(a.Min))
		buf.Write(min[:])
		for _, k := range a.Keysgroup {
			buf.Write(k)
		}
	case StakeAsset:
		for _, s := range a.Sponsors {
			buf.Write(s[:])
		}
	case OutTransferAsset:
		buf.WriteString(a.DappID)
		buf.WriteString(a.TransactionID)
	}
}

// SigningBytes excludes the signature — the bytes actually signed.
func SigningBytes(tx *Transaction) []byte {
	saved := tx.Signature
	tx.Signature = nil
	bz := GetBytes(tx)
	tx.Signature = saved
	return bz
}

// ComputeID derives the transaction's id: hex(SHA256(GetBytes(tx))).
func ComputeID(tx *Transaction) string {
	sum := sha256.Sum256(GetBytes(tx))
	return hex.EncodeToString(sum[:])
}

// VerifySignature checks tx.Signature against tx.SenderPublicKey over
// SigningBytes(tx), and that tx.SenderAddress derives from
// tx.SenderPublicKey (§3 Transaction invariant: "address derives
// deterministically from public key").
func VerifySignature(tx *Transaction) bool {
	if len(tx.SenderPublicKey) != ed25519.PublicKeySize || len(tx.Signature) != ed25519.SignatureSize {
		return false
	}
	if AddressFromPublicKey(tx.SenderPublicKey) != tx.SenderAddress {
		return false
	}
	return ed25519.Verify(tx.SenderPublicKey, SigningBytes(tx), tx.Signature)
}

// Txs is an ordered list of transactions.
type Txs []*Transaction

// TransactionSortFunc is the stable ordering §4.3 requires the
// block-level driver to apply transactions in: type ascending, then
// createdAt ascending, then id lexicographic ascending.
func TransactionSortFunc(a, b *Transaction) bool {
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt < b.CreatedAt
	}
	return a.ID < b.ID
}

// SortTransactions sorts txs in place per TransactionSortFunc.
func SortTransactions(txs []*Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return TransactionSortFunc(txs[i], txs[j])
	})
}

// ErrDuplicateTransaction signals a duplicate id within a single block.
var ErrDuplicateTransaction = errors.New("duplicate transaction id in block")
