package types

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// CurrentBlockVersion is the configured constant from §6.
const CurrentBlockVersion = uint32(1)

// Block is the append-only chain's unit of consensus (§3 Data model).
// Field names follow the external interface's wire vocabulary directly
// so JSON round-trips without translation.
type Block struct {
	ID                 string `json:"id"`
	Version            uint32 `json:"version"`
	Height             uint64 `json:"height"`
	PreviousBlockID    string `json:"previousBlockId,omitempty"`
	CreatedAt          int32  `json:"createdAt"`
	GeneratorPublicKey []byte `json:"generatorPublicKey"`
	Signature          []byte `json:"signature"`
	PayloadHash        []byte `json:"payloadHash"`
	TransactionCount   uint32 `json:"transactionCount"`
	Amount             uint64 `json:"amount"`
	Fee                uint64 `json:"fee"`
	Transactions       Txs    `json:"transactions"`
}

// ValidateBasic checks the structural invariants that require no
// external state: the block must already carry an id and signature.
func (b *Block) ValidateBasic() error {
	if b == nil {
		return NewValidationError("block is nil")
	}
	if len(b.ID) == 0 {
		return NewValidationError("block had no id")
	}
	if len(b.Signature) != 64 {
		return NewValidationError("block had no signature")
	}
	if b.Height > 1 && b.PreviousBlockID == "" {
		return NewValidationError("block height>1 must reference a previous block")
	}
	if b.Height == 1 && b.PreviousBlockID != "" {
		return NewValidationError("genesis block must not reference a previous block")
	}
	return nil
}

// GetBlockBytes produces the canonical byte layout of §6's "Block
// canonical byte layout": fixed portion, then hex-decoded fields, then
// the signature — unless skipSignature is set, in which case the
// signature is omitted (the bytes that are actually signed).
func GetBlockBytes(b *Block, skipSignature bool) []byte {
	buf := new(bytes.Buffer)

	var version [4]byte
	binary.LittleEndian.PutUint32(version[:], b.Version)
	buf.Write(version[:])

	var createdAt [4]byte
	binary.LittleEndian.PutUint32(createdAt[:], uint32(b.CreatedAt))
	buf.Write(createdAt[:])

	var txCount [4]byte
	binary.LittleEndian.PutUint32(txCount[:], b.TransactionCount)
	buf.Write(txCount[:])

	var amount [8]byte
	binary.LittleEndian.PutUint64(amount[:], b.Amount)
	buf.Write(amount[:])

	var fee [8]byte
	binary.LittleEndian.PutUint64(fee[:], b.Fee)
	buf.Write(fee[:])

	if b.PreviousBlockID != "" {
		if prev, err := hex.DecodeString(b.PreviousBlockID); err == nil {
			buf.Write(prev)
		}
	}

	buf.Write(b.PayloadHash)
	buf.Write(b.GeneratorPublicKey)

	if !skipSignature {
		buf.Write(b.Signature)
	}

	return buf.Bytes()
}

// SigningHash is SHA256(GetBlockBytes(b, skipSignature=true)) — what
// the generator's signature is computed over (§3 invariant).
func SigningHash(b *Block) []byte {
	sum := sha256.Sum256(GetBlockBytes(b, true))
	return sum[:]
}

// ComputeBlockID is SHA256(GetBlockBytes(b, skipSignature=false))
// hex-encoded (§3 invariant: id == SHA256(serialize(block))).
func ComputeBlockID(b *Block) string {
	sum := sha256.Sum256(GetBlockBytes(b, false))
	return hex.EncodeToString(sum[:])
}

// VerifyBlockSignature checks the Ed25519 signature against the block's
// generatorPublicKey (§8 invariant 1).
func VerifyBlockSignature(b *Block) bool {
	if len(b.GeneratorPublicKey) != ed25519.PublicKeySize || len(b.Signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(b.GeneratorPublicKey, SigningHash(b), b.Signature)
}
