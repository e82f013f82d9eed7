// Package privval manages a delegate's signing key: an Ed25519
// keypair persisted to disk with atomic writes, grounded on the
// teacher's FilePVKey/FilePV (privval/file.go) but stripped to plain
// Ed25519 — the teacher's BLS/threshold-signature key generation
// (crypto/bls, crypto/threshold) exists to let a single logical
// validator identity be split across a committee with a signing
// threshold, a BFT-committee concept this DPoS spec has no use for:
// one delegate signs with one Ed25519 key (§3 Account/Delegate,
// §6 canonical bytes).
package privval

import (
	"crypto/ed25519"
	"fmt"
	"os"

	"forgechain/types"

	tmjson "github.com/tendermint/tendermint/libs/json"
	tmos "github.com/tendermint/tendermint/libs/os"
	"github.com/tendermint/tendermint/libs/tempfile"
)

// FilePVKey is the immutable, persisted part of a delegate's identity.
type FilePVKey struct {
	Address    types.Address     `json:"address"`
	PublicKey  ed25519.PublicKey `json:"public_key"`
	PrivateKey ed25519.PrivateKey `json:"private_key"`

	filePath string
}

// Save persists the key atomically, mirroring the teacher's
// tempfile.WriteFileAtomic-backed FilePVKey.Save.
func (k FilePVKey) Save() {
	if k.filePath == "" {
		panic("cannot save delegate key: filePath not set")
	}
	jsonBytes, err := tmjson.MarshalIndent(k, "", "  ")
	if err != nil {
		panic(err)
	}
	if err := tempfile.WriteFileAtomic(k.filePath, jsonBytes, 0600); err != nil {
		panic(err)
	}
}

// FilePV is a delegate's on-disk signing identity: an Ed25519 keypair
// plus the address it derives to (§3: "address ... derived from a
// public key").
type FilePV struct {
	Key FilePVKey
}

// NewFilePV wraps an existing private key with the given file path.
func NewFilePV(priv ed25519.PrivateKey, keyFilePath string) *FilePV {
	pub := priv.Public().(ed25519.PublicKey)
	return &FilePV{
		Key: FilePVKey{
			Address:    types.AddressFromPublicKey(pub),
			PublicKey:  pub,
			PrivateKey: priv,
			filePath:   keyFilePath,
		},
	}
}

// GenFilePV generates a new delegate identity but does not save it.
func GenFilePV(keyFilePath string) *FilePV {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return NewFilePV(priv, keyFilePath)
}

// LoadFilePV loads a delegate identity from keyFilePath. If the file
// does not exist or fails to parse, the process exits, matching the
// teacher's tmos.Exit-on-bad-key behavior (a node cannot run without a
// readable identity).
func LoadFilePV(keyFilePath string) *FilePV {
	return loadFilePV(keyFilePath)
}

func loadFilePV(keyFilePath string) *FilePV {
	keyJSONBytes, err := os.ReadFile(keyFilePath)
	if err != nil {
		tmos.Exit(err.Error())
	}

	var key FilePVKey
	if err := tmjson.Unmarshal(keyJSONBytes, &key); err != nil {
		tmos.Exit(fmt.Sprintf("error reading delegate key from %v: %v\n", keyFilePath, err))
	}

	key.PublicKey = key.PrivateKey.Public().(ed25519.PublicKey)
	key.Address = types.AddressFromPublicKey(key.PublicKey)
	key.filePath = keyFilePath

	return &FilePV{Key: key}
}

// LoadOrGenFilePV loads an identity from keyFilePath, or generates and
// saves a new one if none exists yet.
func LoadOrGenFilePV(keyFilePath string) *FilePV {
	if tmos.FileExists(keyFilePath) {
		return LoadFilePV(keyFilePath)
	}
	pv := GenFilePV(keyFilePath)
	pv.Save()
	return pv
}

// GetAddress returns the delegate's address.
func (pv *FilePV) GetAddress() types.Address { return pv.Key.Address }

// GetPublicKey returns the delegate's public key.
func (pv *FilePV) GetPublicKey() ed25519.PublicKey { return pv.Key.PublicKey }

// KeyPair returns the types.KeyPair C7 needs to sign a generated
// block (blockchain.Service.Create/AddPayloadHash).
func (pv *FilePV) KeyPair() *types.KeyPair {
	return &types.KeyPair{PublicKey: pv.Key.PublicKey, PrivateKey: pv.Key.PrivateKey}
}

// Save persists the identity to disk.
func (pv *FilePV) Save() { pv.Key.Save() }

func (pv *FilePV) String() string {
	return fmt.Sprintf("FilePV{%v}", pv.GetAddress())
}
