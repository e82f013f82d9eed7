package config

import (
	"encoding/hex"
	"os"
	"time"

	"forgechain/types"

	tmjson "github.com/tendermint/tendermint/libs/json"
	"github.com/tendermint/tendermint/libs/tempfile"
)

// GenesisDoc is the file a fresh node loads to seed C2/C7's genesis
// block (§4.7.10), grounded on the teacher's use of tendermint-style
// genesis files (tmjson.MarshalIndent + tempfile.WriteFileAtomic,
// the same persistence idiom `privval.FilePVKey.Save` uses) rather
// than the teacher's own BLS-threshold cluster GenesisDoc
// (chainbft_demo/types.GenesisDoc, built around a quorum-signed
// primary validator key) — this chain has no validator committee to
// bootstrap, only a starting set of accounts and the active delegate
// schedule (§3 Round invariant: "a round of N active delegates").
type GenesisDoc struct {
	ChainID     string    `json:"chain_id"`
	GenesisTime time.Time `json:"genesis_time"`

	// ActiveDelegates are the public keys eligible to produce blocks,
	// hex-encoded for JSON (mirrors Delegate.PublicKey's §3 shape).
	ActiveDelegates []HexBytes `json:"active_delegates"`

	// Transactions seeds the accounts applyGenesisBlock pre-registers
	// (§4.7.10) before processing the unverified genesis block.
	Transactions types.Txs `json:"transactions"`
}

// HexBytes is a []byte that marshals as a hex string, matching the
// canonical hex encoding §6 uses for public keys and ids elsewhere in
// this codebase.
type HexBytes []byte

func (h HexBytes) MarshalJSON() ([]byte, error) {
	return []byte(`"` + hex.EncodeToString(h) + `"`), nil
}

func (h *HexBytes) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		*h = nil
		return nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*h = b
	return nil
}

// ActiveDelegatePublicKeys flattens ActiveDelegates back to the
// [][]byte shape blockchain.NewService expects.
func (doc *GenesisDoc) ActiveDelegatePublicKeys() [][]byte {
	out := make([][]byte, len(doc.ActiveDelegates))
	for i, pk := range doc.ActiveDelegates {
		out[i] = []byte(pk)
	}
	return out
}

// SaveAs persists the genesis doc atomically.
func (doc *GenesisDoc) SaveAs(file string) error {
	jsonBytes, err := tmjson.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return tempfile.WriteFileAtomic(file, jsonBytes, 0644)
}

// GenesisDocFromFile reads and parses a genesis doc from disk.
func GenesisDocFromFile(genDocFile string) (*GenesisDoc, error) {
	jsonBlob, err := os.ReadFile(genDocFile)
	if err != nil {
		return nil, err
	}
	doc := new(GenesisDoc)
	if err := tmjson.Unmarshal(jsonBlob, doc); err != nil {
		return nil, err
	}
	if doc.GenesisTime.IsZero() {
		doc.GenesisTime = time.Now()
	}
	return doc, nil
}
