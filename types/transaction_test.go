package types

import (
	"crypto/ed25519"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedSendTransaction(t *testing.T, pub ed25519.PublicKey, priv ed25519.PrivateKey, recipient Address, amount uint64) *Transaction {
	t.Helper()
	tx := &Transaction{
		Type:            TxSend,
		SenderPublicKey: pub,
		SenderAddress:   AddressFromPublicKey(pub),
		Fee:             10,
		CreatedAt:       100,
		Asset:           SendAsset{Recipient: recipient, Amount: amount},
	}
	tx.Signature = ed25519.Sign(priv, SigningBytes(tx))
	tx.ID = ComputeID(tx)
	return tx
}

func TestVerifySignatureAcceptsProperlySignedTransaction(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	tx := signedSendTransaction(t, pub, priv, AddressFromPublicKey([]byte("recipient-placeholder-00000000!")), 42)
	assert.True(t, VerifySignature(tx))
}

func TestVerifySignatureRejectsTamperedAmount(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	tx := signedSendTransaction(t, pub, priv, Address{}, 42)
	tx.Asset = SendAsset{Recipient: Address{}, Amount: 43}
	assert.False(t, VerifySignature(tx))
}

func TestTransactionJSONRoundTripsPolymorphicAsset(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	original := signedSendTransaction(t, pub, priv, Address{}, 7)

	bz, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Transaction
	require.NoError(t, json.Unmarshal(bz, &decoded))

	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.Type, decoded.Type)
	require.IsType(t, SendAsset{}, decoded.Asset)
	assert.Equal(t, original.Asset.(SendAsset).Amount, decoded.Asset.(SendAsset).Amount)
	assert.True(t, VerifySignature(&decoded))
}

func TestSortTransactionsOrdersByTypeThenCreatedAtThenID(t *testing.T) {
	txs := []*Transaction{
		{Type: TxVote, CreatedAt: 1, ID: "b"},
		{Type: TxSend, CreatedAt: 5, ID: "a"},
		{Type: TxSend, CreatedAt: 1, ID: "c"},
	}
	SortTransactions(txs)

	assert.Equal(t, []string{"c", "a", "b"}, []string{txs[0].ID, txs[1].ID, txs[2].ID})
}
