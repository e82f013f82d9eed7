package mempool

import (
	"crypto/ed25519"
	"testing"

	"forgechain/txs"
	"forgechain/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func signedSendTx(t *testing.T, priv ed25519.PrivateKey, to types.Address, amount uint64) *types.Transaction {
	pub := priv.Public().(ed25519.PublicKey)
	tx := &types.Transaction{
		Type:            types.TxSend,
		SenderPublicKey: []byte(pub),
		SenderAddress:   types.AddressFromPublicKey(pub),
		Fee:             1,
		Asset:           types.SendAsset{Recipient: to, Amount: amount},
	}
	tx.Signature = ed25519.Sign(priv, types.SigningBytes(tx))
	tx.ID = types.ComputeID(tx)
	return tx
}

func TestQueueDrainAdmitsValidTransaction(t *testing.T) {
	reg := newTestRegistry()
	ctx := &txs.Context{Registry: reg, Fees: txs.FeeSchedule{Send: 1}}
	d := txs.NewDefaultDispatcher()
	pool := NewPool(d, ctx, log.TestingLogger())
	queue := NewQueue(d, ctx, reg, pool, log.TestingLogger())

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	sender := reg.GetOrCreate(types.AddressFromPublicKey(pub))
	sender.UBalance = 100

	tx := signedSendTx(t, priv, testAddr(9), 10)
	queue.Enqueue(tx)
	queue.Drain()

	assert.True(t, pool.Has(tx.ID))
	assert.Equal(t, 0, queue.Len())
}

func TestQueueDrainDropsBadSignature(t *testing.T) {
	reg := newTestRegistry()
	ctx := &txs.Context{Registry: reg, Fees: txs.FeeSchedule{Send: 1}}
	d := txs.NewDefaultDispatcher()
	pool := NewPool(d, ctx, log.TestingLogger())
	queue := NewQueue(d, ctx, reg, pool, log.TestingLogger())

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	_ = priv
	tx := signedSendTx(t, priv, testAddr(9), 10)
	tx.Signature[0] ^= 0xFF

	reg.GetOrCreate(types.AddressFromPublicKey(pub)).UBalance = 100
	queue.Enqueue(tx)
	queue.Drain()

	assert.False(t, pool.Has(tx.ID))
}
