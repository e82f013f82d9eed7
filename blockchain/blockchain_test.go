package blockchain

import (
	"crypto/ed25519"
	"testing"

	"forgechain/config"
	"forgechain/eventbus"
	"forgechain/mempool"
	"forgechain/slot"
	"forgechain/state"
	"forgechain/store"
	"forgechain/txs"
	"forgechain/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tm-db/memdb"
)

type harness struct {
	svc      *Service
	accounts *state.Accounts
	pool     *mempool.Pool
	queue    *mempool.Queue
	window   *store.Window
	bus      *eventbus.Bus
}

func newHarness(t *testing.T, generatorPub ed25519.PublicKey) *harness {
	t.Helper()

	params := config.DefaultChainParams()
	params.MaxTransactionsPerBlock = 10
	params.MinRoundBlockHeight = 1

	accounts := state.NewAccounts()
	dispatcher := txs.NewDefaultDispatcher()
	ctx := &txs.Context{Registry: accounts, Fees: txs.FeeSchedule{Send: 1}}
	pool := mempool.NewPool(dispatcher, ctx, log.TestingLogger())
	queue := mempool.NewQueue(dispatcher, ctx, accounts, pool, log.TestingLogger())
	window := store.NewWindow(params.MaxBlockInMemory)
	durable := store.NewDurableWithDB(memdb.NewDB(), log.TestingLogger())
	slotSvc := slot.NewService(params, log.TestingLogger())
	bus := eventbus.New()
	require.NoError(t, bus.Start())

	svc := NewService(params, accounts, dispatcher, ctx, pool, queue, window, durable, slotSvc, bus, [][]byte{generatorPub}, log.TestingLogger())

	errs := svc.ApplyGenesisBlock(nil)
	require.Empty(t, errs)

	return &harness{svc: svc, accounts: accounts, pool: pool, queue: queue, window: window, bus: bus}
}

func sendTx(from types.Address, to types.Address, amount, fee uint64) *types.Transaction {
	return &types.Transaction{
		Type:          types.TxSend,
		SenderAddress: from,
		Fee:           fee,
		Asset:         types.SendAsset{Recipient: to, Amount: amount},
	}
}

func addr(b byte) types.Address {
	var a types.Address
	a[len(a)-1] = b
	return a
}

func TestApplyGenesisBlockSeedsWindow(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	h := newHarness(t, pub)

	last := h.window.GetLast()
	require.NotNil(t, last)
	assert.Equal(t, uint64(1), last.Height)
}

func TestGenerateBlockAppliesPooledTransaction(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	h := newHarness(t, pub)

	sender := h.accounts.GetOrCreate(addr(1))
	sender.Balance = 1000
	sender.UBalance = 1000

	tx := sendTx(addr(1), addr(2), 100, 1)
	require.NoError(t, h.pool.Push(tx, sender))

	errs := h.svc.GenerateBlock(10, &types.KeyPair{PublicKey: pub, PrivateKey: priv})
	require.Empty(t, errs)

	last := h.window.GetLast()
	require.NotNil(t, last)
	assert.Equal(t, uint64(2), last.Height)
	assert.Len(t, last.Transactions, 1)

	recipient, ok := h.accounts.GetByAddress(addr(2))
	require.True(t, ok)
	assert.Equal(t, uint64(100), recipient.Balance)
	assert.Equal(t, uint64(899), sender.Balance)
}

func TestDeleteLastBlockUndoesTransactions(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	h := newHarness(t, pub)

	sender := h.accounts.GetOrCreate(addr(1))
	sender.Balance = 1000
	sender.UBalance = 1000

	tx := sendTx(addr(1), addr(2), 100, 1)
	require.NoError(t, h.pool.Push(tx, sender))
	require.Empty(t, h.svc.GenerateBlock(10, &types.KeyPair{PublicKey: pub, PrivateKey: priv}))

	require.NoError(t, h.svc.DeleteLastBlock())

	last := h.window.GetLast()
	require.NotNil(t, last)
	assert.Equal(t, uint64(1), last.Height)

	assert.Equal(t, uint64(1000), sender.Balance)
	recipient, ok := h.accounts.GetByAddress(addr(2))
	if ok {
		assert.Equal(t, uint64(0), recipient.Balance)
	}
}

func TestValidateReceivedBlockRejectsAlreadyProcessed(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	h := newHarness(t, pub)

	last := h.window.GetLast()
	err = h.svc.ValidateReceivedBlock(last)
	require.Error(t, err)
}

func TestValidateReceivedBlockAcceptsImmediateNext(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	h := newHarness(t, pub)

	last := h.window.GetLast()
	next := h.svc.Create(nil, 10, last, &types.KeyPair{PublicKey: pub, PrivateKey: priv})

	assert.NoError(t, h.svc.ValidateReceivedBlock(next))
}
