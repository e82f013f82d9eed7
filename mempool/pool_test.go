package mempool

import (
	"testing"

	"forgechain/txs"
	"forgechain/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

type testRegistry struct {
	accounts map[types.Address]*types.Account
}

func newTestRegistry() *testRegistry {
	return &testRegistry{accounts: make(map[types.Address]*types.Account)}
}

func (r *testRegistry) GetByAddress(addr types.Address) (*types.Account, bool) {
	a, ok := r.accounts[addr]
	return a, ok
}
func (r *testRegistry) GetByPublicKey(pub []byte) (*types.Account, bool) { return nil, false }
func (r *testRegistry) GetOrCreate(addr types.Address) *types.Account {
	if a, ok := r.accounts[addr]; ok {
		return a
	}
	a := types.NewAccount(addr)
	r.accounts[addr] = a
	return a
}
func (r *testRegistry) UsernameTaken(string) bool { return false }
func (r *testRegistry) AttachDelegate(a *types.Account, d *types.Delegate) { a.Delegate = d }

func testAddr(b byte) types.Address {
	var a types.Address
	a[len(a)-1] = b
	return a
}

func newTestPool() (*Pool, *testRegistry) {
	reg := newTestRegistry()
	ctx := &txs.Context{Registry: reg, Fees: txs.FeeSchedule{Send: 1}}
	d := txs.NewDefaultDispatcher()
	return NewPool(d, ctx, log.TestingLogger()), reg
}

func sendTx(id string, from types.Address, to types.Address, amount uint64) *types.Transaction {
	return &types.Transaction{
		ID:            id,
		Type:          types.TxSend,
		SenderAddress: from,
		Fee:           1,
		Asset:         types.SendAsset{Recipient: to, Amount: amount},
	}
}

func TestPoolPushThenRemoveRestoresUBalance(t *testing.T) {
	pool, reg := newTestPool()
	sender := reg.GetOrCreate(testAddr(1))
	sender.UBalance = 100

	tx := sendTx("tx1", testAddr(1), testAddr(2), 40)
	require.NoError(t, pool.Push(tx, sender))
	assert.Equal(t, uint64(59), sender.UBalance)
	assert.True(t, pool.Has("tx1"))

	require.NoError(t, pool.Remove(tx, sender))
	assert.Equal(t, uint64(100), sender.UBalance)
	assert.False(t, pool.Has("tx1"))
}

func TestPoolRejectsDuplicatePush(t *testing.T) {
	pool, reg := newTestPool()
	sender := reg.GetOrCreate(testAddr(1))
	sender.UBalance = 100

	tx := sendTx("tx1", testAddr(1), testAddr(2), 10)
	require.NoError(t, pool.Push(tx, sender))
	err := pool.Push(tx, sender)
	assert.Equal(t, ErrTxAlreadyInPool, err)
}

func TestIsPotentialConflictSignatureAfterSend(t *testing.T) {
	pool, reg := newTestPool()
	sender := reg.GetOrCreate(testAddr(1))
	sender.UBalance = 100

	tx1 := sendTx("tx1", testAddr(1), testAddr(2), 10)
	require.NoError(t, pool.Push(tx1, sender))

	tx2 := &types.Transaction{
		ID:            "tx2",
		Type:          types.TxSignature,
		SenderAddress: testAddr(1),
		Asset:         types.SignatureAsset{PublicKey: make([]byte, 32)},
	}
	assert.True(t, pool.IsPotentialConflict(tx2))
}

func TestPopSortedUnconfirmedTransactionsOrdersByTypeThenCreatedAt(t *testing.T) {
	pool, reg := newTestPool()
	sender := reg.GetOrCreate(testAddr(1))
	sender.UBalance = 1000

	later := sendTx("tx-later", testAddr(1), testAddr(2), 1)
	later.CreatedAt = 10
	earlier := sendTx("tx-earlier", testAddr(1), testAddr(2), 1)
	earlier.CreatedAt = 5

	require.NoError(t, pool.Push(later, sender))
	require.NoError(t, pool.Push(earlier, sender))

	popped := pool.PopSortedUnconfirmedTransactions(-1, func(a types.Address) (*types.Account, bool) {
		return reg.GetByAddress(a)
	})
	require.Len(t, popped, 2)
	assert.Equal(t, "tx-earlier", popped[0].ID)
	assert.Equal(t, "tx-later", popped[1].ID)
	assert.Equal(t, 0, pool.Size())
}
