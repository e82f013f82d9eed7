package sync

import (
	"crypto/ed25519"
	"net"
	"testing"
	"time"

	"forgechain/blockchain"
	"forgechain/config"
	"forgechain/eventbus"
	"forgechain/mempool"
	"forgechain/slot"
	"forgechain/state"
	"forgechain/store"
	"forgechain/txs"
	"forgechain/types"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tmjson "github.com/tendermint/tendermint/libs/json"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/p2p/mock"
	"github.com/tendermint/tm-db/memdb"
)

type testRig struct {
	reactor  *Reactor
	accounts *state.Accounts
	pool     *mempool.Pool
	queue    *mempool.Queue
	window   *store.Window
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()

	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	params := config.DefaultChainParams()
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

	chain := blockchain.NewService(params, accounts, dispatcher, ctx, pool, queue, window, durable, slotSvc, bus, [][]byte{pub}, log.TestingLogger())
	require.Empty(t, chain.ApplyGenesisBlock(nil))

	r := NewReactor(chain, queue, bus)
	r.SetLogger(log.TestingLogger())

	return &testRig{reactor: r, accounts: accounts, pool: pool, queue: queue, window: window}
}

func addrFor(b byte) types.Address {
	var a types.Address
	a[len(a)-1] = b
	return a
}

func TestReceiveTransactionEnqueues(t *testing.T) {
	defer leaktest.CheckTimeout(t, 10*time.Second)()

	rig := newTestRig(t)

	sender := rig.accounts.GetOrCreate(addrFor(1))
	sender.Balance = 1000
	sender.UBalance = 1000

	tx := &types.Transaction{
		Type:            types.TxSend,
		SenderAddress:   addrFor(1),
		SenderPublicKey: sender.PublicKey,
		Fee:             1,
		Asset:           types.SendAsset{Recipient: addrFor(2), Amount: 10},
	}

	bz, err := tmjson.Marshal(tx)
	require.NoError(t, err)

	peer := mock.NewPeer(net.IP{127, 0, 0, 1})
	rig.reactor.Receive(TransactionChannel, peer, bz)

	assert.Equal(t, 1, rig.queue.Len())
}

func TestReceiveUnknownChannelDoesNotPanic(t *testing.T) {
	rig := newTestRig(t)
	peer := mock.NewPeer(nil)
	assert.NotPanics(t, func() { rig.reactor.Receive(0xFF, peer, []byte("garbage")) })
}

func TestReceiveMalformedBlockDoesNotPanic(t *testing.T) {
	rig := newTestRig(t)
	peer := mock.NewPeer(nil)
	assert.NotPanics(t, func() { rig.reactor.Receive(BlockChannel, peer, []byte("not json")) })
}

func TestReceiveAlreadyProcessedBlockIsRejectedSilently(t *testing.T) {
	rig := newTestRig(t)

	last := rig.window.GetLast()
	require.NotNil(t, last)

	bz, err := tmjson.Marshal(last)
	require.NoError(t, err)

	peer := mock.NewPeer(nil)
	assert.NotPanics(t, func() { rig.reactor.Receive(BlockChannel, peer, bz) })
	assert.Equal(t, last.ID, rig.window.GetLast().ID)
}
