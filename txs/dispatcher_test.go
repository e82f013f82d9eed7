package txs

import (
	"testing"

	"forgechain/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	byAddr map[types.Address]*types.Account
	names  map[string]bool
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{byAddr: make(map[types.Address]*types.Account), names: make(map[string]bool)}
}

func (r *fakeRegistry) GetByAddress(addr types.Address) (*types.Account, bool) {
	a, ok := r.byAddr[addr]
	return a, ok
}

func (r *fakeRegistry) GetByPublicKey(pub []byte) (*types.Account, bool) {
	for _, a := range r.byAddr {
		if a.HasPublicKey() && string(a.PublicKey) == string(pub) {
			return a, true
		}
	}
	return nil, false
}

func (r *fakeRegistry) GetOrCreate(addr types.Address) *types.Account {
	if a, ok := r.byAddr[addr]; ok {
		return a
	}
	a := types.NewAccount(addr)
	r.byAddr[addr] = a
	return a
}

func (r *fakeRegistry) UsernameTaken(username string) bool { return r.names[username] }

func (r *fakeRegistry) AttachDelegate(account *types.Account, delegate *types.Delegate) {
	if account.Delegate != nil {
		delete(r.names, account.Delegate.Username)
	}
	account.Delegate = delegate
	if delegate != nil {
		r.names[delegate.Username] = true
	}
}

func testContext() (*Context, *fakeRegistry) {
	reg := newFakeRegistry()
	return &Context{
		Registry: reg,
		Fees:     FeeSchedule{Send: 10, Vote: 5, Stake: 5, Delegate: 100, Signature: 50, Register: 100},
	}, reg
}

func addr(b byte) types.Address {
	var a types.Address
	a[len(a)-1] = b
	return a
}

func TestDispatcherSendApplyUndoRoundTrip(t *testing.T) {
	ctx, reg := testContext()
	sender := reg.GetOrCreate(addr(1))
	sender.Balance = 1000
	sender.UBalance = 1000
	recipient := addr(2)

	d := NewDefaultDispatcher()
	tx := &types.Transaction{
		Type: types.TxSend,
		Fee:  10,
		Asset: types.SendAsset{
			Recipient: recipient,
			Amount:    100,
		},
	}

	require.NoError(t, d.VerifyUnconfirmed(ctx, tx, sender))
	require.NoError(t, d.ApplyUnconfirmed(ctx, tx, sender))
	assert.Equal(t, uint64(1000-100-10), sender.UBalance)
	rAcct, _ := reg.GetByAddress(recipient)
	assert.Equal(t, uint64(100), rAcct.UBalance)

	require.NoError(t, d.Apply(ctx, tx, sender))
	assert.Equal(t, uint64(1000-100-10), sender.Balance)
	assert.Equal(t, uint64(100), rAcct.Balance)

	require.NoError(t, d.Undo(ctx, tx, sender))
	assert.Equal(t, uint64(1000), sender.Balance)
	assert.Equal(t, uint64(0), rAcct.Balance)

	require.NoError(t, d.UndoUnconfirmed(ctx, tx, sender))
	assert.Equal(t, uint64(1000), sender.UBalance)
	assert.Equal(t, uint64(0), rAcct.UBalance)
}

func TestDispatcherSendInsufficientBalanceUnconfirmed(t *testing.T) {
	ctx, reg := testContext()
	sender := reg.GetOrCreate(addr(1))
	sender.UBalance = 5

	d := NewDefaultDispatcher()
	tx := &types.Transaction{
		Type:  types.TxSend,
		Fee:   10,
		Asset: types.SendAsset{Recipient: addr(2), Amount: 100},
	}

	err := d.VerifyUnconfirmed(ctx, tx, sender)
	require.Error(t, err)
}

func TestDispatcherDelegateRejectsDuplicateUsername(t *testing.T) {
	ctx, reg := testContext()
	reg.names["alice"] = true
	sender := reg.GetOrCreate(addr(1))

	d := NewDefaultDispatcher()
	tx := &types.Transaction{
		Type:  types.TxDelegate,
		Fee:   100,
		Asset: types.DelegateAsset{Username: "alice"},
	}

	err := d.VerifyUnconfirmed(ctx, tx, sender)
	require.Error(t, err)
}

func TestDispatcherVoteAddRemoveRoundTrip(t *testing.T) {
	ctx, reg := testContext()
	sender := reg.GetOrCreate(addr(1))
	sender.Balance = 500
	sender.UBalance = 500

	delegatePub := []byte("0123456789012345678901234567890A")[:32]
	delegateAcct := reg.GetOrCreate(addr(9))
	delegateAcct.PublicKey = delegatePub
	delegateAcct.Delegate = &types.Delegate{Username: "bob", PublicKey: delegatePub}

	d := NewDefaultDispatcher()
	pubHex := hexEncode(delegatePub)
	tx := &types.Transaction{
		Type:  types.TxVote,
		Fee:   5,
		Asset: types.VoteAsset{Added: []string{pubHex}},
	}

	require.NoError(t, d.VerifyUnconfirmed(ctx, tx, sender))
	require.NoError(t, d.Apply(ctx, tx, sender))
	assert.Contains(t, sender.Votes, pubHex)
	// The fee is debited before the vote is tallied, so the delegate is
	// backed by the sender's balance net of the fee.
	assert.Equal(t, uint64(500-5), delegateAcct.Delegate.Votes)

	require.NoError(t, d.Undo(ctx, tx, sender))
	assert.NotContains(t, sender.Votes, pubHex)
	assert.Equal(t, uint64(0), delegateAcct.Delegate.Votes)
}

func hexEncode(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexdigits[c>>4]
		out[i*2+1] = hexdigits[c&0xf]
	}
	return string(out)
}
