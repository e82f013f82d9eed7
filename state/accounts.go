// Package state implements C2, the account registry (§4.2): an
// in-memory address → account map with a secondary index by public
// key, mutated only by transaction handlers on the consensus sequence.
//
// Grounded on the teacher's state.State.Copy() deep-copy discipline
// (state/state.go) — a single owner, copied on speculative mutation —
// generalized from a BFT block-tree state snapshot to a flat account
// table, since DPoS account state has no competing branches to track.
package state

import (
	"encoding/hex"
	"sync"

	"forgechain/types"
)

// Accounts is C2. It satisfies txs.Registry structurally.
type Accounts struct {
	mu sync.RWMutex

	byAddress   map[types.Address]*types.Account
	byPublicKey map[string]*types.Account
	usernames   map[string]bool
}

func NewAccounts() *Accounts {
	return &Accounts{
		byAddress:   make(map[types.Address]*types.Account),
		byPublicKey: make(map[string]*types.Account),
		usernames:   make(map[string]bool),
	}
}

// GetByAddress returns the account at addr, if registered.
func (a *Accounts) GetByAddress(addr types.Address) (*types.Account, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	acct, ok := a.byAddress[addr]
	return acct, ok
}

// GetByPublicKey returns the account that has learned pub, if any.
func (a *Accounts) GetByPublicKey(pub []byte) (*types.Account, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	acct, ok := a.byPublicKey[hex.EncodeToString(pub)]
	return acct, ok
}

// Add registers addr (idempotent) and, if pub is non-nil, merges it as
// the account's learned public key (§4.2: "merges a newly-learned
// public key"). Returns the (possibly pre-existing) account.
func (a *Accounts) Add(addr types.Address, pub []byte) *types.Account {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addLocked(addr, pub)
}

func (a *Accounts) addLocked(addr types.Address, pub []byte) *types.Account {
	acct, ok := a.byAddress[addr]
	if !ok {
		acct = types.NewAccount(addr)
		a.byAddress[addr] = acct
	}
	if len(pub) > 0 && !acct.HasPublicKey() {
		acct.LearnPublicKey(pub)
		a.byPublicKey[hex.EncodeToString(acct.PublicKey)] = acct
	}
	return acct
}

// GetOrCreate satisfies txs.Registry: returns the account at addr,
// creating an empty stub if none exists yet (§4.4: "resolves sender,
// creating a stub account if unknown").
func (a *Accounts) GetOrCreate(addr types.Address) *types.Account {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addLocked(addr, nil)
}

// AttachDelegate sets or clears account's Delegate record, maintaining
// the registry-wide username index that UsernameTaken reads (§4.2).
func (a *Accounts) AttachDelegate(account *types.Account, delegate *types.Delegate) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if account.Delegate != nil {
		delete(a.usernames, account.Delegate.Username)
	}
	account.Delegate = delegate
	if delegate != nil {
		a.usernames[delegate.Username] = true
	}
}

// UsernameTaken satisfies txs.Registry (§3 Delegate invariant:
// usernames are unique across all delegates).
func (a *Accounts) UsernameTaken(username string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.usernames[username]
}

// Len returns the number of registered accounts.
func (a *Accounts) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.byAddress)
}

// Delegates returns every account that has registered as a delegate,
// used by the GET_DELEGATES RPC handler (§6).
func (a *Accounts) Delegates() []*types.Account {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*types.Account, 0, len(a.usernames))
	for _, acct := range a.byAddress {
		if acct.Delegate != nil {
			out = append(out, acct)
		}
	}
	return out
}
