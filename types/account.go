package types

// Account is the in-memory record C2 keys by Address, with a secondary
// index by public key (§3 Data model, §4.2).
//
// Balance/UBalance are the confirmed/unconfirmed mirrors described in
// §9's redesign note: two explicit state fields rather than one value
// mutated in place, so applyUnconfirmed/undoUnconfirmed and apply/undo
// each have a dedicated target and are trivially reversible.
type Account struct {
	Address Address `json:"address"`

	// PublicKey may be nil until the account's first outbound
	// transaction is seen (§3 invariant: "may be learned lazily").
	PublicKey       []byte `json:"publicKey,omitempty"`
	SecondPublicKey []byte `json:"secondPublicKey,omitempty"`

	Balance  uint64 `json:"balance"`
	UBalance uint64 `json:"u_balance"`

	// Votes holds the hex public keys of delegates this account has
	// voted for.
	Votes []string `json:"votes,omitempty"`

	// Delegate is non-nil only when this account has registered as a
	// delegate (§3: "Delegates own exactly one account").
	Delegate *Delegate `json:"delegate,omitempty"`

	Multisignatures [][]byte `json:"multisignatures,omitempty"`
	Multimin        int      `json:"multimin"`
}

// NewAccount builds a stub account for an address whose public key has
// not yet been observed. The transaction queue worker creates these for
// unknown senders/recipients (§4.4).
func NewAccount(addr Address) *Account {
	return &Account{Address: addr}
}

// Copy returns a deep-enough copy for speculative mutation; slices are
// re-sliced on write by callers, so a shallow slice copy is sufficient
// here (mirrors the teacher's State.Copy in state/state.go).
func (a *Account) Copy() *Account {
	cp := *a
	if a.PublicKey != nil {
		cp.PublicKey = append([]byte(nil), a.PublicKey...)
	}
	if a.SecondPublicKey != nil {
		cp.SecondPublicKey = append([]byte(nil), a.SecondPublicKey...)
	}
	if a.Votes != nil {
		cp.Votes = append([]string(nil), a.Votes...)
	}
	if a.Multisignatures != nil {
		cp.Multisignatures = append([][]byte(nil), a.Multisignatures...)
	}
	if a.Delegate != nil {
		d := *a.Delegate
		cp.Delegate = &d
	}
	return &cp
}

// HasPublicKey reports whether the account has learned its sender's
// public key.
func (a *Account) HasPublicKey() bool {
	return len(a.PublicKey) > 0
}

// LearnPublicKey records a newly-observed public key, idempotently
// (§4.2: add() "merges a newly-learned public key").
func (a *Account) LearnPublicKey(pub []byte) {
	if a.HasPublicKey() {
		return
	}
	a.PublicKey = append([]byte(nil), pub...)
}

// IsMultisig reports whether the account requires a multisignature
// quorum to authorize a transaction (§4.3 ready()).
func (a *Account) IsMultisig() bool {
	return a.Multimin > 0 && len(a.Multisignatures) > 0
}

func (a *Account) HasVoted(delegatePubKeyHex string) bool {
	for _, v := range a.Votes {
		if v == delegatePubKeyHex {
			return true
		}
	}
	return false
}
