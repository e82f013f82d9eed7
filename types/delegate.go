package types

import (
	"regexp"

	"github.com/pkg/errors"
)

const MaxDelegateUsernameLength = 20

var (
	usernameCharset = regexp.MustCompile(`^[a-z0-9!@$&_.]{1,20}$`)
	allDigits       = regexp.MustCompile(`^[0-9]{1,25}$`)
)

// Delegate is an account elected to produce blocks in a round (§3,
// GLOSSARY). Usernames are unique across all delegates.
type Delegate struct {
	Username     string `json:"username"`
	PublicKey    []byte `json:"publicKey"`
	MissedBlocks uint64 `json:"missedBlocks"`
	ForgedBlocks uint64 `json:"forgedBlocks"`

	// Votes is the total confirmed balance backing this delegate,
	// recomputed whenever a VOTE transaction applies or undoes.
	Votes uint64 `json:"votes"`

	ConfirmedVoteCount int     `json:"confirmedVoteCount"`
	Approval           float64 `json:"approval"`
}

// ValidateUsername enforces §3's Delegate invariant: lowercase, 1-20
// chars from the allowed charset, and not an all-digits string (which
// would be indistinguishable from a future numeric delegate id scheme).
func ValidateUsername(username string) error {
	if !usernameCharset.MatchString(username) {
		return errors.Errorf("username %q: must be 1-20 chars of [a-z0-9!@$&_.]", username)
	}
	if allDigits.MatchString(username) {
		return errors.Errorf("username %q: must not be all-digits", username)
	}
	return nil
}

// RecomputeApproval derives Approval as the delegate's vote share of
// total active supply. totalSupply of zero yields zero approval rather
// than dividing by zero.
func (d *Delegate) RecomputeApproval(totalSupply uint64) {
	if totalSupply == 0 {
		d.Approval = 0
		return
	}
	d.Approval = float64(d.Votes) / float64(totalSupply) * 100
}
