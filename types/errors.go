package types

import "github.com/pkg/errors"

// Error kinds per §7. Handlers return one of these (wrapped with
// github.com/pkg/errors for stack context) rather than a bare string,
// so callers can errors.As into the kind that matters to them.

// ValidationError covers schema, structural, duplicate, and
// out-of-range failures. Surfaced to the caller; never fatal.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(msg string) error {
	return errors.WithStack(&ValidationError{Msg: msg})
}

// VerificationError covers signature, payload-hash, and slot-ownership
// mismatches. The block is rejected; a peer repeatedly producing these
// is a ban candidate.
type VerificationError struct{ Msg string }

func (e *VerificationError) Error() string { return e.Msg }

func NewVerificationError(msg string) error {
	return errors.WithStack(&VerificationError{Msg: msg})
}

// StateConflictError covers already-processed blocks, height mismatches,
// and forks. Routed to the fork-cause branch of validateReceivedBlock.
type StateConflictError struct{ Msg string }

func (e *StateConflictError) Error() string { return e.Msg }

func NewStateConflictError(msg string) error {
	return errors.WithStack(&StateConflictError{Msg: msg})
}

// TransactionVerifyError triggers a LIFO rollback of the block's
// already-applied-unconfirmed transactions, then block rejection.
type TransactionVerifyError struct{ Msg string }

func (e *TransactionVerifyError) Error() string { return e.Msg }

func NewTransactionVerifyError(msg string) error {
	return errors.WithStack(&TransactionVerifyError{Msg: msg})
}

// PersistenceError covers durable save/delete failures. Propagated; does
// not auto-rollback unconfirmed applies (§9 open question).
type PersistenceError struct{ Msg string }

func (e *PersistenceError) Error() string { return e.Msg }

func NewPersistenceError(msg string) error {
	return errors.WithStack(&PersistenceError{Msg: msg})
}

// PeerError covers RPC failures talking to a peer; triggers a peer ban
// on block-load failure.
type PeerError struct{ Msg string }

func (e *PeerError) Error() string { return e.Msg }

func NewPeerError(msg string) error {
	return errors.WithStack(&PeerError{Msg: msg})
}
