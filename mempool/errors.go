package mempool

import "errors"

var (
	ErrTxAlreadyInPool   = errors.New("transaction already exists in pool")
	ErrTxAlreadyQueued   = errors.New("transaction already exists in queue")
	ErrUnknownTxID       = errors.New("no such transaction in pool")
	ErrPotentialConflict = errors.New("transaction conflicts with a staged dependent transaction")
)
