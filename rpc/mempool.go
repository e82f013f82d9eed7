package rpc

import (
	"forgechain/eventbus"
	"forgechain/types"

	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"
)

// ResultBroadcastTx is broadcast_tx's envelope-wrapped result.
type ResultBroadcastTx struct {
	Envelope
	ID string `json:"id,omitempty"`
}

// BroadcastTx is the RPC entry point for a client-submitted
// transaction: it stages tx onto C4 (the same path peer-gossiped
// transactions take) and announces TRANSACTION_CREATE so the sync
// reactor relays it onward.
func BroadcastTx(ctx *rpctypes.Context, tx *types.Transaction) (*ResultBroadcastTx, error) {
	if err := tx.ValidateBasic(); err != nil {
		return &ResultBroadcastTx{Envelope: failEnvelope(err.Error())}, nil
	}

	env.Queue.Enqueue(tx)
	env.Bus.Publish(eventbus.TransactionCreate, tx)

	return &ResultBroadcastTx{Envelope: okEnvelope(), ID: tx.ID}, nil
}
