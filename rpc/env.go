package rpc

import (
	"forgechain/blockchain"
	"forgechain/eventbus"
	"forgechain/libs/metric"
	"forgechain/mempool"
	"forgechain/state"

	jsoniter "github.com/json-iterator/go"
)

var (
	env  *Environment
	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

func SetEnvironment(e *Environment) {
	env = e
}

// Environment is the external-collaborator surface the RPC handlers
// close over, grounded on the teacher's rpc/env.go package-global
// pattern (a single process-wide *Environment set once at startup by
// node/, read by every handler thereafter).
type Environment struct {
	Chain    *blockchain.Service
	Accounts *state.Accounts
	Queue    *mempool.Queue
	Pool     *mempool.Pool
	Bus      *eventbus.Bus

	MetricSet *metric.MetricSet
}
