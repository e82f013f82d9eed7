package rpc

import rpc "github.com/tendermint/tendermint/rpc/jsonrpc/server"

var Routes = map[string]*rpc.RPCFunc{
	"broadcast_tx":  rpc.NewRPCFunc(BroadcastTx, "tx"),
	"get_delegates": rpc.NewRPCFunc(GetDelegates, "limit,offset,username,sort"),
	"metrics":       rpc.NewRPCFunc(JSONMetrics, "label"),
}
