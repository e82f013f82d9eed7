// Command loadtest drives broadcast_tx against a running forgechain
// node's RPC server. Grounded on the teacher's tools/tm-bench and
// tools/rpc_test: the same "build an RPCRequest, marshal, send" shape,
// adapted from SmallBank transactions over a websocket connection to
// signed SendAsset transactions over the HTTP JSON-RPC endpoint
// node/node.go actually serves (RegisterRPCFuncs + Serve,
// not a websocket upgrade).
package main

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"

	"forgechain/types"
)

func main() {
	target := flag.String("target", "http://127.0.0.1:26657", "node RPC base URL")
	connections := flag.Int("connections", 1, "number of concurrent senders")
	rate := flag.Int("rate", 10, "transactions per second, per connection")
	duration := flag.Duration("duration", 10*time.Second, "how long to run")
	accounts := flag.Int("accounts", 25, "number of distinct sender keypairs to generate")
	flag.Parse()

	senders := make([]*sender, *accounts)
	for i := range senders {
		pub, priv, err := ed25519.GenerateKey(nil)
		if err != nil {
			fmt.Println("generating keypair:", err)
			os.Exit(1)
		}
		senders[i] = &sender{pub: pub, priv: priv}
	}

	recipients := make([]types.Address, *accounts)
	for i, s := range senders {
		recipients[i] = types.AddressFromPublicKey(s.pub)
	}

	var sent, failed int64
	stop := time.After(*duration)

	var wg sync.WaitGroup
	wg.Add(*connections)
	for c := 0; c < *connections; c++ {
		go func(conn int) {
			defer wg.Done()
			ticker := time.NewTicker(time.Second / time.Duration(*rate))
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return
				case <-ticker.C:
					s := senders[rand.Intn(len(senders))]
					to := recipients[rand.Intn(len(recipients))]
					tx := s.build(to)
					if err := broadcast(*target, tx); err != nil {
						atomic.AddInt64(&failed, 1)
						continue
					}
					atomic.AddInt64(&sent, 1)
				}
			}
		}(c)
	}
	wg.Wait()

	fmt.Printf("sent=%d failed=%d\n", atomic.LoadInt64(&sent), atomic.LoadInt64(&failed))
}

type sender struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
	seq  uint64
}

func (s *sender) build(to types.Address) *types.Transaction {
	seq := atomic.AddUint64(&s.seq, 1)
	tx := &types.Transaction{
		Type:            types.TxSend,
		SenderPublicKey: s.pub,
		SenderAddress:   types.AddressFromPublicKey(s.pub),
		Fee:             10,
		CreatedAt:       int32(seq),
		Asset:           types.SendAsset{Recipient: to, Amount: uint64(rand.Intn(100) + 1)},
	}
	tx.Signature = ed25519.Sign(s.priv, types.SigningBytes(tx))
	tx.ID = types.ComputeID(tx)
	return tx
}

func broadcast(target string, tx *types.Transaction) error {
	txJSON, err := json.Marshal(tx)
	if err != nil {
		return err
	}
	paramsJSON, err := json.Marshal(map[string]interface{}{"tx": json.RawMessage(txJSON)})
	if err != nil {
		return err
	}

	req := rpctypes.RPCRequest{
		JSONRPC: "2.0",
		ID:      rpctypes.JSONRPCStringID("loadtest"),
		Method:  "broadcast_tx",
		Params:  json.RawMessage(paramsJSON),
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	resp, err := http.Post(target, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("broadcast_tx: unexpected status %s", resp.Status)
	}
	return nil
}
