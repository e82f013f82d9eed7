package node

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/libs/service"
	"github.com/tendermint/tendermint/p2p"
	"github.com/tendermint/tendermint/p2p/conn"
	rpcserver "github.com/tendermint/tendermint/rpc/jsonrpc/server"
	"github.com/tendermint/tendermint/version"

	"forgechain/blockchain"
	appcfg "forgechain/config"
	"forgechain/eventbus"
	"forgechain/libs/metric"
	"forgechain/mempool"
	"forgechain/privval"
	"forgechain/rpc"
	"forgechain/slot"
	"forgechain/state"
	"forgechain/store"
	"forgechain/sync"
	"forgechain/txs"
)

// SyncChannel replaces the teacher's consensus.TestChannel in this
// node's advertised p2p channel list.
const SyncChannel = sync.BlockChannel

// Provider constructs a Node from config, matching the teacher's
// node.Provider signature except for the config type: appcfg.Config
// carries this chain's ChainParams alongside the tendermint-derived
// p2p/rpc knobs.
type Provider func(*appcfg.Config, log.Logger) (*Node, error)

// Node wires every SPEC_FULL component into one running process,
// grounded on the teacher's node.go: same transport/switch/nodeInfo
// construction, with the single BFT consensus.Reactor replaced by
// sync.Reactor and the chain's own slot-driven block producer loop and
// mempool drain worker added alongside it.
type Node struct {
	service.BaseService

	config *appcfg.Config

	transport *p2p.MultiplexTransport
	sw        *p2p.Switch
	nodeInfo  p2p.NodeInfo
	nodeKey   *p2p.NodeKey

	delegate *privval.FilePV
	syncRx   *sync.Reactor
	chain    *blockchain.Service
	queue    *mempool.Queue
	accounts *state.Accounts
	slotSvc  *slot.Service
	bus      *eventbus.Bus
	durable  *store.Durable

	rpcListener interface{ Close() error }

	quit chan struct{}
}

type Option func(*Node)

func DefaultNewNode(config *appcfg.Config, logger log.Logger) (*Node, error) {
	nodeKey, err := p2p.LoadOrGenNodeKey(config.NodeKeyFile())
	if err != nil {
		return nil, err
	}
	return NewNode(config, nodeKey, logger)
}

func createTransport(nodeInfo p2p.NodeInfo, nodeKey *p2p.NodeKey) *p2p.MultiplexTransport {
	mConnConfig := conn.DefaultMConnConfig()
	return p2p.NewMultiplexTransport(nodeInfo, *nodeKey, mConnConfig)
}

func createSwitch(
	config *appcfg.Config,
	transport p2p.Transport,
	syncReactor *sync.Reactor,
	nodeInfo p2p.NodeInfo,
	nodeKey *p2p.NodeKey,
	p2pLogger log.Logger,
) *p2p.Switch {
	sw := p2p.NewSwitch(config.P2P, transport)
	sw.SetLogger(p2pLogger)
	sw.AddReactor("SYNC", syncReactor)

	sw.SetNodeInfo(nodeInfo)
	sw.SetNodeKey(nodeKey)

	p2pLogger.Info("P2P Node ID", "ID", nodeKey.ID(), "file", config.NodeKeyFile())
	return sw
}

func makeNodeInfo(config *appcfg.Config, nodeKey *p2p.NodeKey, chainID string) (p2p.NodeInfo, error) {
	nodeInfo := p2p.DefaultNodeInfo{
		ProtocolVersion: p2p.NewProtocolVersion(8, 11, 0),
		DefaultNodeID:   nodeKey.ID(),
		Network:         chainID,
		Version:         version.TMCoreSemVer,
		Channels:        []byte{sync.BlockChannel, sync.TransactionChannel},
		Moniker:         config.Moniker,
		Other: p2p.DefaultNodeInfoOther{
			TxIndex:    "off",
			RPCAddress: config.RPC.ListenAddress,
		},
	}

	lAddr := config.P2P.ExternalAddress
	if lAddr == "" {
		lAddr = config.P2P.ListenAddress
	}
	nodeInfo.ListenAddr = lAddr

	err := nodeInfo.Validate()
	return nodeInfo, err
}

func NewNode(config *appcfg.Config, nodeKey *p2p.NodeKey, logger log.Logger, options ...Option) (*Node, error) {
	genDoc, err := appcfg.GenesisDocFromFile(config.GenesisFile())
	if err != nil {
		return nil, fmt.Errorf("reading genesis file: %w", err)
	}

	delegate := privval.LoadOrGenFilePV(config.PrivValidatorKeyFile())

	accounts := state.NewAccounts()
	dispatcher := txs.NewDefaultDispatcher()
	ctx := &txs.Context{Registry: accounts, Fees: txs.FeeSchedule(config.Chain.Fees)}
	pool := mempool.NewPool(dispatcher, ctx, logger.With("module", "mempool"))
	queue := mempool.NewQueue(dispatcher, ctx, accounts, pool, logger.With("module", "mempool"))
	window := store.NewWindow(config.Chain.MaxBlockInMemory)

	durable, err := store.NewDurable("forgechain", config.DBDir(), logger.With("module", "store"))
	if err != nil {
		return nil, fmt.Errorf("opening durable store: %w", err)
	}

	slotSvc := slot.NewService(config.Chain, logger.With("module", "slot"))
	bus := eventbus.New()
	if err := bus.Start(); err != nil {
		return nil, fmt.Errorf("starting event bus: %w", err)
	}

	metrics := metric.NewMetricSet()
	_ = metrics.SetMetrics("mempool", pool.Metric())
	_ = metrics.SetMetrics("slot", slotSvc.Metric())

	activeDelegates := genDoc.ActiveDelegatePublicKeys()
	chain := blockchain.NewService(
		config.Chain, accounts, dispatcher, ctx, pool, queue, window, durable,
		slotSvc, bus, activeDelegates, logger.With("module", "blockchain"),
	)

	syncReactor := sync.NewReactor(chain, queue, bus)
	syncReactor.SetLogger(logger.With("module", "sync"))
	chain.SetBroadcaster(syncReactor)

	if errs := chain.ApplyGenesisBlock(genDoc.Transactions); len(errs) > 0 {
		return nil, fmt.Errorf("applying genesis block: %v", errs)
	}

	rpc.SetEnvironment(&rpc.Environment{
		Chain:     chain,
		Accounts:  accounts,
		Queue:     queue,
		Pool:      pool,
		Bus:       bus,
		MetricSet: metrics,
	})

	p2pLogger := logger.With("module", "p2p")
	nodeInfo, err := makeNodeInfo(config, nodeKey, genDoc.ChainID)
	if err != nil {
		return nil, err
	}
	transport := createTransport(nodeInfo, nodeKey)
	sw := createSwitch(config, transport, syncReactor, nodeInfo, nodeKey, p2pLogger)

	node := &Node{
		config:    config,
		transport: transport,
		sw:        sw,
		nodeInfo:  nodeInfo,
		nodeKey:   nodeKey,
		delegate:  delegate,
		syncRx:    syncReactor,
		chain:     chain,
		queue:     queue,
		accounts:  accounts,
		slotSvc:   slotSvc,
		bus:       bus,
		durable:   durable,
		quit:      make(chan struct{}),
	}
	node.BaseService = *service.NewBaseService(logger, "Node", node)
	for _, option := range options {
		option(node)
	}
	return node, nil
}

func (n *Node) Switch() *p2p.Switch    { return n.sw }
func (n *Node) NodeInfo() p2p.NodeInfo { return n.nodeInfo }

func (n *Node) OnStart() error {
	addr, err := p2p.NewNetAddressString(p2p.IDAddressString(n.nodeKey.ID(), n.config.P2P.ListenAddress))
	if err != nil {
		return err
	}
	if err := n.transport.Listen(*addr); err != nil {
		return err
	}

	if err := n.sw.Start(); err != nil {
		return err
	}

	n.Logger.Info("dialing persistent peers", "peers", n.config.P2P.PersistentPeers)
	if err := n.sw.DialPeersAsync(splitAndTrimEmpty(n.config.P2P.PersistentPeers, ",", " ")); err != nil {
		return fmt.Errorf("could not dial peers from persistent_peers field: %w", err)
	}

	if err := n.startRPC(); err != nil {
		return fmt.Errorf("starting RPC server: %w", err)
	}

	go n.runQueueWorker()
	go n.runBlockProducer()

	return nil
}

func (n *Node) OnStop() {
	close(n.quit)
	n.syncRx.OnStop()
	n.bus.Stop()
	if n.rpcListener != nil {
		n.rpcListener.Close()
	}
	n.sw.Stop()
	n.transport.Close()
	n.durable.Close()
}

func (n *Node) startRPC() error {
	mux := http.NewServeMux()
	rpcserver.RegisterRPCFuncs(mux, rpc.Routes, n.Logger.With("module", "rpc"))

	listener, err := rpcserver.Listen(n.config.RPC.ListenAddress, rpcserver.DefaultConfig())
	if err != nil {
		return err
	}
	n.rpcListener = listener
	go func() {
		if err := rpcserver.Serve(listener, mux, n.Logger.With("module", "rpc"), rpcserver.DefaultConfig()); err != nil {
			n.Logger.Error("RPC server stopped", "err", err)
		}
	}()
	return nil
}

// runQueueWorker drives C4's single drain worker (§4.4): every staged
// transaction is processed either as soon as it's enqueued (sync's
// reactor and rpc's BroadcastTx both signal Notify) or, as a backstop,
// on a fixed tick.
func (n *Node) runQueueWorker() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-n.quit:
			return
		case <-n.queue.Notify():
			n.queue.Drain()
		case <-ticker.C:
			n.queue.Drain()
		}
	}
}

// runBlockProducer is this node's slot-ownership loop (§4.1, §4.7.8):
// on every slot boundary, generate the round covering it if needed,
// and forge a block if the current slot belongs to this node's
// delegate key.
func (n *Node) runBlockProducer() {
	n.slotSvc.Reset(n.slotSvc.TimeToNextSlot(time.Time{}))
	for {
		select {
		case <-n.quit:
			return
		case <-n.slotSvc.GetTimeOutChan():
			n.forgeIfMySlot()
			n.slotSvc.Reset(n.slotSvc.TimeToNextSlot(time.Time{}))
		}
	}
}

func (n *Node) forgeIfMySlot() {
	now := time.Now()
	currentSlot := n.slotSvc.GetSlotNumber(now)
	activeDelegates := n.chain.ActiveDelegatePublicKeys()

	round := n.slotSvc.CurrentRound()
	firstSlotInRound := n.slotSvc.GetFirstSlotNumberInRound(now, len(activeDelegates))
	if round == nil || firstSlotInRound != round.StartHeight {
		roundNumber := n.slotSvc.CalcRound(currentSlot + 1)
		round = n.slotSvc.Generate(firstSlotInRound, roundNumber, activeDelegates)
	}

	mySlot, ok := round.SlotFor(n.delegate.GetPublicKey())
	isMySlot := ok && mySlot == currentSlot
	n.slotSvc.MarkSlot(currentSlot, isMySlot, hex.EncodeToString(n.delegate.GetPublicKey()))
	if !isMySlot {
		return
	}

	createdAt := int32(now.Sub(n.config.Chain.EpochTime).Seconds())
	kp := n.delegate.KeyPair()
	if errs := n.chain.GenerateBlock(createdAt, kp); len(errs) > 0 {
		n.Logger.Error("block generation failed", "slot", currentSlot, "errs", errs)
	}
}

// splitAndTrimEmpty slices s into all subslices separated by sep and
// returns a slice of the string s with all leading and trailing
// Unicode code points contained in cutset removed, discarding empty
// results.
func splitAndTrimEmpty(s, sep, cutset string) []string {
	if s == "" {
		return []string{}
	}
	spl := strings.Split(s, sep)
	out := make([]string, 0, len(spl))
	for _, element := range spl {
		if trimmed := strings.Trim(element, cutset); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
