package slot

import (
	"sync"
	"time"

	"forgechain/types"

	jsoniter "github.com/json-iterator/go"
)

// metric is this service's libs/metric.MetricItem, grounded on the
// teacher's consensus/metric.go consensusMetric: the same mark-as-you-go
// snapshot shape, generalized from BFT round/proposer bookkeeping to
// slot-ownership bookkeeping (current slot, round start, whether this
// node's delegate owns the current slot).
func newMetric() *metric {
	return &metric{}
}

type metric struct {
	mtx sync.RWMutex

	Slot            uint64 `json:"current_slot"`
	SlotStartTime   int64  `json:"slot_start_time"`
	RoundStartSlot  uint64 `json:"round_start_slot"`
	IsForgingSlot   bool   `json:"is_forging_slot"`
	ForgerPublicKey string `json:"forger_public_key"`
}

func (m *metric) JSONString() string {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	s, _ := jsoniter.MarshalToString(m)
	return s
}

func (m *metric) MarkSlot(slot uint64, t time.Time) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.Slot = slot
	m.SlotStartTime = t.Unix()
}

func (m *metric) MarkRound(round *types.Round) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if round == nil {
		m.RoundStartSlot = 0
		return
	}
	m.RoundStartSlot = round.StartHeight
}

func (m *metric) MarkForging(isForging bool, forgerPublicKeyHex string) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.IsForgingSlot = isForging
	m.ForgerPublicKey = forgerPublicKeyHex
}
