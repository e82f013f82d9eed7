package mempool

import (
	"sync"

	"forgechain/libs/utils"

	jsoniter "github.com/json-iterator/go"
)

// poolSizeWindow bounds how many recent PoolSize samples feed the
// Max/Min/Avg aggregates below, so a long-running node's metric isn't
// dominated by pool sizes from hours ago.
const poolSizeWindow = 50

func newPoolMetric() *poolMetric {
	return &poolMetric{}
}

type poolMetric struct {
	mtx            sync.RWMutex
	PoolSize       int `json:"pool_size"`
	QueueSize      int `json:"queue_size"`
	SendersIndexed int `json:"senders_indexed"`

	poolSizeSamples []float64
	PoolSizeMax     float64 `json:"pool_size_max"`
	PoolSizeMin     float64 `json:"pool_size_min"`
	PoolSizeAvg     float64 `json:"pool_size_avg"`
}

func (m *poolMetric) JSONString() string {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	s, _ := jsoniter.MarshalToString(m)
	return s
}

// MarkPoolSize records n as the current pool size and rolls it into the
// Max/Min/Avg aggregates over the trailing poolSizeWindow samples.
func (m *poolMetric) MarkPoolSize(n int) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.PoolSize = n

	m.poolSizeSamples = append(m.poolSizeSamples, float64(n))
	if len(m.poolSizeSamples) > poolSizeWindow {
		m.poolSizeSamples = m.poolSizeSamples[len(m.poolSizeSamples)-poolSizeWindow:]
	}
	m.PoolSizeMax = utils.Max(m.poolSizeSamples...)
	m.PoolSizeMin = utils.Min(m.poolSizeSamples...)
	m.PoolSizeAvg = utils.Avg(m.poolSizeSamples...)
}

func (m *poolMetric) MarkQueueSize(n int) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.QueueSize = n
}

func (m *poolMetric) MarkSendersIndexed(n int) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.SendersIndexed = n
}
