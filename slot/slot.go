// Package slot implements C1, the slot/round service (§4.1): it maps
// wall-clock time to slot numbers, computes round boundaries, and
// produces the deterministic per-round delegate schedule every honest
// node must agree on.
//
// Grounded on the teacher's slot.go, which exposed a bare logical-clock
// interface (GetSlot/GetTimeOutChan/Reset) for BFT round timeouts; this
// keeps the same "current slot plus a reset-able timeout channel"
// shape but replaces the logical clock with wall-clock slot arithmetic
// and adds round-schedule generation, which the teacher never needed
// because BFT rounds have no rotating leader schedule.
package slot

import (
	"time"

	"forgechain/config"
	"forgechain/types"

	"github.com/tendermint/tendermint/libs/log"
)

// Service is C1. It is safe for concurrent reads; state mutation
// (Generate, RestoreToSlot) is confined to the consensus
// sequence per §5.
type Service struct {
	logger log.Logger
	params config.ChainParams

	currentRound *types.Round
	timeoutCh    chan struct{}
	timer        *time.Timer
	metric       *metric
}

func NewService(params config.ChainParams, logger log.Logger) *Service {
	return &Service{
		logger:    logger,
		params:    params,
		timeoutCh: make(chan struct{}, 1),
		metric:    newMetric(),
	}
}

// Metric is this service's libs/metric.MetricItem (§4.1, teacher's
// consensus/metric.go).
func (s *Service) Metric() *metric { return s.metric }

// GetSlotNumber returns the slot number for t, or for time.Now() if t
// is the zero value (§4.1: "time? defaults to current wall clock").
func (s *Service) GetSlotNumber(t time.Time) uint64 {
	if t.IsZero() {
		t = time.Now()
	}
	elapsed := t.Sub(s.params.EpochTime)
	if elapsed < 0 {
		return 0
	}
	return uint64(elapsed / s.params.SlotInterval)
}

// GetSlotTime returns the UTC unix time the given slot begins at.
func (s *Service) GetSlotTime(slot uint64) uint64 {
	t := s.params.EpochTime.Add(time.Duration(slot) * s.params.SlotInterval)
	return uint64(t.Unix())
}

// CalcRound computes the round number a given block height belongs to:
// ceil(height / activeDelegatesCount).
func (s *Service) CalcRound(height uint64) uint64 {
	n := uint64(s.params.ActiveDelegates)
	if n == 0 {
		return 0
	}
	return (height + n - 1) / n
}

// GetFirstSlotNumberInRound returns the first slot of the round that
// contains t, given activeDelegatesCount slots per round.
func (s *Service) GetFirstSlotNumberInRound(t time.Time, activeDelegatesCount int) uint64 {
	slot := s.GetSlotNumber(t)
	n := uint64(activeDelegatesCount)
	if n == 0 {
		return slot
	}
	return (slot / n) * n
}

// Generate produces the delegate schedule for the round starting at
// firstSlot, shuffling activeDelegates with the deterministic,
// kyber-seeded Fisher-Yates of round_schedule.go so every node
// computes the identical Round (§4.1).
func (s *Service) Generate(firstSlot uint64, roundNumber uint64, activeDelegates [][]byte) *types.Round {
	order := shuffleDelegates(activeDelegates, roundNumber)
	round := types.NewRound(firstSlot)
	for i, pub := range order {
		round.AssignSlot(pub, firstSlot+uint64(i))
	}
	s.currentRound = round
	s.metric.MarkRound(round)
	return round
}

// MarkSlot records the current slot snapshot for the metric endpoint:
// the slot number, its start time, and whether forgerPublicKeyHex (the
// empty string if no delegate owns it locally) is this node's delegate.
func (s *Service) MarkSlot(slot uint64, isForging bool, forgerPublicKeyHex string) {
	s.metric.MarkSlot(slot, time.Unix(int64(s.GetSlotTime(slot)), 0))
	s.metric.MarkForging(isForging, forgerPublicKeyHex)
}

// CurrentRound returns the round last produced by Generate, or nil.
func (s *Service) CurrentRound() *types.Round {
	return s.currentRound
}

// RestoreToSlot rewinds the current round's forged markers to the
// state they held just before the given slot was forged (used by
// deleteLastBlock, §4.7.9).
func (s *Service) RestoreToSlot(slot uint64) {
	if s.currentRound == nil {
		return
	}
	s.currentRound.UnmarkForgedAfter(slot - 1)
}

// GetTimeOutChan returns the channel Reset fires on at the next slot
// boundary, mirroring the teacher's timeout-channel shape.
func (s *Service) GetTimeOutChan() <-chan struct{} {
	return s.timeoutCh
}

// Reset arms the slot timer to fire after duration.
func (s *Service) Reset(duration time.Duration) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(duration, func() {
		select {
		case s.timeoutCh <- struct{}{}:
		default:
		}
	})
}

// TimeToNextSlot returns the duration until the next slot boundary
// after t (or time.Now() when t is zero).
func (s *Service) TimeToNextSlot(t time.Time) time.Duration {
	if t.IsZero() {
		t = time.Now()
	}
	next := s.GetSlotNumber(t) + 1
	target := s.params.EpochTime.Add(time.Duration(next) * s.params.SlotInterval)
	return target.Sub(t)
}
