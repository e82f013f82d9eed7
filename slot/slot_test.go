package slot

import (
	"testing"
	"time"

	"forgechain/config"

	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func testParams() config.ChainParams {
	p := config.DefaultChainParams()
	p.EpochTime = time.Unix(0, 0).UTC()
	p.SlotInterval = 10 * time.Second
	p.ActiveDelegates = 4
	return p
}

func TestGetSlotNumber(t *testing.T) {
	s := NewService(testParams(), log.TestingLogger())
	at := time.Unix(35, 0).UTC()
	assert.Equal(t, uint64(3), s.GetSlotNumber(at))
}

func TestGetSlotTime(t *testing.T) {
	s := NewService(testParams(), log.TestingLogger())
	assert.Equal(t, uint64(30), s.GetSlotTime(3))
}

func TestCalcRound(t *testing.T) {
	s := NewService(testParams(), log.TestingLogger())
	assert.Equal(t, uint64(1), s.CalcRound(1))
	assert.Equal(t, uint64(1), s.CalcRound(4))
	assert.Equal(t, uint64(2), s.CalcRound(5))
}

func TestGenerateIsDeterministicAcrossNodes(t *testing.T) {
	delegates := [][]byte{
		[]byte("delegate-a-pubkey-aaaaaaaaaaaaaaa"),
		[]byte("delegate-b-pubkey-bbbbbbbbbbbbbbb"),
		[]byte("delegate-c-pubkey-ccccccccccccccc"),
		[]byte("delegate-d-pubkey-ddddddddddddddd"),
	}
	s1 := NewService(testParams(), log.TestingLogger())
	s2 := NewService(testParams(), log.TestingLogger())

	r1 := s1.Generate(40, 10, delegates)
	r2 := s2.Generate(40, 10, delegates)

	assert.Equal(t, r1.Size(), r2.Size())
	for _, d := range delegates {
		slot1, ok1 := r1.SlotFor(d)
		slot2, ok2 := r2.SlotFor(d)
		assert.True(t, ok1)
		assert.True(t, ok2)
		assert.Equal(t, slot1, slot2)
	}
}

func TestRestoreToSlotUnmarksForgedAfter(t *testing.T) {
	delegates := [][]byte{[]byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), []byte("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")}
	s := NewService(testParams(), log.TestingLogger())
	round := s.Generate(0, 1, delegates)

	for _, d := range delegates {
		round.MarkForged(d, true)
	}
	s.RestoreToSlot(1)

	forgedCount := 0
	for _, slot := range round.Slots {
		if slot.IsForged {
			forgedCount++
		}
	}
	assert.Equal(t, 1, forgedCount)
}
