package types

// Slot is a logical slot number: a monotonically increasing count of
// fixed-length time buckets, each owned by exactly one delegate (§1
// GLOSSARY). It plays the role the teacher's LTime played for its BFT
// rounds, now driving DPoS round/slot arithmetic instead.
type Slot uint64

const SlotZero = Slot(0)

func (s Slot) Add(delta uint64) Slot {
	return Slot(uint64(s) + delta)
}

func (s Slot) Sub(other Slot) int64 {
	return int64(s) - int64(other)
}

func (s Slot) Mod(n int) int {
	if n <= 0 {
		return 0
	}
	return int(uint64(s) % uint64(n))
}

func (s Slot) Uint64() uint64 { return uint64(s) }
