package types

import "encoding/hex"

// RoundSlot is the per-delegate entry of a Round's schedule (§3 Round
// invariant): the slot number assigned to this delegate within the
// round, and whether that delegate has already forged its block.
type RoundSlot struct {
	Slot     uint64 `json:"slot"`
	IsForged bool   `json:"isForged"`
}

// Round is a window of N consecutive slots, one per active delegate
// (GLOSSARY), produced by C1's deterministic shuffle. Slots is keyed by
// the delegate's hex-encoded public key so the map stays comparable and
// JSON-serializable.
type Round struct {
	Slots       map[string]*RoundSlot `json:"slots"`
	StartHeight uint64                `json:"startHeight"`
}

func NewRound(startHeight uint64) *Round {
	return &Round{
		Slots:       make(map[string]*RoundSlot),
		StartHeight: startHeight,
	}
}

func pubKeyHex(pub []byte) string { return hex.EncodeToString(pub) }

// AssignSlot records delegate's slot position within the round.
func (r *Round) AssignSlot(delegatePubKey []byte, slot uint64) {
	r.Slots[pubKeyHex(delegatePubKey)] = &RoundSlot{Slot: slot}
}

// SlotFor returns the slot assigned to delegatePubKey, or (0, false) if
// the delegate is not part of this round's schedule.
func (r *Round) SlotFor(delegatePubKey []byte) (uint64, bool) {
	s, ok := r.Slots[pubKeyHex(delegatePubKey)]
	if !ok {
		return 0, false
	}
	return s.Slot, true
}

// MarkForged sets isForged for delegatePubKey's slot entry, if present.
func (r *Round) MarkForged(delegatePubKey []byte, forged bool) {
	if s, ok := r.Slots[pubKeyHex(delegatePubKey)]; ok {
		s.IsForged = forged
	}
}

// UnmarkForgedAfter resets isForged for every slot strictly greater
// than the given slot. Used by deleteLastBlock (§4.7.9) to restore
// round state when rewinding past a forged slot.
func (r *Round) UnmarkForgedAfter(slot uint64) {
	for _, s := range r.Slots {
		if s.Slot > slot {
			s.IsForged = false
		}
	}
}

// Size returns the number of delegate slots in the round.
func (r *Round) Size() int { return len(r.Slots) }
