package blockchain

import "time"

// createdAtToTime converts a block/transaction's epoch-relative
// createdAt (seconds since config.ChainParams.EpochTime, the same
// convention GetSlotTime/GetSlotNumber use) into an absolute time.Time
// suitable for slot.Service.GetSlotNumber.
func (s *Service) createdAtToTime(createdAt int32) time.Time {
	return s.params.EpochTime.Add(time.Duration(createdAt) * time.Second)
}
