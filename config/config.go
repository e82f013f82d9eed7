// Package config holds the node's configured constants (§6) and the
// ambient viper/cobra-driven file config described in SPEC_FULL §10,
// grounded on the teacher's tendermint/config layout.
package config

import (
	"time"

	tmconfig "github.com/tendermint/tendermint/config"
)

// ChainParams are the consensus-relevant constants enumerated in §6.
// Unlike tmconfig.Config's mix of file-backed knobs, these are values
// every node on the network must agree on, so they are compiled in
// rather than read from a node-local TOML file — a node with a
// different SlotInterval cannot reach consensus with the rest.
type ChainParams struct {
	// EpochTime is the UTC anchor slot 0 is measured from.
	EpochTime time.Time

	// SlotInterval is the fixed-length time bucket of §4.1.
	SlotInterval time.Duration

	// ActiveDelegates is the active-delegate count (GLOSSARY: a round
	// has exactly this many slots).
	ActiveDelegates int

	MaxTransactionsPerBlock int
	MinRoundBlockHeight     uint64
	CurrentBlockVersion     uint32
	MaxBlockInMemory        int

	Fees FeeSchedule

	MaxDelegateUsernameLength int
}

type FeeSchedule struct {
	Send      uint64
	Vote      uint64
	Stake     uint64
	Delegate  uint64
	Signature uint64
	Register  uint64
}

// DefaultChainParams mirrors the constants a mainnet-shaped DPoS chain
// of this kind ships with (Lisk-derived values per
// other_examples/sisu-network-deyes__lisk.go's fee magnitudes).
func DefaultChainParams() ChainParams {
	return ChainParams{
		EpochTime:               time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		SlotInterval:            10 * time.Second,
		ActiveDelegates:         101,
		MaxTransactionsPerBlock: 25,
		MinRoundBlockHeight:     101,
		CurrentBlockVersion:     1,
		MaxBlockInMemory:        100,
		Fees: FeeSchedule{
			Send:      10000000,
			Vote:      100000000,
			Stake:     10000000,
			Delegate:  2500000000,
			Signature: 500000000,
			Register:  500000000,
		},
		MaxDelegateUsernameLength: 20,
	}
}

// Config is the node-local file config, grounded on the teacher's
// cmd/commands/init.go use of tmconfig.DefaultConfig() plus viper
// binding. Root-level node/network knobs live here; chain-wide
// consensus constants live in ChainParams above.
type Config struct {
	*tmconfig.Config
	Chain ChainParams
}

func DefaultConfig() *Config {
	return &Config{
		Config: tmconfig.DefaultConfig(),
		Chain:  DefaultChainParams(),
	}
}
