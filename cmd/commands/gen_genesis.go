package commands

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	appcfg "forgechain/config"

	tmos "github.com/tendermint/tendermint/libs/os"
)

var (
	chainID         string
	delegatePubKeys []string
)

// GenGenesisCmd assembles a multi-delegate genesis file from public
// keys collected out of band (each delegate runs `init` independently
// and shares its public key), replacing the teacher's
// threshold.Master-derived cluster genesis: a DPoS chain has no shared
// master key a coordinator can derive every validator's key from, so
// bootstrapping a chain of more than one delegate means collecting
// public keys rather than deriving them.
var GenGenesisCmd = &cobra.Command{
	Use:     "gen-genesis-block",
	Aliases: []string{"gen_genesis"},
	Short:   "Assemble a genesis file from a set of delegate public keys",
	RunE:    genGenesisFile,
}

func init() {
	GenGenesisCmd.Flags().StringVar(&chainID, "chain-id", "", "chain id; forgechain-<unix time> is used if omitted")
	GenGenesisCmd.Flags().StringSliceVar(&delegatePubKeys, "delegate", nil, "hex-encoded delegate public key (repeatable)")
	GenGenesisCmd.MarkFlagRequired("delegate")
}

func genGenesisFile(cmd *cobra.Command, args []string) error {
	genFile := config.GenesisFile()
	if tmos.FileExists(genFile) {
		logger.Info("Found genesis file", "path", genFile)
		return nil
	}

	if len(delegatePubKeys) == 0 {
		return fmt.Errorf("at least one --delegate public key is required")
	}

	active := make([]appcfg.HexBytes, len(delegatePubKeys))
	for i, s := range delegatePubKeys {
		pub, err := hex.DecodeString(s)
		if err != nil {
			return fmt.Errorf("delegate %d: %w", i, err)
		}
		active[i] = appcfg.HexBytes(pub)
	}

	id := chainID
	if id == "" {
		id = fmt.Sprintf("forgechain-%v", time.Now().Unix())
	}

	genDoc := appcfg.GenesisDoc{
		ChainID:         id,
		GenesisTime:     time.Now(),
		ActiveDelegates: active,
	}
	if err := genDoc.SaveAs(genFile); err != nil {
		return err
	}
	logger.Info("Generated genesis file", "path", genFile, "delegates", len(active))
	return nil
}
