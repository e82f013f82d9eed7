package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	appcfg "forgechain/config"
	"forgechain/privval"

	tmos "github.com/tendermint/tendermint/libs/os"
	tmrand "github.com/tendermint/tendermint/libs/rand"
	"github.com/tendermint/tendermint/p2p"
)

// InitFilesCmd bootstraps a fresh node: a node key, a delegate signing
// key, and (if this is the first node of a chain) a genesis file
// listing that one delegate. Joining an existing chain still needs the
// operator to drop in the real genesis file and the other delegates'
// public keys separately — this command only ever writes a
// single-delegate genesis, matching the teacher's own init command's
// single-node convenience scope.
var InitFilesCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a node's key material and genesis file",
	RunE:  initFiles,
}

func initFiles(cmd *cobra.Command, args []string) error {
	return initFilesWithConfig(config)
}

func initFilesWithConfig(conf *appcfg.Config) error {
	pv := loadOrGenDelegateKey(conf)

	nodeKeyFile := conf.NodeKeyFile()
	if tmos.FileExists(nodeKeyFile) {
		logger.Info("Found node key", "path", nodeKeyFile)
	} else {
		if _, err := p2p.LoadOrGenNodeKey(nodeKeyFile); err != nil {
			return err
		}
		logger.Info("Generated node key", "path", nodeKeyFile)
	}

	genFile := conf.GenesisFile()
	if tmos.FileExists(genFile) {
		logger.Info("Found genesis file", "path", genFile)
		return nil
	}

	genDoc := appcfg.GenesisDoc{
		ChainID:         fmt.Sprintf("forgechain-%v", tmrand.Str(6)),
		GenesisTime:     time.Now(),
		ActiveDelegates: []appcfg.HexBytes{appcfg.HexBytes(pv.GetPublicKey())},
	}
	if err := genDoc.SaveAs(genFile); err != nil {
		return err
	}
	logger.Info("Generated genesis file", "path", genFile)
	return nil
}

func loadOrGenDelegateKey(conf *appcfg.Config) *privval.FilePV {
	privValKeyFile := conf.PrivValidatorKeyFile()
	if tmos.FileExists(privValKeyFile) {
		logger.Info("Found delegate key", "keyFile", privValKeyFile)
		return privval.LoadFilePV(privValKeyFile)
	}
	pv := privval.GenFilePV(privValKeyFile)
	pv.Save()
	logger.Info("Generated delegate key", "keyFile", privValKeyFile)
	return pv
}
