package commands

import (
	"encoding/hex"
	"fmt"

	tmos "github.com/tendermint/tendermint/libs/os"

	"forgechain/privval"

	"github.com/spf13/cobra"
)

// GenDelegateKeyCmd generates the Ed25519 signing key a delegate uses
// to sign blocks in its slots (§3 Account/Delegate), replacing the
// teacher's GenValidatorCmd (which derived a validator's key as one
// share of a BLS threshold polynomial — meaningless here, since a
// delegate's key is its own, not a committee share).
var GenDelegateKeyCmd = &cobra.Command{
	Use:     "gen-delegate-key",
	Aliases: []string{"gen_validator"},
	Args:    cobra.NoArgs,
	Short:   "Generate this node's delegate signing key",
	PreRun:  deprecateSnakeCase,
	RunE:    genDelegateKey,
}

func genDelegateKey(cmd *cobra.Command, args []string) error {
	privValKeyFile := config.PrivValidatorKeyFile()
	if tmos.FileExists(privValKeyFile) {
		return fmt.Errorf("delegate key at %s already exists", privValKeyFile)
	}

	pv := privval.GenFilePV(privValKeyFile)
	pv.Save()

	fmt.Println(hex.EncodeToString(pv.GetPublicKey()))
	return nil
}

// ShowDelegateKeyCmd prints the node's delegate public key, the value
// a chain operator shares out of band for GenGenesisCmd's --delegate
// flag.
var ShowDelegateKeyCmd = &cobra.Command{
	Use:     "show-delegate-key",
	Aliases: []string{"show_validator"},
	Args:    cobra.NoArgs,
	Short:   "Show this node's delegate public key",
	PreRun:  deprecateSnakeCase,
	RunE:    showDelegateKey,
}

func showDelegateKey(cmd *cobra.Command, args []string) error {
	privValKeyFile := config.PrivValidatorKeyFile()
	if !tmos.FileExists(privValKeyFile) {
		return fmt.Errorf("no delegate key at %s; run gen-delegate-key first", privValKeyFile)
	}
	pv := privval.LoadFilePV(privValKeyFile)
	fmt.Println(hex.EncodeToString(pv.GetPublicKey()))
	return nil
}
