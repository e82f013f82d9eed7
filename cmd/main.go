package main

import (
	"fmt"
	"os"
	"path/filepath"

	cmd "forgechain/cmd/commands"
	nm "forgechain/node"

	tmcfg "github.com/tendermint/tendermint/config"
	"github.com/tendermint/tendermint/libs/cli"
)

func main() {
	tmcfg.DefaultTendermintDir = ".forgechain"
	rootCmd := cmd.RootCmd

	rootCmd.AddCommand(
		cmd.InitFilesCmd,
		cli.NewCompletionCmd(rootCmd, true),
	)

	// NOTE: operators wishing to supply an external signer, a custom
	// genesis source, or a different DB implementation can copy this
	// file and swap out DefaultNewNode.
	nodeFunc := nm.DefaultNewNode

	rootCmd.AddCommand(
		cmd.GenNodeKeyCmd,
		cmd.GenDelegateKeyCmd,
		cmd.ShowNodeIDCmd,
		cmd.ShowDelegateKeyCmd,
		cmd.GenGenesisCmd,
		cmd.NewRunNodeCmd(nodeFunc),
	)

	baseCmd := cli.PrepareBaseCmd(rootCmd, "FC", os.ExpandEnv(filepath.Join("$HOME", tmcfg.DefaultTendermintDir)))
	if err := baseCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}
