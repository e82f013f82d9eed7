package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	nm "forgechain/node"
)

// AddNodeFlags exposes the handful of p2p/rpc knobs an operator
// commonly overrides from the command line, mirroring the teacher's
// flag surface on the equivalent tendermint run_node command.
func AddNodeFlags(cmd *cobra.Command) {
	cmd.Flags().String("moniker", config.Moniker, "node name")

	cmd.Flags().String("p2p.laddr", config.P2P.ListenAddress, "node listen address (0.0.0.0:0 means any interface, any port)")
	cmd.Flags().String("p2p.persistent_peers", config.P2P.PersistentPeers, "comma-delimited ID@host:port persistent peers")
	cmd.Flags().String("p2p.external-address", config.P2P.ExternalAddress, "ip:port address to advertise to peers for them to dial")

	cmd.Flags().String("rpc.laddr", config.RPC.ListenAddress, "RPC listen address (port required)")
}

// NewRunNodeCmd returns the command that starts a node, grounded on
// the teacher's cmd/main.go wiring of node.DefaultNewNode through
// tendermint/libs/cli.PrepareBaseCmd.
func NewRunNodeCmd(nodeProvider nm.Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Aliases: []string{"node", "run"},
		Short: "Run the node",
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := nodeProvider(config, logger)
			if err != nil {
				return fmt.Errorf("failed to create node: %w", err)
			}

			if err := node.Start(); err != nil {
				return fmt.Errorf("failed to start node: %w", err)
			}
			logger.Info("Started node", "nodeInfo", node.NodeInfo())

			select {}
		},
	}
	AddNodeFlags(cmd)
	return cmd
}
