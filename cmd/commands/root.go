package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	tmcfg "github.com/tendermint/tendermint/config"
	"github.com/tendermint/tendermint/libs/cli"
	tmflags "github.com/tendermint/tendermint/libs/cli/flags"
	"github.com/tendermint/tendermint/libs/log"

	appcfg "forgechain/config"
)

var (
	config = appcfg.DefaultConfig()
	logger = log.NewTMLogger(log.NewSyncWriter(os.Stdout)).With("module", "main")
)

func init() {
	registerFlagsRootCmd(RootCmd)
}

func registerFlagsRootCmd(cmd *cobra.Command) {
	cmd.PersistentFlags().String("log_level", config.LogLevel, "Log level")
}

// RootCmd is the base command every subcommand attaches to, grounded on
// the teacher's use of `tendermint/libs/cli.PrepareBaseCmd` in cmd/main.go:
// same --home/--log_level flag surface, same config-file-then-flags
// resolution order.
var RootCmd = &cobra.Command{
	Use:   "forgechaind",
	Short: "A DPoS blockchain node",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		conf, err := ParseConfig()
		if err != nil {
			return err
		}
		config = conf

		if config.LogFormat == tmcfg.LogFormatJSON {
			logger = log.NewTMJSONLogger(log.NewSyncWriter(os.Stdout))
		}
		logger, err = tmflags.ParseLogLevel(config.LogLevel, logger, tmcfg.DefaultLogLevel)
		if err != nil {
			return err
		}
		if viper.GetBool(cli.TraceFlag) {
			logger = log.NewTracingLogger(logger)
		}
		logger = logger.With("module", "main")
		return nil
	},
}

// ParseConfig loads the node-local TOML config into the teacher's
// tmcfg.Config, then attaches this chain's compiled-in ChainParams
// (config/config.go: a node cannot negotiate a different SlotInterval
// with its peers, so those constants are never file-configurable).
func ParseConfig() (*appcfg.Config, error) {
	conf := tmcfg.DefaultConfig()
	if err := viper.Unmarshal(conf); err != nil {
		return nil, err
	}
	conf.SetRoot(conf.RootDir)
	tmcfg.EnsureRoot(conf.RootDir)
	if err := conf.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("error in config file: %v", err)
	}
	return &appcfg.Config{Config: conf, Chain: appcfg.DefaultChainParams()}, nil
}

// deprecateSnakeCase warns when a subcommand is invoked through its
// snake_case alias, matching the teacher's own PreRun hook on
// gen-node-key/gen-validator.
func deprecateSnakeCase(cmd *cobra.Command, args []string) {
	if strings.Contains(cmd.CalledAs(), "_") {
		fmt.Println("snake_case commands are deprecated, use the hyphenated form instead")
	}
}
