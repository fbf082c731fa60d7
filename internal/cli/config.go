package cli

import (
	"fmt"

	"github.com/rcliao/birdswarm/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  "Print the effective configuration as YAML: the defaults overlaid with --config or $BIRDSWARM_CONFIG, then with $BIRDSWARM_SEED, $BIRDSWARM_TICKS and $BIRDSWARM_DT.",
		Run:   runConfig,
	}

	cmd.Flags().Bool("defaults", false, "Print the built-in defaults and ignore any config file")
	cmd.Flags().Bool("validate", false, "Only validate the configuration")

	RootCmd.AddCommand(cmd)
}

func runConfig(cmd *cobra.Command, args []string) {
	defaults, _ := cmd.Flags().GetBool("defaults")
	validate, _ := cmd.Flags().GetBool("validate")

	cfg := config.Default()
	if !defaults {
		var err error
		if cfg, err = loadConfig(); err != nil {
			exitErr("load config", err)
		}
	}

	if validate {
		if err := cfg.Validate(); err != nil {
			exitErr("validate", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"birds":%d}`+"\n", cfg.Birds())
		return
	}

	b, err := cfg.Marshal()
	if err != nil {
		exitErr("marshal config", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(b))
}
