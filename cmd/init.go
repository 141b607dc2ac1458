package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proofchain/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize proofchain configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the proof backend, wallet endpoint and generator, and writes a .proofchain.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
