package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proofchain/internal/config"
	"github.com/ziadkadry99/proofchain/internal/logging"
)

var (
	cfgFile string
	verbose bool
	apiURL  string
)

var rootCmd = &cobra.Command{
	Use:   "proofchain",
	Short: "Register and verify proofs of AI-generated content on Sepolia",
	Long: `ProofChain anchors the hashes of a prompt and its output on the
Sepolia testnet through a proof backend, using your wallet account as the
creator. It can register, verify and browse proofs from the command line,
serve a web UI, and expose the same operations to AI agents over MCP.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "proof backend URL (overrides api_url)")
}
