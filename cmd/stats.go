package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proofchain/internal/home"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many proofs and creators the backend knows",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := home.NewController(newClient(cfg)).Stats(cmd.Context())
		if statsJSON {
			if perr := printJSON(st); perr != nil {
				return perr
			}
		} else {
			fmt.Printf("Total proofs:    %d\n", st.TotalProofs)
			fmt.Printf("Unique creators: %d\n", st.UniqueCreators)
		}
		if err != nil {
			return fmt.Errorf("failed to load statistics: %w", err)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print JSON")
	rootCmd.AddCommand(statsCmd)
}
