package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proofchain/internal/dashboard"
)

var (
	verPrompt  string
	verOutput  string
	verCreator string
	verTx      string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check whether a proof was registered",
	Long: `Verifies a prompt/output pair against a creator (the connected wallet
when --creator is omitted), or a registration transaction with --tx.
Exits non-zero when the proof is not found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		session, closeWallet := openWallet(ctx, cfg)
		defer closeWallet()

		dash, closeDash := newDashboard(cfg, newClient(cfg), session)
		defer closeDash()

		var ok bool
		if verTx != "" {
			ok, err = pending("Verifying transaction...", func() (bool, error) {
				return dash.VerifyTx(ctx, verTx)
			})
		} else {
			if verCreator == "" {
				session.Init(ctx)
			}
			ok, err = pending("Verifying...", func() (bool, error) {
				return dash.Verify(ctx, verPrompt, verOutput, verCreator)
			})
		}
		if err != nil {
			return errors.New(dashboard.UserMessage(err, "verify proof"))
		}
		if !ok {
			return fmt.Errorf("not verified: no matching proof found")
		}
		fmt.Println("Verified: the proof exists on-chain")
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVarP(&verPrompt, "prompt", "p", "", "the prompt")
	verifyCmd.Flags().StringVarP(&verOutput, "output", "o", "", "the output")
	verifyCmd.Flags().StringVar(&verCreator, "creator", "", "creator address (defaults to the connected wallet)")
	verifyCmd.Flags().StringVar(&verTx, "tx", "", "verify a registration transaction hash instead")
	rootCmd.AddCommand(verifyCmd)
}
