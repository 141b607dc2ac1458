package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proofchain/internal/chain"
	"github.com/ziadkadry99/proofchain/internal/dashboard"
	"github.com/ziadkadry99/proofchain/internal/llm"
	"github.com/ziadkadry99/proofchain/internal/proofapi"
	"github.com/ziadkadry99/proofchain/internal/proofs"
)

var (
	genRemote bool
	genDryRun bool
	genModel  string
)

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate an output for a prompt and register the pair",
	Long: `Generates an output with the configured LLM and registers the prompt
and output as a proof with the connected wallet as creator.

With --remote the backend generates the output instead: it registers the
pair itself, or with --dry-run only returns the text.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.Join(args, " ")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		api := newClient(cfg)

		if genRemote {
			return generateRemote(ctx, api, prompt)
		}

		model := cfg.Generator.Model
		if genModel != "" {
			model = genModel
		}
		gen, err := llm.NewGenerator(string(cfg.Generator.Provider), model, cfg.APIKeyEnvVar())
		if err != nil {
			return fmt.Errorf("creating generator: %w", err)
		}

		output, err := pending(fmt.Sprintf("Generating with %s...", gen.Name()), func() (string, error) {
			return gen.Generate(ctx, prompt)
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", output)
		if genDryRun {
			return nil
		}

		session, closeWallet := openWallet(ctx, cfg)
		defer closeWallet()
		if err := requireWallet(ctx, session); err != nil {
			return err
		}

		dash, closeDash := newDashboard(cfg, api, session)
		defer closeDash()
		rc, err := pending("Registering...", func() (*dashboard.Receipt, error) {
			return dash.Register(ctx, dashboard.RegisterInput{
				Prompt:     prompt,
				OutputType: proofs.OutputText,
				Output:     output,
			})
		})
		if err != nil {
			return errors.New(dashboard.UserMessage(err, "register proof"))
		}
		printReceipt(rc)
		return nil
	},
}

func generateRemote(ctx context.Context, api *proofapi.Client, prompt string) error {
	if genDryRun {
		res, err := pending("Generating...", func() (*proofapi.GenerateResult, error) {
			return api.GenerateText(ctx, prompt)
		})
		if err != nil {
			return fmt.Errorf("generate text: %w", err)
		}
		fmt.Println(res.Output)
		return nil
	}

	res, err := pending("Generating and registering...", func() (*proofapi.RegisterResult, error) {
		return api.GenerateAndRegister(ctx, prompt)
	})
	if err != nil {
		return fmt.Errorf("generate and register: %w", err)
	}
	if res.Output != "" {
		fmt.Printf("%s\n\n", res.Output)
	}
	printReceipt(&dashboard.Receipt{
		Message:     res.Message,
		PromptHash:  res.PromptHash,
		OutputHash:  res.OutputHash,
		TxHash:      res.TxHash,
		BlockNumber: res.BlockNumber,
		OutputType:  proofs.OutputText,
		ExplorerURL: chain.TxURL(res.TxHash),
	})
	return nil
}

func init() {
	generateCmd.Flags().BoolVar(&genRemote, "remote", false, "let the backend generate the output")
	generateCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "only generate, do not register")
	generateCmd.Flags().StringVar(&genModel, "model", "", "override the configured model")
	generateCmd.Flags().BoolVar(&regQR, "qr", false, "print a QR code linking to the transaction")
	generateCmd.Flags().BoolVar(&regJSON, "json", false, "print the receipt as JSON")
	rootCmd.AddCommand(generateCmd)
}
