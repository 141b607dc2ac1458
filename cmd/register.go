package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proofchain/internal/dashboard"
	"github.com/ziadkadry99/proofchain/internal/progress"
	"github.com/ziadkadry99/proofchain/internal/proofs"
)

var (
	regPrompt string
	regOutput string
	regFile   string
	regFiles  string
	regQR     bool
	regJSON   bool
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a prompt and its output as a proof",
	Long: `Registers the hashes of a prompt and its output on Sepolia with the
connected wallet as creator. The output is given inline with --output, as a
file with --file, or as a batch with --files (a glob, ** allowed) where every
matching file is registered against the same prompt.`,
	Example: `  proofchain register --prompt "write a haiku" --output "..."
  proofchain register --prompt "logo" --file logo.png --qr
  proofchain register --prompt "chapter summaries" --files "out/**/*.md"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		set := 0
		for _, v := range []string{regOutput, regFile, regFiles} {
			if v != "" {
				set++
			}
		}
		if set != 1 {
			return fmt.Errorf("exactly one of --output, --file or --files is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		session, closeWallet := openWallet(ctx, cfg)
		defer closeWallet()
		if err := requireWallet(ctx, session); err != nil {
			return err
		}

		dash, closeDash := newDashboard(cfg, newClient(cfg), session)
		defer closeDash()

		if regFiles != "" {
			receipts, err := dash.RegisterFiles(ctx, regFiles, regPrompt, progress.NewReporter())
			for _, rc := range receipts {
				printReceipt(rc)
			}
			if err != nil {
				return fmt.Errorf("batch stopped after %d files: %w", len(receipts), err)
			}
			fmt.Printf("Registered %d files\n", len(receipts))
			return nil
		}

		in := dashboard.RegisterInput{Prompt: regPrompt, OutputType: proofs.OutputText, Output: regOutput}
		if regFile != "" {
			data, err := os.ReadFile(regFile)
			if err != nil {
				return fmt.Errorf("reading %s: %w", regFile, err)
			}
			in.OutputType = proofs.OutputFile
			in.FileName = filepath.Base(regFile)
			in.File = data
		}

		rc, err := pending("Registering...", func() (*dashboard.Receipt, error) {
			return dash.Register(ctx, in)
		})
		if err != nil {
			return errors.New(dashboard.UserMessage(err, "register proof"))
		}
		printReceipt(rc)
		return nil
	},
}

func printReceipt(rc *dashboard.Receipt) {
	if regJSON {
		printJSON(rc)
		return
	}
	if rc.FileName != "" {
		fmt.Printf("File:        %s\n", rc.FileName)
	}
	fmt.Printf("Prompt hash: %s\n", rc.PromptHash)
	fmt.Printf("Output hash: %s\n", rc.OutputHash)
	fmt.Printf("Creator:     %s\n", rc.Creator)
	fmt.Printf("Block:       %d\n", rc.BlockNumber)
	fmt.Printf("Transaction: %s\n", rc.TxHash)
	if rc.ExplorerURL != "" {
		fmt.Printf("Explorer:    %s\n", rc.ExplorerURL)
		if regQR {
			printQR(rc.ExplorerURL)
		}
	}
	fmt.Println()
}

func printQR(content string) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		log.Warnf("rendering qr code: %v", err)
		return
	}
	fmt.Println(q.ToSmallString(false))
}

func init() {
	registerCmd.Flags().StringVarP(&regPrompt, "prompt", "p", "", "the prompt that produced the output")
	registerCmd.Flags().StringVarP(&regOutput, "output", "o", "", "the output text")
	registerCmd.Flags().StringVarP(&regFile, "file", "f", "", "register a file as the output")
	registerCmd.Flags().StringVar(&regFiles, "files", "", "register every file matching a glob")
	registerCmd.Flags().BoolVar(&regQR, "qr", false, "print a QR code linking to the transaction")
	registerCmd.Flags().BoolVar(&regJSON, "json", false, "print receipts as JSON")
	registerCmd.MarkFlagRequired("prompt")
	rootCmd.AddCommand(registerCmd)
}
