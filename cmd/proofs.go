package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proofchain/internal/chain"
	"github.com/ziadkadry99/proofchain/internal/proofapi"
	"github.com/ziadkadry99/proofchain/internal/proofs"
)

var (
	listMine   bool
	listSearch string
	listSort   string
	listOffset int
	listLimit  int
	proofsJSON bool
)

var proofsCmd = &cobra.Command{
	Use:   "proofs",
	Short: "Browse registered proofs",
}

var proofsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List proofs, optionally only yours, filtered and sorted",
	Long: `Lists proofs from the backend. --mine keeps proofs created by the
connected wallet; without a connected wallet every proof is listed.
--search matches the prompt, output and transaction hashes and the creator
case-insensitively. With --limit a page
is fetched from the backend starting at --offset; filtering then applies to
that page only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := proofs.ParseSort(listSort)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		api := newClient(cfg)

		q := proofs.Query{Mode: proofs.ModeAll, Search: listSearch, Sort: order}
		if listMine {
			session, closeWallet := openWallet(ctx, cfg)
			defer closeWallet()
			session.Init(ctx)
			q.Mode, q.Address = proofs.ModeMy, session.Address()
		}

		records, err := pending("Loading proofs...", func() ([]proofs.Record, error) {
			if listLimit > 0 {
				page, err := api.ListPaginated(ctx, listOffset, listLimit)
				if err != nil {
					return nil, err
				}
				return page.Proofs, nil
			}
			list, err := api.ListProofs(ctx)
			if err != nil {
				return nil, err
			}
			return list.Proofs, nil
		})
		if err != nil {
			return fmt.Errorf("failed to load proofs: %w", err)
		}

		out := proofs.Apply(records, q)
		if proofsJSON {
			return printJSON(out)
		}
		if len(out) == 0 {
			fmt.Println("No proofs found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tCREATOR\tPROMPT HASH\tOUTPUT HASH")
		for _, p := range out {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				p.ID, formatTime(p.Timestamp), chain.FormatAddress(p.Creator), shortHash(p.PromptHash), shortHash(p.OutputHash))
		}
		w.Flush()

		st := proofs.Summarize(records, q.Address)
		fmt.Printf("\n%d shown, %d total, %d creators", len(out), st.TotalProofs, st.UniqueCreators)
		if q.Address != "" {
			fmt.Printf(", %d yours", st.MyProofs)
		}
		fmt.Println()
		return nil
	},
}

var proofsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a single proof",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := newClient(cfg).GetProof(cmd.Context(), args[0])
		if err != nil {
			var apiErr *proofapi.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
				return fmt.Errorf("proof %s not found", args[0])
			}
			return err
		}
		if proofsJSON {
			return printJSON(p)
		}
		fmt.Printf("ID:          %s\n", p.ID)
		fmt.Printf("Created:     %s\n", formatTime(p.Timestamp))
		fmt.Printf("Creator:     %s\n", p.Creator)
		fmt.Printf("Prompt hash: %s\n", p.PromptHash)
		fmt.Printf("Output hash: %s\n", p.OutputHash)
		if p.TxHash != "" {
			fmt.Printf("Transaction: %s\n", p.TxHash)
			fmt.Printf("Explorer:    %s\n", chain.TxURL(p.TxHash))
		}
		return nil
	},
}

var proofsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of registered proofs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		n, err := newClient(cfg).ProofCount(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

func formatTime(ts proofs.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04:05")
}

func shortHash(h string) string {
	if len(h) <= 14 {
		return h
	}
	return h[:8] + "..." + h[len(h)-4:]
}

func init() {
	proofsListCmd.Flags().BoolVar(&listMine, "mine", false, "only proofs created by the connected wallet")
	proofsListCmd.Flags().StringVarP(&listSearch, "search", "s", "", "filter by prompt, output or transaction hash, or creator substring")
	proofsListCmd.Flags().StringVar(&listSort, "sort", "recent", "sort order: recent or oldest")
	proofsListCmd.Flags().IntVar(&listOffset, "offset", 0, "page offset (with --limit)")
	proofsListCmd.Flags().IntVar(&listLimit, "limit", 0, "fetch a single page of this size")
	proofsCmd.PersistentFlags().BoolVar(&proofsJSON, "json", false, "print JSON")
	proofsCmd.AddCommand(proofsListCmd, proofsGetCmd, proofsCountCmd)
	rootCmd.AddCommand(proofsCmd)
}
