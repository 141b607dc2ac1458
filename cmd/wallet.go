package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proofchain/internal/audit"
	"github.com/ziadkadry99/proofchain/internal/chain"
	"github.com/ziadkadry99/proofchain/internal/wallet"
)

var (
	walletJSON   bool
	switchAssume bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Inspect and manage the wallet connection",
}

var walletStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the authorized account and network without prompting",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		session, closeWallet := openWallet(cmd.Context(), cfg)
		defer closeWallet()

		session.Init(cmd.Context())
		return printState(session)
	},
}

var walletConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Ask the wallet for account access",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		session, closeWallet := openWallet(cmd.Context(), cfg)
		defer closeWallet()

		if err := requireWallet(cmd.Context(), session); err != nil {
			return err
		}
		return printState(session)
	},
}

var walletDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the connected account for this client",
	Long:  `Clears the local session. Wallets keep their own site permissions; revoke those in the wallet itself.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		session, closeWallet := openWallet(cmd.Context(), cfg)
		defer closeWallet()

		session.Init(cmd.Context())
		session.Disconnect()
		return printState(session)
	},
}

var walletSwitchCmd = &cobra.Command{
	Use:   "switch",
	Short: "Switch the wallet to the Sepolia testnet, adding it if needed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		session, closeWallet := openWallet(cmd.Context(), cfg)
		defer closeWallet()

		session.Init(cmd.Context())
		if st := session.State(); st.OnTarget {
			fmt.Println("Already on Sepolia")
			return nil
		}

		if !switchAssume {
			confirm := promptui.Prompt{
				Label:     "Switch wallet network to Sepolia",
				IsConfirm: true,
			}
			if _, err := confirm.Run(); err != nil {
				fmt.Println("Cancelled")
				return nil
			}
		}

		switcher := chain.Switcher{RPCURL: cfg.Wallet.SepoliaRPCURL}
		ok, _ := pending("Waiting for wallet approval...", func() (bool, error) {
			return switcher.Switch(cmd.Context(), session.Provider()), nil
		})
		if database, err := openDB(cfg); err == nil {
			recordSwitch(cmd.Context(), audit.NewStore(database), session.Address(), ok)
			database.Close()
		}
		if !ok {
			return fmt.Errorf("could not switch to Sepolia")
		}
		fmt.Println("Switched to Sepolia")
		return nil
	},
}

var walletWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow account and network changes until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		session, closeWallet := openWallet(ctx, cfg)
		defer closeWallet()

		session.Init(ctx)
		if err := printState(session); err != nil {
			return err
		}
		if err := session.Start(ctx); err != nil {
			return err
		}
		if session.Provider() == nil {
			return nil
		}

		states, unwatch := session.Watch()
		defer unwatch()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-session.Done():
				if err := session.Err(); err != nil {
					return fmt.Errorf("wallet stopped sending changes: %w", err)
				}
				return nil
			case st := <-states:
				printStateValue(st)
			}
		}
	},
}

func printState(s *wallet.Session) error {
	if walletJSON {
		return printJSON(s.State())
	}
	printStateValue(s.State())
	return nil
}

func printStateValue(st wallet.State) {
	if walletJSON {
		printJSON(st)
		return
	}
	if !st.Connected {
		fmt.Println("Not connected")
		return
	}
	marker := ""
	if !st.OnTarget {
		marker = " (wrong network)"
	}
	fmt.Printf("%s on %s%s\n", st.ShortAddress, st.Network, marker)
}

func init() {
	walletCmd.PersistentFlags().BoolVar(&walletJSON, "json", false, "print state as JSON")
	walletSwitchCmd.Flags().BoolVarP(&switchAssume, "yes", "y", false, "do not ask for confirmation")
	walletCmd.AddCommand(walletStatusCmd, walletConnectCmd, walletDisconnectCmd, walletSwitchCmd, walletWatchCmd)
	rootCmd.AddCommand(walletCmd)
}
