package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proofchain/internal/audit"
	"github.com/ziadkadry99/proofchain/internal/chain"
	"github.com/ziadkadry99/proofchain/internal/chat"
	"github.com/ziadkadry99/proofchain/internal/dashboard"
	"github.com/ziadkadry99/proofchain/internal/docs"
	"github.com/ziadkadry99/proofchain/internal/hashes"
	"github.com/ziadkadry99/proofchain/internal/home"
	"github.com/ziadkadry99/proofchain/internal/provider"
	"github.com/ziadkadry99/proofchain/internal/server"
	"github.com/ziadkadry99/proofchain/internal/wallet"
)

const shutdownDrain = 10 * time.Second

var (
	servePort     int
	serveAllowAll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ProofChain web UI",
	Long:  `Starts the web UI and its JSON API: home statistics, the registration dashboard, the proof browser, the assistant chat and the documentation pages.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		database, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		site, err := docs.Load()
		if err != nil {
			return fmt.Errorf("loading docs: %w", err)
		}

		api := newClient(cfg)
		session, closeWallet := openWallet(ctx, cfg)
		defer closeWallet()

		trail := audit.NewStore(database)
		switcher := chain.Switcher{RPCURL: cfg.Wallet.SepoliaRPCURL}
		switchNetwork := func(r *http.Request, p provider.Provider) bool {
			ok := switcher.Switch(r.Context(), p)
			recordSwitch(r.Context(), trail, session.Address(), ok)
			return ok
		}

		dash := dashboard.New(api, session, dashboard.WithRecorder(trail))
		chatCtl := chat.NewController(api, chat.NewStore(database), session)
		view := hashes.New(api, session, cfg.PollInterval.Std())

		srv := server.New(server.Config{
			Port:           cfg.Server.Port,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowAll:       cfg.Server.AllowAll || serveAllowAll,
			RequestTimeout: cfg.RequestTimeout.Std(),
		}, dash, chatCtl, site)

		r := srv.Router()
		wallet.RegisterRoutes(r, session, switchNetwork)
		home.RegisterRoutes(r, home.NewController(api))
		hashes.RegisterRoutes(r, view)
		audit.RegisterRoutes(r, trail)

		srv.Go(func(ctx context.Context) {
			session.Init(ctx)
			if err := session.Start(ctx); err != nil {
				log.Warnf("wallet notifications unavailable: %v", err)
			}
		})
		srv.Go(view.Run)

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
		}()

		fmt.Fprintf(os.Stderr, "proofchain %s starting on http://localhost:%d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Backend: %s\n", api.BaseURL())
		fmt.Fprintf(os.Stderr, "  Wallet:  %s\n", walletLabel(session))
		fmt.Fprintf(os.Stderr, "  History: %s\n", database.Path())

		// Run returns once handlers and loops are done, so the deferred
		// database and wallet closes cannot race them.
		err = srv.Run(ctx, shutdownDrain)
		if ctx.Err() != nil {
			if err != nil {
				log.Errorf("shutdown: %v", err)
			}
			return nil
		}
		return err
	},
}

func walletLabel(s *wallet.Session) string {
	if s.Provider() == nil {
		return "none detected"
	}
	return "detected"
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 3000, "port to listen on")
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "allow CORS requests from any origin")
	rootCmd.AddCommand(serveCmd)
}
