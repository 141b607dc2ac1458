package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proofchain/internal/chat"
	"github.com/ziadkadry99/proofchain/internal/hashes"
	mcpserver "github.com/ziadkadry99/proofchain/internal/mcp"
)

var mcpNoChat bool

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing proof registration, verification and browsing tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		api := newClient(cfg)

		session, closeWallet := openWallet(ctx, cfg)
		defer closeWallet()
		session.Init(ctx)
		if err := session.Start(ctx); err != nil {
			log.Warnf("wallet notifications unavailable: %v", err)
		}

		var chatter mcpserver.Chatter
		if !mcpNoChat {
			database, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close()
			chatter = chat.NewController(api, chat.NewStore(database), session)
		}

		dash, closeDash := newDashboard(cfg, api, session)
		defer closeDash()

		view := hashes.New(api, session, cfg.PollInterval.Std())
		srv := mcpserver.NewServer(dash, view, chatter)

		fmt.Fprintf(os.Stderr, "proofchain MCP server started on stdio (backend=%s, wallet=%s)\n", api.BaseURL(), walletLabel(session))
		return srv.Serve()
	},
}

func init() {
	mcpCmd.Flags().BoolVar(&mcpNoChat, "no-chat", false, "do not offer the chat tool")
	rootCmd.AddCommand(mcpCmd)
}
