package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proofchain/internal/chat"
)

var (
	chatSession string
	chatList    bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask the ProofChain assistant",
	Long: `Sends a single message when one is given, otherwise starts an
interactive session. Conversations are kept in the local history database;
resume one with --session. Type "exit" or press Ctrl+C to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		ctx := cmd.Context()
		session, closeWallet := openWallet(ctx, cfg)
		defer closeWallet()
		session.Init(ctx)

		ctl := chat.NewController(newClient(cfg), chat.NewStore(database), session)

		if chatList {
			sessions, err := ctl.Sessions(ctx, 20)
			if err != nil {
				return err
			}
			for _, s := range sessions {
				fmt.Printf("%s  %s\n", s.ID, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		}

		sessionID := chatSession
		if sessionID != "" {
			history, err := ctl.History(ctx, sessionID)
			if err != nil {
				return err
			}
			for _, m := range history {
				printChatMessage(m)
			}
		}

		if len(args) > 0 {
			_, err := ask(cmd, ctl, sessionID, strings.Join(args, " "))
			return err
		}

		for {
			p := promptui.Prompt{Label: "You"}
			input, err := p.Run()
			if err != nil {
				if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
					return nil
				}
				return err
			}
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			if input == "exit" || input == "quit" {
				return nil
			}
			id, err := ask(cmd, ctl, sessionID, input)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
			}
			if id != "" {
				sessionID = id
			}
		}
	},
}

// ask sends one message and prints the reply. It returns the session id the
// message was stored under.
func ask(cmd *cobra.Command, ctl *chat.Controller, sessionID, input string) (string, error) {
	turn, err := pending(chat.PendingText, func() (*chat.Turn, error) {
		return ctl.Send(cmd.Context(), sessionID, input)
	})
	if turn != nil {
		sessionID = turn.SessionID
	}
	if err != nil {
		return sessionID, err
	}
	printChatMessage(*turn.Assistant)
	return sessionID, nil
}

func printChatMessage(m chat.Message) {
	who := "You"
	if m.Role == chat.RoleAssistant {
		who = "Assistant"
	}
	fmt.Printf("%s: %s\n\n", who, m.Content)
}

func init() {
	chatCmd.Flags().StringVar(&chatSession, "session", "", "continue an existing session")
	chatCmd.Flags().BoolVar(&chatList, "sessions", false, "list recent sessions")
	rootCmd.AddCommand(chatCmd)
}
