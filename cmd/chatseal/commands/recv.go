package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"chatseal/internal/domain"
)

// recv <peer>: show the conversation with <peer>.
func recvCmd() *cobra.Command {
	var (
		conversation string
		limit        int
	)
	cmd := &cobra.Command{
		Use:   "recv [peer]",
		Short: "Show a conversation, decrypting messages sent to you",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv := domain.ConversationID(conversation)
			if conv == "" {
				if len(args) == 0 {
					return fmt.Errorf("give a peer or --conversation")
				}
				conv = directConversation(appCtx.User, domain.UserID(args[0]))
			}

			msgs, err := appCtx.Conversation(cmd.Context(), conv, limit)
			if err != nil {
				return err
			}
			for _, m := range msgs {
				lock := " "
				if m.Encrypted {
					lock = "*"
				}
				fmt.Printf("%s %s [%s] %s\n", m.CreatedAt.Local().Format(time.DateTime), lock, m.SenderID, m.Text)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&conversation, "conversation", "c", "", "conversation id (default: derived from both user ids)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "show at most this many recent messages (0 for all)")
	return cmd
}
