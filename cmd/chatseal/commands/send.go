package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chatseal/internal/domain"
)

// send <peer> <message>: send a message to <peer>, encrypted when possible.
func sendCmd() *cobra.Command {
	var conversation string
	cmd := &cobra.Command{
		Use:   "send <peer> <message...>",
		Short: "Send a message to a peer",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			peer := domain.UserID(args[0])
			text := strings.Join(args[1:], " ")
			conv := domain.ConversationID(conversation)
			if conv == "" {
				conv = directConversation(appCtx.User, peer)
			}

			rec, err := appCtx.Send(cmd.Context(), peer, conv, text)
			if err != nil {
				return err
			}
			state := "unencrypted"
			if rec.IsEncrypted {
				state = "encrypted"
			}
			fmt.Printf("sent %s (%s)\n", rec.ID, state)
			return nil
		},
	}
	cmd.Flags().StringVarP(&conversation, "conversation", "c", "", "conversation id (default: derived from both user ids)")
	return cmd
}

// directConversation names the one-to-one conversation between a and b the
// same way from both sides.
func directConversation(a, b domain.UserID) domain.ConversationID {
	if b < a {
		a, b = b, a
	}
	return domain.ConversationID(string(a) + ":" + string(b))
}
