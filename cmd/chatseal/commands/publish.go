package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"chatseal/internal/app"
)

func publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Publish your public key to the relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			if appCtx.Relay == nil {
				return app.ErrNoRelay
			}
			if _, err := appCtx.Keys.Publish(cmd.Context(), appCtx.User); err != nil {
				return err
			}
			fmt.Println("Published public key to relay")
			return nil
		},
	}
}
