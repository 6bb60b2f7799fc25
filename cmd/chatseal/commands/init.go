package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create your key pair and publish the public key",
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := appCtx.Init(cmd.Context())
			if err != nil {
				return err
			}
			if appCtx.Relay == nil {
				fmt.Println("Key pair ready (not published: no relay configured).")
			} else {
				fmt.Println("Key pair ready and published.")
			}
			fmt.Printf("Fingerprint: %s\n", fp)
			return nil
		},
	}
}
