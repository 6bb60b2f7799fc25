package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print your public key fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := appCtx.Keys.Fingerprint(cmd.Context(), appCtx.User)
			if err != nil {
				return err
			}
			fmt.Printf("Fingerprint: %s\n", fp)
			return nil
		},
	}
}
