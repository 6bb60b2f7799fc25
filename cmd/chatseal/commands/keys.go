package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"chatseal/internal/crypto"
)

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage your local key pair",
	}
	cmd.AddCommand(keysExportCmd(), keysResetCmd(), keysRotateCmd())
	return cmd
}

func keysExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print your public key as JWK",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := appCtx.PublicKey(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(snap)
			return nil
		},
	}
}

func keysResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete your local key pair (messages sent to it become unreadable)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete keys without --yes")
			}
			if err := appCtx.Keys.ResetKeyPair(cmd.Context(), appCtx.User); err != nil {
				return err
			}
			fmt.Println("Key pair deleted")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func keysRotateCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Replace your key pair and publish the new public key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to rotate keys without --yes")
			}
			ctx := cmd.Context()
			kp, err := appCtx.Keys.RotateKeyPair(ctx, appCtx.User)
			if err != nil {
				return err
			}
			if appCtx.Relay != nil {
				if _, err := appCtx.Keys.Publish(ctx, appCtx.User); err != nil {
					return err
				}
			}
			fmt.Printf("New fingerprint: %s\n", crypto.Fingerprint(kp.Public))
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm rotation")
	return cmd
}
