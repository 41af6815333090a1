package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/fileledger-go/identity"
)

func newIdentityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Manage owner key pairs",
	}
	cmd.AddCommand(newIdentityNewCmd(), newIdentityFingerprintCmd())
	return cmd
}

func newIdentityNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a key pair and write the public key as PEM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			privOut, _ := cmd.Flags().GetString("private-out")

			id, err := identity.Generate()
			if err != nil {
				return err
			}
			if err := id.WritePublicPEM(out); err != nil {
				return err
			}
			if privOut != "" {
				if err := id.WritePrivateKey(privOut); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), id.Fingerprint())
			return nil
		},
	}
	cmd.Flags().String("out", "", "public key PEM output path")
	cmd.Flags().String("private-out", "", "private key output path (hex)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newIdentityFingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint [pem]",
		Short: "Print the owner fingerprint of a PEM public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := identity.ReadFingerprint(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fp)
			return nil
		},
	}
}
