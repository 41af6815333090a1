package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/fileledger-go/digest"
	"github.com/bitfsorg/fileledger-go/filecrypt"
	"github.com/bitfsorg/fileledger-go/identity"
	"github.com/bitfsorg/fileledger-go/output"
)

func newUploadCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload [files...]",
		Short: "Encrypt files and record them in a new block",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pubPath, _ := cmd.Flags().GetString("pubkey")
			maxAttempts, _ := cmd.Flags().GetUint64("max-attempts")
			owner, err := identity.ReadFingerprint(pubPath)
			if err != nil {
				return err
			}

			v, err := a.openVault()
			if err != nil {
				return err
			}
			defer v.Close()
			v.MineBudget = maxAttempts

			return a.run(cmd.Context(), func(ctx context.Context) error {
				progress := output.NewUploadProgress(len(args), cmd.ErrOrStderr())
				res, err := v.Upload(ctx, args, owner, progress.Step)
				progress.Finish()
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, res.Message)
				for _, f := range res.Files {
					fmt.Fprintf(out, "%s digest=%s secret=%s\n", f.Path, f.Digest, f.Secret)
				}
				return nil
			})
		},
	}
	cmd.Flags().String("pubkey", "", "owner public key PEM")
	cmd.Flags().Uint64("max-attempts", 0, "give up mining after this many nonces (0 = unbounded)")
	_ = cmd.MarkFlagRequired("pubkey")
	return cmd
}

func newDownloadCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download [digest]",
		Short: "Decrypt a file recorded on chain for its owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pubPath, _ := cmd.Flags().GetString("pubkey")
			secret, _ := cmd.Flags().GetString("secret")
			out, _ := cmd.Flags().GetString("output")
			owner, err := identity.ReadFingerprint(pubPath)
			if err != nil {
				return err
			}

			v, err := a.openVault()
			if err != nil {
				return err
			}
			defer v.Close()

			if err := v.Download(args[0], owner, secret, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().String("pubkey", "", "owner public key PEM")
	cmd.Flags().String("secret", "", "decryption secret (the plaintext digest printed by upload)")
	cmd.Flags().StringP("output", "o", "", "output path")
	for _, name := range []string{"pubkey", "secret", "output"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newEncryptCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encrypt [file]",
		Short: "Encrypt a file the way upload does, without recording it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, _ := cmd.Flags().GetString("secret")
			out, _ := cmd.Flags().GetString("output")
			if secret == "" {
				d, err := digest.File(args[0])
				if err != nil {
					return err
				}
				secret = d
			}

			c := filecrypt.Cipher{FixedSaltIV: a.cfg.FixedSaltIV}
			if err := c.EncryptFile(args[0], out, secret); err != nil {
				return err
			}
			d, err := digest.File(out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s digest=%s secret=%s\n", out, d, secret)
			return nil
		},
	}
	cmd.Flags().String("secret", "", "encryption secret (default: the file's digest)")
	cmd.Flags().StringP("output", "o", "", "output path")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newDecryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decrypt [artifact]",
		Short: "Decrypt an encrypted artifact without consulting the chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, _ := cmd.Flags().GetString("secret")
			out, _ := cmd.Flags().GetString("output")
			if err := (filecrypt.Cipher{}).DecryptFile(args[0], out, secret); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().String("secret", "", "decryption secret")
	cmd.Flags().StringP("output", "o", "", "output path")
	_ = cmd.MarkFlagRequired("secret")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newDigestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest [files...]",
		Short: "Print the content digest of files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				d, err := digest.File(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", d, path)
			}
			return nil
		},
	}
}
