package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/fileledger-go/identity"
	"github.com/bitfsorg/fileledger-go/ledger"
	"github.com/bitfsorg/fileledger-go/output"
	"github.com/bitfsorg/fileledger-go/vault"
)

func newVerifyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [chain.json]",
		Short: "Check chain integrity",
		Long: `Check every block's hash and link to its predecessor. Without an
argument the data directory's chain is verified and its artifact store is
checked against the files the chain records.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				c, err := ledger.LoadFile(args[0])
				if err != nil {
					return err
				}
				if err := c.VerifyDetailed(); err != nil {
					a.recorder.VerifyFailed()
					return fmt.Errorf("chain verification failed: %w", err)
				}
				fmt.Fprintf(out, "Chain %s OK: %d blocks\n", c.ID, c.Len())
				return nil
			}

			prune, _ := cmd.Flags().GetBool("prune")
			v, err := a.openVault()
			if err != nil {
				return err
			}
			defer v.Close()
			if err := v.Verify(); err != nil {
				return fmt.Errorf("chain verification failed: %w", err)
			}
			fmt.Fprintf(out, "Chain %s OK: %d blocks\n", v.Chain.ID, v.Chain.Len())

			check := v.CheckArtifacts
			if prune {
				check = v.PruneOrphans
			}
			report, err := check()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Artifacts: %d recorded, %d bytes stored\n", report.Recorded, report.Bytes)
			for _, d := range report.Orphans {
				if prune {
					fmt.Fprintf(out, "pruned orphan %s\n", d)
				} else {
					fmt.Fprintf(out, "orphan %s\n", d)
				}
			}
			for _, d := range report.Missing {
				fmt.Fprintf(out, "missing %s\n", d)
			}
			if len(report.Missing) > 0 {
				return fmt.Errorf("%w: %d file(s)", vault.ErrArtifactMissing, len(report.Missing))
			}
			return nil
		},
	}
	cmd.Flags().Bool("prune", false, "delete stored artifacts no block records")
	return cmd
}

func newBlockCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "block [hash|height]",
		Short: "Print one block of the chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.openVault()
			if err != nil {
				return err
			}
			defer v.Close()

			height, b, err := v.Block(args[0])
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "height\t%d\n", height)
			fmt.Fprintf(tw, "hash\t%s\n", b.Hash)
			fmt.Fprintf(tw, "previous\t%s\n", b.PreviousHash)
			fmt.Fprintf(tw, "timestamp\t%s\n", ledger.FormatTimestamp(b.Timestamp))
			fmt.Fprintf(tw, "nonce\t%d\n", b.Nonce)
			fmt.Fprintf(tw, "files\t%d\n", len(b.Data.Files))
			for _, e := range b.Data.Files {
				fmt.Fprintf(tw, "  %s\t%s\n", e.File, ownerSuffix(e.Owner))
			}
			return tw.Flush()
		},
	}
}

func newRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore [chain.json]",
		Short: "Replace the data directory's chain with a verified copy",
		Long: `Verify the given chain document and install it as the data
directory's chain. The current chain file may be missing or damaged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ledger.LoadFile(args[0])
			if err != nil {
				return err
			}
			v, err := vault.Restore(a.cfg.DataDir, a.cfg, c)
			if err != nil {
				if errors.Is(err, ledger.ErrIntegrityViolation) {
					a.recorder.VerifyFailed()
				}
				return err
			}
			defer v.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Restored chain %s: %d blocks\n", v.Chain.ID, v.Chain.Len())
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Draw the chain as a tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			short, _ := cmd.Flags().GetInt("short")

			v, err := a.openVault()
			if err != nil {
				return err
			}
			defer v.Close()

			out := cmd.OutOrStdout()
			fmt.Fprint(out, output.RenderChain(v.Chain, short))
			if err := v.Chain.VerifyDetailed(); err != nil {
				fmt.Fprintf(out, "WARNING: %v\n", err)
			}
			return nil
		},
	}
	cmd.Flags().Int("short", output.DefaultShort, "hash characters to show (0 = full)")
	return cmd
}

func newLsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List files recorded on chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var owner string
			if pubPath, _ := cmd.Flags().GetString("pubkey"); pubPath != "" {
				fp, err := identity.ReadFingerprint(pubPath)
				if err != nil {
					return err
				}
				owner = fp
			}

			v, err := a.openVault()
			if err != nil {
				return err
			}
			defer v.Close()

			records, err := v.Files(owner)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "HEIGHT\tFILE\tOWNER")
			for _, r := range records {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Height, r.File, ownerSuffix(r.Owner))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("pubkey", "", "only list files owned by this PEM public key")
	return cmd
}

// ownerSuffix shortens a fingerprint to its distinguishing tail.
func ownerSuffix(fp string) string {
	const n = 16
	if len(fp) <= n {
		return fp
	}
	return "..." + fp[len(fp)-n:]
}
