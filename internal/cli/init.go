package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/fileledger-go/config"
	"github.com/bitfsorg/fileledger-go/vault"
)

func newInitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new chain in the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("difficulty") {
				d, _ := cmd.Flags().GetUint("difficulty")
				cfg.Difficulty = d
				if err := config.ValidateConfig(cfg); err != nil {
					return err
				}
			}

			force, _ := cmd.Flags().GetBool("force")
			if force {
				if err := os.Remove(cfg.ChainPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("remove existing chain: %w", err)
				}
			}

			v, err := vault.Create(cfg.DataDir, cfg)
			if err != nil {
				if errors.Is(err, vault.ErrChainExists) {
					return fmt.Errorf("%w; use --force to replace it", err)
				}
				return err
			}
			defer v.Close()

			if !a.cfgFound {
				if err := config.SaveConfig(config.ConfigPath(cfg.DataDir), cfg); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created chain %s (difficulty %d) at %s\n",
				v.Chain.ID, v.Chain.Difficulty, v.ChainPath)
			return nil
		},
	}
	cmd.Flags().Uint("difficulty", config.DefaultDifficulty, "leading zero hex characters required of each block hash")
	cmd.Flags().Bool("force", false, "replace an existing chain")
	return cmd
}
