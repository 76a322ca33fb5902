package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/treecrypt/internal/config"
)

// NewDecryptCommand creates a new cobra command for the decrypt subcommand.
func NewDecryptCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "decrypt [flags] <source> <destination>",
		Aliases: []string{"dec"},
		Short:   "Decrypt a directory tree",
		Long: `Decrypt every file below source into destination, keeping relative paths.
The key is read from --key, --key-file, TREECRYPT_KEY or, on a terminal, from a prompt.`,
		Args: cobra.ExactArgs(2), //nolint:mnd // source and destination
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Decrypt = true

			return preRun(cfg)(cmd, args)
		},
		RunE: run(cfg),
	}
}
