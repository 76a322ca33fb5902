package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/treecrypt/internal/config"
)

// NewEncryptCommand creates a new cobra command for the encrypt subcommand.
func NewEncryptCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "encrypt [flags] <source> <destination>",
		Aliases: []string{"enc"},
		Short:   "Encrypt a directory tree",
		Long: `Encrypt every regular file below source into destination, keeping relative paths.
Without --key or --key-file a new key of --key-length bits is generated and printed on stdout.`,
		Args:    cobra.ExactArgs(2), //nolint:mnd // source and destination
		PreRunE: preRun(cfg),
		RunE:    run(cfg),
	}
}
