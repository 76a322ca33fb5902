package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/treecrypt/internal/logic"
)

// NewKeygenCommand creates a new cobra command printing a fresh hex-encoded key.
func NewKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "keygen",
		Aliases: []string{"gen"},
		Short:   "Generate a new encryption key of --key-length bits",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic.Keygen(cmd.OutOrStdout(), viper.GetInt("key-length"))
		},
	}
}
