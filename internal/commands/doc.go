// Package commands provides the command-line interface for the treecrypt tool.
//
// It implements commands for:
//   - key generation
//   - encryption of a directory tree
//   - decryption of a directory tree
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra and viper. Every flag can also be
// set as TREECRYPT_<FLAG>, e.g. TREECRYPT_KEY or TREECRYPT_KEY_FILE.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/idelchi/treecrypt/internal/config"
	"github.com/idelchi/treecrypt/internal/logic"
)

// preRun returns a PreRunE handler that resolves the positional source and destination
// into cfg and validates the configuration.
func preRun(cfg *config.Config) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		cfg.Source, cfg.Destination = args[0], args[1]

		return cobraext.Validate(cfg, cfg)
	}
}

// run executes the job on the command's streams.
func run(cfg *config.Config) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return logic.Run(cfg, logic.Streams{
			In:  os.Stdin,
			Out: cmd.OutOrStdout(),
			Err: cmd.ErrOrStderr(),
		})
	}
}
