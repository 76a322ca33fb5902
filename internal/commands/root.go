package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/idelchi/treecrypt/internal/config"
)

// NewRootCommand creates the root command with common configuration.
// It sets up environment variable binding and flag handling.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	root := cobraext.NewDefaultRootCommand(version)

	root.Use = "treecrypt [flags] command [flags]"
	root.Short = "Directory tree encryption utility"
	root.Long = `Encrypts or decrypts every file below a source directory into a mirrored destination tree.
Each file is sealed independently with AES and a fresh random IV.
Flags can also be set through TREECRYPT_* environment variables, e.g. TREECRYPT_KEY.`

	root.Flags().BoolP("show", "s", false, "Show the configuration and exit")

	flags := root.PersistentFlags()

	flags.StringP("key", "k", "", "Encryption key, hex-encoded (16, 24 or 32 bytes)")
	flags.StringP("key-file", "f", "", "Path to a file holding the hex-encoded key")
	flags.Int("key-length", 256, "Length in bits of a generated key: 128, 192 or 256") //nolint:mnd
	flags.String("suite", "ctr-hmac", "Cipher suite used for encryption: ctr-hmac or gcm-stream")

	flags.StringSliceP("include", "i", nil, "Only process files matching these glob patterns")
	flags.StringSliceP("exclude", "e", nil, "Skip files matching these glob patterns")
	flags.String("include-from", "", "Read include patterns from a JSON(C) array file")
	flags.String("exclude-from", "", "Read exclude patterns from a JSON(C) array file")

	flags.Bool("dry", false, "List the files that would be processed and exit")
	flags.Bool("stats", false, "Print statistics after the run")
	flags.BoolP("quiet", "q", false, "Suppress progress and summary output")
	flags.Bool("preserve-timestamps", false, "Copy source modification times onto the outputs")
	flags.String("log-level", "warn", "Log level: debug, info, warn or error")

	root.AddCommand(NewEncryptCommand(cfg), NewDecryptCommand(cfg), NewKeygenCommand())

	return root
}
