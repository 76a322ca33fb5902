// Command treecrypt encrypts and decrypts directory trees.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/idelchi/treecrypt/internal/commands"
	"github.com/idelchi/treecrypt/internal/config"
)

// Global variable for CI stamping.
var version = "unknown - unofficial & generated by unknown"

func main() {
	cfg := &config.Config{}

	if err := commands.NewRootCommand(cfg, version).Execute(); err != nil {
		if errors.Is(err, cobraext.ErrExitGracefully) {
			os.Exit(0)
		}

		fmt.Fprintln(os.Stderr, "error:", err)

		os.Exit(1)
	}
}
