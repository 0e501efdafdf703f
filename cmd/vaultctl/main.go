// =============================
// File: cmd/vaultctl/main.go
// =============================
package main

import (
	"os"

	"github.com/Vadim91200/dlmmvault/cmd/vaultctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
