// =======================================
// File: cmd/vaultctl/cmd/operation.go
// =======================================
package cmd

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/Vadim91200/dlmmvault/internal/events"
	"github.com/Vadim91200/dlmmvault/internal/vault"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// cliWalletName labels single-shot CLI operations on the event bus, where
// batch tasks carry their wallet's name from wallets.csv.
const cliWalletName = "default"

// runOperation executes one mutating vault call, publishes the operation
// lifecycle on the bus and prints the outcome. The terminal event goes out
// synchronously so the history recorder finishes its write before the
// process exits.
func runOperation(a *app, operation string, vaultAddr solana.PublicKey, lamports, shares uint64,
	fn func(ctx context.Context) (*vault.OpResult, error)) error {

	walletAddr := a.vault.Wallet().PublicKey.String()
	_ = a.bus.Publish(events.NewOperationSubmitted(
		operation, cliWalletName, walletAddr, vaultAddr.String(), lamports, shares))

	start := time.Now()
	result, err := fn(context.Background())
	if err != nil {
		signature := ""
		if result != nil {
			signature = result.Signature
		}
		publishFinal(a, events.NewOperationFailed(
			operation, cliWalletName, walletAddr, vaultAddr.String(), signature, err))
		if signature != "" {
			fmt.Printf("%s failed\n  signature: %s\n", operation, signature)
		}
		return err
	}

	publishFinal(a, events.NewOperationConfirmed(
		operation, cliWalletName, walletAddr, vaultAddr.String(),
		result.Signature, lamports, shares, time.Since(start)))

	fmt.Printf("%s confirmed\n", operation)
	fmt.Printf("  signature: %s\n", result.Signature)
	fmt.Printf("  vault:     %s\n", result.Vault.String())
	if result.Status != nil {
		fmt.Printf("  status:    %s (slot %d)\n", result.Status.Status, result.Status.Slot)
	}
	return nil
}

func publishFinal(a *app, event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.bus.PublishSync(ctx, event); err != nil {
		a.log.Warn("Event delivery incomplete", zap.Error(err))
	}
}

// parseSolAmount converts a SOL string from the command line to lamports.
func parseSolAmount(raw string) (uint64, error) {
	sol, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid SOL amount %q", raw)
	}
	if sol <= 0 {
		return 0, fmt.Errorf("SOL amount must be positive, got %q", raw)
	}
	return uint64(math.Round(sol * vault.LamportsPerSol)), nil
}
