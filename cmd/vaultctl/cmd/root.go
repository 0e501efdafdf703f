// ==================================
// File: cmd/vaultctl/cmd/root.go
// ==================================
package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Vadim91200/dlmmvault/internal/blockchain/solbc"
	"github.com/Vadim91200/dlmmvault/internal/config"
	"github.com/Vadim91200/dlmmvault/internal/events"
	"github.com/Vadim91200/dlmmvault/internal/history"
	"github.com/Vadim91200/dlmmvault/internal/logger"
	"github.com/Vadim91200/dlmmvault/internal/provider"
	"github.com/Vadim91200/dlmmvault/internal/vault"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile    string
	vaultAdmin string
)

var rootCmd = &cobra.Command{
	Use:   "vaultctl",
	Short: "Manage Meteora DLMM vaults from the command line",
	Long: `vaultctl drives the on-chain DLMM vault program: create a vault,
move SOL in and out, route liquid funds into a Meteora pool, and watch
the vault's state live.

Connection and wallet settings come from the config file, overridable
with ANCHOR_PROVIDER_URL and ANCHOR_WALLET.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "configs/config.json", "path to config file")
	rootCmd.PersistentFlags().StringVar(&vaultAdmin, "vault-admin", "", "admin pubkey of the target vault (defaults to the configured wallet)")
}

// app bundles the pieces a subcommand needs. newApp loads config and
// logging only; connect and openStore bring up the chain client and the
// history store on demand so read-only commands stay cheap.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	provider *provider.Provider
	chain    *solbc.Client
	vault    *vault.Client
	vaultCfg *vault.Config
	bus      *events.Bus
	store    history.Store
	recorder *history.Recorder
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	return &app{cfg: cfg, log: log}, nil
}

// connect resolves the provider, dials the RPC pool and builds the vault
// client. When postgres_url is configured it also attaches the history
// recorder so every operation this process confirms lands in the store.
func (a *app) connect() error {
	prov, err := provider.FromEnv(a.cfg, a.log.Logger)
	if err != nil {
		return err
	}
	a.provider = prov

	chain, err := solbc.NewClient(prov.Endpoints, prov.Commitment, a.log.Logger)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	a.chain = chain

	vaultCfg, err := buildVaultConfig(a.cfg, prov)
	if err != nil {
		return err
	}
	a.vaultCfg = vaultCfg

	client, err := vault.NewClient(chain, prov.Wallet, a.log.Logger, vaultCfg)
	if err != nil {
		return err
	}
	a.vault = client

	a.bus = events.NewBus(a.log.Logger, 64)

	if a.cfg.PostgresURL != "" {
		if err := a.openStore(); err != nil {
			return err
		}
		a.recorder = history.NewRecorder(a.store, a.log.Logger)
		a.recorder.Attach(a.bus)
	}
	return nil
}

func (a *app) openStore() error {
	if a.cfg.PostgresURL == "" {
		return fmt.Errorf("postgres_url is not configured; operation history is unavailable")
	}
	store, err := history.NewStore(a.cfg.PostgresURL, a.log.Logger)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	if err := store.RunMigrations(); err != nil {
		return fmt.Errorf("migrate history store: %w", err)
	}
	a.store = store
	return nil
}

// Close flushes and tears everything down in reverse start order.
func (a *app) Close() {
	if a.recorder != nil {
		a.recorder.Detach()
	}
	if a.bus != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.bus.Shutdown(ctx); err != nil {
			a.log.Warn("Event bus shutdown incomplete", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

func buildVaultConfig(cfg *config.Config, prov *provider.Provider) (*vault.Config, error) {
	programID, err := solana.PublicKeyFromBase58(cfg.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid program_id %q: %w", cfg.ProgramID, err)
	}
	aggregatorID, err := solana.PublicKeyFromBase58(cfg.AggregatorID)
	if err != nil {
		return nil, fmt.Errorf("invalid aggregator_id %q: %w", cfg.AggregatorID, err)
	}

	priorityFee := ""
	if cfg.PriorityFeeSol > 0 {
		priorityFee = strconv.FormatFloat(cfg.PriorityFeeSol, 'f', -1, 64)
	}

	return &vault.Config{
		ProgramID:      programID,
		AggregatorID:   aggregatorID,
		ComputeUnits:   cfg.ComputeUnits,
		PriorityFeeSol: priorityFee,
		Commitment:     prov.Commitment,
		ConfirmTimeout: time.Duration(cfg.ConfirmTimeout) * time.Second,
	}, nil
}

// targetVault resolves the vault a command operates on: the vault of
// --vault-admin when given, the configured wallet's own vault otherwise.
func (a *app) targetVault() (solana.PublicKey, error) {
	admin := a.vault.Wallet().PublicKey
	if vaultAdmin != "" {
		parsed, err := solana.PublicKeyFromBase58(vaultAdmin)
		if err != nil {
			return solana.PublicKey{}, fmt.Errorf("invalid --vault-admin %q: %w", vaultAdmin, err)
		}
		admin = parsed
	}
	addr, _, err := a.vault.VaultAddress(admin)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive vault address: %w", err)
	}
	return addr, nil
}
