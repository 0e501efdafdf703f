// ====================================
// File: internal/provider/provider.go
// ====================================
package provider

import (
	"errors"
	"fmt"
	"os"

	"github.com/Vadim91200/dlmmvault/internal/config"
	"github.com/Vadim91200/dlmmvault/internal/wallet"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Anchor tooling exports the target cluster and the signing keypair through
// these two variables; they take precedence over the config file so the same
// binary works inside an Anchor test harness without edits.
const (
	EnvProviderURL = "ANCHOR_PROVIDER_URL"
	EnvWalletPath  = "ANCHOR_WALLET"
)

// Provider bundles everything needed to talk to a cluster on behalf of a
// wallet: the RPC endpoints, the signing identity and the commitment level.
// It is built once at startup and read-only afterwards.
type Provider struct {
	Endpoints  []string
	Wallet     *wallet.Wallet
	Commitment rpc.CommitmentType
}

// FromEnv resolves a provider from the environment, falling back to the
// loaded config for anything the environment does not supply.
func FromEnv(cfg *config.Config, logger *zap.Logger) (*Provider, error) {
	endpoints, source := resolveEndpoints(cfg)
	if len(endpoints) == 0 {
		return nil, errors.New("no RPC endpoint: set " + EnvProviderURL + " or rpc_list in config")
	}

	w, walletSource, err := resolveWallet(cfg)
	if err != nil {
		return nil, err
	}

	commitment, err := parseCommitment(cfg.Commitment)
	if err != nil {
		return nil, err
	}

	logger.Info("Provider resolved",
		zap.String("endpoint", endpoints[0]),
		zap.Int("endpoint_count", len(endpoints)),
		zap.String("endpoint_source", source),
		zap.String("wallet", w.String()),
		zap.String("wallet_source", walletSource),
		zap.String("commitment", string(commitment)))

	return &Provider{
		Endpoints:  endpoints,
		Wallet:     w,
		Commitment: commitment,
	}, nil
}

// Primary returns the endpoint used for single-shot calls.
func (p *Provider) Primary() string {
	return p.Endpoints[0]
}

func resolveEndpoints(cfg *config.Config) ([]string, string) {
	if providerURL := os.Getenv(EnvProviderURL); providerURL != "" {
		return []string{providerURL}, EnvProviderURL
	}
	return cfg.RPCList, "config"
}

func resolveWallet(cfg *config.Config) (*wallet.Wallet, string, error) {
	if walletPath := os.Getenv(EnvWalletPath); walletPath != "" {
		w, err := wallet.NewWalletFromFile(walletPath)
		if err != nil {
			return nil, "", fmt.Errorf("loading %s: %w", EnvWalletPath, err)
		}
		return w, EnvWalletPath, nil
	}
	if cfg.PrivateKey != "" {
		w, err := wallet.NewWallet(cfg.PrivateKey)
		if err != nil {
			return nil, "", fmt.Errorf("loading private_key from config: %w", err)
		}
		return w, "config private_key", nil
	}
	if cfg.KeypairPath != "" {
		w, err := wallet.NewWalletFromFile(cfg.KeypairPath)
		if err != nil {
			return nil, "", fmt.Errorf("loading keypair_path from config: %w", err)
		}
		return w, "config keypair_path", nil
	}
	return nil, "", errors.New("no wallet: set " + EnvWalletPath + ", private_key or keypair_path")
}

func parseCommitment(value string) (rpc.CommitmentType, error) {
	switch value {
	case "processed":
		return rpc.CommitmentProcessed, nil
	case "confirmed", "":
		return rpc.CommitmentConfirmed, nil
	case "finalized":
		return rpc.CommitmentFinalized, nil
	}
	return "", fmt.Errorf("unknown commitment level %q", value)
}
