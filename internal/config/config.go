// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/spf13/viper"
)

type Config struct {
	RPCList        []string `mapstructure:"rpc_list"`
	WebSocketURL   string   `mapstructure:"websocket_url"`
	Cluster        string   `mapstructure:"cluster"`
	ProgramID      string   `mapstructure:"program_id"`
	AggregatorID   string   `mapstructure:"aggregator_id"`
	KeypairPath    string   `mapstructure:"keypair_path"`
	PrivateKey     string   `mapstructure:"private_key"`
	Commitment     string   `mapstructure:"commitment"`
	RPCDelay       int      `mapstructure:"rpc_delay"`
	Retries        int      `mapstructure:"retries"`
	Workers        int      `mapstructure:"workers"`
	ConfirmTimeout int      `mapstructure:"confirm_timeout"`
	PriorityFeeSol float64  `mapstructure:"priority_fee_sol"`
	ComputeUnits   uint32   `mapstructure:"compute_units"`
	PostgresURL    string   `mapstructure:"postgres_url"`
	DebugLogging   bool     `mapstructure:"debug_logging"`
	LogFile        string   `mapstructure:"log_file"`
}

const (
	DefaultRPCDelay       = 100
	DefaultWorkers        = 5
	DefaultRetries        = 3
	DefaultConfirmTimeout = 60
	DefaultComputeUnits   = 200_000
	DefaultCommitment     = "confirmed"
	DefaultCluster        = "mainnet-beta"

	// Meteora DLMM program on mainnet, the aggregator the vault CPIs into.
	DefaultAggregatorProgram = "LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo"

	// Compute budget program caps a transaction at this many units.
	MaxComputeUnits = 1_400_000
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"rpc_delay":       DefaultRPCDelay,
		"workers":         DefaultWorkers,
		"retries":         DefaultRetries,
		"confirm_timeout": DefaultConfirmTimeout,
		"compute_units":   DefaultComputeUnits,
		"commitment":      DefaultCommitment,
		"cluster":         DefaultCluster,
		"aggregator_id":   DefaultAggregatorProgram,
		"log_file":        "dlmmvault.log",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	if cfg.WebSocketURL != "" {
		if err := validateURLWithCache(cfg.WebSocketURL, "ws"); err != nil {
			return errors.New("invalid WebSocket URL protocol")
		}
	}
	if cfg.ProgramID == "" {
		return errors.New("missing program_id in configuration")
	}
	if err := validatePubkey(cfg.ProgramID); err != nil {
		return errors.New("invalid program_id")
	}
	if err := validatePubkey(cfg.AggregatorID); err != nil {
		return errors.New("invalid aggregator_id")
	}
	if err := validateCommitment(cfg.Commitment); err != nil {
		return err
	}
	if cfg.PostgresURL != "" {
		if err := validateURLWithCache(cfg.PostgresURL, "postgres"); err != nil {
			return errors.New("invalid postgres_url")
		}
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.RPCDelay <= 0 {
		return errors.New("invalid rpc_delay")
	}
	if cfg.Workers < 0 {
		return errors.New("invalid workers count")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.ConfirmTimeout <= 0 {
		return errors.New("invalid confirm_timeout")
	}
	if cfg.ComputeUnits == 0 || cfg.ComputeUnits > MaxComputeUnits {
		return errors.New("invalid compute_units")
	}
	if cfg.PriorityFeeSol < 0 {
		return errors.New("invalid priority_fee_sol")
	}
	return nil
}

func validateCommitment(commitment string) error {
	switch commitment {
	case "processed", "confirmed", "finalized":
		return nil
	}
	return errors.New("commitment must be processed, confirmed or finalized")
}

// validatePubkey checks that a string is a base58-encoded 32-byte key.
func validatePubkey(value string) error {
	decoded, err := base58.Decode(value)
	if err != nil {
		return errors.New("invalid base58 encoding")
	}
	if len(decoded) != 32 {
		return errors.New("public key must decode to 32 bytes")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

// loadEnvironmentVariables applies DLMM_VAULT_* overrides on top of the
// file config. Anchor's ANCHOR_PROVIDER_URL / ANCHOR_WALLET variables are
// resolved one level up, by the provider package.
func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("DLMM_VAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envProgram := v.GetString("PROGRAM_ID"); envProgram != "" {
		cfg.ProgramID = envProgram
	}
	if envAggregator := v.GetString("AGGREGATOR_ID"); envAggregator != "" {
		cfg.AggregatorID = envAggregator
	}
	if envKey := v.GetString("PRIVATE_KEY"); envKey != "" {
		cfg.PrivateKey = envKey
	}
	if envKeypair := v.GetString("KEYPAIR_PATH"); envKeypair != "" {
		cfg.KeypairPath = envKeypair
	}
	if envPostgres := v.GetString("POSTGRES_URL"); envPostgres != "" {
		cfg.PostgresURL = envPostgres
	}

	if envRPCList := v.GetString("RPC_LIST"); envRPCList != "" {
		rpcs := strings.Split(envRPCList, ",")
		var cleanRPCs []string
		for _, rpc := range rpcs {
			clean := strings.TrimSpace(rpc)
			if clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if len(cleanRPCs) > 0 {
			cfg.RPCList = cleanRPCs
		}
	}
	return nil
}
