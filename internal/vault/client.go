// =============================
// File: internal/vault/client.go
// =============================
package vault

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/Vadim91200/dlmmvault/internal/blockchain"
	"github.com/Vadim91200/dlmmvault/internal/blockchain/solbc"
	"github.com/Vadim91200/dlmmvault/internal/blockchain/solbc/transaction"
	"github.com/Vadim91200/dlmmvault/internal/wallet"
)

// accountBatchSize caps getMultipleAccounts requests; public RPC nodes
// reject batches over 100 keys.
const accountBatchSize = 100

// Config carries the program wiring for a vault client.
type Config struct {
	// ProgramID is the deployed vault program.
	ProgramID solana.PublicKey
	// AggregatorID is the external aggregator program passed to
	// invest/finalize_strategy. Defaults to the Meteora DLMM program.
	AggregatorID solana.PublicKey
	// ComputeUnits caps the compute budget per transaction. Zero omits the
	// limit instruction.
	ComputeUnits uint32
	// PriorityFeeSol is the priority fee in SOL ("0.0001"). Empty omits the
	// price instruction.
	PriorityFeeSol string
	// Commitment is the preflight commitment for sends. Empty uses the RPC
	// default.
	Commitment rpc.CommitmentType
	// ConfirmTimeout bounds confirmation polling. Zero uses the monitor
	// default.
	ConfirmTimeout time.Duration
}

// Client is the high-level handle over the vault program: it builds,
// signs, submits and confirms the program's instructions and decodes its
// accounts.
type Client struct {
	client    blockchain.Client
	wallet    *wallet.Wallet
	logger    *zap.Logger
	txManager *transaction.Manager
	config    *Config
}

// OpResult is the outcome of a state-changing call. When the transaction
// landed but the program rejected it, the result is returned alongside
// the error so the signature stays available.
type OpResult struct {
	Signature string
	Status    *transaction.Status
	Vault     solana.PublicKey
}

// NewClient creates a vault client over the given RPC client and signing
// wallet.
func NewClient(client blockchain.Client, w *wallet.Wallet, logger *zap.Logger, config *Config) (*Client, error) {
	if client == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	if w == nil {
		return nil, fmt.Errorf("wallet cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.ProgramID.IsZero() {
		return nil, fmt.Errorf("program ID cannot be empty")
	}
	if config.AggregatorID.IsZero() {
		config.AggregatorID = MeteoraDLMMProgramID
	}

	return &Client{
		client: client,
		wallet: w,
		logger: logger.Named("vault-client"),
		txManager: transaction.NewManager(client, logger, transaction.Config{
			Commitment:       config.Commitment,
			ConfirmationTime: config.ConfirmTimeout,
		}),
		config: config,
	}, nil
}

// Wallet returns the signing wallet behind this client.
func (c *Client) Wallet() *wallet.Wallet {
	return c.wallet
}

// ProgramID returns the vault program this client talks to.
func (c *Client) ProgramID() solana.PublicKey {
	return c.config.ProgramID
}

// VaultAddress derives the vault PDA for an admin under this client's
// program.
func (c *Client) VaultAddress(admin solana.PublicKey) (solana.PublicKey, uint8, error) {
	return DeriveVaultAddress(c.config.ProgramID, admin)
}

// UserAddress derives the position PDA for a user in a vault.
func (c *Client) UserAddress(user, vaultAddress solana.PublicKey) (solana.PublicKey, uint8, error) {
	return DeriveUserAddress(c.config.ProgramID, user, vaultAddress)
}

// InitializeVault creates the vault PDA for the wallet as admin. Called
// once per admin; a second call fails with ErrVaultAlreadyExists before
// anything is submitted.
func (c *Client) InitializeVault(ctx context.Context) (*OpResult, error) {
	vaultAddress, bump, err := c.VaultAddress(c.wallet.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive vault address: %w", err)
	}

	if _, err := c.client.GetAccountInfo(ctx, vaultAddress); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrVaultAlreadyExists, vaultAddress.String())
	} else if !solbc.IsAccountNotFoundError(err) {
		return nil, fmt.Errorf("failed to check vault account: %w", err)
	}

	c.logger.Debug("Initializing vault",
		zap.String("vault", vaultAddress.String()),
		zap.String("admin", c.wallet.PublicKey.String()),
		zap.Uint8("bump", bump))

	ix := BuildInitializeVaultInstruction(c.config.ProgramID, vaultAddress, c.wallet.PublicKey)
	return c.submitInstruction(ctx, "initialize_vault", vaultAddress, ix)
}

// Deposit moves lamports from the wallet into a vault and mints shares
// into the wallet's position.
func (c *Client) Deposit(ctx context.Context, vaultAddress solana.PublicKey, amount uint64) (*OpResult, error) {
	if amount == 0 {
		return nil, fmt.Errorf("deposit: %w", ErrInvalidAmount)
	}

	vaultState, err := c.FetchVault(ctx, vaultAddress)
	if err != nil {
		return nil, err
	}

	userAddress, _, err := c.UserAddress(c.wallet.PublicKey, vaultAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to derive user address: %w", err)
	}

	minted, _ := PreviewDeposit(*vaultState, amount)
	c.logger.Debug("Depositing into vault",
		zap.String("vault", vaultAddress.String()),
		zap.Uint64("amount_lamports", amount),
		zap.Uint64("expected_shares", minted))

	ix := BuildDepositInstruction(c.config.ProgramID, vaultAddress, c.wallet.PublicKey, userAddress, amount)
	return c.submitInstruction(ctx, "deposit", vaultAddress, ix)
}

// Invest earmarks vault SOL for a DLMM pool. The wallet must be the vault
// admin; the same authorization and balance rules the program enforces are
// checked here first so a doomed transaction never leaves the client.
func (c *Client) Invest(ctx context.Context, vaultAddress, poolAddress solana.PublicKey, solToInvest uint64) (*OpResult, error) {
	if solToInvest == 0 {
		return nil, fmt.Errorf("invest: %w", ErrInvalidAmount)
	}

	vaultState, err := c.FetchVault(ctx, vaultAddress)
	if err != nil {
		return nil, err
	}
	if !vaultState.Admin.Equals(c.wallet.PublicKey) {
		return nil, fmt.Errorf("invest with wallet %s, vault admin is %s: %w",
			c.wallet.PublicKey.String(), vaultState.Admin.String(), ErrUnauthorized)
	}
	if vaultState.TotalSol < solToInvest {
		return nil, fmt.Errorf("invest %d lamports with %d liquid: %w",
			solToInvest, vaultState.TotalSol, ErrInsufficientVaultBalance)
	}

	c.logger.Debug("Investing vault funds",
		zap.String("vault", vaultAddress.String()),
		zap.String("pool", poolAddress.String()),
		zap.Uint64("amount_lamports", solToInvest))

	ix := BuildInvestInstruction(c.config.ProgramID, vaultAddress, c.wallet.PublicKey,
		c.config.AggregatorID, poolAddress, solToInvest)
	return c.submitInstruction(ctx, "invest", vaultAddress, ix)
}

// FinalizeStrategy returns the invested amount to the liquid balance. The
// wallet must be the vault admin.
func (c *Client) FinalizeStrategy(ctx context.Context, vaultAddress solana.PublicKey) (*OpResult, error) {
	vaultState, err := c.FetchVault(ctx, vaultAddress)
	if err != nil {
		return nil, err
	}
	if !vaultState.Admin.Equals(c.wallet.PublicKey) {
		return nil, fmt.Errorf("finalize with wallet %s, vault admin is %s: %w",
			c.wallet.PublicKey.String(), vaultState.Admin.String(), ErrUnauthorized)
	}
	if vaultState.InvestedAmount == 0 {
		c.logger.Debug("Finalizing with nothing invested",
			zap.String("vault", vaultAddress.String()))
	}

	ix := BuildFinalizeStrategyInstruction(c.config.ProgramID, vaultAddress, c.wallet.PublicKey,
		c.config.AggregatorID)
	return c.submitInstruction(ctx, "finalize_strategy", vaultAddress, ix)
}

// Withdraw burns shares from the wallet's position and pays out lamports
// at the current share price.
func (c *Client) Withdraw(ctx context.Context, vaultAddress solana.PublicKey, shares uint64) (*OpResult, error) {
	if shares == 0 {
		return nil, fmt.Errorf("withdraw: %w", ErrInvalidAmount)
	}

	vaultState, err := c.FetchVault(ctx, vaultAddress)
	if err != nil {
		return nil, err
	}

	position, err := c.FetchUserPosition(ctx, vaultAddress, c.wallet.PublicKey)
	if err != nil {
		return nil, err
	}
	if position.Account.Shares < shares {
		return nil, fmt.Errorf("withdraw %d shares with %d held: %w",
			shares, position.Account.Shares, ErrInsufficientUserShares)
	}

	payout, _, err := PreviewWithdraw(*vaultState, shares)
	if err != nil {
		return nil, fmt.Errorf("withdraw %d shares: %w", shares, err)
	}

	userAddress, _, err := c.UserAddress(c.wallet.PublicKey, vaultAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to derive user address: %w", err)
	}

	c.logger.Debug("Withdrawing from vault",
		zap.String("vault", vaultAddress.String()),
		zap.Uint64("shares", shares),
		zap.Uint64("expected_lamports", payout))

	ix := BuildWithdrawInstruction(c.config.ProgramID, vaultAddress, c.wallet.PublicKey, userAddress, shares)
	return c.submitInstruction(ctx, "withdraw", vaultAddress, ix)
}

// FetchVault fetches and decodes a vault account.
func (c *Client) FetchVault(ctx context.Context, vaultAddress solana.PublicKey) (*VaultAccount, error) {
	info, err := c.client.GetAccountInfo(ctx, vaultAddress)
	if err != nil {
		if solbc.IsAccountNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrVaultNotFound, vaultAddress.String())
		}
		return nil, fmt.Errorf("failed to fetch vault account: %w", err)
	}

	vaultState, err := ParseVaultAccount(info.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("failed to parse vault %s: %w", vaultAddress.String(), err)
	}
	return vaultState, nil
}

// FetchUserPosition fetches the user's position in a vault. A position
// that was never opened (no deposit yet) is reported as
// ErrPositionNotFound, distinct from transport failures.
func (c *Client) FetchUserPosition(ctx context.Context, vaultAddress, user solana.PublicKey) (*UserPosition, error) {
	userAddress, _, err := c.UserAddress(user, vaultAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to derive user address: %w", err)
	}

	info, err := c.client.GetAccountInfo(ctx, userAddress)
	if err != nil {
		if solbc.IsAccountNotFoundError(err) {
			return nil, fmt.Errorf("%w: user %s in vault %s",
				ErrPositionNotFound, user.String(), vaultAddress.String())
		}
		return nil, fmt.Errorf("failed to fetch user account: %w", err)
	}

	userState, err := ParseVaultUser(info.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("failed to parse user account %s: %w", userAddress.String(), err)
	}
	return &UserPosition{Address: userAddress, Account: *userState}, nil
}

// ListUserAccounts returns every position account under the program. Keys
// come from a discriminator-filtered getProgramAccounts; contents are then
// fetched in batches so the node never ships full account data twice.
func (c *Client) ListUserAccounts(ctx context.Context) ([]UserPosition, error) {
	keyed, err := c.client.GetProgramAccounts(ctx, c.config.ProgramID, VaultUserDiscriminator)
	if err != nil {
		return nil, fmt.Errorf("failed to list user accounts: %w", err)
	}

	addresses := make([]solana.PublicKey, 0, len(keyed))
	for _, acc := range keyed {
		addresses = append(addresses, acc.Pubkey)
	}

	positions := make([]UserPosition, 0, len(addresses))
	for start := 0; start < len(addresses); start += accountBatchSize {
		end := start + accountBatchSize
		if end > len(addresses) {
			end = len(addresses)
		}
		batch := addresses[start:end]

		result, err := c.client.GetMultipleAccounts(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch user accounts: %w", err)
		}
		for i, acc := range result.Value {
			if acc == nil {
				// Closed between the key fetch and the content fetch.
				continue
			}
			userState, err := ParseVaultUser(acc.Data.GetBinary())
			if err != nil {
				c.logger.Warn("Skipping undecodable user account",
					zap.String("address", batch[i].String()),
					zap.Error(err))
				continue
			}
			positions = append(positions, UserPosition{Address: batch[i], Account: *userState})
		}
	}

	return positions, nil
}

// VaultStatus assembles a point-in-time view of a vault: decoded state,
// actual PDA balance and the program-wide position count.
func (c *Client) VaultStatus(ctx context.Context, vaultAddress solana.PublicKey) (*Status, error) {
	vaultState, err := c.FetchVault(ctx, vaultAddress)
	if err != nil {
		return nil, err
	}

	balance, err := c.client.GetBalance(ctx, vaultAddress, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vault balance: %w", err)
	}

	positions, err := c.ListUserAccounts(ctx)
	if err != nil {
		return nil, err
	}

	return &Status{
		Address:            vaultAddress,
		Vault:              *vaultState,
		SharePriceLamports: SharePrice(vaultState.TotalSol, vaultState.TotalShares),
		PDABalance:         balance,
		UserCount:          len(positions),
	}, nil
}

// submitInstruction wraps an instruction with the compute budget prelude,
// signs with the wallet and pushes it through the transaction manager.
func (c *Client) submitInstruction(ctx context.Context, op string, vaultAddress solana.PublicKey, ix solana.Instruction) (*OpResult, error) {
	instructions, err := c.preparePriorityInstructions()
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, ix)

	blockhash, err := c.client.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(c.wallet.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := c.wallet.SignTransaction(tx); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	status, err := c.txManager.SendAndConfirm(ctx, tx)
	if err != nil {
		return nil, WrapSendError(fmt.Errorf("%s failed: %w", op, err))
	}
	if status.Status == transaction.StatusFailed {
		// The signature is still returned so callers can record and look
		// up the rejected transaction.
		return &OpResult{
			Signature: status.Signature,
			Status:    status,
			Vault:     vaultAddress,
		}, WrapSendError(fmt.Errorf("%s rejected on chain: %s", op, status.Error))
	}

	c.logger.Info("Transaction confirmed",
		zap.String("operation", op),
		zap.String("signature", status.Signature),
		zap.String("vault", vaultAddress.String()),
		zap.String("status", status.Status))

	return &OpResult{
		Signature: status.Signature,
		Status:    status,
		Vault:     vaultAddress,
	}, nil
}

// preparePriorityInstructions builds the compute unit limit and price
// instructions from the client config.
func (c *Client) preparePriorityInstructions() ([]solana.Instruction, error) {
	var instructions []solana.Instruction
	if c.config.ComputeUnits > 0 {
		instructions = append(instructions,
			computebudget.NewSetComputeUnitLimitInstruction(c.config.ComputeUnits).Build())
	}
	if c.config.PriorityFeeSol != "" {
		fee, err := strconv.ParseFloat(c.config.PriorityFeeSol, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid priority fee: %w", err)
		}
		feeLamports := uint64(fee * 1e9)
		if feeLamports > 0 {
			instructions = append(instructions,
				computebudget.NewSetComputeUnitPriceInstruction(feeLamports).Build())
		}
	}
	return instructions, nil
}
