// =============================
// File: internal/vault/client_test.go
// =============================
package vault

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vadim91200/dlmmvault/internal/blockchain"
	"github.com/Vadim91200/dlmmvault/internal/blockchain/solbc"
	"github.com/Vadim91200/dlmmvault/internal/wallet"
)

// MockChainClient implements blockchain.Client for tests.
type MockChainClient struct {
	mock.Mock
}

func (m *MockChainClient) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	args := m.Called(ctx)
	return args.Get(0).(solana.Hash), args.Error(1)
}

func (m *MockChainClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *MockChainClient) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	args := m.Called(ctx, tx, opts)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *MockChainClient) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*blockchain.SimulationResult, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blockchain.SimulationResult), args.Error(1)
}

func (m *MockChainClient) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	args := m.Called(ctx, pubkey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rpc.GetAccountInfoResult), args.Error(1)
}

func (m *MockChainClient) GetMultipleAccounts(ctx context.Context, pubkeys []solana.PublicKey) (*rpc.GetMultipleAccountsResult, error) {
	args := m.Called(ctx, pubkeys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rpc.GetMultipleAccountsResult), args.Error(1)
}

func (m *MockChainClient) GetProgramAccounts(ctx context.Context, programID solana.PublicKey, discriminator []byte) (rpc.GetProgramAccountsResult, error) {
	args := m.Called(ctx, programID, discriminator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(rpc.GetProgramAccountsResult), args.Error(1)
}

func (m *MockChainClient) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	args := m.Called(ctx, signatures)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rpc.GetSignatureStatusesResult), args.Error(1)
}

func (m *MockChainClient) GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	args := m.Called(ctx, pubkey, commitment)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockChainClient) WaitForTransactionConfirmation(ctx context.Context, signature solana.Signature, commitment rpc.CommitmentType) error {
	args := m.Called(ctx, signature, commitment)
	return args.Error(0)
}

func mockedWallet() *wallet.Wallet {
	w := solana.NewWallet()
	return &wallet.Wallet{
		PrivateKey: w.PrivateKey,
		PublicKey:  w.PublicKey(),
	}
}

func newTestClient(t *testing.T, mc *MockChainClient) *Client {
	t.Helper()
	client, err := NewClient(mc, mockedWallet(), zap.NewNop(), &Config{ProgramID: testProgramID})
	require.NoError(t, err)
	return client
}

func accountInfoWith(data []byte) *rpc.GetAccountInfoResult {
	return &rpc.GetAccountInfoResult{
		Value: &rpc.Account{
			Lamports: 3_000_000_000,
			Owner:    testProgramID,
			Data:     rpc.DataBytesOrJSONFromBytes(data),
		},
	}
}

func confirmedStatuses() *rpc.GetSignatureStatusesResult {
	confirmations := uint64(12)
	return &rpc.GetSignatureStatusesResult{
		Value: []*rpc.SignatureStatusesResult{{
			Slot:               1_000,
			Confirmations:      &confirmations,
			ConfirmationStatus: rpc.ConfirmationStatusConfirmed,
		}},
	}
}

func TestNewClientValidation(t *testing.T) {
	mc := new(MockChainClient)
	w := mockedWallet()
	logger := zap.NewNop()
	cfg := &Config{ProgramID: testProgramID}

	tests := []struct {
		name string
		run  func() (*Client, error)
	}{
		{"nil client", func() (*Client, error) { return NewClient(nil, w, logger, cfg) }},
		{"nil wallet", func() (*Client, error) { return NewClient(mc, nil, logger, cfg) }},
		{"nil logger", func() (*Client, error) { return NewClient(mc, w, nil, cfg) }},
		{"nil config", func() (*Client, error) { return NewClient(mc, w, logger, nil) }},
		{"empty program", func() (*Client, error) { return NewClient(mc, w, logger, &Config{}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.run()
			assert.Error(t, err)
		})
	}
}

func TestNewClientDefaultsAggregator(t *testing.T) {
	client := newTestClient(t, new(MockChainClient))
	assert.Equal(t, MeteoraDLMMProgramID, client.config.AggregatorID)
}

func TestInitializeVaultAlreadyExists(t *testing.T) {
	mc := new(MockChainClient)
	client := newTestClient(t, mc)

	vaultAddr, _, err := client.VaultAddress(client.wallet.PublicKey)
	require.NoError(t, err)

	existing := encodeVaultAccount(VaultAccount{Admin: client.wallet.PublicKey}, VaultAccountSpace)
	mc.On("GetAccountInfo", mock.Anything, vaultAddr).Return(accountInfoWith(existing), nil)

	_, err = client.InitializeVault(context.Background())

	assert.ErrorIs(t, err, ErrVaultAlreadyExists)
	mc.AssertNotCalled(t, "SendTransactionWithOpts", mock.Anything, mock.Anything, mock.Anything)
}

func TestDepositRejectsZeroAmount(t *testing.T) {
	client := newTestClient(t, new(MockChainClient))

	_, err := client.Deposit(context.Background(), solana.NewWallet().PublicKey(), 0)

	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestDepositVaultMissing(t *testing.T) {
	mc := new(MockChainClient)
	client := newTestClient(t, mc)
	vaultAddr := solana.NewWallet().PublicKey()

	mc.On("GetAccountInfo", mock.Anything, vaultAddr).Return(nil, solbc.ErrAccountNotFound)

	_, err := client.Deposit(context.Background(), vaultAddr, 1_000)

	assert.ErrorIs(t, err, ErrVaultNotFound)
}

func TestInvestRequiresAdmin(t *testing.T) {
	mc := new(MockChainClient)
	client := newTestClient(t, mc)
	vaultAddr := solana.NewWallet().PublicKey()

	// Vault owned by somebody else.
	state := VaultAccount{Admin: solana.NewWallet().PublicKey(), TotalSol: 1_000, TotalShares: 1_000}
	mc.On("GetAccountInfo", mock.Anything, vaultAddr).Return(accountInfoWith(encodeVaultAccount(state, VaultAccountSpace)), nil)

	_, err := client.Invest(context.Background(), vaultAddr, solana.NewWallet().PublicKey(), 500)

	assert.ErrorIs(t, err, ErrUnauthorized)
	mc.AssertNotCalled(t, "SendTransactionWithOpts", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvestInsufficientLiquid(t *testing.T) {
	mc := new(MockChainClient)
	client := newTestClient(t, mc)
	vaultAddr := solana.NewWallet().PublicKey()

	state := VaultAccount{Admin: client.wallet.PublicKey, TotalSol: 100, TotalShares: 100}
	mc.On("GetAccountInfo", mock.Anything, vaultAddr).Return(accountInfoWith(encodeVaultAccount(state, VaultAccountSpace)), nil)

	_, err := client.Invest(context.Background(), vaultAddr, solana.NewWallet().PublicKey(), 500)

	assert.ErrorIs(t, err, ErrInsufficientVaultBalance)
}

func TestFinalizeStrategyRequiresAdmin(t *testing.T) {
	mc := new(MockChainClient)
	client := newTestClient(t, mc)
	vaultAddr := solana.NewWallet().PublicKey()

	state := VaultAccount{Admin: solana.NewWallet().PublicKey(), InvestedAmount: 500}
	mc.On("GetAccountInfo", mock.Anything, vaultAddr).Return(accountInfoWith(encodeVaultAccount(state, VaultAccountSpace)), nil)

	_, err := client.FinalizeStrategy(context.Background(), vaultAddr)

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestWithdrawPreflight(t *testing.T) {
	t.Run("position never opened", func(t *testing.T) {
		mc := new(MockChainClient)
		client := newTestClient(t, mc)
		vaultAddr := solana.NewWallet().PublicKey()

		state := VaultAccount{Admin: solana.NewWallet().PublicKey(), TotalSol: 1_000, TotalShares: 1_000}
		mc.On("GetAccountInfo", mock.Anything, vaultAddr).Return(accountInfoWith(encodeVaultAccount(state, VaultAccountSpace)), nil)

		userAddr, _, err := client.UserAddress(client.wallet.PublicKey, vaultAddr)
		require.NoError(t, err)
		mc.On("GetAccountInfo", mock.Anything, userAddr).Return(nil, solbc.ErrAccountNotFound)

		_, err = client.Withdraw(context.Background(), vaultAddr, 100)

		assert.ErrorIs(t, err, ErrPositionNotFound)
	})

	t.Run("not enough shares", func(t *testing.T) {
		mc := new(MockChainClient)
		client := newTestClient(t, mc)
		vaultAddr := solana.NewWallet().PublicKey()

		state := VaultAccount{Admin: solana.NewWallet().PublicKey(), TotalSol: 1_000, TotalShares: 1_000}
		mc.On("GetAccountInfo", mock.Anything, vaultAddr).Return(accountInfoWith(encodeVaultAccount(state, VaultAccountSpace)), nil)

		userAddr, _, err := client.UserAddress(client.wallet.PublicKey, vaultAddr)
		require.NoError(t, err)
		position := encodeVaultUser(VaultUser{Shares: 50}, VaultUserSpace)
		mc.On("GetAccountInfo", mock.Anything, userAddr).Return(accountInfoWith(position), nil)

		_, err = client.Withdraw(context.Background(), vaultAddr, 100)

		assert.ErrorIs(t, err, ErrInsufficientUserShares)
		mc.AssertNotCalled(t, "SendTransactionWithOpts", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDepositSubmitsAndConfirms(t *testing.T) {
	mc := new(MockChainClient)
	client := newTestClient(t, mc)
	vaultAddr := solana.NewWallet().PublicKey()

	state := VaultAccount{Admin: solana.NewWallet().PublicKey(), TotalSol: 1_000, TotalShares: 1_000}
	mc.On("GetAccountInfo", mock.Anything, vaultAddr).Return(accountInfoWith(encodeVaultAccount(state, VaultAccountSpace)), nil)

	blockhash := solana.Hash(solana.NewWallet().PublicKey())
	mc.On("GetRecentBlockhash", mock.Anything).Return(blockhash, nil)

	signature := solana.Signature{1, 2, 3}
	var sent *solana.Transaction
	mc.On("SendTransactionWithOpts", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(1).(*solana.Transaction)
		}).
		Return(signature, nil)

	mc.On("GetSignatureStatuses", mock.Anything, []solana.Signature{signature}).
		Return(confirmedStatuses(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := client.Deposit(ctx, vaultAddr, 2_000)

	require.NoError(t, err)
	assert.Equal(t, signature.String(), result.Signature)
	assert.Equal(t, vaultAddr, result.Vault)
	assert.NotEmpty(t, result.Status.Status)

	require.NotNil(t, sent)
	require.Len(t, sent.Message.Instructions, 1, "no priority fee configured, deposit only")
	assert.Equal(t, blockhash, sent.Message.RecentBlockhash)
	assert.True(t, len(sent.Signatures) > 0, "transaction is signed before submission")
}

func TestListUserAccounts(t *testing.T) {
	mc := new(MockChainClient)
	client := newTestClient(t, mc)

	keyA := solana.NewWallet().PublicKey()
	keyB := solana.NewWallet().PublicKey()
	keyC := solana.NewWallet().PublicKey()

	keyed := rpc.GetProgramAccountsResult{
		{Pubkey: keyA},
		{Pubkey: keyB},
		{Pubkey: keyC},
	}
	mc.On("GetProgramAccounts", mock.Anything, testProgramID, VaultUserDiscriminator).Return(keyed, nil)

	// B was closed between the key fetch and the content fetch, C has
	// foreign data; only A must survive.
	contents := &rpc.GetMultipleAccountsResult{
		Value: []*rpc.Account{
			{Data: rpc.DataBytesOrJSONFromBytes(encodeVaultUser(VaultUser{Shares: 42}, VaultUserSpace))},
			nil,
			{Data: rpc.DataBytesOrJSONFromBytes([]byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x00, 0x00, 0x00, 0x01})},
		},
	}
	mc.On("GetMultipleAccounts", mock.Anything, []solana.PublicKey{keyA, keyB, keyC}).Return(contents, nil)

	positions, err := client.ListUserAccounts(context.Background())

	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, keyA, positions[0].Address)
	assert.Equal(t, uint64(42), positions[0].Account.Shares)
}

func TestVaultStatus(t *testing.T) {
	mc := new(MockChainClient)
	client := newTestClient(t, mc)
	vaultAddr := solana.NewWallet().PublicKey()

	state := VaultAccount{
		Admin:          solana.NewWallet().PublicKey(),
		TotalShares:    1_000,
		TotalSol:       2_000,
		InvestedAmount: 3_000,
	}
	mc.On("GetAccountInfo", mock.Anything, vaultAddr).Return(accountInfoWith(encodeVaultAccount(state, VaultAccountSpace)), nil)
	mc.On("GetBalance", mock.Anything, vaultAddr, rpc.CommitmentConfirmed).Return(uint64(5_000_000), nil)

	userKey := solana.NewWallet().PublicKey()
	mc.On("GetProgramAccounts", mock.Anything, testProgramID, VaultUserDiscriminator).
		Return(rpc.GetProgramAccountsResult{{Pubkey: userKey}}, nil)
	mc.On("GetMultipleAccounts", mock.Anything, []solana.PublicKey{userKey}).
		Return(&rpc.GetMultipleAccountsResult{Value: []*rpc.Account{
			{Data: rpc.DataBytesOrJSONFromBytes(encodeVaultUser(VaultUser{Shares: 7}, VaultUserSpace))},
		}}, nil)

	status, err := client.VaultStatus(context.Background(), vaultAddr)

	require.NoError(t, err)
	assert.Equal(t, vaultAddr, status.Address)
	assert.Equal(t, 2.0, status.SharePriceLamports)
	assert.Equal(t, uint64(5_000_000), status.PDABalance)
	assert.Equal(t, 1, status.UserCount)
	assert.Equal(t, uint64(5_000), status.TotalValue())
}
