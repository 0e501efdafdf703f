// =============================================
// File: internal/task/runner_test.go
// =============================================
package task

import (
	"context"
	"encoding/binary"
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
	"github.com/Vadim91200/dlmmvault/internal/events"
	"github.com/Vadim91200/dlmmvault/internal/vault"
	"github.com/Vadim91200/dlmmvault/internal/wallet"
)

// MockChainClient implements blockchain.Client for runner tests.
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

func testWallet() *wallet.Wallet {
	w := solana.NewWallet()
	return &wallet.Wallet{PrivateKey: w.PrivateKey, PublicKey: w.PublicKey()}
}

// vaultAccountBytes encodes an on-chain vault account owned by admin:
// discriminator, borsh fields, zero padding to the allocated space.
func vaultAccountBytes(admin solana.PublicKey) []byte {
	data := make([]byte, 0, vault.VaultAccountSpace)
	data = append(data, vault.VaultAccountDiscriminator...)
	data = append(data, admin.Bytes()...)
	data = binary.LittleEndian.AppendUint64(data, 1_000) // total shares
	data = binary.LittleEndian.AppendUint64(data, 1_000) // total sol
	data = binary.LittleEndian.AppendUint64(data, 0)     // invested
	data = append(data, 255)                             // bump
	for len(data) < vault.VaultAccountSpace {
		data = append(data, 0)
	}
	return data
}

func accountWith(owner solana.PublicKey, data []byte) *rpc.GetAccountInfoResult {
	return &rpc.GetAccountInfoResult{
		Value: &rpc.Account{
			Lamports: 2_000_000_000,
			Owner:    owner,
			Data:     rpc.DataBytesOrJSONFromBytes(data),
		},
	}
}

func confirmedSigStatuses() *rpc.GetSignatureStatusesResult {
	confirmations := uint64(12)
	return &rpc.GetSignatureStatusesResult{
		Value: []*rpc.SignatureStatusesResult{{
			Slot:               1_000,
			Confirmations:      &confirmations,
			ConfirmationStatus: rpc.ConfirmationStatusConfirmed,
		}},
	}
}

func newRunnerBus(t *testing.T) *events.Bus {
	t.Helper()
	bus := events.NewBus(zap.NewNop(), 16)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = bus.Shutdown(ctx)
	})
	return bus
}

func TestRunnerRejectsEmptyBatch(t *testing.T) {
	runner := NewRunner(new(MockChainClient), nil, &vault.Config{}, 2, newRunnerBus(t), zap.NewNop())

	err := runner.Run(context.Background(), nil)

	assert.ErrorContains(t, err, "no tasks to run")
}

func TestRunnerExecutesDeposit(t *testing.T) {
	mc := new(MockChainClient)
	programID := solana.NewWallet().PublicKey()
	w := testWallet()
	bus := newRunnerBus(t)

	confirmed := make(chan events.OperationConfirmedEvent, 4)
	bus.SubscribeFunc(events.OperationConfirmed, func(_ context.Context, e events.Event) error {
		confirmed <- e.(events.OperationConfirmedEvent)
		return nil
	})

	// Derive the vault PDA the same way the runner will.
	probe, err := vault.NewClient(mc, w, zap.NewNop(), &vault.Config{ProgramID: programID})
	require.NoError(t, err)
	vaultAddr, _, err := probe.VaultAddress(w.PublicKey)
	require.NoError(t, err)

	mc.On("GetAccountInfo", mock.Anything, vaultAddr).
		Return(accountWith(programID, vaultAccountBytes(w.PublicKey)), nil)
	mc.On("GetRecentBlockhash", mock.Anything).
		Return(solana.Hash(solana.NewWallet().PublicKey()), nil)

	signature := solana.Signature{7, 7, 7}
	mc.On("SendTransactionWithOpts", mock.Anything, mock.Anything, mock.Anything).
		Return(signature, nil)
	mc.On("GetSignatureStatuses", mock.Anything, []solana.Signature{signature}).
		Return(confirmedSigStatuses(), nil)

	runner := NewRunner(mc, map[string]*wallet.Wallet{"main": w}, &vault.Config{ProgramID: programID}, 2, bus, zap.NewNop())

	tasks := []*Task{
		{TaskName: "deposit-1", WalletName: "main", Operation: OperationDeposit, AmountSol: 1.5},
		// No wallet named "missing" is loaded; the task is skipped.
		{TaskName: "ghost", WalletName: "missing", Operation: OperationDeposit, AmountSol: 1},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	require.NoError(t, runner.Run(ctx, tasks))

	select {
	case ev := <-confirmed:
		assert.Equal(t, string(OperationDeposit), ev.Operation)
		assert.Equal(t, "main", ev.WalletName)
		assert.Equal(t, signature.String(), ev.Signature)
		assert.Equal(t, uint64(1_500_000_000), ev.Lamports)
	case <-time.After(2 * time.Second):
		t.Fatal("no confirmation event published")
	}

	mc.AssertNumberOfCalls(t, "SendTransactionWithOpts", 1)
}

func TestRunnerPublishesFailures(t *testing.T) {
	mc := new(MockChainClient)
	programID := solana.NewWallet().PublicKey()
	w := testWallet()
	bus := newRunnerBus(t)

	failed := make(chan events.OperationFailedEvent, 4)
	bus.SubscribeFunc(events.OperationFailed, func(_ context.Context, e events.Event) error {
		failed <- e.(events.OperationFailedEvent)
		return nil
	})

	// The vault PDA was never initialized.
	mc.On("GetAccountInfo", mock.Anything, mock.Anything).Return(nil, solbc.ErrAccountNotFound)

	runner := NewRunner(mc, map[string]*wallet.Wallet{"main": w}, &vault.Config{ProgramID: programID}, 1, bus, zap.NewNop())

	tasks := []*Task{{TaskName: "deposit-1", WalletName: "main", Operation: OperationDeposit, AmountSol: 1}}
	require.NoError(t, runner.Run(context.Background(), tasks))

	select {
	case ev := <-failed:
		assert.Equal(t, string(OperationDeposit), ev.Operation)
		assert.Empty(t, ev.Signature, "nothing was submitted")
		assert.ErrorIs(t, ev.Error, vault.ErrVaultNotFound)
	case <-time.After(2 * time.Second):
		t.Fatal("no failure event published")
	}
}
