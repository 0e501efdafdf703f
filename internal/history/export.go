// internal/history/export.go
package history

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Vadim91200/dlmmvault/internal/vault"
	"go.uber.org/zap"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format        ExportFormat
	StartTime     time.Time
	EndTime       time.Time
	WalletFilter  string // Filter by wallet address
	VaultFilter   string // Filter by vault address
	ActionFilter  string // Filter by action (deposit/withdraw/...)
	OnlyConfirmed bool   // Only export confirmed operations
	OutputDir     string
}

// Exporter writes operation records to CSV or JSON files.
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates a new operation exporter
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{
		logger: logger,
	}
}

// Export writes the matching operations and returns the output path.
func (e *Exporter) Export(ops []*Operation, options ExportOptions) (string, error) {
	filtered := e.filterOperations(ops, options)

	if len(filtered) == 0 {
		return "", fmt.Errorf("no operations match the export criteria")
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})

	filename := e.generateFilename(options)
	outputPath := filepath.Join(options.OutputDir, filename)

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	switch options.Format {
	case FormatCSV:
		err = e.exportToCSV(filtered, outputPath)
	case FormatJSON:
		err = e.exportToJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}

	if err != nil {
		return "", err
	}

	e.logger.Info("Operations exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

// filterOperations applies filters to the operation list
func (e *Exporter) filterOperations(ops []*Operation, options ExportOptions) []*Operation {
	var filtered []*Operation

	for _, op := range ops {
		// Time filter
		if !options.StartTime.IsZero() && op.CreatedAt.Before(options.StartTime) {
			continue
		}
		if !options.EndTime.IsZero() && op.CreatedAt.After(options.EndTime) {
			continue
		}

		// Wallet filter
		if options.WalletFilter != "" && op.WalletAddress != options.WalletFilter {
			continue
		}

		// Vault filter
		if options.VaultFilter != "" && op.Vault != options.VaultFilter {
			continue
		}

		// Action filter
		if options.ActionFilter != "" && op.Action != options.ActionFilter {
			continue
		}

		// Status filter
		if options.OnlyConfirmed && op.Status != StatusConfirmed {
			continue
		}

		filtered = append(filtered, op)
	}

	return filtered
}

// generateFilename creates a filename based on export options
func (e *Exporter) generateFilename(options ExportOptions) string {
	timestamp := time.Now().Format("20060102_150405")

	var prefix string
	if options.ActionFilter != "" {
		prefix = fmt.Sprintf("operations_%s", options.ActionFilter)
	} else {
		prefix = "operations_all"
	}

	if options.WalletFilter != "" && len(options.WalletFilter) >= 8 {
		prefix += "_" + options.WalletFilter[:8]
	}

	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, options.Format)
}

// exportToCSV exports operations to CSV format
func (e *Exporter) exportToCSV(ops []*Operation, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, op := range ops {
		if err := writer.Write(op.ToCSV()); err != nil {
			return fmt.Errorf("failed to write operation: %w", err)
		}
	}

	return nil
}

// exportToJSON exports operations to JSON format
func (e *Exporter) exportToJSON(ops []*Operation, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime     time.Time     `json:"export_time"`
		OperationCount int           `json:"operation_count"`
		Operations     []*Operation  `json:"operations"`
		Summary        ExportSummary `json:"summary"`
	}{
		ExportTime:     time.Now(),
		OperationCount: len(ops),
		Operations:     ops,
		Summary:        e.calculateSummary(ops),
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// calculateSummary calculates summary statistics for the export
func (e *Exporter) calculateSummary(ops []*Operation) ExportSummary {
	summary := ExportSummary{
		TotalOperations: len(ops),
	}

	if len(ops) == 0 {
		return summary
	}

	summary.StartDate = ops[0].CreatedAt
	summary.EndDate = ops[len(ops)-1].CreatedAt

	walletSet := make(map[string]bool)
	vaultSet := make(map[string]bool)

	var depositedLamports, withdrawnLamports uint64

	for _, op := range ops {
		walletSet[op.WalletAddress] = true
		vaultSet[op.Vault] = true

		if op.Status == StatusConfirmed {
			summary.ConfirmedOperations++
		} else if op.Status == StatusFailed {
			summary.FailedOperations++
		}

		switch op.Action {
		case ActionDeposit:
			summary.DepositCount++
			if op.Status == StatusConfirmed {
				depositedLamports += op.Lamports
			}
		case ActionWithdraw:
			summary.WithdrawCount++
			if op.Status == StatusConfirmed {
				withdrawnLamports += op.Lamports
				summary.SharesBurned += op.Shares
			}
		case ActionInvest:
			summary.InvestCount++
		case ActionFinalize:
			summary.FinalizeCount++
		case ActionInitialize:
			summary.InitializeCount++
		}
	}

	summary.UniqueWallets = len(walletSet)
	summary.UniqueVaults = len(vaultSet)
	summary.DepositedSol = float64(depositedLamports) / vault.LamportsPerSol
	summary.WithdrawnSol = float64(withdrawnLamports) / vault.LamportsPerSol

	if summary.TotalOperations > 0 {
		summary.SuccessRate = float64(summary.ConfirmedOperations) / float64(summary.TotalOperations) * 100
	}

	return summary
}

// ExportSummary contains summary statistics for exported operations
type ExportSummary struct {
	TotalOperations     int       `json:"total_operations"`
	ConfirmedOperations int       `json:"confirmed_operations"`
	FailedOperations    int       `json:"failed_operations"`
	SuccessRate         float64   `json:"success_rate"`
	InitializeCount     int       `json:"initialize_count"`
	DepositCount        int       `json:"deposit_count"`
	WithdrawCount       int       `json:"withdraw_count"`
	InvestCount         int       `json:"invest_count"`
	FinalizeCount       int       `json:"finalize_count"`
	UniqueWallets       int       `json:"unique_wallets"`
	UniqueVaults        int       `json:"unique_vaults"`
	DepositedSol        float64   `json:"deposited_sol"`
	WithdrawnSol        float64   `json:"withdrawn_sol"`
	SharesBurned        uint64    `json:"shares_burned"`
	StartDate           time.Time `json:"start_date"`
	EndDate             time.Time `json:"end_date"`
}
