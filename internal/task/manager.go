// =============================================
// File: internal/task/manager.go
// =============================================
package task

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
)

// Manager handles task loading and validation.
type Manager struct {
	logger *zap.Logger
}

// NewManager creates a new task manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// LoadTasks reads tasks from a CSV file.
// CSV format: task_name,wallet,operation,amount_sol,shares,vault_admin,pool_address,priority_fee_sol,compute_units
// amount_sol applies to deposit and invest, shares to withdraw. The last
// four columns are optional. Invalid rows are skipped with a warning.
func (m *Manager) LoadTasks(path string) ([]*Task, error) {
	cleanPath := filepath.Clean(path)
	m.logger.Debug("Loading tasks", zap.String("path", cleanPath))

	file, err := os.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open file error: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV error: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("no tasks found (need header + at least one task)")
	}

	// Process records (skip header)
	tasks := make([]*Task, 0, len(records)-1)

	for i, row := range records[1:] {
		if len(row) < 5 {
			m.logger.Warn("Skipping row with insufficient columns",
				zap.Int("row", i+2),
				zap.Int("columns", len(row)))
			continue
		}

		t := &Task{
			TaskName:   row[0],
			WalletName: row[1],
			Operation:  OperationType(row[2]),
		}

		if row[3] != "" {
			amountSol, err := strconv.ParseFloat(row[3], 64)
			if err != nil {
				m.logger.Warn("Invalid amount_sol value", zap.String("value", row[3]), zap.Error(err))
				continue
			}
			t.AmountSol = amountSol
		}

		if row[4] != "" {
			shares, err := strconv.ParseUint(row[4], 10, 64)
			if err != nil {
				m.logger.Warn("Invalid shares value", zap.String("value", row[4]), zap.Error(err))
				continue
			}
			t.Shares = shares
		}

		if len(row) > 5 {
			t.VaultAdmin = row[5]
		}
		if len(row) > 6 {
			t.PoolAddress = row[6]
		}
		if len(row) > 7 {
			t.PriorityFeeSol = row[7]
		}
		if len(row) > 8 && row[8] != "" {
			computeUnits, err := strconv.ParseUint(row[8], 10, 32)
			if err != nil {
				m.logger.Warn("Invalid compute_units value", zap.String("value", row[8]), zap.Error(err))
			} else {
				t.ComputeUnits = uint32(computeUnits)
			}
		}

		if err := t.Validate(); err != nil {
			m.logger.Warn("Skipping invalid task",
				zap.Int("row", i+2),
				zap.String("task", t.TaskName),
				zap.Error(err))
			continue
		}

		tasks = append(tasks, t)
	}

	if len(tasks) == 0 {
		return nil, fmt.Errorf("no valid tasks loaded")
	}

	m.logger.Info("Tasks loaded successfully", zap.Int("count", len(tasks)))
	return tasks, nil
}
