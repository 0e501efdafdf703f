// =============================
// File: internal/vault/errors.go
// =============================
package vault

import (
	"errors"
	"fmt"
	"strings"
)

// Custom error codes of the vault program, in declaration order from 6000.
const (
	CodeUnauthorized             = 6000
	CodeInsufficientVaultBalance = 6001
	CodeInsufficientUserShares   = 6002
	CodeNoVaultShares            = 6003
)

// ProgramError is a typed rejection from the vault program. The same
// values are returned by client-side preflight checks so callers handle
// one taxonomy regardless of where the check tripped.
type ProgramError struct {
	Code    uint32
	Name    string
	Message string
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("vault program error %d (%s): %s", e.Code, e.Name, e.Message)
}

// Is matches any ProgramError with the same code, so errors.Is works on
// wrapped chains.
func (e *ProgramError) Is(target error) bool {
	var pe *ProgramError
	if !errors.As(target, &pe) {
		return false
	}
	return pe.Code == e.Code
}

var (
	ErrUnauthorized = &ProgramError{
		Code:    CodeUnauthorized,
		Name:    "Unauthorized",
		Message: "Unauthorized operation.",
	}
	ErrInsufficientVaultBalance = &ProgramError{
		Code:    CodeInsufficientVaultBalance,
		Name:    "InsufficientVaultBalance",
		Message: "Vault has insufficient SOL for this operation.",
	}
	ErrInsufficientUserShares = &ProgramError{
		Code:    CodeInsufficientUserShares,
		Name:    "InsufficientUserShares",
		Message: "User does not have enough shares.",
	}
	ErrNoVaultShares = &ProgramError{
		Code:    CodeNoVaultShares,
		Name:    "NoVaultShares",
		Message: "Vault has no shares.",
	}
)

var programErrors = []*ProgramError{
	ErrUnauthorized,
	ErrInsufficientVaultBalance,
	ErrInsufficientUserShares,
	ErrNoVaultShares,
}

// Client-side failures that never reach the chain.
var (
	ErrVaultNotFound      = errors.New("vault account not found")
	ErrVaultAlreadyExists = errors.New("vault already initialized for this admin")
	ErrPositionNotFound   = errors.New("user position not opened in this vault")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
)

// OnChainError pairs a classified program rejection with the raw transport
// error it was extracted from.
type OnChainError struct {
	Program  *ProgramError
	Original error
}

func (e *OnChainError) Error() string {
	return fmt.Sprintf("%v (rpc: %v)", e.Program, e.Original)
}

func (e *OnChainError) Unwrap() error {
	return e.Program
}

// ClassifyProgramError extracts a vault program rejection from an RPC
// error, matching the runtime's hex form and Anchor's log forms.
func ClassifyProgramError(err error) (*ProgramError, bool) {
	if err == nil {
		return nil, false
	}
	return classifyMessage(err.Error())
}

// ClassifySimulationLogs extracts a vault program rejection from
// simulation log lines.
func ClassifySimulationLogs(logs []string) (*ProgramError, bool) {
	return classifyMessage(strings.Join(logs, "\n"))
}

func classifyMessage(msg string) (*ProgramError, bool) {
	for _, pe := range programErrors {
		// Four shapes carry the code: the runtime's hex form in send and
		// preflight errors, Anchor's two log forms, and the fmt of the
		// decoded Err map from signature statuses.
		if strings.Contains(msg, fmt.Sprintf("custom program error: %#x", pe.Code)) ||
			strings.Contains(msg, fmt.Sprintf("Error Code: %s.", pe.Name)) ||
			strings.Contains(msg, fmt.Sprintf("Error Number: %d", pe.Code)) ||
			strings.Contains(msg, fmt.Sprintf("Custom:%d]", pe.Code)) {
			return pe, true
		}
	}
	return nil, false
}

// WrapSendError upgrades a submission failure to a typed OnChainError when
// it carries a vault program code; other errors pass through unchanged.
func WrapSendError(err error) error {
	if err == nil {
		return nil
	}
	if pe, ok := ClassifyProgramError(err); ok {
		return &OnChainError{Program: pe, Original: err}
	}
	return err
}
