package vault

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Gostai/custom-wallet/contracts/vault/vaultconst"
)

// Errors corresponding to the failure kinds of the Vault contract.
var (
	ErrValidation            = errors.New(vaultconst.ErrValidation)
	ErrAuthorization         = errors.New(vaultconst.ErrAuthorization)
	ErrInsufficientFunds     = errors.New(vaultconst.ErrInsufficientFunds)
	ErrUnknownFeeDestination = errors.New(vaultconst.ErrUnknownFeeDestination)
	ErrAllowanceNotActive    = errors.New(vaultconst.ErrAllowanceNotActive)
	ErrAllowanceActive       = errors.New(vaultconst.ErrAllowanceActive)
	ErrTransferFailed        = errors.New(vaultconst.ErrTransferFailed)
)

var errorKinds = []error{
	ErrValidation,
	ErrAuthorization,
	ErrInsufficientFunds,
	ErrUnknownFeeDestination,
	ErrAllowanceNotActive,
	ErrAllowanceActive,
	ErrTransferFailed,
}

// ClassifyError wraps err with the Vault error kind found in its message so
// callers can match it with errors.Is. Errors which carry no known kind (or
// nil) are returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	for _, kind := range errorKinds {
		if errors.Is(err, kind) {
			return err
		}
		if strings.Contains(msg, kind.Error()) {
			return fmt.Errorf("%w: %w", kind, err)
		}
	}

	return err
}

// ClassifyFault returns a classified error built from a FAULT exception
// reported by the node, or nil for an empty exception.
func ClassifyFault(exception string) error {
	if exception == "" {
		return nil
	}
	return ClassifyError(errors.New(exception))
}
