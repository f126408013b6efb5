// Package deploy puts the Vault contract on a Neo blockchain and keeps it up
// to date.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Gostai/custom-wallet/contracts"
	"github.com/Gostai/custom-wallet/contracts/vault/vaultconst"
	vaultrpc "github.com/Gostai/custom-wallet/rpc/vault"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for the Vault deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions.
	actor.RPCActor

	// GetApplicationLog returns execution results of the transaction. It is
	// used to await transactions.
	GetApplicationLog(hash util.Uint256, trig *trigger.Type) (*result.ApplicationLog, error)

	// GetContractStateByHash returns network state of the smart contract by
	// its address. GetContractStateByHash returns error with 'Unknown contract'
	// substring if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// Prm groups all parameters of the Vault deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance the Vault is deployed to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// Contract address depends on it.
	LocalAccount *wallet.Account

	// Compiled Vault contract.
	Contract contracts.Contract

	// Account allowed to pay out and to grant allowances.
	Authority util.Uint160

	// NEP-17 token held by the Vault. The contract must already be deployed.
	Token util.Uint160

	// Receiver of the currency fees.
	FeeDestination util.Uint160

	// Allowance overwrite policy, one of vaultconst.Policy* values.
	AllowancePolicy int
}

// UpdatePrm groups parameters of the Vault update procedure.
type UpdatePrm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	Blockchain Blockchain

	// Vault authority account (must be unlocked).
	LocalAccount *wallet.Account

	// Address of the deployed Vault.
	Address util.Uint160

	// New contract executable.
	Contract contracts.Contract
}

// ErrOutdated is returned by Deploy when the contract is already deployed
// from the local account but its executable differs from Prm.Contract.
var ErrOutdated = errors.New("on-chain contract differs from the local one")

// Deploy deploys the Vault contract from Prm.LocalAccount and returns its
// address. Deploy is idempotent: if the contract with the same executable is
// already on the chain, its address is returned and nothing is sent.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	err := prm.validate()
	if err != nil {
		return util.Uint160{}, fmt.Errorf("invalid deployment parameters: %w", err)
	}

	addr := prm.Contract.Hash(prm.LocalAccount.ScriptHash())
	l := prm.Logger.With(zap.Stringer("address", addr))

	l.Info("synchronizing Vault contract with the chain...")

	deployed, err := isDeployed(prm.Blockchain, addr, prm.Contract)
	if deployed {
		if err != nil {
			return addr, err
		}

		l.Info("Vault contract is already deployed")
		return addr, nil
	}
	if err != nil {
		return util.Uint160{}, err
	}

	err = ctx.Err()
	if err != nil {
		return util.Uint160{}, err
	}

	act, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("init transaction sender from local account: %w", err)
	}

	l.Info("sending Vault deployment transaction...",
		zap.Stringer("authority", prm.Authority),
		zap.Stringer("token", prm.Token),
		zap.Stringer("fee destination", prm.FeeDestination),
		zap.Int("allowance policy", prm.AllowancePolicy))

	res, err := act.Wait(management.New(act).Deploy(&prm.Contract.NEF, &prm.Contract.Manifest, prm.deployData()))
	if err != nil {
		return util.Uint160{}, fmt.Errorf("deploy Vault contract: %w", vaultrpc.ClassifyError(err))
	}

	err = checkHalt(res)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("deploy Vault contract: %w", err)
	}

	l.Info("Vault contract successfully deployed", zap.Stringer("tx", res.Container))

	return addr, nil
}

// Update replaces executable of the deployed Vault with UpdatePrm.Contract.
// LocalAccount must be the Vault authority.
func Update(ctx context.Context, prm UpdatePrm) error {
	if prm.Logger == nil {
		return errors.New("missing logger")
	}
	if prm.Blockchain == nil {
		return errors.New("missing blockchain")
	}
	if prm.LocalAccount == nil {
		return errors.New("missing local account")
	}

	bNEF, jManifest, err := prm.Contract.Marshal()
	if err != nil {
		return err
	}

	err = ctx.Err()
	if err != nil {
		return err
	}

	act, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return fmt.Errorf("init transaction sender from local account: %w", err)
	}

	l := prm.Logger.With(zap.Stringer("address", prm.Address))
	l.Info("updating Vault contract...")

	res, err := act.Wait(vaultrpc.New(act, prm.Address).Update(bNEF, jManifest, nil))
	if err != nil {
		return fmt.Errorf("update Vault contract: %w", vaultrpc.ClassifyError(err))
	}

	err = checkHalt(res)
	if err != nil {
		return fmt.Errorf("update Vault contract: %w", err)
	}

	l.Info("Vault contract successfully updated", zap.Stringer("tx", res.Container))

	return nil
}

func (x Prm) validate() error {
	switch {
	case x.Logger == nil:
		return errors.New("missing logger")
	case x.Blockchain == nil:
		return errors.New("missing blockchain")
	case x.LocalAccount == nil:
		return errors.New("missing local account")
	case x.Authority.Equals(util.Uint160{}):
		return fmt.Errorf("%w: missing authority", vaultrpc.ErrValidation)
	case x.Token.Equals(util.Uint160{}):
		return fmt.Errorf("%w: missing token", vaultrpc.ErrValidation)
	case x.FeeDestination.Equals(util.Uint160{}):
		return fmt.Errorf("%w: missing fee destination", vaultrpc.ErrValidation)
	case x.AllowancePolicy != vaultconst.PolicyOverwrite && x.AllowancePolicy != vaultconst.PolicyRejectActive:
		return fmt.Errorf("%w: unknown allowance policy %d", vaultrpc.ErrValidation, x.AllowancePolicy)
	}

	return nil
}

// deployData returns data passed to the contract _deploy method. Order
// matches the structure expected by the contract.
func (x Prm) deployData() []any {
	return []any{x.Authority, x.Token, x.FeeDestination, x.AllowancePolicy}
}

// isDeployed checks whether the contract is on the chain. It returns true with
// ErrOutdated if the on-chain executable differs from the local one.
func isDeployed(b Blockchain, addr util.Uint160, c contracts.Contract) (bool, error) {
	st, err := b.GetContractStateByHash(addr)
	if err != nil {
		if isErrContractNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get contract state by address %s: %w", addr, err)
	}

	if st.NEF.Checksum != c.NEF.Checksum {
		return true, fmt.Errorf("%w: checksum %d on chain, %d local", ErrOutdated, st.NEF.Checksum, c.NEF.Checksum)
	}

	return true, nil
}

func isErrContractNotFound(err error) bool {
	return strings.Contains(err.Error(), "Unknown contract")
}

func checkHalt(res *state.AppExecResult) error {
	if res.VMState == vmstate.Halt {
		return nil
	}

	err := vaultrpc.ClassifyFault(res.FaultException)
	if err == nil {
		err = errors.New("no fault exception")
	}

	return fmt.Errorf("transaction %s failed with %s state: %w", res.Container, res.VMState, err)
}
