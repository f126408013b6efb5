package main

import (
	"context"
	"fmt"
	"math/big"
	"os"

	"github.com/Gostai/custom-wallet/internal/config"
	vaultrpc "github.com/Gostai/custom-wallet/rpc/vault"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// gasDecimals is the precision of native GAS amounts.
const gasDecimals = 8

var cmdMain = &cobra.Command{
	Use:   "vault-cli",
	Short: "Custodial Vault contract client",
	Run:   printUsageAndExit1,
}

var flagMain struct {
	Config string
}

var (
	cfg    *config.Config
	logger *zap.Logger
)

func init() {
	cmdMain.PersistentFlags().StringVarP(&flagMain.Config, "config", "c", "", "Configuration file, VAULT_* environment variables override it")
	cmdMain.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		var err error
		cfg, err = config.Load(flagMain.Config)
		checkf(err, "load configuration")
		checkf(cfg.Validate(), "invalid configuration")

		logger = newLogger(cfg.Log.Level)
	}
}

func main() {
	_ = cmdMain.Execute()
}

func printUsageAndExit1(cmd *cobra.Command, args []string) {
	_ = cmd.Usage()
	os.Exit(1)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func check(err error) {
	if err != nil {
		fatalf("%v", err)
	}
}

func checkf(err error, format string, otherArgs ...any) {
	if err != nil {
		fatalf(format+": %v", append(otherArgs, err)...)
	}
}

func newLogger(level string) *zap.Logger {
	lvl, err := zap.ParseAtomicLevel(level)
	checkf(err, "parse log level")

	c := zap.NewProductionConfig()
	c.Level = lvl
	c.Encoding = "console"

	l, err := c.Build()
	checkf(err, "build logger")

	return l
}

func newClient(ctx context.Context) *rpcclient.Client {
	c, err := rpcclient.New(ctx, cfg.RPC.Endpoint, rpcclient.Options{
		DialTimeout:    cfg.RPC.Timeout,
		RequestTimeout: cfg.RPC.Timeout,
	})
	checkf(err, "create RPC client for %s", cfg.RPC.Endpoint)
	checkf(c.Init(), "init RPC client")

	return c
}

// openAccount returns unlocked account from the configured wallet. The
// default wallet account is used when no address is configured.
func openAccount() *wallet.Account {
	if cfg.Wallet.Path == "" {
		fatalf("wallet path is not configured")
	}

	w, err := wallet.NewWalletFromFile(cfg.Wallet.Path)
	checkf(err, "open wallet")

	var acc *wallet.Account
	if cfg.Wallet.Address != "" {
		h, err := config.ParseHash(cfg.Wallet.Address)
		checkf(err, "parse wallet address")

		acc = w.GetAccount(h)
	} else {
		acc = w.GetAccount(w.GetChangeAddress())
	}
	if acc == nil {
		fatalf("account is missing in the wallet %s", cfg.Wallet.Path)
	}

	checkf(acc.Decrypt(cfg.Wallet.Password, w.Scrypt), "decrypt account")

	return acc
}

// newActor creates transaction sender signing with the account. Witness is
// valid only inside the allowed contracts.
func newActor(c *rpcclient.Client, acc *wallet.Account, allowed ...util.Uint160) *actor.Actor {
	signer := transaction.Signer{
		Account: acc.ScriptHash(),
		Scopes:  transaction.CalledByEntry,
	}
	if len(allowed) > 0 {
		signer.Scopes |= transaction.CustomContracts
		signer.AllowedContracts = allowed
	}

	act, err := actor.New(c, []actor.SignerAccount{{Signer: signer, Account: acc}})
	checkf(err, "create transaction sender")

	return act
}

func vaultHash() util.Uint160 {
	if cfg.Vault.Contract == "" {
		fatalf("Vault contract address is not configured")
	}

	h, err := config.ParseHash(cfg.Vault.Contract)
	checkf(err, "parse Vault contract address")

	return h
}

func parseHashArg(s, name string) util.Uint160 {
	h, err := config.ParseHash(s)
	checkf(err, "parse %s", name)
	return h
}

func parseAmount(s string, decimals int) *big.Int {
	v, err := fixedn.FromString(s, decimals)
	checkf(err, "parse amount %q", s)
	return v
}

// await returns a function waiting for the transaction to be accepted. It
// fails on FAULT with the classified contract error.
func await(act *actor.Actor) func(util.Uint256, uint32, error) *state.AppExecResult {
	return func(h util.Uint256, vub uint32, err error) *state.AppExecResult {
		res, err := act.Wait(h, vub, err)
		check(vaultrpc.ClassifyError(err))

		if res.VMState != vmstate.Halt {
			fatalf("transaction %s failed: %v", h.StringLE(), vaultrpc.ClassifyFault(res.FaultException))
		}

		logger.Info("transaction accepted",
			zap.Stringer("tx", h),
			zap.Int64("gas consumed", res.GasConsumed))

		return res
	}
}

func appLog(res *state.AppExecResult) *result.ApplicationLog {
	return &result.ApplicationLog{
		Container:     res.Container,
		IsTransaction: true,
		Executions:    []state.Execution{res.Execution},
	}
}
