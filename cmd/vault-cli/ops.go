package main

import (
	"math/big"
	"strconv"

	vaultrpc "github.com/Gostai/custom-wallet/rpc/vault"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cmdSetFee = &cobra.Command{
	Use:   "set-fee <percent>",
	Short: "Set fee percent of currency transfers (authority only)",
	Args:  cobra.ExactArgs(1),
	Run:   setFee,
}

var cmdDepositCurrency = &cobra.Command{
	Use:   "deposit-currency <GAS amount>",
	Short: "Deposit GAS from the wallet account, the fee goes to the fee destination",
	Args:  cobra.ExactArgs(1),
	Run:   depositCurrency,
}

var cmdPayoutCurrency = &cobra.Command{
	Use:   "payout-currency <recipient> <GAS amount>",
	Short: "Pay GAS out of the vault (authority only), the fee goes to the fee destination",
	Args:  cobra.ExactArgs(2),
	Run:   payoutCurrency,
}

var cmdDepositToken = &cobra.Command{
	Use:   "deposit-token <token amount>",
	Short: "Deposit tokens from the wallet account",
	Args:  cobra.ExactArgs(1),
	Run:   depositToken,
}

var cmdPayoutToken = &cobra.Command{
	Use:   "payout-token <user> <token amount>",
	Short: "Pay tokens out of the vault (authority only)",
	Args:  cobra.ExactArgs(2),
	Run:   payoutToken,
}

var cmdGrant = &cobra.Command{
	Use:   "grant <recipient> <token amount>",
	Short: "Grant a one-time token allowance (authority only)",
	Args:  cobra.ExactArgs(2),
	Run:   grantAllowance,
}

var cmdClaim = &cobra.Command{
	Use:   "claim",
	Short: "Claim the allowance granted to the wallet account",
	Args:  cobra.NoArgs,
	Run:   claimAllowance,
}

var flagOps struct {
	FeeDestination string
}

func init() {
	cmdMain.AddCommand(
		cmdSetFee,
		cmdDepositCurrency,
		cmdPayoutCurrency,
		cmdDepositToken,
		cmdPayoutToken,
		cmdGrant,
		cmdClaim,
	)

	for _, cmd := range []*cobra.Command{cmdDepositCurrency, cmdPayoutCurrency} {
		cmd.Flags().StringVar(&flagOps.FeeDestination, "fee-destination", "", "Fee destination account, the one from the contract is used if empty")
	}
}

// feeDestination returns fee destination from the flag or the one the vault
// was deployed with.
func feeDestination(reader *vaultrpc.ContractReader) util.Uint160 {
	if flagOps.FeeDestination != "" {
		return parseHashArg(flagOps.FeeDestination, "fee destination")
	}

	h, err := reader.FeeDestination()
	checkf(err, "get fee destination")
	return h
}

func tokenDecimals(c *rpcclient.Client, reader *vaultrpc.ContractReader) (util.Uint160, int) {
	token, err := reader.Token()
	checkf(err, "get token")

	decimals, err := nep17.NewReader(invoker.New(c, nil), token).Decimals()
	checkf(err, "get token decimals")

	return token, decimals
}

func setFee(cmd *cobra.Command, args []string) {
	percent, err := strconv.ParseInt(args[0], 10, 64)
	checkf(err, "parse percent")

	var (
		c   = newClient(cmd.Context())
		act = newActor(c, openAccount())
	)

	await(act)(vaultrpc.New(act, vaultHash()).SetFee(big.NewInt(percent)))
}

func depositCurrency(cmd *cobra.Command, args []string) {
	var (
		c      = newClient(cmd.Context())
		acc    = openAccount()
		hash   = vaultHash()
		amount = parseAmount(args[0], gasDecimals)
		act    = newActor(c, acc, hash, gas.Hash)
		vault  = vaultrpc.New(act, hash)
	)

	fee, err := vault.QuoteFee(amount)
	checkf(err, "quote fee")

	logger.Info("depositing GAS",
		zap.String("amount", args[0]),
		zap.Stringer("fee", fee))

	res := await(act)(vault.DepositCurrency(acc.ScriptHash(), amount, feeDestination(&vault.ContractReader)))
	printEvents(vaultrpc.CurrencyDepositEventsFromApplicationLog(appLog(res)))
}

func payoutCurrency(cmd *cobra.Command, args []string) {
	var (
		c         = newClient(cmd.Context())
		act       = newActor(c, openAccount())
		vault     = vaultrpc.New(act, vaultHash())
		recipient = parseHashArg(args[0], "recipient")
		amount    = parseAmount(args[1], gasDecimals)
	)

	res := await(act)(vault.PayoutCurrency(recipient, amount, feeDestination(&vault.ContractReader)))
	printEvents(vaultrpc.CurrencyPayoutEventsFromApplicationLog(appLog(res)))
}

func depositToken(cmd *cobra.Command, args []string) {
	var (
		c      = newClient(cmd.Context())
		acc    = openAccount()
		hash   = vaultHash()
		reader = vaultrpc.NewReader(invoker.New(c, nil), hash)
	)

	token, decimals := tokenDecimals(c, reader)
	act := newActor(c, acc, hash, token)

	res := await(act)(vaultrpc.New(act, hash).DepositToken(acc.ScriptHash(), parseAmount(args[0], decimals)))
	printEvents(vaultrpc.TokenDepositEventsFromApplicationLog(appLog(res)))
}

func payoutToken(cmd *cobra.Command, args []string) {
	var (
		c     = newClient(cmd.Context())
		act   = newActor(c, openAccount())
		vault = vaultrpc.New(act, vaultHash())
		user  = parseHashArg(args[0], "user")
	)

	_, decimals := tokenDecimals(c, &vault.ContractReader)

	res := await(act)(vault.PayoutToken(user, parseAmount(args[1], decimals)))
	printEvents(vaultrpc.TokenPayoutEventsFromApplicationLog(appLog(res)))
}

func grantAllowance(cmd *cobra.Command, args []string) {
	var (
		c         = newClient(cmd.Context())
		act       = newActor(c, openAccount())
		vault     = vaultrpc.New(act, vaultHash())
		recipient = parseHashArg(args[0], "recipient")
	)

	_, decimals := tokenDecimals(c, &vault.ContractReader)

	res := await(act)(vault.GrantAllowance(recipient, parseAmount(args[1], decimals)))
	printEvents(vaultrpc.AllowanceRevokedEventsFromApplicationLog(appLog(res)))
	printEvents(vaultrpc.AllowanceGrantedEventsFromApplicationLog(appLog(res)))
}

func claimAllowance(cmd *cobra.Command, _ []string) {
	var (
		c     = newClient(cmd.Context())
		act   = newActor(c, openAccount())
		vault = vaultrpc.New(act, vaultHash())
	)

	a, err := vault.GetAllowance()
	checkf(err, "get allowance")
	if !a.Active {
		fatalf("%v", vaultrpc.ErrAllowanceNotActive)
	}

	res := await(act)(vault.ClaimAllowance())
	printEvents(vaultrpc.AllowanceClaimedEventsFromApplicationLog(appLog(res)))
}

func printEvents(events any, err error) {
	checkf(err, "decode notifications")
	logger.Info("contract notifications", zap.Any("events", events))
}
