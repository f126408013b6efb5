package main

import (
	"fmt"
	"math/big"
	"os"
	"strconv"

	"github.com/Gostai/custom-wallet/contracts/vault/vaultconst"
	"github.com/Gostai/custom-wallet/internal/config"
	vaultrpc "github.com/Gostai/custom-wallet/rpc/vault"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var cmdInfo = &cobra.Command{
	Use:   "info",
	Short: "Show Vault state",
	Args:  cobra.NoArgs,
	Run:   showInfo,
}

var cmdQuote = &cobra.Command{
	Use:   "quote <GAS amount>",
	Short: "Show fee retained from a currency transfer of the given amount",
	Args:  cobra.ExactArgs(1),
	Run:   quoteFee,
}

var cmdEvents = &cobra.Command{
	Use:   "events <transaction hash>",
	Short: "Show Vault notifications produced by the transaction",
	Args:  cobra.ExactArgs(1),
	Run:   showEvents,
}

func init() {
	cmdMain.AddCommand(cmdInfo, cmdQuote, cmdEvents)
}

func showInfo(cmd *cobra.Command, _ []string) {
	var (
		c      = newClient(cmd.Context())
		inv    = invoker.New(c, nil)
		hash   = vaultHash()
		reader = vaultrpc.NewReader(inv, hash)
	)

	version, err := reader.Version()
	checkf(err, "get version")
	fee, err := reader.FeePercent()
	checkf(err, "get fee percent")
	authority, err := reader.Authority()
	checkf(err, "get authority")
	feeDest, err := reader.FeeDestination()
	checkf(err, "get fee destination")
	custody, err := reader.Custody()
	checkf(err, "get custody account")
	token, err := reader.Token()
	checkf(err, "get token")
	policy, err := reader.AllowancePolicy()
	checkf(err, "get allowance policy")
	allowance, err := reader.GetAllowance()
	checkf(err, "get allowance")

	gasBalance, err := gas.NewReader(inv).BalanceOf(custody)
	checkf(err, "get GAS balance")

	tokenReader := nep17.NewReader(inv, token)
	tokenDecimals, err := tokenReader.Decimals()
	checkf(err, "get token decimals")
	tokenBalance, err := tokenReader.BalanceOf(custody)
	checkf(err, "get token balance")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Parameter", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk([][]string{
		{"Contract", hash.StringLE()},
		{"Version", version.String()},
		{"Authority", address.Uint160ToString(authority)},
		{"Custody account", address.Uint160ToString(custody)},
		{"Fee percent", fee.String()},
		{"Fee destination", address.Uint160ToString(feeDest)},
		{"Token", token.StringLE()},
		{"GAS balance", fixedn.ToString(gasBalance, gasDecimals)},
		{"Token balance", fixedn.ToString(tokenBalance, tokenDecimals)},
		{"Allowance policy", policyName(policy.Int64())},
		{"Allowance", allowanceString(allowance, tokenDecimals)},
	})
	table.Render()
}

func quoteFee(cmd *cobra.Command, args []string) {
	reader := vaultrpc.NewReader(invoker.New(newClient(cmd.Context()), nil), vaultHash())

	amount := parseAmount(args[0], gasDecimals)

	fee, err := reader.QuoteFee(amount)
	checkf(err, "quote fee")

	fmt.Printf("Fee: %s GAS, net: %s GAS\n",
		fixedn.ToString(fee, gasDecimals),
		fixedn.ToString(new(big.Int).Sub(amount, fee), gasDecimals))
}

func showEvents(cmd *cobra.Command, args []string) {
	h, err := util.Uint256DecodeStringLE(args[0])
	checkf(err, "parse transaction hash")

	log, err := newClient(cmd.Context()).GetApplicationLog(h, nil)
	checkf(err, "get application log")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Event", "Account", "Amount", "Fee"})

	fees, err := vaultrpc.FeeChangedEventsFromApplicationLog(log)
	check(err)
	for _, e := range fees {
		table.Append([]string{"FeeChanged", "", e.Percent.String() + "%", ""})
	}

	deposits, err := vaultrpc.CurrencyDepositEventsFromApplicationLog(log)
	check(err)
	for _, e := range deposits {
		table.Append([]string{"CurrencyDeposit", address.Uint160ToString(e.User),
			fixedn.ToString(e.Amount, gasDecimals), fixedn.ToString(e.Fee, gasDecimals)})
	}

	payouts, err := vaultrpc.CurrencyPayoutEventsFromApplicationLog(log)
	check(err)
	for _, e := range payouts {
		table.Append([]string{"CurrencyPayout", address.Uint160ToString(e.Recipient),
			fixedn.ToString(e.Amount, gasDecimals), fixedn.ToString(e.Fee, gasDecimals)})
	}

	tokenDeposits, err := vaultrpc.TokenDepositEventsFromApplicationLog(log)
	check(err)
	for _, e := range tokenDeposits {
		table.Append([]string{"TokenDeposit", address.Uint160ToString(e.User), e.Amount.String(), ""})
	}

	tokenPayouts, err := vaultrpc.TokenPayoutEventsFromApplicationLog(log)
	check(err)
	for _, e := range tokenPayouts {
		table.Append([]string{"TokenPayout", address.Uint160ToString(e.User), e.Amount.String(), ""})
	}

	for _, kind := range []struct {
		name string
		get  func(*result.ApplicationLog) ([]*vaultrpc.AllowanceEvent, error)
	}{
		{"AllowanceRevoked", vaultrpc.AllowanceRevokedEventsFromApplicationLog},
		{"AllowanceGranted", vaultrpc.AllowanceGrantedEventsFromApplicationLog},
		{"AllowanceClaimed", vaultrpc.AllowanceClaimedEventsFromApplicationLog},
	} {
		events, err := kind.get(log)
		check(err)
		for _, e := range events {
			table.Append([]string{kind.name, address.Uint160ToString(e.Recipient), e.Amount.String(), ""})
		}
	}

	table.Render()
}

func policyName(p int64) string {
	switch p {
	case vaultconst.PolicyOverwrite:
		return config.PolicyOverwrite
	case vaultconst.PolicyRejectActive:
		return config.PolicyRejectActive
	default:
		return "unknown (" + strconv.FormatInt(p, 10) + ")"
	}
}

func allowanceString(a *vaultrpc.Allowance, decimals int) string {
	if !a.Active {
		return "none"
	}
	return fixedn.ToString(a.Amount, decimals) + " to " + address.Uint160ToString(a.Recipient)
}
