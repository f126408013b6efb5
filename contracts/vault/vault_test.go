package vault_test

import (
	"encoding/json"
	"math/big"
	"path"
	"testing"

	"github.com/Gostai/custom-wallet/common"
	"github.com/Gostai/custom-wallet/contracts/vault/vaultconst"
	vaultrpc "github.com/Gostai/custom-wallet/rpc/vault"
	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

const (
	vaultPath = "."
	tokenPath = "../../internal/testcontracts/nep17token"

	gasUnit = 1_0000_0000
)

type testVault struct {
	e         *neotest.Executor
	vault     *neotest.ContractInvoker
	token     *neotest.ContractInvoker
	authority neotest.Signer
	feeDest   util.Uint160
}

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

func deployToken(t *testing.T, e *neotest.Executor) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, tokenPath, path.Join(tokenPath, "config.yml"))
	e.DeployContract(t, c, nil)
	return c.Hash
}

func newVault(t *testing.T, policy int) *testVault {
	e := newExecutor(t)

	tokenHash := deployToken(t, e)
	authority := e.NewAccount(t)
	feeDest := util.Uint160{0xfe, 0xed}

	c := neotest.CompileFile(t, e.CommitteeHash, vaultPath, path.Join(vaultPath, "config.yml"))
	e.DeployContract(t, c, []any{authority.ScriptHash(), tokenHash, feeDest, policy})

	return &testVault{
		e:         e,
		vault:     e.CommitteeInvoker(c.Hash).WithSigners(authority),
		token:     e.CommitteeInvoker(tokenHash),
		authority: authority,
		feeDest:   feeDest,
	}
}

func (v *testVault) as(s neotest.Signer) *neotest.ContractInvoker {
	return v.vault.WithSigners(s)
}

func (v *testVault) gasBalance(acc util.Uint160) int64 {
	return v.e.Chain.GetUtilityTokenBalance(acc).Int64()
}

func (v *testVault) tokenBalance(t *testing.T, acc util.Uint160) int64 {
	res, err := v.token.TestInvoke(t, "balanceOf", acc)
	require.NoError(t, err)
	return res.Top().BigInt().Int64()
}

func (v *testVault) mint(t *testing.T, to util.Uint160, amount int64) {
	v.token.Invoke(t, stackitem.Null{}, "mint", to, amount)
}

func (v *testVault) allowance(t *testing.T) *vaultrpc.Allowance {
	res, err := v.vault.TestInvoke(t, "getAllowance")
	require.NoError(t, err)

	var a vaultrpc.Allowance
	require.NoError(t, a.FromStackItem(res.Top().Item()))
	return &a
}

func (v *testVault) appLog(t *testing.T, h util.Uint256) *result.ApplicationLog {
	aer := v.e.GetTxExecResult(t, h)
	return &result.ApplicationLog{Container: h, Executions: []state.Execution{aer.Execution}}
}

func TestVault_Deploy(t *testing.T) {
	v := newVault(t, vaultconst.PolicyOverwrite)

	v.vault.Invoke(t, stackitem.Make(vaultconst.DefaultFeePercent), "feePercent")
	v.vault.Invoke(t, stackitem.Make(v.authority.ScriptHash().BytesBE()), "authority")
	v.vault.Invoke(t, stackitem.Make(v.feeDest.BytesBE()), "feeDestination")
	v.vault.Invoke(t, stackitem.Make(v.token.Hash.BytesBE()), "token")
	v.vault.Invoke(t, stackitem.Make(v.vault.Hash.BytesBE()), "custody")
	v.vault.Invoke(t, stackitem.Make(vaultconst.PolicyOverwrite), "allowancePolicy")
	v.vault.Invoke(t, stackitem.Make(common.Version), "version")

	require.False(t, v.allowance(t).Active)
	require.Zero(t, v.gasBalance(v.vault.Hash))

	t.Run("invalid data", func(t *testing.T) {
		e := newExecutor(t)
		tokenHash := deployToken(t, e)
		acc := e.NewAccount(t).ScriptHash()

		c := neotest.CompileFile(t, e.CommitteeHash, vaultPath, path.Join(vaultPath, "config.yml"))

		e.DeployContractCheckFAULT(t, c, []any{acc, util.Uint160{1}, acc, vaultconst.PolicyOverwrite},
			"token contract is not deployed")
		e.DeployContractCheckFAULT(t, c, []any{acc, tokenHash, []byte{1, 2, 3}, vaultconst.PolicyOverwrite},
			"incorrect length of fee destination script hash")
		e.DeployContractCheckFAULT(t, c, []any{acc, tokenHash, acc, 2},
			"unknown allowance policy")
	})
}

func TestVault_SetFee(t *testing.T) {
	v := newVault(t, vaultconst.PolicyOverwrite)
	const method = "setFee"

	v.as(v.e.NewAccount(t)).InvokeFail(t, common.ErrAuthorityWitnessFailed, method, 5)

	h := v.vault.Invoke(t, stackitem.Null{}, method, 5)
	v.vault.Invoke(t, stackitem.Make(5), "feePercent")

	events, err := vaultrpc.FeeChangedEventsFromApplicationLog(v.appLog(t, h))
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, int64(5), events[0].Percent.Int64())

	for _, p := range []int64{0, 100} {
		v.vault.Invoke(t, stackitem.Null{}, method, p)
		v.vault.Invoke(t, stackitem.Make(p), "feePercent")
	}

	v.vault.InvokeFail(t, vaultconst.ErrValidation, method, 101)
	v.vault.InvokeFail(t, vaultconst.ErrValidation, method, -1)
	v.vault.Invoke(t, stackitem.Make(100), "feePercent")
}

func TestVault_DepositCurrency(t *testing.T) {
	v := newVault(t, vaultconst.PolicyOverwrite)
	const method = "depositCurrency"

	user := v.e.NewAccount(t)
	other := v.e.NewAccount(t)
	c := v.as(user)

	h := c.Invoke(t, stackitem.Null{}, method, user.ScriptHash(), 10*gasUnit, v.feeDest)
	require.Equal(t, int64(9*gasUnit), v.gasBalance(v.vault.Hash))
	require.Equal(t, int64(gasUnit), v.gasBalance(v.feeDest))

	events, err := vaultrpc.CurrencyDepositEventsFromApplicationLog(v.appLog(t, h))
	require.NoError(t, err)
	require.Equal(t, []*vaultrpc.CurrencyDepositEvent{{
		User:   user.ScriptHash(),
		Amount: big.NewInt(10 * gasUnit),
		Fee:    big.NewInt(gasUnit),
	}}, events)

	t.Run("fee rounds up", func(t *testing.T) {
		c.Invoke(t, stackitem.Null{}, method, user.ScriptHash(), 95, v.feeDest)
		require.Equal(t, int64(9*gasUnit+85), v.gasBalance(v.vault.Hash))
		require.Equal(t, int64(gasUnit+10), v.gasBalance(v.feeDest))
	})

	t.Run("zero fee", func(t *testing.T) {
		v.vault.Invoke(t, stackitem.Null{}, "setFee", 0)
		c.Invoke(t, stackitem.Null{}, method, user.ScriptHash(), 100, v.feeDest)
		require.Equal(t, int64(9*gasUnit+185), v.gasBalance(v.vault.Hash))
		require.Equal(t, int64(gasUnit+10), v.gasBalance(v.feeDest))
		v.vault.Invoke(t, stackitem.Null{}, "setFee", vaultconst.DefaultFeePercent)
	})

	vaultBefore := v.gasBalance(v.vault.Hash)
	feeBefore := v.gasBalance(v.feeDest)

	c.InvokeFail(t, vaultconst.ErrValidation, method, user.ScriptHash(), 0, v.feeDest)
	c.InvokeFail(t, vaultconst.ErrValidation, method, user.ScriptHash(), -1, v.feeDest)
	c.InvokeFail(t, vaultconst.ErrUnknownFeeDestination, method, user.ScriptHash(), gasUnit, util.Uint160{1})
	c.InvokeFail(t, vaultconst.ErrInsufficientFunds, method, user.ScriptHash(), 1000*gasUnit, v.feeDest)
	c.InvokeFail(t, common.ErrOwnerWitnessFailed, method, other.ScriptHash(), gasUnit, v.feeDest)

	// authorization is checked before arguments
	c.InvokeFail(t, common.ErrOwnerWitnessFailed, method, other.ScriptHash(), 0, util.Uint160{1})
	// amount is checked before the fee destination
	c.InvokeFail(t, vaultconst.ErrValidation, method, user.ScriptHash(), 0, util.Uint160{1})

	require.Equal(t, vaultBefore, v.gasBalance(v.vault.Hash))
	require.Equal(t, feeBefore, v.gasBalance(v.feeDest))
}

func TestVault_PayoutCurrency(t *testing.T) {
	v := newVault(t, vaultconst.PolicyOverwrite)
	const method = "payoutCurrency"

	user := v.e.NewAccount(t)
	recipient := util.Uint160{0xaa}

	v.as(user).Invoke(t, stackitem.Null{}, "depositCurrency", user.ScriptHash(), 10*gasUnit, v.feeDest)
	require.Equal(t, int64(9*gasUnit), v.gasBalance(v.vault.Hash))

	v.as(user).InvokeFail(t, common.ErrAuthorityWitnessFailed, method, recipient, 5*gasUnit, v.feeDest)
	v.vault.InvokeFail(t, vaultconst.ErrValidation, method, recipient, 0, v.feeDest)
	v.vault.InvokeFail(t, vaultconst.ErrUnknownFeeDestination, method, recipient, 5*gasUnit, recipient)
	v.vault.InvokeFail(t, vaultconst.ErrInsufficientFunds, method, recipient, 10*gasUnit, v.feeDest)

	h := v.vault.Invoke(t, stackitem.Null{}, method, recipient, 5*gasUnit, v.feeDest)
	require.Equal(t, int64(4*gasUnit), v.gasBalance(v.vault.Hash))
	require.Equal(t, int64(gasUnit/2*9), v.gasBalance(recipient))
	require.Equal(t, int64(gasUnit+gasUnit/2), v.gasBalance(v.feeDest))

	events, err := vaultrpc.CurrencyPayoutEventsFromApplicationLog(v.appLog(t, h))
	require.NoError(t, err)
	require.Equal(t, []*vaultrpc.CurrencyPayoutEvent{{
		Recipient: recipient,
		Amount:    big.NewInt(5 * gasUnit),
		Fee:       big.NewInt(gasUnit / 2),
	}}, events)

	v.vault.InvokeFail(t, vaultconst.ErrInsufficientFunds, method, recipient, 5*gasUnit, v.feeDest)
	require.Equal(t, int64(4*gasUnit), v.gasBalance(v.vault.Hash))
}

func TestVault_Token(t *testing.T) {
	v := newVault(t, vaultconst.PolicyOverwrite)

	user := v.e.NewAccount(t)
	other := v.e.NewAccount(t)
	v.mint(t, user.ScriptHash(), 1000)

	v.as(user).InvokeFail(t, vaultconst.ErrInsufficientFunds, "depositToken", user.ScriptHash(), 1001)
	v.as(user).InvokeFail(t, common.ErrOwnerWitnessFailed, "depositToken", other.ScriptHash(), 1)
	v.as(user).InvokeFail(t, vaultconst.ErrValidation, "depositToken", user.ScriptHash(), 0)

	h := v.as(user).Invoke(t, stackitem.Null{}, "depositToken", user.ScriptHash(), 600)
	require.Equal(t, int64(400), v.tokenBalance(t, user.ScriptHash()))
	require.Equal(t, int64(600), v.tokenBalance(t, v.vault.Hash))

	deposits, err := vaultrpc.TokenDepositEventsFromApplicationLog(v.appLog(t, h))
	require.NoError(t, err)
	require.Equal(t, []*vaultrpc.TokenDepositEvent{{User: user.ScriptHash(), Amount: big.NewInt(600)}}, deposits)

	v.as(user).InvokeFail(t, common.ErrAuthorityWitnessFailed, "payoutToken", user.ScriptHash(), 100)
	v.vault.InvokeFail(t, vaultconst.ErrInsufficientFunds, "payoutToken", user.ScriptHash(), 601)

	h = v.vault.Invoke(t, stackitem.Null{}, "payoutToken", other.ScriptHash(), 100)
	require.Equal(t, int64(100), v.tokenBalance(t, other.ScriptHash()))
	require.Equal(t, int64(500), v.tokenBalance(t, v.vault.Hash))

	payouts, err := vaultrpc.TokenPayoutEventsFromApplicationLog(v.appLog(t, h))
	require.NoError(t, err)
	require.Equal(t, []*vaultrpc.TokenPayoutEvent{{User: other.ScriptHash(), Amount: big.NewInt(100)}}, payouts)

	// token movements never touch GAS of the vault
	require.Zero(t, v.gasBalance(v.vault.Hash))
}

func TestVault_Allowance(t *testing.T) {
	v := newVault(t, vaultconst.PolicyOverwrite)

	user := v.e.NewAccount(t)
	recipient := v.e.NewAccount(t)
	v.mint(t, user.ScriptHash(), 1000)
	v.as(user).Invoke(t, stackitem.Null{}, "depositToken", user.ScriptHash(), 500)

	v.as(user).InvokeFail(t, common.ErrAuthorityWitnessFailed, "grantAllowance", recipient.ScriptHash(), 100)
	v.vault.InvokeFail(t, vaultconst.ErrValidation, "grantAllowance", recipient.ScriptHash(), 0)
	v.vault.InvokeFail(t, vaultconst.ErrInsufficientFunds, "grantAllowance", recipient.ScriptHash(), 501)
	v.as(recipient).InvokeFail(t, vaultconst.ErrAllowanceNotActive, "claimAllowance")

	h := v.vault.Invoke(t, stackitem.Null{}, "grantAllowance", recipient.ScriptHash(), 200)
	require.Equal(t, &vaultrpc.Allowance{
		Active:    true,
		Recipient: recipient.ScriptHash(),
		Amount:    big.NewInt(200),
	}, v.allowance(t))

	granted, err := vaultrpc.AllowanceGrantedEventsFromApplicationLog(v.appLog(t, h))
	require.NoError(t, err)
	require.Equal(t, []*vaultrpc.AllowanceEvent{{Recipient: recipient.ScriptHash(), Amount: big.NewInt(200)}}, granted)

	// granting does not move tokens
	require.Equal(t, int64(500), v.tokenBalance(t, v.vault.Hash))

	v.as(user).InvokeFail(t, common.ErrRecipientWitnessFailed, "claimAllowance")
	v.vault.InvokeFail(t, common.ErrRecipientWitnessFailed, "claimAllowance")

	h = v.as(recipient).Invoke(t, stackitem.Null{}, "claimAllowance")
	require.Equal(t, int64(200), v.tokenBalance(t, recipient.ScriptHash()))
	require.Equal(t, int64(300), v.tokenBalance(t, v.vault.Hash))

	claimed, err := vaultrpc.AllowanceClaimedEventsFromApplicationLog(v.appLog(t, h))
	require.NoError(t, err)
	require.Equal(t, []*vaultrpc.AllowanceEvent{{Recipient: recipient.ScriptHash(), Amount: big.NewInt(200)}}, claimed)

	a := v.allowance(t)
	require.False(t, a.Active)
	require.Zero(t, a.Amount.Sign())

	v.as(recipient).InvokeFail(t, vaultconst.ErrAllowanceNotActive, "claimAllowance")
	require.Equal(t, int64(200), v.tokenBalance(t, recipient.ScriptHash()))
}

func TestVault_AllowanceOverwrite(t *testing.T) {
	v := newVault(t, vaultconst.PolicyOverwrite)

	first := v.e.NewAccount(t)
	second := v.e.NewAccount(t)
	v.mint(t, v.vault.Hash, 1000)

	v.vault.Invoke(t, stackitem.Null{}, "grantAllowance", first.ScriptHash(), 100)
	h := v.vault.Invoke(t, stackitem.Null{}, "grantAllowance", second.ScriptHash(), 150)

	revoked, err := vaultrpc.AllowanceRevokedEventsFromApplicationLog(v.appLog(t, h))
	require.NoError(t, err)
	require.Equal(t, []*vaultrpc.AllowanceEvent{{Recipient: first.ScriptHash(), Amount: big.NewInt(100)}}, revoked)

	require.Equal(t, second.ScriptHash(), v.allowance(t).Recipient)

	v.as(first).InvokeFail(t, common.ErrRecipientWitnessFailed, "claimAllowance")
	v.as(second).Invoke(t, stackitem.Null{}, "claimAllowance")

	require.Zero(t, v.tokenBalance(t, first.ScriptHash()))
	require.Equal(t, int64(150), v.tokenBalance(t, second.ScriptHash()))
	require.Equal(t, int64(850), v.tokenBalance(t, v.vault.Hash))
}

func TestVault_AllowanceRejectActive(t *testing.T) {
	v := newVault(t, vaultconst.PolicyRejectActive)

	first := v.e.NewAccount(t)
	second := v.e.NewAccount(t)
	v.mint(t, v.vault.Hash, 1000)

	v.vault.Invoke(t, stackitem.Null{}, "grantAllowance", first.ScriptHash(), 100)
	v.vault.InvokeFail(t, vaultconst.ErrAllowanceActive, "grantAllowance", second.ScriptHash(), 150)
	require.Equal(t, first.ScriptHash(), v.allowance(t).Recipient)

	v.as(first).Invoke(t, stackitem.Null{}, "claimAllowance")
	v.vault.Invoke(t, stackitem.Null{}, "grantAllowance", second.ScriptHash(), 150)
	v.as(second).Invoke(t, stackitem.Null{}, "claimAllowance")

	require.Equal(t, int64(100), v.tokenBalance(t, first.ScriptHash()))
	require.Equal(t, int64(150), v.tokenBalance(t, second.ScriptHash()))
}

func TestVault_AllowanceClaimRetry(t *testing.T) {
	v := newVault(t, vaultconst.PolicyOverwrite)

	user := v.e.NewAccount(t)
	recipient := v.e.NewAccount(t)
	v.mint(t, user.ScriptHash(), 1000)
	v.as(user).Invoke(t, stackitem.Null{}, "depositToken", user.ScriptHash(), 500)

	v.vault.Invoke(t, stackitem.Null{}, "grantAllowance", recipient.ScriptHash(), 300)
	v.vault.Invoke(t, stackitem.Null{}, "payoutToken", user.ScriptHash(), 400)

	v.as(recipient).InvokeFail(t, vaultconst.ErrInsufficientFunds, "claimAllowance")
	require.True(t, v.allowance(t).Active)

	v.as(user).Invoke(t, stackitem.Null{}, "depositToken", user.ScriptHash(), 300)
	v.as(recipient).Invoke(t, stackitem.Null{}, "claimAllowance")

	require.Equal(t, int64(300), v.tokenBalance(t, recipient.ScriptHash()))
	require.Equal(t, int64(100), v.tokenBalance(t, v.vault.Hash))
	require.False(t, v.allowance(t).Active)
}

func TestVault_OnNEP17Payment(t *testing.T) {
	v := newVault(t, vaultconst.PolicyOverwrite)

	user := v.e.NewAccount(t)

	gasInvoker := v.e.CommitteeInvoker(v.e.NativeHash(t, nativenames.Gas)).WithSigners(user)
	gasInvoker.Invoke(t, true, "transfer", user.ScriptHash(), v.vault.Hash, int64(gasUnit), nil)
	require.Equal(t, int64(gasUnit), v.gasBalance(v.vault.Hash))

	neoInvoker := v.e.CommitteeInvoker(v.e.NativeHash(t, nativenames.Neo))
	neoInvoker.InvokeFail(t, "ABORT", "transfer", neoInvoker.Committee.ScriptHash(), v.vault.Hash, int64(1), nil)
}

func TestVault_Update(t *testing.T) {
	v := newVault(t, vaultconst.PolicyOverwrite)

	c := neotest.CompileFile(t, v.e.CommitteeHash, vaultPath, path.Join(vaultPath, "config.yml"))

	bNEF, err := c.NEF.Bytes()
	require.NoError(t, err)
	jManifest, err := json.Marshal(c.Manifest)
	require.NoError(t, err)

	v.as(v.e.NewAccount(t)).InvokeFail(t, common.ErrAuthorityWitnessFailed, "update", bNEF, jManifest, nil)
	v.vault.InvokeFail(t, common.ErrAlreadyUpdated, "update", bNEF, jManifest, nil)
}
