package vault

import (
	"github.com/Gostai/custom-wallet/common"
	"github.com/Gostai/custom-wallet/contracts/vault/vaultconst"
	"github.com/Gostai/custom-wallet/contracts/vault/vaultfee"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

type (
	// Allowance is a single-slot token payout pre-approved by the authority.
	// Amount is zero when the allowance is not active.
	Allowance struct {
		Active    bool
		Recipient interop.Hash160
		Amount    int
	}

	// vaultSigner is the capability to move assets out of the vault account.
	// The account is the contract script hash, so the contract authorizes
	// transfers on its own behalf without any private key.
	vaultSigner struct {
		account interop.Hash160
	}
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()

	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		authority      interop.Hash160
		token          interop.Hash160
		feeDestination interop.Hash160
		policy         int
	})

	if len(args.authority) != interop.Hash160Len {
		panic(vaultconst.ErrValidation + ": incorrect length of authority script hash")
	}

	if len(args.token) != interop.Hash160Len {
		panic(vaultconst.ErrValidation + ": incorrect length of token contract script hash")
	}

	if management.GetContract(args.token) == nil {
		panic(vaultconst.ErrValidation + ": token contract is not deployed")
	}

	if len(args.feeDestination) != interop.Hash160Len {
		panic(vaultconst.ErrValidation + ": incorrect length of fee destination script hash")
	}

	if args.policy != vaultconst.PolicyOverwrite && args.policy != vaultconst.PolicyRejectActive {
		panic(vaultconst.ErrValidation + ": unknown allowance policy")
	}

	storage.Put(ctx, vaultconst.AuthorityKey, args.authority)
	storage.Put(ctx, vaultconst.TokenKey, args.token)
	storage.Put(ctx, vaultconst.FeeDestinationKey, args.feeDestination)
	storage.Put(ctx, vaultconst.PolicyKey, args.policy)
	storage.Put(ctx, vaultconst.FeeKey, vaultconst.DefaultFeePercent)

	// token custody belongs to the derived contract account from now on
	storage.Put(ctx, vaultconst.CustodyKey, runtime.GetExecutingScriptHash())

	runtime.Log("vault: contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the vault authority.
func Update(nefFile, manifest []byte, data any) {
	ctx := storage.GetReadOnlyContext()
	common.CheckAuthorityWitness(common.GetHash160(ctx, vaultconst.AuthorityKey))

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("vault contract updated")
}

// OnNEP17Payment is a callback for NEP-17 compatible contracts. The vault
// accepts only native GAS and the token it was deployed with.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	ctx := storage.GetReadOnlyContext()
	caller := runtime.GetCallingScriptHash()

	if !caller.Equals(gas.Hash) && !caller.Equals(common.GetHash160(ctx, vaultconst.TokenKey)) {
		common.AbortWithMessage("only GAS and vault token can be accepted")
	}
}

// SetFee sets the percent retained from every currency transfer. It can be
// invoked only by the vault authority. Percent must be in [0, 100].
//
// It produces FeeChanged notification.
func SetFee(percent int) {
	ctx := storage.GetContext()

	common.CheckAuthorityWitness(common.GetHash160(ctx, vaultconst.AuthorityKey))

	if percent < 0 || percent > vaultfee.MaxPercent {
		panic(vaultconst.ErrValidation + ": fee percent must be in [0, 100]")
	}

	storage.Put(ctx, vaultconst.FeeKey, percent)

	runtime.Notify("FeeChanged", percent)
}

// DepositCurrency transfers GAS from the user account to the vault. The fee
// computed from amount goes to the fee destination, the rest to the vault.
// It can be invoked only by the user. feeDestination must match the one
// the vault was deployed with.
//
// It produces CurrencyDeposit notification.
func DepositCurrency(user interop.Hash160, amount int, feeDestination interop.Hash160) {
	ctx := storage.GetReadOnlyContext()

	common.CheckOwnerWitness(user)
	checkAmount(amount)
	checkFeeDestination(ctx, feeDestination)

	if gas.BalanceOf(user) < amount {
		panic(vaultconst.ErrInsufficientFunds + ": user GAS balance is too low")
	}

	var (
		fee   = vaultfee.Compute(common.GetInt(ctx, vaultconst.FeeKey), amount)
		vault = loadSigner(ctx).account
	)

	if !gas.Transfer(user, vault, amount-fee, nil) {
		panic(vaultconst.ErrTransferFailed + ": GAS to vault")
	}

	if !gas.Transfer(user, feeDestination, fee, nil) {
		panic(vaultconst.ErrTransferFailed + ": GAS fee")
	}

	runtime.Notify("CurrencyDeposit", user, amount, fee)
}

// PayoutCurrency transfers GAS from the vault to the recipient. The vault is
// debited with the whole amount: amount minus fee goes to the recipient, fee
// goes to the fee destination. It can be invoked only by the vault authority.
//
// It produces CurrencyPayout notification.
func PayoutCurrency(recipient interop.Hash160, amount int, feeDestination interop.Hash160) {
	ctx := storage.GetReadOnlyContext()

	common.CheckAuthorityWitness(common.GetHash160(ctx, vaultconst.AuthorityKey))
	checkAmount(amount)
	checkFeeDestination(ctx, feeDestination)

	if len(recipient) != interop.Hash160Len {
		panic(vaultconst.ErrValidation + ": incorrect length of recipient script hash")
	}

	signer := loadSigner(ctx)
	if signer.currencyBalance() < amount {
		panic(vaultconst.ErrInsufficientFunds + ": vault GAS balance is too low")
	}

	fee := vaultfee.Compute(common.GetInt(ctx, vaultconst.FeeKey), amount)

	signer.payCurrency(recipient, amount-fee)
	signer.payCurrency(feeDestination, fee)

	runtime.Notify("CurrencyPayout", recipient, amount, fee)
}

// DepositToken transfers vault tokens from the user account to the vault.
// No fee is taken. It can be invoked only by the user.
//
// It produces TokenDeposit notification.
func DepositToken(user interop.Hash160, amount int) {
	ctx := storage.GetReadOnlyContext()

	common.CheckOwnerWitness(user)
	checkAmount(amount)

	token := common.GetHash160(ctx, vaultconst.TokenKey)
	if common.TokenBalance(token, user) < amount {
		panic(vaultconst.ErrInsufficientFunds + ": user token balance is too low")
	}

	if !common.TokenTransfer(token, user, loadSigner(ctx).account, amount, nil) {
		panic(vaultconst.ErrTransferFailed + ": token to vault")
	}

	runtime.Notify("TokenDeposit", user, amount)
}

// PayoutToken transfers vault tokens from the vault to the user. No fee is
// taken. It can be invoked only by the vault authority.
//
// It produces TokenPayout notification.
func PayoutToken(user interop.Hash160, amount int) {
	ctx := storage.GetReadOnlyContext()

	common.CheckAuthorityWitness(common.GetHash160(ctx, vaultconst.AuthorityKey))
	checkAmount(amount)

	if len(user) != interop.Hash160Len {
		panic(vaultconst.ErrValidation + ": incorrect length of user script hash")
	}

	token := common.GetHash160(ctx, vaultconst.TokenKey)
	signer := loadSigner(ctx)

	if signer.tokenBalance(token) < amount {
		panic(vaultconst.ErrInsufficientFunds + ": vault token balance is too low")
	}

	signer.payToken(token, user, amount)

	runtime.Notify("TokenPayout", user, amount)
}

// GrantAllowance reserves amount of vault tokens for the recipient who can
// claim them once with ClaimAllowance. It can be invoked only by the vault
// authority.
//
// If an allowance is already active, the result depends on the policy the
// vault was deployed with: PolicyOverwrite revokes the outstanding grant
// (last grant wins) and produces AllowanceRevoked notification,
// PolicyRejectActive fails.
//
// It produces AllowanceGranted notification.
func GrantAllowance(recipient interop.Hash160, amount int) {
	ctx := storage.GetContext()

	common.CheckAuthorityWitness(common.GetHash160(ctx, vaultconst.AuthorityKey))
	checkAmount(amount)

	if len(recipient) != interop.Hash160Len {
		panic(vaultconst.ErrValidation + ": incorrect length of recipient script hash")
	}

	token := common.GetHash160(ctx, vaultconst.TokenKey)
	if loadSigner(ctx).tokenBalance(token) < amount {
		panic(vaultconst.ErrInsufficientFunds + ": vault token balance is too low")
	}

	prev := getAllowance(ctx)
	if prev.Active {
		if common.GetInt(ctx, vaultconst.PolicyKey) == vaultconst.PolicyRejectActive {
			panic(vaultconst.ErrAllowanceActive + ": claim or wait for the outstanding grant")
		}

		runtime.Notify("AllowanceRevoked", prev.Recipient, prev.Amount)
	}

	common.SetSerialized(ctx, vaultconst.AllowanceKey, Allowance{
		Active:    true,
		Recipient: recipient,
		Amount:    amount,
	})

	runtime.Notify("AllowanceGranted", recipient, amount)
}

// ClaimAllowance transfers the granted amount of vault tokens to the
// allowance recipient and resets the allowance. It can be invoked only by the
// recipient of the active allowance, exactly once per grant.
//
// It produces AllowanceClaimed notification.
func ClaimAllowance() {
	ctx := storage.GetContext()

	a := getAllowance(ctx)
	if !a.Active {
		panic(vaultconst.ErrAllowanceNotActive + ": nothing to claim")
	}

	common.CheckRecipientWitness(a.Recipient)

	token := common.GetHash160(ctx, vaultconst.TokenKey)
	signer := loadSigner(ctx)

	if signer.tokenBalance(token) < a.Amount {
		panic(vaultconst.ErrInsufficientFunds + ": vault token balance is too low")
	}

	signer.payToken(token, a.Recipient, a.Amount)

	storage.Delete(ctx, vaultconst.AllowanceKey)

	runtime.Log("vault: allowance claimed")
	runtime.Notify("AllowanceClaimed", a.Recipient, a.Amount)
}

// FeePercent returns current fee percent of currency transfers.
func FeePercent() int {
	return common.GetInt(storage.GetReadOnlyContext(), vaultconst.FeeKey)
}

// Authority returns script hash of the vault authority.
func Authority() interop.Hash160 {
	return common.GetHash160(storage.GetReadOnlyContext(), vaultconst.AuthorityKey)
}

// FeeDestination returns script hash of the account receiving currency fees.
func FeeDestination() interop.Hash160 {
	return common.GetHash160(storage.GetReadOnlyContext(), vaultconst.FeeDestinationKey)
}

// Token returns script hash of the NEP-17 token held by the vault.
func Token() interop.Hash160 {
	return common.GetHash160(storage.GetReadOnlyContext(), vaultconst.TokenKey)
}

// Custody returns script hash of the vault account holding GAS and tokens.
func Custody() interop.Hash160 {
	return common.GetHash160(storage.GetReadOnlyContext(), vaultconst.CustodyKey)
}

// AllowancePolicy returns allowance overwrite policy, see vaultconst.
func AllowancePolicy() int {
	return common.GetInt(storage.GetReadOnlyContext(), vaultconst.PolicyKey)
}

// GetAllowance returns current allowance. Inactive allowance has nil
// recipient and zero amount.
func GetAllowance() Allowance {
	return getAllowance(storage.GetReadOnlyContext())
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

func getAllowance(ctx storage.Context) Allowance {
	data := storage.Get(ctx, vaultconst.AllowanceKey)
	if data != nil {
		return std.Deserialize(data.([]byte)).(Allowance)
	}

	return Allowance{}
}

func checkAmount(amount int) {
	if amount <= 0 {
		panic(vaultconst.ErrValidation + ": amount must be positive")
	}
}

func checkFeeDestination(ctx storage.Context, feeDestination interop.Hash160) {
	if !feeDestination.Equals(common.GetHash160(ctx, vaultconst.FeeDestinationKey)) {
		panic(vaultconst.ErrUnknownFeeDestination + ": " + std.Base64Encode(feeDestination))
	}
}

func loadSigner(ctx storage.Context) vaultSigner {
	return vaultSigner{account: common.GetHash160(ctx, vaultconst.CustodyKey)}
}

func (s vaultSigner) currencyBalance() int {
	return gas.BalanceOf(s.account)
}

func (s vaultSigner) tokenBalance(token interop.Hash160) int {
	return common.TokenBalance(token, s.account)
}

func (s vaultSigner) payCurrency(to interop.Hash160, amount int) {
	if !gas.Transfer(s.account, to, amount, nil) {
		panic(vaultconst.ErrTransferFailed + ": GAS from vault")
	}
}

func (s vaultSigner) payToken(token, to interop.Hash160, amount int) {
	if !common.TokenTransfer(token, s.account, to, amount, nil) {
		panic(vaultconst.ErrTransferFailed + ": token from vault")
	}
}
