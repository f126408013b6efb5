// Package vault contains RPC wrappers for the custodial Vault contract.
package vault

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/Gostai/custom-wallet/contracts/vault/vaultfee"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Allowance is a contract-specific vault.Allowance type used by its methods.
type Allowance struct {
	Active    bool
	Recipient util.Uint160
	Amount    *big.Int
}

// FeeChangedEvent represents "FeeChanged" event emitted by the contract.
type FeeChangedEvent struct {
	Percent *big.Int
}

// CurrencyDepositEvent represents "CurrencyDeposit" event emitted by the contract.
type CurrencyDepositEvent struct {
	User   util.Uint160
	Amount *big.Int
	Fee    *big.Int
}

// CurrencyPayoutEvent represents "CurrencyPayout" event emitted by the contract.
type CurrencyPayoutEvent struct {
	Recipient util.Uint160
	Amount    *big.Int
	Fee       *big.Int
}

// TokenDepositEvent represents "TokenDeposit" event emitted by the contract.
type TokenDepositEvent struct {
	User   util.Uint160
	Amount *big.Int
}

// TokenPayoutEvent represents "TokenPayout" event emitted by the contract.
type TokenPayoutEvent struct {
	User   util.Uint160
	Amount *big.Int
}

// AllowanceEvent represents "AllowanceGranted", "AllowanceRevoked" and
// "AllowanceClaimed" events emitted by the contract, they share the layout.
type AllowanceEvent struct {
	Recipient util.Uint160
	Amount    *big.Int
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeRun(script []byte) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	MakeUnsignedRun(script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
	SendRun(script []byte) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
	hash  util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, hash}
}

// Hash returns script hash of the contract.
func (c *ContractReader) Hash() util.Uint160 {
	return c.hash
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// FeePercent invokes `feePercent` method of contract.
func (c *ContractReader) FeePercent() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "feePercent"))
}

// Authority invokes `authority` method of contract.
func (c *ContractReader) Authority() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "authority"))
}

// FeeDestination invokes `feeDestination` method of contract.
func (c *ContractReader) FeeDestination() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "feeDestination"))
}

// Token invokes `token` method of contract.
func (c *ContractReader) Token() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "token"))
}

// Custody invokes `custody` method of contract.
func (c *ContractReader) Custody() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "custody"))
}

// AllowancePolicy invokes `allowancePolicy` method of contract.
func (c *ContractReader) AllowancePolicy() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "allowancePolicy"))
}

// GetAllowance invokes `getAllowance` method of contract.
func (c *ContractReader) GetAllowance() (*Allowance, error) {
	return itemToAllowance(unwrap.Item(c.invoker.Call(c.hash, "getAllowance")))
}

// QuoteFee returns the fee the contract retains from a currency transfer of
// the given amount with its current fee percent.
func (c *ContractReader) QuoteFee(amount *big.Int) (*big.Int, error) {
	percent, err := c.FeePercent()
	if err != nil {
		return nil, fmt.Errorf("get fee percent: %w", err)
	}

	if !amount.IsInt64() || amount.Sign() <= 0 || amount.Int64() > math.MaxInt64/vaultfee.MaxPercent {
		return nil, fmt.Errorf("%w: amount %s is out of range", ErrValidation, amount)
	}

	return big.NewInt(int64(vaultfee.Compute(int(percent.Int64()), int(amount.Int64())))), nil
}

// SetFee creates a transaction invoking `setFee` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) SetFee(percent *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "setFee", percent)
}

// SetFeeTransaction creates a transaction invoking `setFee` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) SetFeeTransaction(percent *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "setFee", percent)
}

// SetFeeUnsigned creates a transaction invoking `setFee` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) SetFeeUnsigned(percent *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "setFee", nil, percent)
}

// DepositCurrency creates a transaction invoking `depositCurrency` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) DepositCurrency(user util.Uint160, amount *big.Int, feeDestination util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "depositCurrency", user, amount, feeDestination)
}

// DepositCurrencyTransaction creates a transaction invoking `depositCurrency` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) DepositCurrencyTransaction(user util.Uint160, amount *big.Int, feeDestination util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "depositCurrency", user, amount, feeDestination)
}

// DepositCurrencyUnsigned creates a transaction invoking `depositCurrency` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
func (c *Contract) DepositCurrencyUnsigned(user util.Uint160, amount *big.Int, feeDestination util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "depositCurrency", nil, user, amount, feeDestination)
}

// PayoutCurrency creates a transaction invoking `payoutCurrency` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) PayoutCurrency(recipient util.Uint160, amount *big.Int, feeDestination util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "payoutCurrency", recipient, amount, feeDestination)
}

// PayoutCurrencyTransaction creates a transaction invoking `payoutCurrency` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) PayoutCurrencyTransaction(recipient util.Uint160, amount *big.Int, feeDestination util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "payoutCurrency", recipient, amount, feeDestination)
}

// PayoutCurrencyUnsigned creates a transaction invoking `payoutCurrency` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
func (c *Contract) PayoutCurrencyUnsigned(recipient util.Uint160, amount *big.Int, feeDestination util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "payoutCurrency", nil, recipient, amount, feeDestination)
}

// DepositToken creates a transaction invoking `depositToken` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) DepositToken(user util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "depositToken", user, amount)
}

// DepositTokenTransaction creates a transaction invoking `depositToken` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) DepositTokenTransaction(user util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "depositToken", user, amount)
}

// DepositTokenUnsigned creates a transaction invoking `depositToken` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
func (c *Contract) DepositTokenUnsigned(user util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "depositToken", nil, user, amount)
}

// PayoutToken creates a transaction invoking `payoutToken` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) PayoutToken(user util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "payoutToken", user, amount)
}

// PayoutTokenTransaction creates a transaction invoking `payoutToken` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) PayoutTokenTransaction(user util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "payoutToken", user, amount)
}

// PayoutTokenUnsigned creates a transaction invoking `payoutToken` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
func (c *Contract) PayoutTokenUnsigned(user util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "payoutToken", nil, user, amount)
}

// GrantAllowance creates a transaction invoking `grantAllowance` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) GrantAllowance(recipient util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "grantAllowance", recipient, amount)
}

// GrantAllowanceTransaction creates a transaction invoking `grantAllowance` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) GrantAllowanceTransaction(recipient util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "grantAllowance", recipient, amount)
}

// GrantAllowanceUnsigned creates a transaction invoking `grantAllowance` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
func (c *Contract) GrantAllowanceUnsigned(recipient util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "grantAllowance", nil, recipient, amount)
}

// ClaimAllowance creates a transaction invoking `claimAllowance` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) ClaimAllowance() (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "claimAllowance")
}

// ClaimAllowanceTransaction creates a transaction invoking `claimAllowance` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) ClaimAllowanceTransaction() (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "claimAllowance")
}

// ClaimAllowanceUnsigned creates a transaction invoking `claimAllowance` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
func (c *Contract) ClaimAllowanceUnsigned() (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "claimAllowance", nil)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(nefFile []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", nefFile, manifest, data)
}

// UpdateTransaction creates a transaction invoking `update` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UpdateTransaction(nefFile []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "update", nefFile, manifest, data)
}

// UpdateUnsigned creates a transaction invoking `update` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
func (c *Contract) UpdateUnsigned(nefFile []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "update", nil, nefFile, manifest, data)
}

func itemToAllowance(item stackitem.Item, err error) (*Allowance, error) {
	if err != nil {
		return nil, err
	}
	var res = new(Allowance)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of Allowance from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *Allowance) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 3 {
		return errors.New("wrong number of structure elements")
	}

	var err error

	res.Active, err = arr[0].TryBool()
	if err != nil {
		return fmt.Errorf("field Active: %w", err)
	}

	if _, null := arr[1].(stackitem.Null); null {
		res.Recipient = util.Uint160{}
	} else {
		res.Recipient, err = itemToUint160(arr[1])
		if err != nil {
			return fmt.Errorf("field Recipient: %w", err)
		}
	}

	res.Amount, err = arr[2].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

// FeeChangedEventsFromApplicationLog retrieves a set of all emitted events
// with "FeeChanged" name from the provided [result.ApplicationLog].
func FeeChangedEventsFromApplicationLog(log *result.ApplicationLog) ([]*FeeChangedEvent, error) {
	return eventsFromApplicationLog[FeeChangedEvent](log, "FeeChanged")
}

// FromStackItem converts provided [stackitem.Array] to FeeChangedEvent or
// returns an error if it's not possible to do to so.
func (e *FeeChangedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 1)
	if err != nil {
		return err
	}

	e.Percent, err = arr[0].TryInteger()
	if err != nil {
		return fmt.Errorf("field Percent: %w", err)
	}

	return nil
}

// CurrencyDepositEventsFromApplicationLog retrieves a set of all emitted events
// with "CurrencyDeposit" name from the provided [result.ApplicationLog].
func CurrencyDepositEventsFromApplicationLog(log *result.ApplicationLog) ([]*CurrencyDepositEvent, error) {
	return eventsFromApplicationLog[CurrencyDepositEvent](log, "CurrencyDeposit")
}

// FromStackItem converts provided [stackitem.Array] to CurrencyDepositEvent or
// returns an error if it's not possible to do to so.
func (e *CurrencyDepositEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 3)
	if err != nil {
		return err
	}

	e.User, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field User: %w", err)
	}

	e.Amount, err = arr[1].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	e.Fee, err = arr[2].TryInteger()
	if err != nil {
		return fmt.Errorf("field Fee: %w", err)
	}

	return nil
}

// CurrencyPayoutEventsFromApplicationLog retrieves a set of all emitted events
// with "CurrencyPayout" name from the provided [result.ApplicationLog].
func CurrencyPayoutEventsFromApplicationLog(log *result.ApplicationLog) ([]*CurrencyPayoutEvent, error) {
	return eventsFromApplicationLog[CurrencyPayoutEvent](log, "CurrencyPayout")
}

// FromStackItem converts provided [stackitem.Array] to CurrencyPayoutEvent or
// returns an error if it's not possible to do to so.
func (e *CurrencyPayoutEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 3)
	if err != nil {
		return err
	}

	e.Recipient, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field Recipient: %w", err)
	}

	e.Amount, err = arr[1].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	e.Fee, err = arr[2].TryInteger()
	if err != nil {
		return fmt.Errorf("field Fee: %w", err)
	}

	return nil
}

// TokenDepositEventsFromApplicationLog retrieves a set of all emitted events
// with "TokenDeposit" name from the provided [result.ApplicationLog].
func TokenDepositEventsFromApplicationLog(log *result.ApplicationLog) ([]*TokenDepositEvent, error) {
	return eventsFromApplicationLog[TokenDepositEvent](log, "TokenDeposit")
}

// FromStackItem converts provided [stackitem.Array] to TokenDepositEvent or
// returns an error if it's not possible to do to so.
func (e *TokenDepositEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 2)
	if err != nil {
		return err
	}

	e.User, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field User: %w", err)
	}

	e.Amount, err = arr[1].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

// TokenPayoutEventsFromApplicationLog retrieves a set of all emitted events
// with "TokenPayout" name from the provided [result.ApplicationLog].
func TokenPayoutEventsFromApplicationLog(log *result.ApplicationLog) ([]*TokenPayoutEvent, error) {
	return eventsFromApplicationLog[TokenPayoutEvent](log, "TokenPayout")
}

// FromStackItem converts provided [stackitem.Array] to TokenPayoutEvent or
// returns an error if it's not possible to do to so.
func (e *TokenPayoutEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 2)
	if err != nil {
		return err
	}

	e.User, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field User: %w", err)
	}

	e.Amount, err = arr[1].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

// AllowanceGrantedEventsFromApplicationLog retrieves a set of all emitted events
// with "AllowanceGranted" name from the provided [result.ApplicationLog].
func AllowanceGrantedEventsFromApplicationLog(log *result.ApplicationLog) ([]*AllowanceEvent, error) {
	return eventsFromApplicationLog[AllowanceEvent](log, "AllowanceGranted")
}

// AllowanceRevokedEventsFromApplicationLog retrieves a set of all emitted events
// with "AllowanceRevoked" name from the provided [result.ApplicationLog].
func AllowanceRevokedEventsFromApplicationLog(log *result.ApplicationLog) ([]*AllowanceEvent, error) {
	return eventsFromApplicationLog[AllowanceEvent](log, "AllowanceRevoked")
}

// AllowanceClaimedEventsFromApplicationLog retrieves a set of all emitted events
// with "AllowanceClaimed" name from the provided [result.ApplicationLog].
func AllowanceClaimedEventsFromApplicationLog(log *result.ApplicationLog) ([]*AllowanceEvent, error) {
	return eventsFromApplicationLog[AllowanceEvent](log, "AllowanceClaimed")
}

// FromStackItem converts provided [stackitem.Array] to AllowanceEvent or
// returns an error if it's not possible to do to so.
func (e *AllowanceEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 2)
	if err != nil {
		return err
	}

	e.Recipient, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field Recipient: %w", err)
	}

	e.Amount, err = arr[1].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

type eventDecoder[E any] interface {
	*E
	FromStackItem(item *stackitem.Array) error
}

func eventsFromApplicationLog[E any, PE eventDecoder[E]](log *result.ApplicationLog, name string) ([]*E, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*E
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != name {
				continue
			}
			event := PE(new(E))
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize %s event from stackitem (execution #%d, event #%d): %w", name, i, j, err)
			}
			res = append(res, (*E)(event))
		}
	}

	return res, nil
}

func eventFields(item *stackitem.Array, n int) ([]stackitem.Item, error) {
	if item == nil {
		return nil, errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, errors.New("not an array")
	}
	if len(arr) != n {
		return nil, errors.New("wrong number of structure elements")
	}
	return arr, nil
}

func itemToUint160(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	u, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return util.Uint160{}, err
	}
	return u, nil
}
