package nep17token

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const (
	ownerKey  = "owner"
	supplyKey = "supply"
	accPrefix = 'a'
)

func _deploy(_ any, isUpdate bool) {
	if isUpdate {
		return
	}

	tx := runtime.GetScriptContainer()
	storage.Put(storage.GetContext(), ownerKey, tx.Sender)
}

func Symbol() string {
	return "VLT"
}

func Decimals() int {
	return 8
}

func TotalSupply() int {
	return getInt(storage.GetReadOnlyContext(), supplyKey)
}

func BalanceOf(holder interop.Hash160) int {
	if len(holder) != interop.Hash160Len {
		panic("invalid holder")
	}
	return getInt(storage.GetReadOnlyContext(), append([]byte{accPrefix}, holder...))
}

func Transfer(from, to interop.Hash160, amount int, data any) bool {
	if len(from) != interop.Hash160Len || len(to) != interop.Hash160Len {
		panic("invalid address")
	}
	if amount < 0 {
		panic("negative amount")
	}

	if !runtime.CheckWitness(from) && !from.Equals(runtime.GetCallingScriptHash()) {
		return false
	}

	ctx := storage.GetContext()
	fromKey := append([]byte{accPrefix}, from...)

	fromBalance := getInt(ctx, fromKey)
	if fromBalance < amount {
		return false
	}

	if amount > 0 && !from.Equals(to) {
		storage.Put(ctx, fromKey, fromBalance-amount)

		toKey := append([]byte{accPrefix}, to...)
		storage.Put(ctx, toKey, getInt(ctx, toKey)+amount)
	}

	runtime.Notify("Transfer", from, to, amount)

	if management.GetContract(to) != nil {
		contract.Call(to, "onNEP17Payment", contract.All, from, amount, data)
	}

	return true
}

// Mint issues new tokens to the account. It can be invoked only by the
// deployer.
func Mint(to interop.Hash160, amount int) {
	ctx := storage.GetContext()

	if !runtime.CheckWitness(storage.Get(ctx, ownerKey).(interop.Hash160)) {
		panic("only owner can mint")
	}
	if amount <= 0 {
		panic("non-positive amount")
	}

	var (
		from  interop.Hash160
		toKey = append([]byte{accPrefix}, to...)
	)

	storage.Put(ctx, toKey, getInt(ctx, toKey)+amount)
	storage.Put(ctx, supplyKey, getInt(ctx, supplyKey)+amount)

	runtime.Notify("Transfer", from, to, amount)

	if management.GetContract(to) != nil {
		contract.Call(to, "onNEP17Payment", contract.All, from, amount, nil)
	}
}

func getInt(ctx storage.Context, key any) int {
	v := storage.Get(ctx, key)
	if v == nil {
		return 0
	}
	return v.(int)
}
