package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/util"
)

// TokenBalance returns NEP-17 balance of the holder in the token contract.
func TokenBalance(token, holder interop.Hash160) int {
	return contract.Call(token, "balanceOf", contract.ReadOnly, holder).(int)
}

// TokenTransfer invokes NEP-17 transfer of the token contract and returns
// its result. The token contract checks that from has witnessed the
// transaction or is the calling contract.
func TokenTransfer(token, from, to interop.Hash160, amount int, data any) bool {
	return contract.Call(token, "transfer", contract.All, from, to, amount, data).(bool)
}

// AbortWithMessage calls `runtime.Log` with passed message
// and calls `ABORT` opcode.
func AbortWithMessage(msg string) {
	runtime.Log(msg)
	util.Abort()
}
