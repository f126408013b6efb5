package common

import (
	"github.com/Gostai/custom-wallet/contracts/vault/vaultconst"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
)

var (
	// ErrAuthorityWitnessFailed appears when the method must be
	// called by the vault authority but was not.
	ErrAuthorityWitnessFailed = vaultconst.ErrAuthorization + ": authority witness check failed"
	// ErrOwnerWitnessFailed appears when the method must be called
	// by an owner of some assets but was not.
	ErrOwnerWitnessFailed = vaultconst.ErrAuthorization + ": owner witness check failed"
	// ErrRecipientWitnessFailed appears when the method must be called
	// by the allowance recipient but was not.
	ErrRecipientWitnessFailed = vaultconst.ErrAuthorization + ": recipient witness check failed"
)

// CheckAuthorityWitness checks witness of the passed caller.
// It panics with ErrAuthorityWitnessFailed message on fail.
func CheckAuthorityWitness(caller []byte) {
	checkWitnessWithPanic(caller, ErrAuthorityWitnessFailed)
}

// CheckOwnerWitness checks witness of the passed caller.
// It panics with ErrOwnerWitnessFailed message on fail.
func CheckOwnerWitness(caller []byte) {
	checkWitnessWithPanic(caller, ErrOwnerWitnessFailed)
}

// CheckRecipientWitness checks witness of the passed caller.
// It panics with ErrRecipientWitnessFailed message on fail.
func CheckRecipientWitness(caller []byte) {
	checkWitnessWithPanic(caller, ErrRecipientWitnessFailed)
}

func checkWitnessWithPanic(caller []byte, panicMsg string) {
	if !runtime.CheckWitness(caller) {
		panic(panicMsg)
	}
}
