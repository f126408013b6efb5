/*
Package vaultfee computes the fee retained from currency transfers of the
Vault contract.

The package is compiled into the contract and is also used by off-chain
tools to quote fees, so it must stay within the neo-go contract subset:
integer arithmetic only, no imports.
*/
package vaultfee

// MaxPercent is the upper bound of the fee percent.
const MaxPercent = 100

// Compute returns the fee for the given percent and amount. The result is
// floor(percent*amount/100) incremented by one when the division leaves a
// remainder r and (amount*10)/r > 4.
//
// Callers validate percent (0..MaxPercent) and amount (> 0) beforehand.
func Compute(percent, amount int) int {
	var (
		raw = percent * amount
		fee = raw / MaxPercent
		rem = raw % MaxPercent
	)

	if rem != 0 && (amount*10)/rem > 4 {
		fee++
	}

	return fee
}
