/*
Package vault implements custodial Vault contract.

Vault contract holds pooled native GAS and one NEP-17 token on behalf of its
users. Users deposit assets with their own witness, the vault authority pays
them out. Every GAS movement retains a fee (10% after deployment) which is
sent to the fee destination fixed at deployment. Token movements are free.

The authority can also grant a single-slot allowance: an amount of tokens
reserved for a recipient who claims it exactly once. A new grant over an
outstanding one either revokes it or fails, depending on the allowance
policy set at deployment.

Assets are held by the contract account (its script hash). The contract
authorizes transfers from this account on its own behalf, no party holds a
key to it.

# Contract notifications

FeeChanged notification. This notification is produced when the authority
changes the fee percent.

	FeeChanged:
	  - name: percent
	    type: Integer

CurrencyDeposit notification. This notification is produced when a user
deposits GAS. Fee is included in the amount.

	CurrencyDeposit:
	  - name: user
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: fee
	    type: Integer

CurrencyPayout notification. This notification is produced when the
authority pays GAS out of the vault. Fee is included in the amount.

	CurrencyPayout:
	  - name: recipient
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: fee
	    type: Integer

TokenDeposit and TokenPayout notifications are produced on token movements.

	TokenDeposit:
	  - name: user
	    type: Hash160
	  - name: amount
	    type: Integer

	TokenPayout:
	  - name: user
	    type: Hash160
	  - name: amount
	    type: Integer

AllowanceGranted, AllowanceRevoked and AllowanceClaimed notifications follow
allowance state changes. AllowanceRevoked is produced only with overwrite
policy when a new grant replaces an unclaimed one.

	AllowanceGranted:
	  - name: recipient
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package vault

/*
Contract storage model.

# Summary
Key-value storage format:
  - 'fee' -> int
    fee percent of currency transfers
  - 'authority' -> interop.Hash160
    vault authority
  - 'allowance' -> std.Serialize(Allowance)
    active allowance, no key means there is none
  - 'feeDestination' -> interop.Hash160
    receiver of currency fees
  - 'token' -> interop.Hash160
    NEP-17 token held by the vault
  - 'custody' -> interop.Hash160
    vault account, set to the contract hash on deployment
  - 'policy' -> int
    allowance overwrite policy
*/
