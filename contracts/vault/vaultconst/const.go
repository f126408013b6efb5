/*
Package vaultconst contains constants shared by the Vault contract and its
off-chain clients.
*/
package vaultconst

const (
	// DefaultFeePercent is the fee percent set on deployment.
	DefaultFeePercent = 10
)

// Allowance overwrite policies passed in deployment data.
const (
	// PolicyOverwrite makes a new grant replace the outstanding one: last
	// grant wins, the previous recipient's unclaimed grant is revoked.
	PolicyOverwrite = 0
	// PolicyRejectActive makes a grant fail while another one is outstanding.
	PolicyRejectActive = 1
)

// Error kinds. Every panic message of the Vault contract starts with one of
// them followed by ": " and details.
const (
	ErrValidation            = "validation error"
	ErrAuthorization         = "authorization error"
	ErrInsufficientFunds     = "insufficient funds"
	ErrUnknownFeeDestination = "unknown fee destination"
	ErrAllowanceNotActive    = "allowance is not active"
	ErrAllowanceActive       = "allowance is already active"
	ErrTransferFailed        = "transfer failed"
)

// Storage keys.
const (
	FeeKey            = "fee"
	AuthorityKey      = "authority"
	AllowanceKey      = "allowance"
	FeeDestinationKey = "feeDestination"
	TokenKey          = "token"
	CustodyKey        = "custody"
	PolicyKey         = "policy"
)
