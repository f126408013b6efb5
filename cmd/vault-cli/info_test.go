package main

import (
	"math/big"
	"testing"

	"github.com/Gostai/custom-wallet/contracts/vault/vaultconst"
	"github.com/Gostai/custom-wallet/internal/config"
	vaultrpc "github.com/Gostai/custom-wallet/rpc/vault"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestPolicyName(t *testing.T) {
	require.Equal(t, config.PolicyOverwrite, policyName(vaultconst.PolicyOverwrite))
	require.Equal(t, config.PolicyRejectActive, policyName(vaultconst.PolicyRejectActive))
	require.Equal(t, "unknown (7)", policyName(7))
}

func TestAllowanceString(t *testing.T) {
	require.Equal(t, "none", allowanceString(&vaultrpc.Allowance{Amount: big.NewInt(0)}, 8))

	recipient := util.Uint160{1, 2, 3}
	s := allowanceString(&vaultrpc.Allowance{
		Active:    true,
		Recipient: recipient,
		Amount:    big.NewInt(1_5000_0000),
	}, 8)
	require.Equal(t, "1.5 to "+address.Uint160ToString(recipient), s)
}
