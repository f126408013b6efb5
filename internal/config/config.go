// Package config reads vault-cli settings from a configuration file and
// VAULT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Gostai/custom-wallet/contracts/vault/vaultconst"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/spf13/viper"
)

// EnvPrefix is a prefix of environment variables overriding configuration
// values, e.g. VAULT_RPC_ENDPOINT for rpc.endpoint.
const EnvPrefix = "VAULT"

// Allowance policy names.
const (
	PolicyOverwrite    = "overwrite"
	PolicyRejectActive = "reject-active"
)

// Config is the vault-cli configuration.
type Config struct {
	RPC struct {
		Endpoint string        `mapstructure:"endpoint"`
		Timeout  time.Duration `mapstructure:"timeout"`
	} `mapstructure:"rpc"`

	Wallet struct {
		Path     string `mapstructure:"path"`
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
	} `mapstructure:"wallet"`

	Vault struct {
		Contract string `mapstructure:"contract"`
		Sources  string `mapstructure:"sources"`
	} `mapstructure:"vault"`

	Deploy struct {
		Authority       string `mapstructure:"authority"`
		Token           string `mapstructure:"token"`
		FeeDestination  string `mapstructure:"fee_destination"`
		AllowancePolicy string `mapstructure:"allowance_policy"`
	} `mapstructure:"deploy"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// Load reads configuration from the given file (if not empty) overridden by
// environment variables.
func Load(file string) (*Config, error) {
	v := viper.New()

	v.SetDefault("rpc.endpoint", "http://localhost:30333")
	v.SetDefault("rpc.timeout", 30*time.Second)
	v.SetDefault("vault.sources", "contracts/vault")
	v.SetDefault("deploy.allowance_policy", PolicyOverwrite)
	v.SetDefault("log.level", "info")

	// Unmarshal sees environment values only for known keys.
	for _, key := range []string{
		"wallet.path", "wallet.address", "wallet.password",
		"vault.contract",
		"deploy.authority", "deploy.token", "deploy.fee_destination",
	} {
		v.SetDefault(key, "")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		err := v.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
	}

	c := new(Config)
	err := v.Unmarshal(c)
	if err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	return c, nil
}

// Validate checks values needed by every command.
func (c *Config) Validate() error {
	if c.RPC.Endpoint == "" {
		return errors.New("missing RPC endpoint")
	}
	if c.RPC.Timeout <= 0 {
		return fmt.Errorf("non-positive RPC timeout %s", c.RPC.Timeout)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}

// Policy returns allowance policy of the deployment section as the value
// passed to the contract.
func (c *Config) Policy() (int, error) {
	switch c.Deploy.AllowancePolicy {
	case PolicyOverwrite, "":
		return vaultconst.PolicyOverwrite, nil
	case PolicyRejectActive:
		return vaultconst.PolicyRejectActive, nil
	default:
		return 0, fmt.Errorf("unknown allowance policy %q", c.Deploy.AllowancePolicy)
	}
}

// ParseHash parses Neo address or hex-encoded little-endian script hash.
func ParseHash(s string) (util.Uint160, error) {
	if s == "" {
		return util.Uint160{}, errors.New("empty script hash")
	}

	if u, err := address.StringToUint160(s); err == nil {
		return u, nil
	}

	u, err := util.Uint160DecodeStringLE(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return util.Uint160{}, fmt.Errorf("%q is neither address nor script hash", s)
	}

	return u, nil
}
