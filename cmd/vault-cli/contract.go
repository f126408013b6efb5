package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Gostai/custom-wallet/contracts"
	"github.com/Gostai/custom-wallet/deploy"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cmdCompile = &cobra.Command{
	Use:   "compile <output directory>",
	Short: "Compile Vault contract into contract.nef and manifest.json",
	Args:  cobra.ExactArgs(1),
	Run:   compileVault,
}

var cmdDeploy = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy Vault contract from the wallet account",
	Args:  cobra.NoArgs,
	Run:   deployVault,
}

var cmdUpdate = &cobra.Command{
	Use:   "update",
	Short: "Update deployed Vault contract, wallet account must be the authority",
	Args:  cobra.NoArgs,
	Run:   updateVault,
}

var flagContract struct {
	Artifacts string
}

func init() {
	cmdMain.AddCommand(cmdCompile, cmdDeploy, cmdUpdate)

	for _, cmd := range []*cobra.Command{cmdDeploy, cmdUpdate} {
		cmd.Flags().StringVar(&flagContract.Artifacts, "artifacts", "", "Directory with compiled contract, sources from configuration are compiled if empty")
	}
}

func loadContract() contracts.Contract {
	if flagContract.Artifacts != "" {
		c, err := contracts.Read(os.DirFS(flagContract.Artifacts), ".")
		checkf(err, "read contract from %s", flagContract.Artifacts)
		return c
	}

	c, err := contracts.Compile(cfg.Vault.Sources)
	checkf(err, "compile contract from %s", cfg.Vault.Sources)
	return c
}

func compileVault(_ *cobra.Command, args []string) {
	c, err := contracts.Compile(cfg.Vault.Sources)
	checkf(err, "compile contract from %s", cfg.Vault.Sources)
	checkf(contracts.Write(c, args[0]), "write contract")

	logger.Info("contract compiled",
		zap.String("sources", cfg.Vault.Sources),
		zap.String("output", args[0]),
		zap.Uint32("checksum", c.NEF.Checksum))
}

func deployVault(cmd *cobra.Command, _ []string) {
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RPC.Timeout)
	defer cancel()

	policy, err := cfg.Policy()
	check(err)

	prm := deploy.Prm{
		Logger:          logger,
		Blockchain:      newClient(ctx),
		LocalAccount:    openAccount(),
		Contract:        loadContract(),
		Token:           parseHashArg(cfg.Deploy.Token, "token"),
		FeeDestination:  parseHashArg(cfg.Deploy.FeeDestination, "fee destination"),
		AllowancePolicy: policy,
	}

	if cfg.Deploy.Authority != "" {
		prm.Authority = parseHashArg(cfg.Deploy.Authority, "authority")
	} else {
		prm.Authority = prm.LocalAccount.ScriptHash()
	}

	addr, err := deploy.Deploy(ctx, prm)
	checkf(err, "deploy")

	fmt.Printf("Vault contract: %s\n", addr.StringLE())
}

func updateVault(cmd *cobra.Command, _ []string) {
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RPC.Timeout)
	defer cancel()

	err := deploy.Update(ctx, deploy.UpdatePrm{
		Logger:       logger,
		Blockchain:   newClient(ctx),
		LocalAccount: openAccount(),
		Address:      vaultHash(),
		Contract:     loadContract(),
	})
	checkf(err, "update")
}
