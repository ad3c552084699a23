// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/spf13/cobra"

	"github.com/blinklabs-io/gridgov/governance"
	"github.com/blinklabs-io/gridgov/internal/host"
)

type tokenFlags struct {
	caller  string
	to      string
	owner   string
	spender string
	account string
	amount  string
}

type balanceResult struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
}

type allowanceResult struct {
	Owner     string `json:"owner"`
	Spender   string `json:"spender"`
	Allowance string `json:"allowance"`
}

type tokenPausedResult struct {
	Paused bool `json:"paused"`
}

func parseTokenAmount(amount string) (*big.Int, error) {
	if amount == "" {
		return nil, errors.New("--amount is required")
	}
	ret, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", amount)
	}
	return ret, nil
}

func tokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Governance token commands",
	}
	cmd.AddCommand(
		tokenMintCommand(),
		tokenBurnCommand(),
		tokenTransferCommand(),
		tokenApproveCommand(),
		tokenTransferFromCommand(),
		tokenAllowanceCommand(),
		tokenBalanceCommand(),
		tokenPauseCommand(true),
		tokenPauseCommand(false),
	)
	return cmd
}

func tokenMintCommand() *cobra.Command {
	flags := &tokenFlags{}
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint tokens to an account (admin only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.caller == "" || flags.to == "" {
				return errors.New("--caller and --to are required")
			}
			amount, err := parseTokenAmount(flags.amount)
			if err != nil {
				return err
			}
			return withHost(cmd, func(ctx context.Context, h *host.Host) error {
				to := governance.Identity(flags.to)
				if err := h.Ledger().Mint(governance.Identity(flags.caller), to, amount); err != nil {
					return err
				}
				return printResult(os.Stdout, balanceResult{
					Account: flags.to,
					Balance: h.Ledger().BalanceOf(to).String(),
				})
			})
		},
	}
	cmd.Flags().StringVar(&flags.caller, "caller", "", "identity performing the mint")
	cmd.Flags().StringVar(&flags.to, "to", "", "recipient account")
	cmd.Flags().StringVar(&flags.amount, "amount", "", "amount to mint")
	return cmd
}

func tokenTransferCommand() *cobra.Command {
	flags := &tokenFlags{}
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer tokens from the caller to another account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.caller == "" || flags.to == "" {
				return errors.New("--caller and --to are required")
			}
			amount, err := parseTokenAmount(flags.amount)
			if err != nil {
				return err
			}
			return withHost(cmd, func(ctx context.Context, h *host.Host) error {
				caller := governance.Identity(flags.caller)
				if err := h.Ledger().Transfer(caller, governance.Identity(flags.to), amount); err != nil {
					return err
				}
				return printResult(os.Stdout, balanceResult{
					Account: flags.caller,
					Balance: h.Ledger().BalanceOf(caller).String(),
				})
			})
		},
	}
	cmd.Flags().StringVar(&flags.caller, "caller", "", "sending account")
	cmd.Flags().StringVar(&flags.to, "to", "", "recipient account")
	cmd.Flags().StringVar(&flags.amount, "amount", "", "amount to transfer")
	return cmd
}

func tokenBalanceCommand() *cobra.Command {
	flags := &tokenFlags{}
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the token balance of an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.account == "" {
				return errors.New("--account is required")
			}
			return withHost(cmd, func(ctx context.Context, h *host.Host) error {
				return printResult(os.Stdout, balanceResult{
					Account: flags.account,
					Balance: h.Ledger().BalanceOf(governance.Identity(flags.account)).String(),
				})
			})
		},
	}
	cmd.Flags().StringVar(&flags.account, "account", "", "account to query")
	return cmd
}

func tokenBurnCommand() *cobra.Command {
	flags := &tokenFlags{}
	cmd := &cobra.Command{
		Use:   "burn",
		Short: "Burn tokens held by the caller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.caller == "" {
				return errors.New("--caller is required")
			}
			amount, err := parseTokenAmount(flags.amount)
			if err != nil {
				return err
			}
			return withHost(cmd, func(ctx context.Context, h *host.Host) error {
				caller := governance.Identity(flags.caller)
				if err := h.Ledger().Burn(caller, amount); err != nil {
					return err
				}
				return printResult(os.Stdout, balanceResult{
					Account: flags.caller,
					Balance: h.Ledger().BalanceOf(caller).String(),
				})
			})
		},
	}
	cmd.Flags().StringVar(&flags.caller, "caller", "", "account burning tokens")
	cmd.Flags().StringVar(&flags.amount, "amount", "", "amount to burn")
	return cmd
}

func tokenApproveCommand() *cobra.Command {
	flags := &tokenFlags{}
	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Allow a spender to transfer tokens from the caller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.caller == "" || flags.spender == "" {
				return errors.New("--caller and --spender are required")
			}
			amount, err := parseTokenAmount(flags.amount)
			if err != nil {
				return err
			}
			return withHost(cmd, func(ctx context.Context, h *host.Host) error {
				owner := governance.Identity(flags.caller)
				spender := governance.Identity(flags.spender)
				if err := h.Ledger().Approve(owner, spender, amount); err != nil {
					return err
				}
				return printResult(os.Stdout, allowanceResult{
					Owner:     flags.caller,
					Spender:   flags.spender,
					Allowance: h.Ledger().Allowance(owner, spender).String(),
				})
			})
		},
	}
	cmd.Flags().StringVar(&flags.caller, "caller", "", "account granting the allowance")
	cmd.Flags().StringVar(&flags.spender, "spender", "", "account allowed to spend")
	cmd.Flags().StringVar(&flags.amount, "amount", "", "allowance amount")
	return cmd
}

func tokenTransferFromCommand() *cobra.Command {
	flags := &tokenFlags{}
	cmd := &cobra.Command{
		Use:   "transfer-from",
		Short: "Transfer tokens from an owner using the caller's allowance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.caller == "" || flags.owner == "" || flags.to == "" {
				return errors.New("--caller, --owner and --to are required")
			}
			amount, err := parseTokenAmount(flags.amount)
			if err != nil {
				return err
			}
			return withHost(cmd, func(ctx context.Context, h *host.Host) error {
				owner := governance.Identity(flags.owner)
				err := h.Ledger().TransferFrom(
					governance.Identity(flags.caller),
					owner,
					governance.Identity(flags.to),
					amount,
				)
				if err != nil {
					return err
				}
				return printResult(os.Stdout, balanceResult{
					Account: flags.owner,
					Balance: h.Ledger().BalanceOf(owner).String(),
				})
			})
		},
	}
	cmd.Flags().StringVar(&flags.caller, "caller", "", "spender performing the transfer")
	cmd.Flags().StringVar(&flags.owner, "owner", "", "account the tokens are taken from")
	cmd.Flags().StringVar(&flags.to, "to", "", "recipient account")
	cmd.Flags().StringVar(&flags.amount, "amount", "", "amount to transfer")
	return cmd
}

func tokenAllowanceCommand() *cobra.Command {
	flags := &tokenFlags{}
	cmd := &cobra.Command{
		Use:   "allowance",
		Short: "Show the allowance an owner granted to a spender",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.owner == "" || flags.spender == "" {
				return errors.New("--owner and --spender are required")
			}
			return withHost(cmd, func(ctx context.Context, h *host.Host) error {
				allowance := h.Ledger().Allowance(
					governance.Identity(flags.owner),
					governance.Identity(flags.spender),
				)
				return printResult(os.Stdout, allowanceResult{
					Owner:     flags.owner,
					Spender:   flags.spender,
					Allowance: allowance.String(),
				})
			})
		},
	}
	cmd.Flags().StringVar(&flags.owner, "owner", "", "account granting the allowance")
	cmd.Flags().StringVar(&flags.spender, "spender", "", "account allowed to spend")
	return cmd
}

func tokenPauseCommand(pause bool) *cobra.Command {
	flags := &tokenFlags{}
	use, short := "pause", "Pause token burns, transfers and approvals (admin only)"
	if !pause {
		use, short = "unpause", "Resume token burns, transfers and approvals (admin only)"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.caller == "" {
				return errors.New("--caller is required")
			}
			return withHost(cmd, func(ctx context.Context, h *host.Host) error {
				if err := h.Ledger().SetPaused(governance.Identity(flags.caller), pause); err != nil {
					return err
				}
				return printResult(os.Stdout, tokenPausedResult{Paused: h.Ledger().Paused()})
			})
		},
	}
	cmd.Flags().StringVar(&flags.caller, "caller", "", "admin identity")
	return cmd
}
