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
	"os"

	"github.com/spf13/cobra"

	"github.com/blinklabs-io/gridgov/governance"
	"github.com/blinklabs-io/gridgov/internal/host"
)

var errCallerRequired = errors.New("--caller is required")

type governanceFlags struct {
	caller      string
	description string
	proposal    uint64
	height      uint64
}

func (f *governanceFlags) addCaller(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.caller, "caller", "", "identity performing the operation")
	cmd.Flags().Uint64Var(&f.height, "height", 0, "pin the current height instead of deriving it from the clock")
}

func (f *governanceFlags) addProposal(cmd *cobra.Command) {
	cmd.Flags().Uint64VarP(&f.proposal, "proposal", "p", 0, "proposal ID")
}

func (f *governanceFlags) callerIdentity() (governance.Identity, error) {
	if f.caller == "" {
		return "", errCallerRequired
	}
	return governance.Identity(f.caller), nil
}

func governanceCommands() []*cobra.Command {
	return []*cobra.Command{
		proposeCommand(),
		voteCommand(),
		executeCommand(),
		showCommand(),
		listCommand(),
		pauseCommand(true),
		pauseCommand(false),
	}
}

func proposeCommand() *cobra.Command {
	flags := &governanceFlags{}
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Create a proposal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := flags.callerIdentity()
			if err != nil {
				return err
			}
			return withHost(cmd, func(ctx context.Context, h *host.Host) error {
				id, err := h.Engine().CreateProposal(caller, flags.description)
				if err != nil {
					return err
				}
				return printResult(os.Stdout, map[string]uint64{"id": uint64(id)})
			})
		},
	}
	flags.addCaller(cmd)
	cmd.Flags().StringVar(&flags.description, "description", "", "proposal description")
	return cmd
}

func voteCommand() *cobra.Command {
	flags := &governanceFlags{}
	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Vote on a proposal with the caller's token balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := flags.callerIdentity()
			if err != nil {
				return err
			}
			return withHost(cmd, func(ctx context.Context, h *host.Host) error {
				id := governance.ProposalID(flags.proposal)
				if err := h.Engine().CastVote(caller, id); err != nil {
					return err
				}
				proposal, err := h.Engine().GetProposal(id)
				if err != nil {
					return err
				}
				return printResult(os.Stdout, newProposalResult(proposal))
			})
		},
	}
	flags.addCaller(cmd)
	flags.addProposal(cmd)
	return cmd
}

func executeCommand() *cobra.Command {
	flags := &governanceFlags{}
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Execute a proposal whose voting window has closed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := flags.callerIdentity()
			if err != nil {
				return err
			}
			return withHost(cmd, func(ctx context.Context, h *host.Host) error {
				id := governance.ProposalID(flags.proposal)
				if err := h.Engine().ExecuteProposal(caller, id); err != nil {
					return err
				}
				proposal, err := h.Engine().GetProposal(id)
				if err != nil {
					return err
				}
				return printResult(os.Stdout, newProposalResult(proposal))
			})
		},
	}
	flags.addCaller(cmd)
	flags.addProposal(cmd)
	return cmd
}

func showCommand() *cobra.Command {
	flags := &governanceFlags{}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a proposal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHost(cmd, func(ctx context.Context, h *host.Host) error {
				proposal, err := h.Engine().GetProposal(
					governance.ProposalID(flags.proposal),
				)
				if err != nil {
					return err
				}
				return printResult(os.Stdout, newProposalResult(proposal))
			})
		},
	}
	flags.addProposal(cmd)
	return cmd
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all proposals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHost(cmd, func(ctx context.Context, h *host.Host) error {
				proposals, err := h.Engine().ListProposals()
				if err != nil {
					return err
				}
				for _, proposal := range proposals {
					if err := printResult(os.Stdout, newProposalResult(proposal)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func pauseCommand(pause bool) *cobra.Command {
	flags := &governanceFlags{}
	use, short := "pause", "Pause governance (admin only)"
	if !pause {
		use, short = "unpause", "Resume governance (admin only)"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := flags.callerIdentity()
			if err != nil {
				return err
			}
			return withHost(cmd, func(ctx context.Context, h *host.Host) error {
				paused, err := h.Engine().SetPaused(caller, pause)
				if err != nil {
					return err
				}
				return printResult(os.Stdout, map[string]bool{"paused": paused})
			})
		},
	}
	flags.addCaller(cmd)
	return cmd
}
