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

package api

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"connectrpc.com/connect"

	"github.com/blinklabs-io/gridgov/governance"
)

// governanceService implements the GovernanceService procedures
type governanceService struct {
	api *Api
}

func (s *governanceService) CreateProposal(
	ctx context.Context,
	req *connect.Request[CreateProposalRequest],
) (*connect.Response[CreateProposalResponse], error) {
	caller, err := requireIdentity("caller", req.Msg.Caller)
	if err != nil {
		return nil, err
	}
	id, err := s.api.config.Engine.CreateProposal(caller, req.Msg.Description)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&CreateProposalResponse{ID: uint64(id)}), nil
}

func (s *governanceService) CastVote(
	ctx context.Context,
	req *connect.Request[CastVoteRequest],
) (*connect.Response[ProposalResponse], error) {
	caller, err := requireIdentity("caller", req.Msg.Caller)
	if err != nil {
		return nil, err
	}
	id := governance.ProposalID(req.Msg.ProposalID)
	if err := s.api.config.Engine.CastVote(caller, id); err != nil {
		return nil, toConnectError(err)
	}
	return s.proposalResponse(id)
}

func (s *governanceService) ExecuteProposal(
	ctx context.Context,
	req *connect.Request[ExecuteProposalRequest],
) (*connect.Response[ProposalResponse], error) {
	caller, err := requireIdentity("caller", req.Msg.Caller)
	if err != nil {
		return nil, err
	}
	id := governance.ProposalID(req.Msg.ProposalID)
	if err := s.api.config.Engine.ExecuteProposal(caller, id); err != nil {
		return nil, toConnectError(err)
	}
	return s.proposalResponse(id)
}

func (s *governanceService) GetProposal(
	ctx context.Context,
	req *connect.Request[GetProposalRequest],
) (*connect.Response[ProposalResponse], error) {
	return s.proposalResponse(governance.ProposalID(req.Msg.ProposalID))
}

func (s *governanceService) ListProposals(
	ctx context.Context,
	req *connect.Request[ListProposalsRequest],
) (*connect.Response[ListProposalsResponse], error) {
	proposals, err := s.api.config.Engine.ListProposals()
	if err != nil {
		return nil, toConnectError(err)
	}
	resp := &ListProposalsResponse{
		Proposals: make([]*Proposal, 0, len(proposals)),
	}
	for _, proposal := range proposals {
		resp.Proposals = append(resp.Proposals, newProposal(proposal))
	}
	return connect.NewResponse(resp), nil
}

func (s *governanceService) SetPaused(
	ctx context.Context,
	req *connect.Request[SetPausedRequest],
) (*connect.Response[SetPausedResponse], error) {
	caller, err := requireIdentity("caller", req.Msg.Caller)
	if err != nil {
		return nil, err
	}
	paused, err := s.api.config.Engine.SetPaused(caller, req.Msg.Paused)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SetPausedResponse{Paused: paused}), nil
}

func (s *governanceService) proposalResponse(
	id governance.ProposalID,
) (*connect.Response[ProposalResponse], error) {
	proposal, err := s.api.config.Engine.GetProposal(id)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(
		&ProposalResponse{Proposal: newProposal(proposal)},
	), nil
}

// tokenService implements the TokenService procedures
type tokenService struct {
	api *Api
}

func (s *tokenService) BalanceOf(
	ctx context.Context,
	req *connect.Request[BalanceOfRequest],
) (*connect.Response[BalanceResponse], error) {
	account, err := requireIdentity("account", req.Msg.Account)
	if err != nil {
		return nil, err
	}
	return s.balanceResponse(account), nil
}

func (s *tokenService) Mint(
	ctx context.Context,
	req *connect.Request[MintRequest],
) (*connect.Response[BalanceResponse], error) {
	caller, err := requireIdentity("caller", req.Msg.Caller)
	if err != nil {
		return nil, err
	}
	to, err := requireIdentity("to", req.Msg.To)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Msg.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.api.config.Ledger.Mint(caller, to, amount); err != nil {
		return nil, toConnectError(err)
	}
	return s.balanceResponse(to), nil
}

func (s *tokenService) Transfer(
	ctx context.Context,
	req *connect.Request[TransferRequest],
) (*connect.Response[BalanceResponse], error) {
	caller, err := requireIdentity("caller", req.Msg.Caller)
	if err != nil {
		return nil, err
	}
	to, err := requireIdentity("to", req.Msg.To)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Msg.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.api.config.Ledger.Transfer(caller, to, amount); err != nil {
		return nil, toConnectError(err)
	}
	return s.balanceResponse(caller), nil
}

func (s *tokenService) Burn(
	ctx context.Context,
	req *connect.Request[BurnRequest],
) (*connect.Response[BalanceResponse], error) {
	caller, err := requireIdentity("caller", req.Msg.Caller)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Msg.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.api.config.Ledger.Burn(caller, amount); err != nil {
		return nil, toConnectError(err)
	}
	return s.balanceResponse(caller), nil
}

func (s *tokenService) Approve(
	ctx context.Context,
	req *connect.Request[ApproveRequest],
) (*connect.Response[AllowanceResponse], error) {
	caller, err := requireIdentity("caller", req.Msg.Caller)
	if err != nil {
		return nil, err
	}
	spender, err := requireIdentity("spender", req.Msg.Spender)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Msg.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.api.config.Ledger.Approve(caller, spender, amount); err != nil {
		return nil, toConnectError(err)
	}
	return s.allowanceResponse(caller, spender), nil
}

func (s *tokenService) TransferFrom(
	ctx context.Context,
	req *connect.Request[TransferFromRequest],
) (*connect.Response[BalanceResponse], error) {
	caller, err := requireIdentity("caller", req.Msg.Caller)
	if err != nil {
		return nil, err
	}
	owner, err := requireIdentity("owner", req.Msg.Owner)
	if err != nil {
		return nil, err
	}
	to, err := requireIdentity("to", req.Msg.To)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Msg.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.api.config.Ledger.TransferFrom(caller, owner, to, amount); err != nil {
		return nil, toConnectError(err)
	}
	return s.balanceResponse(owner), nil
}

func (s *tokenService) Allowance(
	ctx context.Context,
	req *connect.Request[AllowanceRequest],
) (*connect.Response[AllowanceResponse], error) {
	owner, err := requireIdentity("owner", req.Msg.Owner)
	if err != nil {
		return nil, err
	}
	spender, err := requireIdentity("spender", req.Msg.Spender)
	if err != nil {
		return nil, err
	}
	return s.allowanceResponse(owner, spender), nil
}

func (s *tokenService) SetPaused(
	ctx context.Context,
	req *connect.Request[SetPausedRequest],
) (*connect.Response[SetPausedResponse], error) {
	caller, err := requireIdentity("caller", req.Msg.Caller)
	if err != nil {
		return nil, err
	}
	if err := s.api.config.Ledger.SetPaused(caller, req.Msg.Paused); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(
		&SetPausedResponse{Paused: s.api.config.Ledger.Paused()},
	), nil
}

func (s *tokenService) allowanceResponse(
	owner governance.Identity,
	spender governance.Identity,
) *connect.Response[AllowanceResponse] {
	return connect.NewResponse(&AllowanceResponse{
		Owner:     string(owner),
		Spender:   string(spender),
		Allowance: s.api.config.Ledger.Allowance(owner, spender).String(),
	})
}

func (s *tokenService) balanceResponse(
	account governance.Identity,
) *connect.Response[BalanceResponse] {
	return connect.NewResponse(&BalanceResponse{
		Account: string(account),
		Balance: s.api.config.Ledger.BalanceOf(account).String(),
	})
}

func requireIdentity(field string, value string) (governance.Identity, error) {
	if value == "" {
		return "", connect.NewError(
			connect.CodeInvalidArgument,
			fmt.Errorf("%s is required", field),
		)
	}
	return governance.Identity(value), nil
}

func parseAmount(value string) (*big.Int, error) {
	ret, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, connect.NewError(
			connect.CodeInvalidArgument,
			errors.New("amount must be a decimal integer"),
		)
	}
	return ret, nil
}
