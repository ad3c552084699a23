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

import "github.com/blinklabs-io/gridgov/governance"

const (
	CreateProposalProcedure  = "/" + GovernanceServiceName + "/CreateProposal"
	CastVoteProcedure        = "/" + GovernanceServiceName + "/CastVote"
	ExecuteProposalProcedure = "/" + GovernanceServiceName + "/ExecuteProposal"
	GetProposalProcedure     = "/" + GovernanceServiceName + "/GetProposal"
	ListProposalsProcedure   = "/" + GovernanceServiceName + "/ListProposals"
	SetPausedProcedure       = "/" + GovernanceServiceName + "/SetPaused"

	BalanceOfProcedure      = "/" + TokenServiceName + "/BalanceOf"
	MintProcedure           = "/" + TokenServiceName + "/Mint"
	BurnProcedure           = "/" + TokenServiceName + "/Burn"
	TransferProcedure       = "/" + TokenServiceName + "/Transfer"
	ApproveProcedure        = "/" + TokenServiceName + "/Approve"
	TransferFromProcedure   = "/" + TokenServiceName + "/TransferFrom"
	AllowanceProcedure      = "/" + TokenServiceName + "/Allowance"
	TokenSetPausedProcedure = "/" + TokenServiceName + "/SetPaused"
)

// Proposal is the wire form of a governance proposal. Votes is a decimal
// string since tallies may exceed 64 bits.
type Proposal struct {
	Votes       string `json:"votes"`
	Description string `json:"description"`
	Proposer    string `json:"proposer"`
	ID          uint64 `json:"id"`
	EndHeight   uint64 `json:"endHeight"`
	Executed    bool   `json:"executed"`
}

func newProposal(p *governance.Proposal) *Proposal {
	return &Proposal{
		ID:          uint64(p.ID),
		Description: p.Description,
		Proposer:    string(p.Proposer),
		Votes:       p.Votes.String(),
		EndHeight:   p.EndHeight,
		Executed:    p.Executed,
	}
}

type CreateProposalRequest struct {
	Caller      string `json:"caller"`
	Description string `json:"description"`
}

type CreateProposalResponse struct {
	ID uint64 `json:"id"`
}

type CastVoteRequest struct {
	Caller     string `json:"caller"`
	ProposalID uint64 `json:"proposalId"`
}

type ExecuteProposalRequest struct {
	Caller     string `json:"caller"`
	ProposalID uint64 `json:"proposalId"`
}

type GetProposalRequest struct {
	ProposalID uint64 `json:"proposalId"`
}

type ProposalResponse struct {
	Proposal *Proposal `json:"proposal"`
}

type ListProposalsRequest struct{}

type ListProposalsResponse struct {
	Proposals []*Proposal `json:"proposals"`
}

type SetPausedRequest struct {
	Caller string `json:"caller"`
	Paused bool   `json:"paused"`
}

type SetPausedResponse struct {
	Paused bool `json:"paused"`
}

type BalanceOfRequest struct {
	Account string `json:"account"`
}

type BalanceResponse struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
}

type MintRequest struct {
	Caller string `json:"caller"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type TransferRequest struct {
	Caller string `json:"caller"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type BurnRequest struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

type ApproveRequest struct {
	Caller  string `json:"caller"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

// TransferFromRequest moves tokens out of Owner's balance using the
// allowance Owner granted to Caller
type TransferFromRequest struct {
	Caller string `json:"caller"`
	Owner  string `json:"owner"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type AllowanceRequest struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
}

type AllowanceResponse struct {
	Owner     string `json:"owner"`
	Spender   string `json:"spender"`
	Allowance string `json:"allowance"`
}
