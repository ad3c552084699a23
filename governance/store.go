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

package governance

import (
	"fmt"
	"math/big"
)

// Store owns proposals, vote records and the proposal id sequence. It has no
// knowledge of token balances or the admin identity.
//
// Every mutating operation either commits fully or returns an error without
// touching stored state. Rule violations are reported with the Err* values
// of this package; anything else is a storage failure.
type Store interface {
	// CreateProposal allocates the next id and stores a new proposal
	CreateProposal(
		proposer Identity,
		description string,
		height uint64,
	) (ProposalID, error)
	// RecordVote stores the vote record and adds weight to the tally
	RecordVote(
		id ProposalID,
		voter Identity,
		weight *big.Int,
		height uint64,
	) error
	// Execute marks the proposal as executed
	Execute(id ProposalID, height uint64, minQuorum *big.Int) error
	// GetProposal returns a copy of the proposal, or nil if it does not exist
	GetProposal(id ProposalID) (*Proposal, error)
	HasVoted(key VoteKey) (bool, error)
	// ListProposals returns copies of all proposals ordered by id
	ListProposals() ([]*Proposal, error)
	// VotingPeriod returns the number of heights new proposals stay open
	VotingPeriod() uint64
	Paused() (bool, error)
	SetPaused(paused bool) error
	Close() error
}

// TokenBalanceProvider reads token balances. Unknown identities have a zero
// balance. The returned value must not be retained by the provider.
type TokenBalanceProvider interface {
	BalanceOf(identity Identity) *big.Int
}

// Clock reports the current logical height. Heights never decrease within a
// host session.
type Clock interface {
	CurrentHeight() uint64
}

// CheckVote validates a vote against the stored proposal. The proposal must
// not be nil.
func CheckVote(p *Proposal, height uint64, alreadyVoted bool) error {
	if height > p.EndHeight {
		return fmt.Errorf(
			"%w: proposal %d closed at height %d, current height %d",
			ErrVotingClosed,
			p.ID,
			p.EndHeight,
			height,
		)
	}
	if alreadyVoted {
		return fmt.Errorf("%w: proposal %d", ErrAlreadyVoted, p.ID)
	}
	return nil
}

// CheckExecute validates an execution attempt against the stored proposal.
// The voting window is checked first. An already executed proposal is
// reported as not found.
func CheckExecute(p *Proposal, height uint64, minQuorum *big.Int) error {
	if height <= p.EndHeight {
		return fmt.Errorf(
			"%w: proposal %d closes at height %d, current height %d",
			ErrVotingStillOpen,
			p.ID,
			p.EndHeight,
			height,
		)
	}
	if p.Executed {
		return fmt.Errorf(
			"%w: proposal %d already executed",
			ErrNotFound,
			p.ID,
		)
	}
	if p.Votes.Cmp(minQuorum) < 0 {
		return fmt.Errorf(
			"%w: proposal %d has %s votes, %s required",
			ErrQuorumNotMet,
			p.ID,
			p.Votes.String(),
			minQuorum.String(),
		)
	}
	return nil
}

// NotFoundError returns the error reported for an unknown proposal id
func NotFoundError(id ProposalID) error {
	return fmt.Errorf("%w: proposal %d", ErrNotFound, id)
}
