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
	"math"
	"math/big"
	"strconv"
)

// Identity identifies a caller, proposer or voter
type Identity string

// MaxIdentityLength is the longest identity, in bytes, that can be stored
const MaxIdentityLength = 128

// Validate returns ErrInvalidIdentity if the identity is too long to store
func (i Identity) Validate() error {
	if len(i) > MaxIdentityLength {
		return fmt.Errorf(
			"%w: identity is %d bytes, limit is %d",
			ErrInvalidIdentity,
			len(i),
			MaxIdentityLength,
		)
	}
	return nil
}

// ProposalID is the sequence number of a proposal. The first proposal is 1.
type ProposalID uint64

func (id ProposalID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// VoteKey identifies a single vote record
type VoteKey struct {
	ProposalID ProposalID
	Voter      Identity
}

// Proposal represents a governance item with a bounded voting window and
// a cumulative weighted tally.
// EndHeight is fixed at creation, Votes never decreases and Executed only
// transitions from false to true.
type Proposal struct {
	Votes       *big.Int   `json:"votes"`
	Description string     `json:"description"`
	Proposer    Identity   `json:"proposer"`
	ID          ProposalID `json:"id"`
	EndHeight   uint64     `json:"endHeight"`
	Executed    bool       `json:"executed"`
}

// Clone returns a deep copy of the proposal
func (p *Proposal) Clone() *Proposal {
	if p == nil {
		return nil
	}
	ret := *p
	if p.Votes != nil {
		ret.Votes = new(big.Int).Set(p.Votes)
	} else {
		ret.Votes = new(big.Int)
	}
	return &ret
}

// NewProposal builds a proposal with an empty tally whose voting window
// closes votingPeriod heights after the creation height. The end height
// saturates at math.MaxUint64.
func NewProposal(
	id ProposalID,
	proposer Identity,
	description string,
	height uint64,
	votingPeriod uint64,
) *Proposal {
	return &Proposal{
		ID:          id,
		Description: description,
		Proposer:    proposer,
		Votes:       new(big.Int),
		EndHeight:   endHeightFor(height, votingPeriod),
	}
}

func endHeightFor(height uint64, votingPeriod uint64) uint64 {
	endHeight := height + votingPeriod
	if endHeight < height {
		return math.MaxUint64
	}
	return endHeight
}

// Config holds the process-wide governance parameters
type Config struct {
	// MinQuorum is the minimum accumulated vote weight required for execution
	MinQuorum *big.Int
	// Admin is the only identity allowed to toggle the pause flag
	Admin Identity
	// VotingPeriod is the number of heights a proposal stays open for voting
	VotingPeriod uint64
}

const (
	DefaultVotingPeriod = 1440
	DefaultMinQuorum    = 1_000_000
)

// DefaultConfig returns a config with the default voting period and quorum
func DefaultConfig(admin Identity) Config {
	return Config{
		Admin:        admin,
		VotingPeriod: DefaultVotingPeriod,
		MinQuorum:    big.NewInt(DefaultMinQuorum),
	}
}

func (c Config) validate() error {
	if c.Admin == "" {
		return fmt.Errorf("%w: admin identity must not be empty", ErrInvalidConfig)
	}
	if c.VotingPeriod == 0 {
		return fmt.Errorf("%w: voting period must be positive", ErrInvalidConfig)
	}
	if c.MinQuorum == nil {
		return fmt.Errorf("%w: minimum quorum must be set", ErrInvalidConfig)
	}
	if c.MinQuorum.Sign() < 0 {
		return fmt.Errorf("%w: minimum quorum must not be negative", ErrInvalidConfig)
	}
	return nil
}
