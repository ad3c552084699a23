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
	"errors"
	"math/big"
	"sync"
)

// ErrNegativeWeight is returned when a vote is recorded with a negative weight
var ErrNegativeWeight = errors.New("vote weight must not be negative")

// MemoryStore is an in-memory implementation of Store
type MemoryStore struct {
	proposals    map[ProposalID]*Proposal
	votes        map[VoteKey]bool
	mutex        sync.RWMutex
	lastID       ProposalID
	votingPeriod uint64
	paused       bool
}

// NewMemoryStore creates an empty store whose proposals stay open for
// votingPeriod heights
func NewMemoryStore(votingPeriod uint64) *MemoryStore {
	return &MemoryStore{
		proposals:    make(map[ProposalID]*Proposal),
		votes:        make(map[VoteKey]bool),
		votingPeriod: votingPeriod,
	}
}

func (s *MemoryStore) CreateProposal(
	proposer Identity,
	description string,
	height uint64,
) (ProposalID, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	id := s.lastID + 1
	s.proposals[id] = NewProposal(
		id,
		proposer,
		description,
		height,
		s.votingPeriod,
	)
	s.lastID = id
	return id, nil
}

func (s *MemoryStore) RecordVote(
	id ProposalID,
	voter Identity,
	weight *big.Int,
	height uint64,
) error {
	weight, err := NormalizeWeight(weight)
	if err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	proposal, ok := s.proposals[id]
	if !ok {
		return NotFoundError(id)
	}
	key := VoteKey{ProposalID: id, Voter: voter}
	if err := CheckVote(proposal, height, s.votes[key]); err != nil {
		return err
	}
	s.votes[key] = true
	proposal.Votes = new(big.Int).Add(proposal.Votes, weight)
	return nil
}

func (s *MemoryStore) Execute(
	id ProposalID,
	height uint64,
	minQuorum *big.Int,
) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	proposal, ok := s.proposals[id]
	if !ok {
		return NotFoundError(id)
	}
	if err := CheckExecute(proposal, height, minQuorum); err != nil {
		return err
	}
	proposal.Executed = true
	return nil
}

func (s *MemoryStore) GetProposal(id ProposalID) (*Proposal, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	proposal, ok := s.proposals[id]
	if !ok {
		return nil, nil
	}
	return proposal.Clone(), nil
}

func (s *MemoryStore) HasVoted(key VoteKey) (bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.votes[key], nil
}

func (s *MemoryStore) ListProposals() ([]*Proposal, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	// Ids are dense, so walking the sequence gives id order
	ret := make([]*Proposal, 0, len(s.proposals))
	for id := ProposalID(1); id <= s.lastID; id++ {
		if proposal, ok := s.proposals[id]; ok {
			ret = append(ret, proposal.Clone())
		}
	}
	return ret, nil
}

func (s *MemoryStore) VotingPeriod() uint64 {
	return s.votingPeriod
}

func (s *MemoryStore) Paused() (bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.paused, nil
}

func (s *MemoryStore) SetPaused(paused bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.paused = paused
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// NormalizeWeight treats a nil weight as zero and rejects negative weights
func NormalizeWeight(weight *big.Int) (*big.Int, error) {
	if weight == nil {
		return new(big.Int), nil
	}
	if weight.Sign() < 0 {
		return nil, ErrNegativeWeight
	}
	return weight, nil
}
