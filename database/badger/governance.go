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

package badger

import (
	"fmt"
	"math/big"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/blinklabs-io/gridgov/database/types"
	"github.com/blinklabs-io/gridgov/governance"
)

var _ governance.Store = (*Store)(nil)

func (s *Store) CreateProposal(
	proposer governance.Identity,
	description string,
	height uint64,
) (governance.ProposalID, error) {
	var id governance.ProposalID
	err := s.update(func(txn *badger.Txn) error {
		var lastID uint64
		if err := getState(txn, types.StateKeyLastProposalID, &lastID); err != nil {
			return err
		}
		id = governance.ProposalID(lastID + 1)
		proposal := governance.NewProposal(
			id,
			proposer,
			description,
			height,
			s.votingPeriod,
		)
		if err := putProposal(txn, proposal); err != nil {
			return err
		}
		if err := setValue(txn, types.StateKey(types.StateKeyLastProposalID), uint64(id)); err != nil {
			return fmt.Errorf("failed to update proposal sequence: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) RecordVote(
	id governance.ProposalID,
	voter governance.Identity,
	weight *big.Int,
	height uint64,
) error {
	weight, err := governance.NormalizeWeight(weight)
	if err != nil {
		return err
	}
	return s.update(func(txn *badger.Txn) error {
		proposal, err := getProposal(txn, id)
		if err != nil {
			return err
		}
		if proposal == nil {
			return governance.NotFoundError(id)
		}
		key := governance.VoteKey{ProposalID: id, Voter: voter}
		voted, err := hasVoted(txn, key)
		if err != nil {
			return err
		}
		if err := governance.CheckVote(proposal, height, voted); err != nil {
			return err
		}
		vote := &voteRecord{Weight: weight, Height: height}
		if err := setValue(txn, types.VoteKey(uint64(id), string(voter)), vote); err != nil {
			return fmt.Errorf("failed to record vote: %w", err)
		}
		proposal.Votes.Add(proposal.Votes, weight)
		return putProposal(txn, proposal)
	})
}

func (s *Store) Execute(
	id governance.ProposalID,
	height uint64,
	minQuorum *big.Int,
) error {
	return s.update(func(txn *badger.Txn) error {
		proposal, err := getProposal(txn, id)
		if err != nil {
			return err
		}
		if proposal == nil {
			return governance.NotFoundError(id)
		}
		if err := governance.CheckExecute(proposal, height, minQuorum); err != nil {
			return err
		}
		proposal.Executed = true
		return putProposal(txn, proposal)
	})
}

func (s *Store) GetProposal(
	id governance.ProposalID,
) (*governance.Proposal, error) {
	var ret *governance.Proposal
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		ret, err = getProposal(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Store) HasVoted(key governance.VoteKey) (bool, error) {
	var ret bool
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		ret, err = hasVoted(txn, key)
		return err
	})
	return ret, err
}

func (s *Store) ListProposals() ([]*governance.Proposal, error) {
	var ret []*governance.Proposal
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(types.ProposalKeyPrefix)
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         prefix,
		})
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			if len(key) != len(prefix)+8 {
				return fmt.Errorf("malformed proposal key: %x", key)
			}
			id := governance.ProposalID(types.KeyBytesToUint64(key[len(prefix):]))
			var record proposalRecord
			if err := item.Value(func(val []byte) error {
				return decodeValue(val, &record)
			}); err != nil {
				return fmt.Errorf("failed to decode proposal %d: %w", id, err)
			}
			ret = append(ret, record.proposal(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if ret == nil {
		ret = []*governance.Proposal{}
	}
	return ret, nil
}

func (s *Store) Paused() (bool, error) {
	var ret bool
	err := s.db.View(func(txn *badger.Txn) error {
		return getState(txn, types.StateKeyPaused, &ret)
	})
	return ret, err
}

func (s *Store) SetPaused(paused bool) error {
	return s.update(func(txn *badger.Txn) error {
		if err := setValue(txn, types.StateKey(types.StateKeyPaused), paused); err != nil {
			return fmt.Errorf("failed to update pause flag: %w", err)
		}
		return nil
	})
}
