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
	"errors"
	"fmt"
	"math/big"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"

	"github.com/blinklabs-io/gridgov/database/types"
	"github.com/blinklabs-io/gridgov/governance"
)

type proposalRecord struct {
	_           struct{} `cbor:",toarray"`
	Description string
	Proposer    string
	Votes       *big.Int
	EndHeight   uint64
	Executed    bool
}

func newProposalRecord(p *governance.Proposal) *proposalRecord {
	return &proposalRecord{
		Description: p.Description,
		Proposer:    string(p.Proposer),
		Votes:       p.Votes,
		EndHeight:   p.EndHeight,
		Executed:    p.Executed,
	}
}

func (r *proposalRecord) proposal(id governance.ProposalID) *governance.Proposal {
	ret := &governance.Proposal{
		ID:          id,
		Description: r.Description,
		Proposer:    governance.Identity(r.Proposer),
		Votes:       new(big.Int),
		EndHeight:   r.EndHeight,
		Executed:    r.Executed,
	}
	if r.Votes != nil {
		ret.Votes.Set(r.Votes)
	}
	return ret
}

type voteRecord struct {
	_      struct{} `cbor:",toarray"`
	Weight *big.Int
	Height uint64
}

func getValue(txn *badger.Txn, key []byte, dest any) error {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return types.ErrKeyNotFound
		}
		return err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return err
	}
	if err := decodeValue(val, dest); err != nil {
		return fmt.Errorf("failed to decode value for key %x: %w", key, err)
	}
	return nil
}

func decodeValue(val []byte, dest any) error {
	return cbor.Unmarshal(val, dest)
}

func setValue(txn *badger.Txn, key []byte, val any) error {
	data, err := cbor.Marshal(val)
	if err != nil {
		return fmt.Errorf("failed to encode value for key %x: %w", key, err)
	}
	return txn.Set(key, data)
}

func getProposal(
	txn *badger.Txn,
	id governance.ProposalID,
) (*governance.Proposal, error) {
	var record proposalRecord
	if err := getValue(txn, types.ProposalKey(uint64(id)), &record); err != nil {
		if errors.Is(err, types.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load proposal: %w", err)
	}
	return record.proposal(id), nil
}

func putProposal(txn *badger.Txn, p *governance.Proposal) error {
	if err := setValue(txn, types.ProposalKey(uint64(p.ID)), newProposalRecord(p)); err != nil {
		return fmt.Errorf("failed to store proposal: %w", err)
	}
	return nil
}

func hasVoted(txn *badger.Txn, key governance.VoteKey) (bool, error) {
	_, err := txn.Get(types.VoteKey(uint64(key.ProposalID), string(key.Voter)))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up vote: %w", err)
	}
	return true, nil
}

// getState reads a governance scalar, leaving dest untouched if unset
func getState(txn *badger.Txn, name string, dest any) error {
	err := getValue(txn, types.StateKey(name), dest)
	if err != nil && !errors.Is(err, types.ErrKeyNotFound) {
		return fmt.Errorf("failed to load %s: %w", name, err)
	}
	return nil
}
