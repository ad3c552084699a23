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

package gormstore

import (
	"errors"
	"fmt"
	"math/big"

	"gorm.io/gorm"

	"github.com/blinklabs-io/gridgov/database/models"
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
	err := s.transaction(func(tx *gorm.DB) error {
		state, err := getState(forUpdate(tx))
		if err != nil {
			return err
		}
		id = governance.ProposalID(state.LastProposalID + 1)
		proposal := governance.NewProposal(
			id,
			proposer,
			description,
			height,
			s.votingPeriod,
		)
		if result := tx.Create(models.FromProposal(proposal)); result.Error != nil {
			return fmt.Errorf("failed to create proposal: %w", result.Error)
		}
		if result := tx.Model(state).Update("last_proposal_id", uint64(id)); result.Error != nil {
			return fmt.Errorf("failed to update proposal sequence: %w", result.Error)
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
	return s.transaction(func(tx *gorm.DB) error {
		tmpProposal, err := getProposal(forUpdate(tx), id)
		if err != nil {
			return err
		}
		if tmpProposal == nil {
			return governance.NotFoundError(id)
		}
		var count int64
		result := tx.Model(&models.GovernanceVote{}).
			Where("proposal_id = ? AND voter = ?", uint64(id), string(voter)).
			Count(&count)
		if result.Error != nil {
			return fmt.Errorf("failed to look up vote: %w", result.Error)
		}
		proposal := tmpProposal.Proposal()
		if err := governance.CheckVote(proposal, height, count > 0); err != nil {
			return err
		}
		vote := &models.GovernanceVote{
			ProposalID: uint64(id),
			Voter:      string(voter),
			Weight:     types.NewBigInt(weight),
			Height:     types.Uint64(height),
		}
		if result := tx.Create(vote); result.Error != nil {
			return fmt.Errorf("failed to record vote: %w", result.Error)
		}
		votes := new(big.Int).Add(proposal.Votes, weight)
		result = tx.Model(tmpProposal).Update("votes", types.NewBigInt(votes))
		if result.Error != nil {
			return fmt.Errorf("failed to update tally: %w", result.Error)
		}
		return nil
	})
}

func (s *Store) Execute(
	id governance.ProposalID,
	height uint64,
	minQuorum *big.Int,
) error {
	return s.transaction(func(tx *gorm.DB) error {
		tmpProposal, err := getProposal(forUpdate(tx), id)
		if err != nil {
			return err
		}
		if tmpProposal == nil {
			return governance.NotFoundError(id)
		}
		if err := governance.CheckExecute(tmpProposal.Proposal(), height, minQuorum); err != nil {
			return err
		}
		if result := tx.Model(tmpProposal).Update("executed", true); result.Error != nil {
			return fmt.Errorf("failed to mark proposal executed: %w", result.Error)
		}
		return nil
	})
}

func (s *Store) GetProposal(
	id governance.ProposalID,
) (*governance.Proposal, error) {
	tmpProposal, err := getProposal(s.db, id)
	if err != nil {
		return nil, err
	}
	if tmpProposal == nil {
		return nil, nil
	}
	return tmpProposal.Proposal(), nil
}

func (s *Store) HasVoted(key governance.VoteKey) (bool, error) {
	var count int64
	result := s.db.Model(&models.GovernanceVote{}).
		Where(
			"proposal_id = ? AND voter = ?",
			uint64(key.ProposalID),
			string(key.Voter),
		).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to look up vote: %w", result.Error)
	}
	return count > 0, nil
}

func (s *Store) ListProposals() ([]*governance.Proposal, error) {
	var tmpProposals []models.GovernanceProposal
	if result := s.db.Order("id").Find(&tmpProposals); result.Error != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", result.Error)
	}
	ret := make([]*governance.Proposal, 0, len(tmpProposals))
	for i := range tmpProposals {
		ret = append(ret, tmpProposals[i].Proposal())
	}
	return ret, nil
}

func (s *Store) Paused() (bool, error) {
	state, err := getState(s.db)
	if err != nil {
		return false, err
	}
	return state.Paused, nil
}

func (s *Store) SetPaused(paused bool) error {
	return s.transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.GovernanceState{ID: models.GovernanceStateID}).
			Update("paused", paused)
		if result.Error != nil {
			return fmt.Errorf("failed to update pause flag: %w", result.Error)
		}
		return nil
	})
}

func getState(db *gorm.DB) (*models.GovernanceState, error) {
	var state models.GovernanceState
	if result := db.First(&state, models.GovernanceStateID); result.Error != nil {
		return nil, fmt.Errorf("failed to load governance state: %w", result.Error)
	}
	return &state, nil
}

func getProposal(
	db *gorm.DB,
	id governance.ProposalID,
) (*models.GovernanceProposal, error) {
	var tmpProposal models.GovernanceProposal
	if result := db.First(&tmpProposal, uint64(id)); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load proposal: %w", result.Error)
	}
	return &tmpProposal, nil
}
