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

package models

import "github.com/blinklabs-io/gridgov/database/types"

// GovernanceVote records that a voter has voted on a proposal. The weight is
// kept for auditing only; the tally lives on the proposal.
type GovernanceVote struct {
	ID         uint         `gorm:"primarykey"`
	ProposalID uint64       `gorm:"uniqueIndex:idx_vote_unique,priority:1;not null"`
	Voter      string       `gorm:"uniqueIndex:idx_vote_unique,priority:2;size:128;not null"`
	Weight     types.BigInt `gorm:"not null"`
	Height     types.Uint64 `gorm:"not null"`
}

// TableName returns the table name
func (GovernanceVote) TableName() string {
	return "governance_vote"
}
