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

import (
	"github.com/blinklabs-io/gridgov/database/types"
	"github.com/blinklabs-io/gridgov/governance"
)

// GovernanceProposal is the stored form of a proposal. The tally is kept as a
// decimal string.
type GovernanceProposal struct {
	ID          uint64       `gorm:"primaryKey;autoIncrement:false"`
	Description string       `gorm:"type:text;not null"`
	Proposer    string       `gorm:"index;size:128;not null"`
	Votes       types.BigInt `gorm:"not null"`
	EndHeight   types.Uint64 `gorm:"not null"`
	Executed    bool         `gorm:"not null;default:false"`
}

// TableName returns the table name
func (GovernanceProposal) TableName() string {
	return "governance_proposal"
}

// FromProposal converts a proposal into its stored form
func FromProposal(p *governance.Proposal) *GovernanceProposal {
	return &GovernanceProposal{
		ID:          uint64(p.ID),
		Description: p.Description,
		Proposer:    string(p.Proposer),
		Votes:       types.NewBigInt(p.Votes),
		EndHeight:   types.Uint64(p.EndHeight),
		Executed:    p.Executed,
	}
}

// Proposal returns a detached copy of the stored proposal
func (g *GovernanceProposal) Proposal() *governance.Proposal {
	ret := &governance.Proposal{
		ID:          governance.ProposalID(g.ID),
		Description: g.Description,
		Proposer:    governance.Identity(g.Proposer),
		EndHeight:   uint64(g.EndHeight),
		Executed:    g.Executed,
	}
	ret.Votes = types.NewBigInt(g.Votes.Int).Int
	return ret
}
