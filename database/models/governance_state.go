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

// GovernanceState holds the governance and token scalars in a single row
type GovernanceState struct {
	ID             uint   `gorm:"primarykey"`
	LastProposalID uint64 `gorm:"not null;default:0"`
	Paused         bool   `gorm:"not null;default:false"`
	TokenPaused    bool   `gorm:"not null;default:false"`
}

// GovernanceStateID is the primary key of the only state row
const GovernanceStateID = 1

// TableName returns the table name
func (GovernanceState) TableName() string {
	return "governance_state"
}
