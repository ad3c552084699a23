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
	"math/big"

	"github.com/blinklabs-io/gridgov/event"
)

const (
	ProposalCreatedEventType  event.EventType = "governance.proposal_created"
	VoteCastEventType         event.EventType = "governance.vote_cast"
	ProposalExecutedEventType event.EventType = "governance.proposal_executed"
	PauseChangedEventType     event.EventType = "governance.pause_changed"
)

type ProposalCreatedEvent struct {
	Proposer  Identity
	ID        ProposalID
	EndHeight uint64
}

type VoteCastEvent struct {
	Weight *big.Int
	Voter  Identity
	ID     ProposalID
	Height uint64
}

type ProposalExecutedEvent struct {
	Votes  *big.Int
	ID     ProposalID
	Height uint64
}

type PauseChangedEvent struct {
	Caller Identity
	Paused bool
}
