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

package governance_test

import (
	"errors"
	"math/big"
	"testing"

	"pgregory.net/rapid"

	"github.com/blinklabs-io/gridgov/clock"
	"github.com/blinklabs-io/gridgov/governance"
	tu "github.com/blinklabs-io/gridgov/internal/test/testutil"
)

const propVotingPeriod = 20

var propIdentities = []governance.Identity{
	tu.AdminIdentity,
	tu.Proposer,
	tu.Voter,
}

type modelProposal struct {
	votes     *big.Int
	voters    map[governance.Identity]bool
	endHeight uint64
	executed  bool
}

// TestEngineMatchesModel drives the engine with random operation sequences
// and checks every result against a plain model of the rules
func TestEngineMatchesModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		balances := tu.NewBalances()
		clk := clock.NewManualClock(1000)
		cfg := governance.Config{
			Admin:        tu.AdminIdentity,
			VotingPeriod: propVotingPeriod,
			MinQuorum:    big.NewInt(1000),
		}
		engine, err := governance.NewEngine(
			cfg,
			governance.NewMemoryStore(propVotingPeriod),
			balances,
			clk,
		)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		model := []*modelProposal{}
		paused := false

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			action := rapid.SampledFrom(
				[]string{"create", "vote", "execute", "advance", "pause", "balance"},
			).Draw(t, "action")
			caller := rapid.SampledFrom(propIdentities).Draw(t, "caller")
			height := clk.CurrentHeight()
			switch action {
			case "create":
				id, err := engine.CreateProposal(caller, "proposal")
				if paused {
					requireIs(t, err, governance.ErrSystemPaused)
					continue
				}
				if err != nil {
					t.Fatalf("unexpected error: %s", err)
				}
				model = append(model, &modelProposal{
					votes:     new(big.Int),
					voters:    make(map[governance.Identity]bool),
					endHeight: height + propVotingPeriod,
				})
				if uint64(id) != uint64(len(model)) {
					t.Fatalf("expected id %d, got %d", len(model), id)
				}
			case "vote":
				idx := rapid.IntRange(0, len(model)).Draw(t, "proposal")
				id := governance.ProposalID(idx + 1)
				weight := balances.BalanceOf(caller)
				err := engine.CastVote(caller, id)
				switch {
				case paused:
					requireIs(t, err, governance.ErrSystemPaused)
				case idx == len(model):
					requireIs(t, err, governance.ErrNotFound)
				case height > model[idx].endHeight:
					requireIs(t, err, governance.ErrVotingClosed)
				case model[idx].voters[caller]:
					requireIs(t, err, governance.ErrAlreadyVoted)
				default:
					if err != nil {
						t.Fatalf("unexpected error: %s", err)
					}
					model[idx].voters[caller] = true
					model[idx].votes.Add(model[idx].votes, weight)
				}
			case "execute":
				idx := rapid.IntRange(0, len(model)).Draw(t, "proposal")
				id := governance.ProposalID(idx + 1)
				err := engine.ExecuteProposal(caller, id)
				switch {
				case paused:
					requireIs(t, err, governance.ErrSystemPaused)
				case idx == len(model):
					requireIs(t, err, governance.ErrNotFound)
				case height <= model[idx].endHeight:
					requireIs(t, err, governance.ErrVotingStillOpen)
				case model[idx].executed:
					requireIs(t, err, governance.ErrNotFound)
				case model[idx].votes.Cmp(cfg.MinQuorum) < 0:
					requireIs(t, err, governance.ErrQuorumNotMet)
				default:
					if err != nil {
						t.Fatalf("unexpected error: %s", err)
					}
					model[idx].executed = true
				}
			case "advance":
				clk.Advance(rapid.Uint64Range(0, propVotingPeriod).Draw(t, "delta"))
			case "pause":
				pause := rapid.Bool().Draw(t, "pause")
				_, err := engine.SetPaused(caller, pause)
				if caller != tu.AdminIdentity {
					requireIs(t, err, governance.ErrUnauthorized)
					continue
				}
				if err != nil {
					t.Fatalf("unexpected error: %s", err)
				}
				paused = pause
			case "balance":
				balances.Set(
					caller,
					rapid.Int64Range(0, 1500).Draw(t, "amount"),
				)
			}
		}

		proposals, err := engine.ListProposals()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if len(proposals) != len(model) {
			t.Fatalf("expected %d proposals, got %d", len(model), len(proposals))
		}
		for idx, proposal := range proposals {
			expected := model[idx]
			if proposal.ID != governance.ProposalID(idx+1) {
				t.Fatalf("proposal %d has id %d", idx+1, proposal.ID)
			}
			if proposal.Votes.Cmp(expected.votes) != 0 {
				t.Fatalf(
					"proposal %d: expected %s votes, got %s",
					proposal.ID,
					expected.votes,
					proposal.Votes,
				)
			}
			if proposal.Executed != expected.executed {
				t.Fatalf("proposal %d: executed mismatch", proposal.ID)
			}
			if proposal.EndHeight != expected.endHeight {
				t.Fatalf("proposal %d: end height mismatch", proposal.ID)
			}
			for _, identity := range propIdentities {
				voted, err := engine.HasVoted(proposal.ID, identity)
				if err != nil {
					t.Fatalf("unexpected error: %s", err)
				}
				if voted != expected.voters[identity] {
					t.Fatalf("proposal %d: vote record mismatch for %s", proposal.ID, identity)
				}
			}
		}
	})
}

// TestExecuteIsOneShot checks that a proposal meeting quorum executes exactly
// once no matter how many times execution is attempted
func TestExecuteIsOneShot(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		env := &testEnv{
			balances: tu.NewBalances(),
			clock:    clock.NewManualClock(rapid.Uint64Range(0, 1<<40).Draw(t, "start")),
		}
		engine, err := governance.NewEngine(
			governance.DefaultConfig(tu.AdminIdentity),
			governance.NewMemoryStore(governance.DefaultVotingPeriod),
			env.balances,
			env.clock,
		)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		id, err := engine.CreateProposal(tu.Proposer, "one shot")
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		env.balances.Set(tu.Voter, rapid.Int64Range(governance.DefaultMinQuorum, 1<<50).Draw(t, "balance"))
		if err := engine.CastVote(tu.Voter, id); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		env.clock.Advance(governance.DefaultVotingPeriod + 1)
		if err := engine.ExecuteProposal(tu.Voter, id); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		attempts := rapid.IntRange(1, 5).Draw(t, "attempts")
		for range attempts {
			env.clock.Advance(rapid.Uint64Range(0, 100).Draw(t, "delta"))
			requireIs(t, engine.ExecuteProposal(tu.Voter, id), governance.ErrNotFound)
		}
	})
}

func requireIs(t *rapid.T, err error, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}
