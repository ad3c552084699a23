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
	"math"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blinklabs-io/gridgov/clock"
	"github.com/blinklabs-io/gridgov/event"
	"github.com/blinklabs-io/gridgov/governance"
	tu "github.com/blinklabs-io/gridgov/internal/test/testutil"
)

const testDescription = "Upgrade grid infrastructure"

type testEnv struct {
	engine   *governance.Engine
	store    governance.Store
	balances *tu.Balances
	clock    *clock.ManualClock
}

func newTestEnv(
	t *testing.T,
	opts ...governance.EngineOptionFunc,
) *testEnv {
	t.Helper()
	env := &testEnv{
		store:    governance.NewMemoryStore(governance.DefaultVotingPeriod),
		balances: tu.NewBalances(),
		clock:    clock.NewManualClock(1000),
	}
	engine, err := governance.NewEngine(
		governance.DefaultConfig(tu.AdminIdentity),
		env.store,
		env.balances,
		env.clock,
		opts...,
	)
	require.NoError(t, err)
	env.engine = engine
	return env
}

func (env *testEnv) setHeight(t *testing.T, height uint64) {
	t.Helper()
	require.NoError(t, env.clock.Set(height))
}

func TestCreateProposal(t *testing.T) {
	env := newTestEnv(t)
	id, err := env.engine.CreateProposal(tu.Proposer, testDescription)
	require.NoError(t, err)
	assert.Equal(t, governance.ProposalID(1), id)
	proposal, err := env.engine.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(
		t,
		&governance.Proposal{
			ID:          1,
			Description: testDescription,
			Proposer:    tu.Proposer,
			Votes:       new(big.Int),
			EndHeight:   2440,
			Executed:    false,
		},
		proposal,
	)
}

func TestCastVote(t *testing.T) {
	env := newTestEnv(t)
	id, err := env.engine.CreateProposal(tu.Proposer, testDescription)
	require.NoError(t, err)
	env.balances.Set(tu.Voter, 2_000_000)
	require.NoError(t, env.engine.CastVote(tu.Voter, id))
	proposal, err := env.engine.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, "2000000", proposal.Votes.String())
	voted, err := env.engine.HasVoted(id, tu.Voter)
	require.NoError(t, err)
	assert.True(t, voted)
}

func TestExecuteProposalAfterVotingPeriod(t *testing.T) {
	env := newTestEnv(t)
	id, err := env.engine.CreateProposal(tu.Proposer, testDescription)
	require.NoError(t, err)
	env.balances.Set(tu.Voter, 2_000_000)
	require.NoError(t, env.engine.CastVote(tu.Voter, id))
	env.setHeight(t, 3000)
	require.NoError(t, env.engine.ExecuteProposal(tu.Voter, id))
	proposal, err := env.engine.GetProposal(id)
	require.NoError(t, err)
	assert.True(t, proposal.Executed)
	// Executing twice fails and reports the proposal as not executable
	err = env.engine.ExecuteProposal(tu.Voter, id)
	require.ErrorIs(t, err, governance.ErrNotFound)
	assert.Equal(t, governance.CodeNotFound, governance.ErrorCode(err))
}

func TestVoteOnExpiredProposal(t *testing.T) {
	env := newTestEnv(t)
	id, err := env.engine.CreateProposal(tu.Proposer, testDescription)
	require.NoError(t, err)
	env.setHeight(t, 3000)
	err = env.engine.CastVote(tu.Voter, id)
	require.ErrorIs(t, err, governance.ErrVotingClosed)
	assert.Equal(t, uint32(103), governance.ErrorCode(err))
}

func TestExecuteBeforeVotingPeriodEnds(t *testing.T) {
	env := newTestEnv(t)
	id, err := env.engine.CreateProposal(tu.Proposer, testDescription)
	require.NoError(t, err)
	err = env.engine.ExecuteProposal(tu.Voter, id)
	require.ErrorIs(t, err, governance.ErrVotingStillOpen)
	assert.Equal(t, uint32(103), governance.ErrorCode(err))
}

func TestExecuteBelowQuorum(t *testing.T) {
	env := newTestEnv(t)
	id, err := env.engine.CreateProposal(tu.Proposer, testDescription)
	require.NoError(t, err)
	env.balances.Set(tu.Voter, 500_000)
	require.NoError(t, env.engine.CastVote(tu.Voter, id))
	env.setHeight(t, 3000)
	err = env.engine.ExecuteProposal(tu.Voter, id)
	require.ErrorIs(t, err, governance.ErrQuorumNotMet)
	assert.Equal(t, uint32(101), governance.ErrorCode(err))
	proposal, err := env.engine.GetProposal(id)
	require.NoError(t, err)
	assert.False(t, proposal.Executed)
}

func TestGetProposalNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.GetProposal(1)
	require.ErrorIs(t, err, governance.ErrNotFound)
	err = env.engine.CastVote(tu.Voter, 1)
	require.ErrorIs(t, err, governance.ErrNotFound)
	err = env.engine.ExecuteProposal(tu.Voter, 1)
	require.ErrorIs(t, err, governance.ErrNotFound)
}

func TestZeroBalanceVote(t *testing.T) {
	env := newTestEnv(t)
	id, err := env.engine.CreateProposal(tu.Proposer, testDescription)
	require.NoError(t, err)
	require.NoError(t, env.engine.CastVote(tu.Voter, id))
	// A later balance does not grant a second vote
	env.balances.Set(tu.Voter, 5_000_000)
	err = env.engine.CastVote(tu.Voter, id)
	require.ErrorIs(t, err, governance.ErrAlreadyVoted)
	proposal, err := env.engine.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, "0", proposal.Votes.String())
}

func TestVoteWeightReadAtVoteTime(t *testing.T) {
	env := newTestEnv(t)
	id, err := env.engine.CreateProposal(tu.Proposer, testDescription)
	require.NoError(t, err)
	env.balances.Set(tu.Voter, 600_000)
	require.NoError(t, env.engine.CastVote(tu.Voter, id))
	// The same tokens move to another identity, which votes again.
	// Weight is not snapshotted, so both votes count.
	env.balances.Set(tu.Voter, 0)
	env.balances.Set(tu.Proposer, 600_000)
	require.NoError(t, env.engine.CastVote(tu.Proposer, id))
	proposal, err := env.engine.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, "1200000", proposal.Votes.String())
}

func TestSetPaused(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.SetPaused(tu.Voter, true)
	require.ErrorIs(t, err, governance.ErrUnauthorized)
	assert.Equal(t, uint32(100), governance.ErrorCode(err))
	assert.False(t, env.engine.Paused())

	paused, err := env.engine.SetPaused(tu.AdminIdentity, true)
	require.NoError(t, err)
	assert.True(t, paused)
	assert.True(t, env.engine.Paused())
	storedPaused, err := env.store.Paused()
	require.NoError(t, err)
	assert.True(t, storedPaused)
}

func TestPauseGate(t *testing.T) {
	env := newTestEnv(t)
	id, err := env.engine.CreateProposal(tu.Proposer, testDescription)
	require.NoError(t, err)
	env.balances.Set(tu.Voter, 2_000_000)
	_, err = env.engine.SetPaused(tu.AdminIdentity, true)
	require.NoError(t, err)

	// Every gated operation is rejected, including for the admin
	for _, caller := range []governance.Identity{tu.Voter, tu.AdminIdentity} {
		_, err = env.engine.CreateProposal(caller, "another")
		require.ErrorIs(t, err, governance.ErrSystemPaused)
		assert.Equal(t, uint32(104), governance.ErrorCode(err))
		err = env.engine.CastVote(caller, id)
		require.ErrorIs(t, err, governance.ErrSystemPaused)
	}
	env.setHeight(t, 3000)
	err = env.engine.ExecuteProposal(tu.Voter, id)
	require.ErrorIs(t, err, governance.ErrSystemPaused)

	// State is unchanged and still queryable
	proposals, err := env.engine.ListProposals()
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, "0", proposals[0].Votes.String())
	assert.False(t, proposals[0].Executed)

	paused, err := env.engine.SetPaused(tu.AdminIdentity, false)
	require.NoError(t, err)
	assert.False(t, paused)
	_, err = env.engine.CreateProposal(tu.Proposer, "another")
	require.NoError(t, err)
}

func TestPauseRestoredFromStore(t *testing.T) {
	store := governance.NewMemoryStore(governance.DefaultVotingPeriod)
	require.NoError(t, store.SetPaused(true))
	engine, err := governance.NewEngine(
		governance.DefaultConfig(tu.AdminIdentity),
		store,
		tu.NewBalances(),
		clock.NewManualClock(0),
	)
	require.NoError(t, err)
	assert.True(t, engine.Paused())
	_, err = engine.CreateProposal(tu.Proposer, testDescription)
	require.ErrorIs(t, err, governance.ErrSystemPaused)
}

func TestIndependentEngines(t *testing.T) {
	env1 := newTestEnv(t)
	env2 := newTestEnv(t)
	_, err := env1.engine.SetPaused(tu.AdminIdentity, true)
	require.NoError(t, err)
	id, err := env2.engine.CreateProposal(tu.Proposer, testDescription)
	require.NoError(t, err)
	assert.Equal(t, governance.ProposalID(1), id)
	assert.False(t, env2.engine.Paused())
}

func TestNewEngineInvalidConfig(t *testing.T) {
	store := governance.NewMemoryStore(1)
	testDefs := []governance.Config{
		{VotingPeriod: 1, MinQuorum: big.NewInt(1)},
		{Admin: tu.AdminIdentity, VotingPeriod: 1},
		{Admin: tu.AdminIdentity, VotingPeriod: 1, MinQuorum: big.NewInt(-1)},
		{Admin: tu.AdminIdentity, VotingPeriod: 0, MinQuorum: big.NewInt(1)},
		// Differs from the store voting period
		{Admin: tu.AdminIdentity, VotingPeriod: 10, MinQuorum: big.NewInt(1)},
	}
	for _, cfg := range testDefs {
		_, err := governance.NewEngine(cfg, store, tu.NewBalances(), clock.NewManualClock(0))
		require.ErrorIs(t, err, governance.ErrInvalidConfig)
	}
	_, err := governance.NewEngine(
		governance.DefaultConfig(tu.AdminIdentity),
		nil,
		tu.NewBalances(),
		clock.NewManualClock(0),
	)
	require.Error(t, err)
}

func TestConfigIsCopied(t *testing.T) {
	cfg := governance.DefaultConfig(tu.AdminIdentity)
	engine, err := governance.NewEngine(
		cfg,
		governance.NewMemoryStore(cfg.VotingPeriod),
		tu.NewBalances(),
		clock.NewManualClock(0),
	)
	require.NoError(t, err)
	cfg.MinQuorum.SetInt64(1)
	assert.Equal(t, "1000000", engine.Config().MinQuorum.String())
	engine.Config().MinQuorum.SetInt64(2)
	assert.Equal(t, "1000000", engine.Config().MinQuorum.String())
}

type failingPauseStore struct {
	governance.Store
}

func (failingPauseStore) SetPaused(bool) error {
	return errors.New("write failed")
}

func TestSetPausedStoreFailure(t *testing.T) {
	engine, err := governance.NewEngine(
		governance.DefaultConfig(tu.AdminIdentity),
		failingPauseStore{governance.NewMemoryStore(governance.DefaultVotingPeriod)},
		tu.NewBalances(),
		clock.NewManualClock(0),
	)
	require.NoError(t, err)
	_, err = engine.SetPaused(tu.AdminIdentity, true)
	require.Error(t, err)
	assert.False(t, governance.IsDomainError(err))
	assert.False(t, engine.Paused())
}

func TestEngineEvents(t *testing.T) {
	defer goleak.VerifyNone(t)
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	env := newTestEnv(t, governance.WithEventBus(eb))
	_, createdCh := eb.Subscribe(governance.ProposalCreatedEventType)
	_, voteCh := eb.Subscribe(governance.VoteCastEventType)
	_, executedCh := eb.Subscribe(governance.ProposalExecutedEventType)
	_, pauseCh := eb.Subscribe(governance.PauseChangedEventType)

	id, err := env.engine.CreateProposal(tu.Proposer, testDescription)
	require.NoError(t, err)
	evt := tu.RequireReceive(t, createdCh, time.Second, "proposal created")
	assert.Equal(
		t,
		governance.ProposalCreatedEvent{ID: id, Proposer: tu.Proposer, EndHeight: 2440},
		evt.Data,
	)

	env.balances.Set(tu.Voter, 2_000_000)
	require.NoError(t, env.engine.CastVote(tu.Voter, id))
	evt = tu.RequireReceive(t, voteCh, time.Second, "vote cast")
	voteEvt, ok := evt.Data.(governance.VoteCastEvent)
	require.True(t, ok)
	assert.Equal(t, "2000000", voteEvt.Weight.String())
	assert.Equal(t, uint64(1000), voteEvt.Height)

	// Rejected operations publish nothing
	require.Error(t, env.engine.CastVote(tu.Voter, id))
	tu.RequireNoReceive(t, voteCh, 50*time.Millisecond, "rejected vote")

	env.setHeight(t, 3000)
	require.NoError(t, env.engine.ExecuteProposal(tu.Voter, id))
	evt = tu.RequireReceive(t, executedCh, time.Second, "proposal executed")
	execEvt, ok := evt.Data.(governance.ProposalExecutedEvent)
	require.True(t, ok)
	assert.Equal(t, "2000000", execEvt.Votes.String())
	assert.Equal(t, uint64(3000), execEvt.Height)

	_, err = env.engine.SetPaused(tu.AdminIdentity, true)
	require.NoError(t, err)
	evt = tu.RequireReceive(t, pauseCh, time.Second, "pause changed")
	assert.Equal(
		t,
		governance.PauseChangedEvent{Caller: tu.AdminIdentity, Paused: true},
		evt.Data,
	)
}

func TestEngineMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	env := newTestEnv(t, governance.WithPrometheusRegistry(reg))
	id, err := env.engine.CreateProposal(tu.Proposer, testDescription)
	require.NoError(t, err)
	require.NoError(t, env.engine.CastVote(tu.Voter, id))
	require.Error(t, env.engine.CastVote(tu.Voter, id))
	_, err = env.engine.SetPaused(tu.AdminIdentity, true)
	require.NoError(t, err)

	expected := `
# HELP gridgov_governance_operation_errors_total total rejected governance operations by operation and error kind
# TYPE gridgov_governance_operation_errors_total counter
gridgov_governance_operation_errors_total{kind="already_voted",operation="cast_vote"} 1
# HELP gridgov_governance_paused whether governance is paused (0 or 1)
# TYPE gridgov_governance_paused gauge
gridgov_governance_paused 1
# HELP gridgov_governance_proposals_created_total total proposals created
# TYPE gridgov_governance_proposals_created_total counter
gridgov_governance_proposals_created_total 1
# HELP gridgov_governance_votes_cast_total total votes recorded
# TYPE gridgov_governance_votes_cast_total counter
gridgov_governance_votes_cast_total 1
`
	require.NoError(t, testutil.GatherAndCompare(
		reg,
		strings.NewReader(expected),
		"gridgov_governance_operation_errors_total",
		"gridgov_governance_paused",
		"gridgov_governance_proposals_created_total",
		"gridgov_governance_votes_cast_total",
	))
}

func TestUndrainedSubscriberDoesNotBlock(t *testing.T) {
	defer goleak.VerifyNone(t)
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	env := newTestEnv(t, governance.WithEventBus(eb))
	// Never read
	_, _ = eb.Subscribe(governance.ProposalCreatedEventType)
	done := make(chan error, 1)
	go func() {
		for range event.EventQueueSize * 3 {
			if _, err := env.engine.CreateProposal(tu.Proposer, testDescription); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("engine blocked on event delivery")
	}
	assert.False(t, env.engine.Paused())
	proposals, err := env.engine.ListProposals()
	require.NoError(t, err)
	assert.Len(t, proposals, event.EventQueueSize*3)
}

func TestEventHandlerCallsEngine(t *testing.T) {
	defer goleak.VerifyNone(t)
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	env := newTestEnv(t, governance.WithEventBus(eb))
	tallies := make(chan string, 1)
	eb.SubscribeFunc(governance.VoteCastEventType, func(evt event.Event) {
		voteEvt, ok := evt.Data.(governance.VoteCastEvent)
		if !ok {
			return
		}
		proposal, err := env.engine.GetProposal(voteEvt.ID)
		if err != nil {
			return
		}
		tallies <- proposal.Votes.String()
	})
	id, err := env.engine.CreateProposal(tu.Proposer, testDescription)
	require.NoError(t, err)
	env.balances.Set(tu.Voter, 1_500_000)
	require.NoError(t, env.engine.CastVote(tu.Voter, id))
	assert.Equal(t, "1500000", tu.RequireReceive(t, tallies, time.Second, "tally"))
}

func TestCreatedEventEndHeightFromStore(t *testing.T) {
	defer goleak.VerifyNone(t)
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	store := governance.NewMemoryStore(10)
	cfg := governance.DefaultConfig(tu.AdminIdentity)
	cfg.VotingPeriod = 10
	clk := clock.NewManualClock(math.MaxUint64 - 5)
	engine, err := governance.NewEngine(
		cfg,
		store,
		tu.NewBalances(),
		clk,
		governance.WithEventBus(eb),
	)
	require.NoError(t, err)
	_, createdCh := eb.Subscribe(governance.ProposalCreatedEventType)
	id, err := engine.CreateProposal(tu.Proposer, testDescription)
	require.NoError(t, err)
	evt := tu.RequireReceive(t, createdCh, time.Second, "proposal created")
	createdEvt, ok := evt.Data.(governance.ProposalCreatedEvent)
	require.True(t, ok)
	proposal, err := engine.GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, proposal.EndHeight, createdEvt.EndHeight)
	assert.Equal(t, uint64(math.MaxUint64), createdEvt.EndHeight)
	// Saturated windows stay open
	require.NoError(t, engine.CastVote(tu.Voter, id))
}

func TestIdentityTooLong(t *testing.T) {
	env := newTestEnv(t)
	long := governance.Identity(strings.Repeat("S", governance.MaxIdentityLength+1))
	_, err := env.engine.CreateProposal(long, testDescription)
	require.ErrorIs(t, err, governance.ErrInvalidIdentity)
	assert.Equal(t, governance.CodeInvalidIdentity, governance.ErrorCode(err))

	id, err := env.engine.CreateProposal(tu.Proposer, testDescription)
	require.NoError(t, err)
	err = env.engine.CastVote(long, id)
	require.ErrorIs(t, err, governance.ErrInvalidIdentity)
	voted, err := env.engine.HasVoted(id, long)
	require.NoError(t, err)
	assert.False(t, voted)

	exact := governance.Identity(strings.Repeat("S", governance.MaxIdentityLength))
	require.NoError(t, env.engine.CastVote(exact, id))
}
