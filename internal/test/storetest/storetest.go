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

// Package storetest holds a conformance suite that every governance.Store
// implementation must pass
package storetest

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gridgov/governance"
	"github.com/blinklabs-io/gridgov/internal/test/testutil"
)

const (
	VotingPeriod  = 1440
	StartHeight   = 1000
	testEndHeight = StartHeight + VotingPeriod
)

// Factory returns a fresh, empty store. The store is closed by the suite.
type Factory func(t *testing.T, votingPeriod uint64) governance.Store

// Run runs the conformance suite against stores built by factory
func Run(t *testing.T, factory Factory) {
	testDefs := []struct {
		name string
		fn   func(*testing.T, governance.Store)
	}{
		{"SequentialIDs", testSequentialIDs},
		{"CreateProposal", testCreateProposal},
		{"GetUnknownProposal", testGetUnknownProposal},
		{"ProposalSnapshot", testProposalSnapshot},
		{"RecordVote", testRecordVote},
		{"RecordVoteUnknown", testRecordVoteUnknown},
		{"RecordVoteTwice", testRecordVoteTwice},
		{"RecordVoteWindow", testRecordVoteWindow},
		{"RecordZeroWeight", testRecordZeroWeight},
		{"RecordLargeWeight", testRecordLargeWeight},
		{"RecordNegativeWeight", testRecordNegativeWeight},
		{"Execute", testExecute},
		{"ExecuteUnknown", testExecuteUnknown},
		{"ExecuteStillOpen", testExecuteStillOpen},
		{"ExecuteQuorumNotMet", testExecuteQuorumNotMet},
		{"ListProposals", testListProposals},
		{"Paused", testPaused},
		{"VotingPeriod", testVotingPeriod},
		{"EndHeightSaturates", testEndHeightSaturates},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			store := factory(t, VotingPeriod)
			t.Cleanup(func() {
				store.Close() //nolint:errcheck
			})
			testDef.fn(t, store)
		})
	}
}

func createProposal(t *testing.T, store governance.Store) governance.ProposalID {
	t.Helper()
	id, err := store.CreateProposal(
		testutil.Proposer,
		"Upgrade grid infrastructure",
		StartHeight,
	)
	require.NoError(t, err)
	return id
}

func getProposal(
	t *testing.T,
	store governance.Store,
	id governance.ProposalID,
) *governance.Proposal {
	t.Helper()
	proposal, err := store.GetProposal(id)
	require.NoError(t, err)
	require.NotNil(t, proposal)
	return proposal
}

func testSequentialIDs(t *testing.T, store governance.Store) {
	for i := 1; i <= 5; i++ {
		id, err := store.CreateProposal(testutil.Proposer, "p", uint64(i))
		require.NoError(t, err)
		assert.Equal(t, governance.ProposalID(i), id)
	}
}

func testCreateProposal(t *testing.T, store governance.Store) {
	id := createProposal(t, store)
	proposal := getProposal(t, store, id)
	assert.Equal(t, governance.ProposalID(1), proposal.ID)
	assert.Equal(t, "Upgrade grid infrastructure", proposal.Description)
	assert.Equal(t, testutil.Proposer, proposal.Proposer)
	assert.Equal(t, "0", proposal.Votes.String())
	assert.Equal(t, uint64(testEndHeight), proposal.EndHeight)
	assert.False(t, proposal.Executed)
}

func testGetUnknownProposal(t *testing.T, store governance.Store) {
	proposal, err := store.GetProposal(42)
	require.NoError(t, err)
	assert.Nil(t, proposal)
}

func testProposalSnapshot(t *testing.T, store governance.Store) {
	id := createProposal(t, store)
	proposal := getProposal(t, store, id)
	proposal.Votes.SetInt64(999)
	proposal.Executed = true
	proposal = getProposal(t, store, id)
	assert.Equal(t, "0", proposal.Votes.String())
	assert.False(t, proposal.Executed)
}

func testRecordVote(t *testing.T, store governance.Store) {
	id := createProposal(t, store)
	require.NoError(
		t,
		store.RecordVote(id, testutil.Voter, big.NewInt(2_000_000), StartHeight),
	)
	require.NoError(
		t,
		store.RecordVote(id, testutil.Proposer, big.NewInt(3), StartHeight+1),
	)
	assert.Equal(t, "2000003", getProposal(t, store, id).Votes.String())
	voted, err := store.HasVoted(
		governance.VoteKey{ProposalID: id, Voter: testutil.Voter},
	)
	require.NoError(t, err)
	assert.True(t, voted)
	voted, err = store.HasVoted(
		governance.VoteKey{ProposalID: id, Voter: testutil.AdminIdentity},
	)
	require.NoError(t, err)
	assert.False(t, voted)
}

func testRecordVoteUnknown(t *testing.T, store governance.Store) {
	err := store.RecordVote(7, testutil.Voter, big.NewInt(1), StartHeight)
	require.ErrorIs(t, err, governance.ErrNotFound)
	voted, err := store.HasVoted(
		governance.VoteKey{ProposalID: 7, Voter: testutil.Voter},
	)
	require.NoError(t, err)
	assert.False(t, voted)
}

func testRecordVoteTwice(t *testing.T, store governance.Store) {
	id := createProposal(t, store)
	require.NoError(
		t,
		store.RecordVote(id, testutil.Voter, big.NewInt(10), StartHeight),
	)
	err := store.RecordVote(id, testutil.Voter, big.NewInt(10), StartHeight+5)
	require.ErrorIs(t, err, governance.ErrAlreadyVoted)
	assert.Equal(t, "10", getProposal(t, store, id).Votes.String())
	// The same voter may vote on another proposal
	other := createProposal(t, store)
	require.NoError(
		t,
		store.RecordVote(other, testutil.Voter, big.NewInt(10), StartHeight),
	)
}

func testRecordVoteWindow(t *testing.T, store governance.Store) {
	id := createProposal(t, store)
	// The end height itself is still open
	require.NoError(
		t,
		store.RecordVote(id, testutil.Voter, big.NewInt(1), testEndHeight),
	)
	err := store.RecordVote(id, testutil.Proposer, big.NewInt(1), testEndHeight+1)
	require.ErrorIs(t, err, governance.ErrVotingClosed)
	voted, err := store.HasVoted(
		governance.VoteKey{ProposalID: id, Voter: testutil.Proposer},
	)
	require.NoError(t, err)
	assert.False(t, voted)
	assert.Equal(t, "1", getProposal(t, store, id).Votes.String())
}

func testRecordZeroWeight(t *testing.T, store governance.Store) {
	id := createProposal(t, store)
	require.NoError(t, store.RecordVote(id, testutil.Voter, new(big.Int), StartHeight))
	assert.Equal(t, "0", getProposal(t, store, id).Votes.String())
	err := store.RecordVote(id, testutil.Voter, big.NewInt(5), StartHeight)
	require.ErrorIs(t, err, governance.ErrAlreadyVoted)
}

func testRecordLargeWeight(t *testing.T, store governance.Store) {
	id := createProposal(t, store)
	weight, ok := new(big.Int).SetString("340282366920938463463374607431768211456", 10)
	require.True(t, ok)
	require.NoError(t, store.RecordVote(id, testutil.Voter, weight, StartHeight))
	require.NoError(t, store.RecordVote(id, testutil.Proposer, weight, StartHeight))
	assert.Equal(
		t,
		"680564733841876926926749214863536422912",
		getProposal(t, store, id).Votes.String(),
	)
}

func testRecordNegativeWeight(t *testing.T, store governance.Store) {
	id := createProposal(t, store)
	err := store.RecordVote(id, testutil.Voter, big.NewInt(-1), StartHeight)
	require.ErrorIs(t, err, governance.ErrNegativeWeight)
	voted, err := store.HasVoted(
		governance.VoteKey{ProposalID: id, Voter: testutil.Voter},
	)
	require.NoError(t, err)
	assert.False(t, voted)
}

func testExecute(t *testing.T, store governance.Store) {
	id := createProposal(t, store)
	require.NoError(
		t,
		store.RecordVote(id, testutil.Voter, big.NewInt(2_000_000), StartHeight),
	)
	quorum := big.NewInt(1_000_000)
	require.NoError(t, store.Execute(id, 3000, quorum))
	assert.True(t, getProposal(t, store, id).Executed)
	err := store.Execute(id, 3001, quorum)
	require.ErrorIs(t, err, governance.ErrNotFound)
	assert.Contains(t, err.Error(), "already executed")
	// Voting is closed on an executed proposal
	err = store.RecordVote(id, testutil.Proposer, big.NewInt(1), 3001)
	require.ErrorIs(t, err, governance.ErrVotingClosed)
}

func testExecuteUnknown(t *testing.T, store governance.Store) {
	err := store.Execute(3, 3000, big.NewInt(0))
	require.ErrorIs(t, err, governance.ErrNotFound)
}

func testExecuteStillOpen(t *testing.T, store governance.Store) {
	id := createProposal(t, store)
	require.NoError(
		t,
		store.RecordVote(id, testutil.Voter, big.NewInt(2_000_000), StartHeight),
	)
	for _, height := range []uint64{StartHeight, testEndHeight} {
		err := store.Execute(id, height, big.NewInt(1_000_000))
		require.ErrorIs(t, err, governance.ErrVotingStillOpen)
	}
	assert.False(t, getProposal(t, store, id).Executed)
}

func testExecuteQuorumNotMet(t *testing.T, store governance.Store) {
	id := createProposal(t, store)
	require.NoError(
		t,
		store.RecordVote(id, testutil.Voter, big.NewInt(500_000), StartHeight),
	)
	err := store.Execute(id, 3000, big.NewInt(1_000_000))
	require.ErrorIs(t, err, governance.ErrQuorumNotMet)
	assert.False(t, getProposal(t, store, id).Executed)
	// Exactly meeting the quorum is enough
	require.NoError(t, store.Execute(id, 3000, big.NewInt(500_000)))
}

func testListProposals(t *testing.T, store governance.Store) {
	proposals, err := store.ListProposals()
	require.NoError(t, err)
	assert.Empty(t, proposals)
	for range 12 {
		createProposal(t, store)
	}
	require.NoError(
		t,
		store.RecordVote(11, testutil.Voter, big.NewInt(77), StartHeight),
	)
	proposals, err = store.ListProposals()
	require.NoError(t, err)
	require.Len(t, proposals, 12)
	for i, proposal := range proposals {
		assert.Equal(t, governance.ProposalID(i+1), proposal.ID)
	}
	assert.Equal(t, "77", proposals[10].Votes.String())
}

func testPaused(t *testing.T, store governance.Store) {
	paused, err := store.Paused()
	require.NoError(t, err)
	assert.False(t, paused)
	require.NoError(t, store.SetPaused(true))
	paused, err = store.Paused()
	require.NoError(t, err)
	assert.True(t, paused)
	require.NoError(t, store.SetPaused(false))
	paused, err = store.Paused()
	require.NoError(t, err)
	assert.False(t, paused)
}

func testVotingPeriod(t *testing.T, store governance.Store) {
	assert.Equal(t, uint64(VotingPeriod), store.VotingPeriod())
}

func testEndHeightSaturates(t *testing.T, store governance.Store) {
	id, err := store.CreateProposal(testutil.Proposer, "late", math.MaxUint64-1)
	require.NoError(t, err)
	proposal, err := store.GetProposal(id)
	require.NoError(t, err)
	require.NotNil(t, proposal)
	assert.Equal(t, uint64(math.MaxUint64), proposal.EndHeight)
	// The window is still open at the creation height
	require.NoError(t, store.RecordVote(id, testutil.Voter, big.NewInt(1), math.MaxUint64-1))
}
