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

package badger_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gridgov/database/badger"
	"github.com/blinklabs-io/gridgov/governance"
	"github.com/blinklabs-io/gridgov/internal/test/storetest"
	tu "github.com/blinklabs-io/gridgov/internal/test/testutil"
	"github.com/blinklabs-io/gridgov/token"
)

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T, votingPeriod uint64) governance.Store {
		store, err := badger.New(badger.WithVotingPeriod(votingPeriod))
		require.NoError(t, err)
		return store
	})
}

func TestStorePersistence(t *testing.T) {
	dataDir := t.TempDir()
	store, err := badger.New(
		badger.WithDataDir(dataDir),
		badger.WithVotingPeriod(storetest.VotingPeriod),
	)
	require.NoError(t, err)
	hugeWeight, _ := new(big.Int).SetString("340282366920938463463374607431768211456", 10)
	id, err := store.CreateProposal(tu.Proposer, "persisted", storetest.StartHeight)
	require.NoError(t, err)
	require.NoError(t, store.RecordVote(id, tu.Voter, hugeWeight, storetest.StartHeight))
	require.NoError(t, store.SetPaused(true))
	require.NoError(t, store.Close())

	store, err = badger.New(
		badger.WithDataDir(dataDir),
		badger.WithVotingPeriod(storetest.VotingPeriod),
	)
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck
	proposal, err := store.GetProposal(id)
	require.NoError(t, err)
	require.NotNil(t, proposal)
	assert.Equal(t, "persisted", proposal.Description)
	assert.Equal(t, 0, proposal.Votes.Cmp(hugeWeight))
	voted, err := store.HasVoted(governance.VoteKey{ProposalID: id, Voter: tu.Voter})
	require.NoError(t, err)
	assert.True(t, voted)
	paused, err := store.Paused()
	require.NoError(t, err)
	assert.True(t, paused)
	nextID, err := store.CreateProposal(tu.Proposer, "next", storetest.StartHeight)
	require.NoError(t, err)
	assert.Equal(t, id+1, nextID)
}

func TestStoreMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	store, err := badger.New(badger.WithPromRegistry(reg))
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck
	id, err := store.CreateProposal(tu.Proposer, "metrics", storetest.StartHeight)
	require.NoError(t, err)
	err = store.RecordVote(id+1, tu.Voter, big.NewInt(1), storetest.StartHeight)
	require.ErrorIs(t, err, governance.ErrNotFound)
	expected := `
# HELP gridgov_database_badger_transactions_total total badger transactions by result
# TYPE gridgov_database_badger_transactions_total counter
gridgov_database_badger_transactions_total{result="commit"} 1
gridgov_database_badger_transactions_total{result="rejected"} 1
`
	require.NoError(t, testutil.GatherAndCompare(
		reg,
		strings.NewReader(expected),
		"gridgov_database_badger_transactions_total",
	))
	count, err := testutil.GatherAndCount(reg, "gridgov_database_badger_lsm_size_bytes")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBalanceStoreConformance(t *testing.T) {
	storetest.RunBalanceStore(t, func(t *testing.T) token.BalanceStore {
		store, err := badger.New()
		require.NoError(t, err)
		t.Cleanup(func() {
			store.Close() //nolint:errcheck
		})
		return store
	})
}

func TestZeroVotingPeriod(t *testing.T) {
	_, err := badger.New(badger.WithVotingPeriod(0))
	require.ErrorIs(t, err, governance.ErrInvalidConfig)
}
