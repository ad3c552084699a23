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

package sqlite_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gridgov/database/sqlite"
	"github.com/blinklabs-io/gridgov/governance"
	"github.com/blinklabs-io/gridgov/internal/test/storetest"
	tu "github.com/blinklabs-io/gridgov/internal/test/testutil"
	"github.com/blinklabs-io/gridgov/token"
)

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T, votingPeriod uint64) governance.Store {
		store, err := sqlite.New(sqlite.WithVotingPeriod(votingPeriod))
		require.NoError(t, err)
		return store
	})
}

func TestStorePersistence(t *testing.T) {
	dataDir := t.TempDir()
	store, err := sqlite.New(
		sqlite.WithDataDir(dataDir),
		sqlite.WithVotingPeriod(storetest.VotingPeriod),
	)
	require.NoError(t, err)
	id, err := store.CreateProposal(tu.Proposer, "persisted", storetest.StartHeight)
	require.NoError(t, err)
	require.NoError(t, store.RecordVote(id, tu.Voter, big.NewInt(2_000_000), storetest.StartHeight))
	require.NoError(t, store.SetPaused(true))
	require.NoError(t, store.Close())

	store, err = sqlite.New(
		sqlite.WithDataDir(dataDir),
		sqlite.WithVotingPeriod(storetest.VotingPeriod),
	)
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck
	proposal, err := store.GetProposal(id)
	require.NoError(t, err)
	require.NotNil(t, proposal)
	assert.Equal(t, "persisted", proposal.Description)
	assert.Equal(t, "2000000", proposal.Votes.String())
	voted, err := store.HasVoted(governance.VoteKey{ProposalID: id, Voter: tu.Voter})
	require.NoError(t, err)
	assert.True(t, voted)
	paused, err := store.Paused()
	require.NoError(t, err)
	assert.True(t, paused)
	// The id sequence continues after a restart
	nextID, err := store.CreateProposal(tu.Proposer, "next", storetest.StartHeight)
	require.NoError(t, err)
	assert.Equal(t, id+1, nextID)
}

func TestBalanceStore(t *testing.T) {
	store, err := sqlite.New()
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck
	ledger, err := token.NewLedger(tu.AdminIdentity, token.WithBalanceStore(store))
	require.NoError(t, err)
	require.NoError(t, ledger.Mint(tu.AdminIdentity, tu.Voter, big.NewInt(1_500_000)))
	require.NoError(t, ledger.Transfer(tu.Voter, tu.Proposer, big.NewInt(500_000)))

	balances, err := store.LoadBalances()
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, "1000000", balances[tu.Voter].String())
	assert.Equal(t, "500000", balances[tu.Proposer].String())

	// A second ledger on the same store starts from the stored balances
	ledger2, err := token.NewLedger(tu.AdminIdentity, token.WithBalanceStore(store))
	require.NoError(t, err)
	assert.Equal(t, "1000000", ledger2.BalanceOf(tu.Voter).String())
	assert.Equal(t, "1500000", ledger2.TotalSupply().String())
}

func TestBalanceStoreConformance(t *testing.T) {
	storetest.RunBalanceStore(t, func(t *testing.T) token.BalanceStore {
		store, err := sqlite.New()
		require.NoError(t, err)
		t.Cleanup(func() {
			store.Close() //nolint:errcheck
		})
		return store
	})
}

func TestZeroVotingPeriod(t *testing.T) {
	_, err := sqlite.New(sqlite.WithVotingPeriod(0))
	require.ErrorIs(t, err, governance.ErrInvalidConfig)
}

func TestStoreMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	store, err := sqlite.New(sqlite.WithPromRegistry(reg))
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck
	id, err := store.CreateProposal(tu.Proposer, "metrics", storetest.StartHeight)
	require.NoError(t, err)
	err = store.Execute(id, storetest.StartHeight, big.NewInt(1))
	require.ErrorIs(t, err, governance.ErrVotingStillOpen)
	expected := `
# HELP gridgov_database_sqlite_transactions_total total sqlite transactions by result
# TYPE gridgov_database_sqlite_transactions_total counter
gridgov_database_sqlite_transactions_total{result="commit"} 1
gridgov_database_sqlite_transactions_total{result="rejected"} 1
`
	require.NoError(t, testutil.GatherAndCompare(
		reg,
		strings.NewReader(expected),
		"gridgov_database_sqlite_transactions_total",
	))
}
