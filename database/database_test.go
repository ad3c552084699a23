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

package database_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gridgov/database"
	"github.com/blinklabs-io/gridgov/governance"
	tu "github.com/blinklabs-io/gridgov/internal/test/testutil"
)

func TestStorageNames(t *testing.T) {
	assert.Equal(
		t,
		[]string{"badger", "memory", "mysql", "postgres", "sqlite"},
		database.StorageNames(),
	)
}

func TestOpenEachStorage(t *testing.T) {
	embedded := []string{
		database.StorageMemory,
		database.StorageSqlite,
		database.StorageBadger,
	}
	for _, storage := range embedded {
		t.Run(storage, func(t *testing.T) {
			db, err := database.New(&database.Config{
				Storage:      storage,
				VotingPeriod: 10,
			})
			require.NoError(t, err)
			defer db.Close() //nolint:errcheck
			assert.Equal(t, storage, db.Storage())
			id, err := db.Store().CreateProposal(tu.Proposer, "test", 100)
			require.NoError(t, err)
			proposal, err := db.Store().GetProposal(id)
			require.NoError(t, err)
			require.NotNil(t, proposal)
			assert.Equal(t, uint64(110), proposal.EndHeight)
			if storage == database.StorageMemory {
				assert.Nil(t, db.Balances())
				return
			}
			require.NotNil(t, db.Balances())
			require.NoError(t, db.Balances().SaveBalances(
				map[governance.Identity]*big.Int{tu.Voter: big.NewInt(5)},
			))
			balances, err := db.Balances().LoadBalances()
			require.NoError(t, err)
			assert.Equal(t, "5", balances[tu.Voter].String())
		})
	}
}

func TestZeroVotingPeriod(t *testing.T) {
	embedded := []string{
		database.StorageMemory,
		database.StorageSqlite,
		database.StorageBadger,
	}
	for _, storage := range embedded {
		_, err := database.New(&database.Config{Storage: storage})
		require.ErrorIs(t, err, governance.ErrInvalidConfig, storage)
	}
}

func TestStoreReportsVotingPeriod(t *testing.T) {
	db, err := database.New(&database.Config{
		Storage:      database.StorageSqlite,
		VotingPeriod: 720,
	})
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck
	assert.Equal(t, uint64(720), db.Store().VotingPeriod())
}

func TestUnknownStorage(t *testing.T) {
	_, err := database.New(&database.Config{Storage: "oracle"})
	require.ErrorIs(t, err, database.ErrUnknownStorage)
	_, err = database.New(nil)
	require.Error(t, err)
}
