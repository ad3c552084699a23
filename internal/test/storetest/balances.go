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

package storetest

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gridgov/governance"
	"github.com/blinklabs-io/gridgov/internal/test/testutil"
	"github.com/blinklabs-io/gridgov/token"
)

// BalanceFactory returns a fresh, empty balance store. The suite does not
// close it.
type BalanceFactory func(t *testing.T) token.BalanceStore

// RunBalanceStore runs the conformance suite against balance stores built by
// factory
func RunBalanceStore(t *testing.T, factory BalanceFactory) {
	testDefs := []struct {
		name string
		fn   func(*testing.T, token.BalanceStore)
	}{
		{"SaveBalances", testSaveBalances},
		{"SaveAllowances", testSaveAllowances},
		{"AllowanceKeys", testAllowanceKeys},
		{"TokenPaused", testTokenPaused},
		{"LedgerReload", testLedgerReload},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			testDef.fn(t, factory(t))
		})
	}
}

func testSaveBalances(t *testing.T, store token.BalanceStore) {
	require.NoError(t, store.SaveBalances(map[governance.Identity]*big.Int{
		testutil.Voter:    big.NewInt(1_000_000),
		testutil.Proposer: big.NewInt(0),
	}))
	require.NoError(t, store.SaveBalances(map[governance.Identity]*big.Int{
		testutil.Voter: big.NewInt(750_000),
	}))
	balances, err := store.LoadBalances()
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, "750000", balances[testutil.Voter].String())
	assert.Equal(t, "0", balances[testutil.Proposer].String())
}

func testSaveAllowances(t *testing.T, store token.BalanceStore) {
	key := token.AllowanceKey{Owner: testutil.Voter, Spender: testutil.Proposer}
	require.NoError(t, store.SaveAllowances(
		map[token.AllowanceKey]*big.Int{key: big.NewInt(300)},
		nil,
	))
	require.NoError(t, store.SaveAllowances(
		map[token.AllowanceKey]*big.Int{key: big.NewInt(100)},
		map[governance.Identity]*big.Int{
			testutil.Voter:         big.NewInt(800),
			testutil.AdminIdentity: big.NewInt(200),
		},
	))
	allowances, err := store.LoadAllowances()
	require.NoError(t, err)
	require.Len(t, allowances, 1)
	assert.Equal(t, "100", allowances[key].String())
	balances, err := store.LoadBalances()
	require.NoError(t, err)
	assert.Equal(t, "800", balances[testutil.Voter].String())
	assert.Equal(t, "200", balances[testutil.AdminIdentity].String())
}

func testAllowanceKeys(t *testing.T, store token.BalanceStore) {
	// Concatenating owner and spender gives the same string for both keys
	key1 := token.AllowanceKey{Owner: "ab", Spender: "c"}
	key2 := token.AllowanceKey{Owner: "a", Spender: "bc"}
	require.NoError(t, store.SaveAllowances(
		map[token.AllowanceKey]*big.Int{
			key1: big.NewInt(1),
			key2: big.NewInt(2),
		},
		nil,
	))
	allowances, err := store.LoadAllowances()
	require.NoError(t, err)
	require.Len(t, allowances, 2)
	assert.Equal(t, "1", allowances[key1].String())
	assert.Equal(t, "2", allowances[key2].String())
}

func testTokenPaused(t *testing.T, store token.BalanceStore) {
	paused, err := store.TokenPaused()
	require.NoError(t, err)
	assert.False(t, paused)
	require.NoError(t, store.SetTokenPaused(true))
	paused, err = store.TokenPaused()
	require.NoError(t, err)
	assert.True(t, paused)
}

func testLedgerReload(t *testing.T, store token.BalanceStore) {
	ledger, err := token.NewLedger(
		testutil.AdminIdentity,
		token.WithBalanceStore(store),
	)
	require.NoError(t, err)
	require.NoError(t, ledger.Mint(testutil.AdminIdentity, testutil.Voter, big.NewInt(1000)))
	require.NoError(t, ledger.Approve(testutil.Voter, testutil.Proposer, big.NewInt(300)))
	require.NoError(t, ledger.TransferFrom(
		testutil.Proposer,
		testutil.Voter,
		testutil.AdminIdentity,
		big.NewInt(200),
	))
	require.NoError(t, ledger.SetPaused(testutil.AdminIdentity, true))

	reloaded, err := token.NewLedger(
		testutil.AdminIdentity,
		token.WithBalanceStore(store),
	)
	require.NoError(t, err)
	assert.True(t, reloaded.Paused())
	assert.Equal(t, "800", reloaded.BalanceOf(testutil.Voter).String())
	assert.Equal(t, "200", reloaded.BalanceOf(testutil.AdminIdentity).String())
	assert.Equal(
		t,
		"100",
		reloaded.Allowance(testutil.Voter, testutil.Proposer).String(),
	)
	assert.Equal(t, "1000", reloaded.TotalSupply().String())
}
