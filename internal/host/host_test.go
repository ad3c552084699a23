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

package host_test

import (
	"context"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blinklabs-io/gridgov/governance"
	"github.com/blinklabs-io/gridgov/internal/config"
	"github.com/blinklabs-io/gridgov/internal/host"
	tu "github.com/blinklabs-io/gridgov/internal/test/testutil"
)

func testConfig(storage string, dataDir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Admin = string(tu.AdminIdentity)
	cfg.Storage = storage
	cfg.DatabasePath = dataDir
	cfg.MetricsPort = 0
	cfg.ApiPort = 0
	return cfg
}

func TestHostGovernanceFlow(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()
	h, err := host.New(ctx, testConfig("memory", ""), nil, host.WithHeight(1000))
	require.NoError(t, err)
	defer h.Close(ctx) //nolint:errcheck

	require.NoError(t, h.Ledger().Mint(tu.AdminIdentity, tu.Voter, big.NewInt(2_000_000)))
	id, err := h.Engine().CreateProposal(tu.Proposer, "Upgrade grid infrastructure")
	require.NoError(t, err)
	require.NoError(t, h.Engine().CastVote(tu.Voter, id))
	proposal, err := h.Engine().GetProposal(id)
	require.NoError(t, err)
	assert.Equal(t, "2000000", proposal.Votes.String())
	assert.Equal(t, uint64(2440), proposal.EndHeight)
	assert.Equal(t, uint64(1000), h.Clock().CurrentHeight())

	count, err := testutil.GatherAndCount(
		h.PromRegistry(),
		"gridgov_governance_votes_cast_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.NoError(t, h.Close(ctx))
}

func TestHostPersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig("sqlite", t.TempDir())

	h, err := host.New(ctx, cfg, nil, host.WithHeight(1000))
	require.NoError(t, err)
	require.NoError(t, h.Ledger().Mint(tu.AdminIdentity, tu.Voter, big.NewInt(2_000_000)))
	id, err := h.Engine().CreateProposal(tu.Proposer, "persisted")
	require.NoError(t, err)
	require.NoError(t, h.Engine().CastVote(tu.Voter, id))
	_, err = h.Engine().SetPaused(tu.AdminIdentity, true)
	require.NoError(t, err)
	require.NoError(t, h.Close(ctx))

	h, err = host.New(ctx, cfg, nil, host.WithHeight(3000))
	require.NoError(t, err)
	defer h.Close(ctx) //nolint:errcheck
	assert.True(t, h.Engine().Paused())
	assert.Equal(t, "2000000", h.Ledger().BalanceOf(tu.Voter).String())
	err = h.Engine().ExecuteProposal(tu.Voter, id)
	require.ErrorIs(t, err, governance.ErrSystemPaused)
	_, err = h.Engine().SetPaused(tu.AdminIdentity, false)
	require.NoError(t, err)
	require.NoError(t, h.Engine().ExecuteProposal(tu.Voter, id))
}

func TestHostInvalidConfig(t *testing.T) {
	cfg := testConfig("memory", "")
	cfg.Admin = ""
	_, err := host.New(context.Background(), cfg, nil)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	_, err = host.New(context.Background(), nil, nil)
	require.Error(t, err)
}

func TestHostServe(t *testing.T) {
	defer goleak.VerifyNone(t)
	cfg := testConfig("memory", "")
	cfg.Clock.StartHeight = 500
	cfg.Clock.SlotLength = 10 * time.Millisecond
	h, err := host.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, h.Clock().CurrentHeight(), uint64(500))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, h.Serve(ctx))
	require.NoError(t, h.Close(context.Background()))
	assert.Greater(t, h.Clock().CurrentHeight(), uint64(500))
	expected := `
# HELP gridgov_governance_paused whether governance is paused (0 or 1)
# TYPE gridgov_governance_paused gauge
gridgov_governance_paused 0
`
	require.NoError(t, testutil.GatherAndCompare(
		h.PromRegistry(),
		strings.NewReader(expected),
		"gridgov_governance_paused",
	))
}

func TestHostServeApiListenFailure(t *testing.T) {
	defer goleak.VerifyNone(t)
	cfg := testConfig("memory", "")
	cfg.BindAddr = "256.0.0.1"
	cfg.ApiPort = 9090
	h, err := host.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.ErrorContains(t, h.Serve(ctx), "failed to listen")
	require.NoError(t, h.Close(context.Background()))
}

func TestTrace(t *testing.T) {
	h, err := host.New(context.Background(), testConfig("memory", ""), nil, host.WithHeight(0))
	require.NoError(t, err)
	defer h.Close(context.Background()) //nolint:errcheck
	called := false
	err = h.Trace(context.Background(), "governance.test", func(ctx context.Context) error {
		called = true
		require.NotNil(t, ctx)
		return governance.ErrQuorumNotMet
	})
	require.ErrorIs(t, err, governance.ErrQuorumNotMet)
	assert.True(t, called)
}
