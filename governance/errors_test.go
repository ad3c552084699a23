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
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	testDefs := []struct {
		err  error
		code uint32
		kind string
	}{
		{err: nil, code: CodeOK, kind: ""},
		{err: ErrUnauthorized, code: 100, kind: "unauthorized"},
		{err: NotFoundError(5), code: 101, kind: "not_found"},
		{err: ErrQuorumNotMet, code: 101, kind: "quorum_not_met"},
		{err: ErrAlreadyVoted, code: 102, kind: "already_voted"},
		{err: ErrVotingClosed, code: 103, kind: "voting_closed"},
		{err: ErrVotingStillOpen, code: 103, kind: "voting_still_open"},
		{err: fmt.Errorf("wrapped: %w", ErrSystemPaused), code: 104, kind: "system_paused"},
		{err: Identity(strings.Repeat("x", 200)).Validate(), code: 105, kind: "invalid_identity"},
		{err: errors.New("disk on fire"), code: CodeInternal, kind: "internal"},
	}
	for _, testDef := range testDefs {
		assert.Equal(t, testDef.code, ErrorCode(testDef.err), "err=%v", testDef.err)
		assert.Equal(t, testDef.kind, ErrorKind(testDef.err), "err=%v", testDef.err)
	}
	assert.True(t, IsDomainError(ErrAlreadyVoted))
	assert.False(t, IsDomainError(errors.New("io")))
	assert.False(t, IsDomainError(nil))
}

func TestIdentityValidate(t *testing.T) {
	assert.NoError(t, Identity("").Validate())
	assert.NoError(t, Identity(strings.Repeat("a", MaxIdentityLength)).Validate())
	assert.ErrorIs(
		t,
		Identity(strings.Repeat("a", MaxIdentityLength+1)).Validate(),
		ErrInvalidIdentity,
	)
}

func TestNewProposalEndHeightSaturates(t *testing.T) {
	assert.Equal(t, uint64(2440), NewProposal(1, "p", "d", 1000, 1440).EndHeight)
	assert.Equal(
		t,
		uint64(math.MaxUint64),
		NewProposal(1, "p", "d", math.MaxUint64-10, 1440).EndHeight,
	)
	assert.Equal(
		t,
		uint64(math.MaxUint64),
		NewProposal(1, "p", "d", math.MaxUint64-1440, 1440).EndHeight,
	)
}
