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

package types

import (
	"encoding/binary"
	"fmt"
	"slices"
)

const (
	ProposalKeyPrefix  = "gp"
	VoteKeyPrefix      = "gv"
	StateKeyPrefix     = "gs"
	BalanceKeyPrefix   = "tb"
	AllowanceKeyPrefix = "ta"

	StateKeyLastProposalID = "last_proposal_id"
	StateKeyPaused         = "paused"
	StateKeyTokenPaused    = "token_paused"
)

func KeyUint64ToBytes(input uint64) []byte {
	ret := make([]byte, 8)
	binary.BigEndian.PutUint64(ret, input)
	return ret
}

func KeyBytesToUint64(input []byte) uint64 {
	return binary.BigEndian.Uint64(input)
}

// ProposalKey returns the key for a proposal. Keys sort in id order.
func ProposalKey(id uint64) []byte {
	return slices.Concat(
		[]byte(ProposalKeyPrefix),
		KeyUint64ToBytes(id),
	)
}

// VoteKey returns the key for the vote record of voter on a proposal
func VoteKey(proposalID uint64, voter string) []byte {
	return slices.Concat(
		[]byte(VoteKeyPrefix),
		KeyUint64ToBytes(proposalID),
		[]byte(voter),
	)
}

// StateKey returns the key for a named governance scalar
func StateKey(name string) []byte {
	return slices.Concat(
		[]byte(StateKeyPrefix),
		[]byte(name),
	)
}

// AllowanceKey returns the key for the allowance owner granted to spender.
// The owner is length prefixed so that keys split unambiguously.
func AllowanceKey(owner string, spender string) []byte {
	return slices.Concat(
		[]byte(AllowanceKeyPrefix),
		KeyUint64ToBytes(uint64(len(owner))),
		[]byte(owner),
		[]byte(spender),
	)
}

// SplitAllowanceKey returns the owner and spender encoded in an allowance key
func SplitAllowanceKey(key []byte) (owner string, spender string, err error) {
	rest := key[len(AllowanceKeyPrefix):]
	if len(rest) < 8 {
		return "", "", fmt.Errorf("allowance key too short: %d bytes", len(key))
	}
	ownerLen := KeyBytesToUint64(rest[:8])
	rest = rest[8:]
	if ownerLen > uint64(len(rest)) {
		return "", "", fmt.Errorf("allowance key owner length %d out of range", ownerLen)
	}
	return string(rest[:ownerLen]), string(rest[ownerLen:]), nil
}

// BalanceKey returns the key for the token balance of an account
func BalanceKey(account string) []byte {
	return slices.Concat(
		[]byte(BalanceKeyPrefix),
		[]byte(account),
	)
}
