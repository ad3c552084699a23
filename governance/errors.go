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

import "errors"

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrSystemPaused    = errors.New("system paused")
	ErrNotFound        = errors.New("proposal not found")
	ErrAlreadyVoted    = errors.New("already voted")
	ErrVotingClosed    = errors.New("voting closed")
	ErrVotingStillOpen = errors.New("voting still open")
	ErrQuorumNotMet    = errors.New("quorum not met")
	ErrInvalidIdentity = errors.New("invalid identity")

	ErrInvalidConfig = errors.New("invalid governance config")
)

// Numeric result codes reported to hosts
const (
	CodeOK           uint32 = 0
	CodeInternal     uint32 = 1
	CodeUnauthorized uint32 = 100
	CodeNotFound     uint32 = 101
	CodeAlreadyVoted uint32 = 102
	CodeVotingWindow uint32 = 103
	CodePaused       uint32 = 104
	// Identities longer than MaxIdentityLength
	CodeInvalidIdentity uint32 = 105
)

// ErrorCode maps an error returned by the engine to its numeric result code.
// Quorum failures share the not-found code, and both voting window errors
// share a single code.
func ErrorCode(err error) uint32 {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrQuorumNotMet):
		return CodeNotFound
	case errors.Is(err, ErrAlreadyVoted):
		return CodeAlreadyVoted
	case errors.Is(err, ErrVotingClosed), errors.Is(err, ErrVotingStillOpen):
		return CodeVotingWindow
	case errors.Is(err, ErrSystemPaused):
		return CodePaused
	case errors.Is(err, ErrInvalidIdentity):
		return CodeInvalidIdentity
	default:
		return CodeInternal
	}
}

// ErrorKind returns a short label for the domain error kind, used for
// metric labels and CLI output
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrSystemPaused):
		return "system_paused"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyVoted):
		return "already_voted"
	case errors.Is(err, ErrVotingClosed):
		return "voting_closed"
	case errors.Is(err, ErrVotingStillOpen):
		return "voting_still_open"
	case errors.Is(err, ErrQuorumNotMet):
		return "quorum_not_met"
	case errors.Is(err, ErrInvalidIdentity):
		return "invalid_identity"
	default:
		return "internal"
	}
}

// IsDomainError returns true if err is one of the governance rule
// violations rather than a storage or other internal failure
func IsDomainError(err error) bool {
	kind := ErrorKind(err)
	return kind != "" && kind != "internal"
}
