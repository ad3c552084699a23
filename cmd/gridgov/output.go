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

package main

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/blinklabs-io/gridgov/governance"
	"github.com/blinklabs-io/gridgov/token"
)

const (
	exitCodeError  = 1
	exitCodeDomain = 2
)

type errorResult struct {
	Error string `json:"error"`
	Code  uint32 `json:"code"`
}

type proposalResult struct {
	Votes       string `json:"votes"`
	Description string `json:"description"`
	Proposer    string `json:"proposer"`
	ID          uint64 `json:"id"`
	EndHeight   uint64 `json:"endHeight"`
	Executed    bool   `json:"executed"`
}

func newProposalResult(p *governance.Proposal) proposalResult {
	return proposalResult{
		ID:          uint64(p.ID),
		Description: p.Description,
		Proposer:    string(p.Proposer),
		Votes:       p.Votes.String(),
		EndHeight:   p.EndHeight,
		Executed:    p.Executed,
	}
}

// printResult writes v as a single JSON line
func printResult(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

// exitWithError reports err and returns the process exit code. Rule
// violations are printed as a result line with their code.
func exitWithError(w io.Writer, err error) int {
	var code uint32
	isDomain := false
	if governance.IsDomainError(err) {
		code = governance.ErrorCode(err)
		isDomain = true
	} else if tokenCode, ok := token.ErrorCode(err); ok {
		code = tokenCode
		isDomain = true
	}
	if !isDomain {
		slog.Error(err.Error())
		return exitCodeError
	}
	if printErr := printResult(w, errorResult{Error: err.Error(), Code: code}); printErr != nil {
		slog.Error(printErr.Error())
		return exitCodeError
	}
	return exitCodeDomain
}
