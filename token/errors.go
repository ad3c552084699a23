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

package token

import "errors"

// Result codes reported for token ledger errors
const (
	CodeUnauthorized          uint32 = 100
	CodeInsufficientBalance   uint32 = 101
	CodeInsufficientAllowance uint32 = 102
	CodeMaxSupply             uint32 = 103
	CodePaused                uint32 = 104
	CodeInvalidAmount         uint32 = 105
	CodeInvalidAccount        uint32 = 106
)

// ErrorCode maps a ledger error to its numeric result code. It returns 0 for
// nil and ok is false for errors that are not ledger rule violations.
func ErrorCode(err error) (code uint32, ok bool) {
	switch {
	case err == nil:
		return 0, true
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized, true
	case errors.Is(err, ErrInsufficientBalance):
		return CodeInsufficientBalance, true
	case errors.Is(err, ErrInsufficientAllowance):
		return CodeInsufficientAllowance, true
	case errors.Is(err, ErrMaxSupply):
		return CodeMaxSupply, true
	case errors.Is(err, ErrPaused):
		return CodePaused, true
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount, true
	case errors.Is(err, ErrInvalidAccount):
		return CodeInvalidAccount, true
	default:
		return 0, false
	}
}
