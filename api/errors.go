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

package api

import (
	"errors"
	"strconv"

	"connectrpc.com/connect"

	"github.com/blinklabs-io/gridgov/governance"
	"github.com/blinklabs-io/gridgov/token"
)

// ResultCodeHeader carries the numeric result code of a rejected operation
const ResultCodeHeader = "Gridgov-Result-Code"

// toConnectError maps governance and token rule violations to Connect codes.
// Anything else is reported as an internal error.
func toConnectError(err error) error {
	var code connect.Code
	var resultCode uint32
	switch {
	case governance.IsDomainError(err):
		resultCode = governance.ErrorCode(err)
		switch {
		case errors.Is(err, governance.ErrUnauthorized):
			code = connect.CodePermissionDenied
		case errors.Is(err, governance.ErrNotFound):
			code = connect.CodeNotFound
		case errors.Is(err, governance.ErrAlreadyVoted):
			code = connect.CodeAlreadyExists
		case errors.Is(err, governance.ErrSystemPaused):
			code = connect.CodeUnavailable
		case errors.Is(err, governance.ErrInvalidIdentity):
			code = connect.CodeInvalidArgument
		default:
			code = connect.CodeFailedPrecondition
		}
	default:
		tokenCode, ok := token.ErrorCode(err)
		if !ok {
			return connect.NewError(connect.CodeInternal, err)
		}
		resultCode = tokenCode
		switch {
		case errors.Is(err, token.ErrUnauthorized):
			code = connect.CodePermissionDenied
		case errors.Is(err, token.ErrPaused):
			code = connect.CodeUnavailable
		case errors.Is(err, token.ErrMaxSupply):
			code = connect.CodeResourceExhausted
		case errors.Is(err, token.ErrInvalidAmount), errors.Is(err, token.ErrInvalidAccount):
			code = connect.CodeInvalidArgument
		default:
			code = connect.CodeFailedPrecondition
		}
	}
	connectErr := connect.NewError(code, err)
	connectErr.Meta().Set(
		ResultCodeHeader,
		strconv.FormatUint(uint64(resultCode), 10),
	)
	return connectErr
}

// ResultCode returns the numeric result code attached to an API error
func ResultCode(err error) (uint32, bool) {
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return 0, false
	}
	value := connectErr.Meta().Get(ResultCodeHeader)
	if value == "" {
		return 0, false
	}
	ret, parseErr := strconv.ParseUint(value, 10, 32)
	if parseErr != nil {
		return 0, false
	}
	return uint32(ret), true
}
