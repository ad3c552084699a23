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

package models

import "github.com/blinklabs-io/gridgov/database/types"

// TokenAllowance is the amount Spender may still move out of Owner's balance
type TokenAllowance struct {
	Owner   string       `gorm:"primaryKey;size:128"`
	Spender string       `gorm:"primaryKey;size:128"`
	Amount  types.BigInt `gorm:"not null"`
}

// TableName returns the table name
func (TokenAllowance) TableName() string {
	return "token_allowance"
}
