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

package gormstore

import (
	"fmt"
	"math/big"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blinklabs-io/gridgov/database/models"
	"github.com/blinklabs-io/gridgov/database/types"
	"github.com/blinklabs-io/gridgov/governance"
	"github.com/blinklabs-io/gridgov/token"
)

var _ token.BalanceStore = (*Store)(nil)

// LoadBalances returns every stored token balance
func (s *Store) LoadBalances() (map[governance.Identity]*big.Int, error) {
	var tmpBalances []models.TokenBalance
	if result := s.db.Find(&tmpBalances); result.Error != nil {
		return nil, fmt.Errorf("failed to load balances: %w", result.Error)
	}
	ret := make(map[governance.Identity]*big.Int, len(tmpBalances))
	for _, tmpBalance := range tmpBalances {
		ret[governance.Identity(tmpBalance.Account)] = types.NewBigInt(
			tmpBalance.Amount.Int,
		).Int
	}
	return ret, nil
}

// SaveBalances writes the given balances in one transaction
func (s *Store) SaveBalances(balances map[governance.Identity]*big.Int) error {
	return s.transaction(func(tx *gorm.DB) error {
		return saveBalances(tx, balances)
	})
}

// LoadAllowances returns every stored token allowance
func (s *Store) LoadAllowances() (map[token.AllowanceKey]*big.Int, error) {
	var tmpAllowances []models.TokenAllowance
	if result := s.db.Find(&tmpAllowances); result.Error != nil {
		return nil, fmt.Errorf("failed to load allowances: %w", result.Error)
	}
	ret := make(map[token.AllowanceKey]*big.Int, len(tmpAllowances))
	for _, tmpAllowance := range tmpAllowances {
		key := token.AllowanceKey{
			Owner:   governance.Identity(tmpAllowance.Owner),
			Spender: governance.Identity(tmpAllowance.Spender),
		}
		ret[key] = types.NewBigInt(tmpAllowance.Amount.Int).Int
	}
	return ret, nil
}

// SaveAllowances writes the given allowances and balances in one transaction
func (s *Store) SaveAllowances(
	allowances map[token.AllowanceKey]*big.Int,
	balances map[governance.Identity]*big.Int,
) error {
	return s.transaction(func(tx *gorm.DB) error {
		onConflict := clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner"}, {Name: "spender"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount"}),
		}
		for key, amount := range allowances {
			tmpAllowance := &models.TokenAllowance{
				Owner:   string(key.Owner),
				Spender: string(key.Spender),
				Amount:  types.NewBigInt(amount),
			}
			if result := tx.Clauses(onConflict).Create(tmpAllowance); result.Error != nil {
				return fmt.Errorf(
					"failed to save allowance for %s from %s: %w",
					key.Spender,
					key.Owner,
					result.Error,
				)
			}
		}
		return saveBalances(tx, balances)
	})
}

func (s *Store) TokenPaused() (bool, error) {
	state, err := getState(s.db)
	if err != nil {
		return false, err
	}
	return state.TokenPaused, nil
}

func (s *Store) SetTokenPaused(paused bool) error {
	return s.transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.GovernanceState{ID: models.GovernanceStateID}).
			Update("token_paused", paused)
		if result.Error != nil {
			return fmt.Errorf("failed to update token pause flag: %w", result.Error)
		}
		return nil
	})
}

func saveBalances(tx *gorm.DB, balances map[governance.Identity]*big.Int) error {
	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount"}),
	}
	for account, amount := range balances {
		tmpBalance := &models.TokenBalance{
			Account: string(account),
			Amount:  types.NewBigInt(amount),
		}
		if result := tx.Clauses(onConflict).Create(tmpBalance); result.Error != nil {
			return fmt.Errorf("failed to save balance for %s: %w", account, result.Error)
		}
	}
	return nil
}
