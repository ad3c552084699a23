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

package badger

import (
	"fmt"
	"math/big"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/blinklabs-io/gridgov/database/types"
	"github.com/blinklabs-io/gridgov/governance"
	"github.com/blinklabs-io/gridgov/token"
)

var _ token.BalanceStore = (*Store)(nil)

// LoadBalances returns every stored token balance
func (s *Store) LoadBalances() (map[governance.Identity]*big.Int, error) {
	ret := make(map[governance.Identity]*big.Int)
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(types.BalanceKeyPrefix)
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         prefix,
		})
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			account := governance.Identity(item.KeyCopy(nil)[len(prefix):])
			amount := new(big.Int)
			if err := item.Value(func(val []byte) error {
				return decodeValue(val, amount)
			}); err != nil {
				return fmt.Errorf("failed to decode balance for %s: %w", account, err)
			}
			ret[account] = amount
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// SaveBalances writes the given balances in one transaction
func (s *Store) SaveBalances(balances map[governance.Identity]*big.Int) error {
	return s.update(func(txn *badger.Txn) error {
		return saveBalances(txn, balances)
	})
}

// LoadAllowances returns every stored token allowance
func (s *Store) LoadAllowances() (map[token.AllowanceKey]*big.Int, error) {
	ret := make(map[token.AllowanceKey]*big.Int)
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(types.AllowanceKeyPrefix)
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         prefix,
		})
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			owner, spender, err := types.SplitAllowanceKey(item.KeyCopy(nil))
			if err != nil {
				return err
			}
			amount := new(big.Int)
			if err := item.Value(func(val []byte) error {
				return decodeValue(val, amount)
			}); err != nil {
				return fmt.Errorf(
					"failed to decode allowance for %s from %s: %w",
					spender,
					owner,
					err,
				)
			}
			key := token.AllowanceKey{
				Owner:   governance.Identity(owner),
				Spender: governance.Identity(spender),
			}
			ret[key] = amount
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// SaveAllowances writes the given allowances and balances in one transaction
func (s *Store) SaveAllowances(
	allowances map[token.AllowanceKey]*big.Int,
	balances map[governance.Identity]*big.Int,
) error {
	return s.update(func(txn *badger.Txn) error {
		for key, amount := range allowances {
			if amount == nil {
				amount = new(big.Int)
			}
			dbKey := types.AllowanceKey(string(key.Owner), string(key.Spender))
			if err := setValue(txn, dbKey, amount); err != nil {
				return fmt.Errorf(
					"failed to save allowance for %s from %s: %w",
					key.Spender,
					key.Owner,
					err,
				)
			}
		}
		return saveBalances(txn, balances)
	})
}

func (s *Store) TokenPaused() (bool, error) {
	var ret bool
	err := s.db.View(func(txn *badger.Txn) error {
		return getState(txn, types.StateKeyTokenPaused, &ret)
	})
	return ret, err
}

func (s *Store) SetTokenPaused(paused bool) error {
	return s.update(func(txn *badger.Txn) error {
		if err := setValue(txn, types.StateKey(types.StateKeyTokenPaused), paused); err != nil {
			return fmt.Errorf("failed to update token pause flag: %w", err)
		}
		return nil
	})
}

func saveBalances(txn *badger.Txn, balances map[governance.Identity]*big.Int) error {
	for account, amount := range balances {
		if amount == nil {
			amount = new(big.Int)
		}
		if err := setValue(txn, types.BalanceKey(string(account)), amount); err != nil {
			return fmt.Errorf("failed to save balance for %s: %w", account, err)
		}
	}
	return nil
}
