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

// Package testutil provides shared test doubles and channel helpers
package testutil

import (
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/gridgov/governance"
)

const (
	AdminIdentity governance.Identity = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"
	Proposer      governance.Identity = "ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG"
	Voter         governance.Identity = "ST3NBRSFKX28FQ2ZJ1MAKX58HKHSDGNV5N7R21XCP"
)

// Balances is a settable TokenBalanceProvider
type Balances struct {
	balances map[governance.Identity]*big.Int
	mu       sync.RWMutex
}

func NewBalances() *Balances {
	return &Balances{
		balances: make(map[governance.Identity]*big.Int),
	}
}

func (b *Balances) Set(identity governance.Identity, amount int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[identity] = big.NewInt(amount)
}

func (b *Balances) BalanceOf(identity governance.Identity) *big.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if amount, ok := b.balances[identity]; ok {
		return new(big.Int).Set(amount)
	}
	return new(big.Int)
}

// RequireReceive waits for a value on the channel or fails the test
func RequireReceive[T any](
	t *testing.T,
	ch <-chan T,
	timeout time.Duration,
	msg string,
) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(timeout):
		t.Fatalf("timeout waiting for channel receive: %s", msg)
		var zero T
		return zero
	}
}

// RequireNoReceive fails the test if a value arrives within duration
func RequireNoReceive[T any](
	t *testing.T,
	ch <-chan T,
	duration time.Duration,
	msg string,
) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected value received on channel: %v: %s", v, msg)
	case <-time.After(duration):
	}
}
