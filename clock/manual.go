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

package clock

import (
	"errors"
	"fmt"
	"sync"
)

var ErrHeightDecrease = errors.New("height must not decrease")

// ManualClock is a logical clock that only moves when told to
type ManualClock struct {
	mu     sync.RWMutex
	height uint64
}

func NewManualClock(height uint64) *ManualClock {
	return &ManualClock{height: height}
}

func (c *ManualClock) CurrentHeight() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.height
}

// Set moves the clock to the given height. Moving backwards is rejected.
func (c *ManualClock) Set(height uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if height < c.height {
		return fmt.Errorf(
			"%w: current %d, requested %d",
			ErrHeightDecrease,
			c.height,
			height,
		)
	}
	c.height = height
	return nil
}

// Advance moves the clock forward by delta and returns the new height
func (c *ManualClock) Advance(delta uint64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.height += delta
	return c.height
}
