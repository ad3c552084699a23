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
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// HeightTick is sent to subscribers when the height changes
type HeightTick struct {
	Start  time.Time
	Height uint64
}

// SlotClockConfig holds configuration for the SlotClock
type SlotClockConfig struct {
	Logger *slog.Logger
	// SystemStart is the wall time at which StartHeight begins
	SystemStart time.Time
	// SlotLength is the wall time covered by one height
	SlotLength time.Duration
	// StartHeight is the height at SystemStart
	StartHeight uint64
}

// SlotClock derives the logical height from wall time. Before SystemStart
// the height is StartHeight.
type SlotClock struct {
	config      SlotClockConfig
	subscribers []chan HeightTick
	mu          sync.Mutex
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	running     bool

	// Allows tests to inject a time source
	nowFunc func() time.Time
}

func NewSlotClock(config SlotClockConfig) (*SlotClock, error) {
	if config.SlotLength <= 0 {
		return nil, errors.New("slot length must be positive")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &SlotClock{
		config:  config,
		nowFunc: time.Now,
	}, nil
}

func (sc *SlotClock) CurrentHeight() uint64 {
	return sc.heightAt(sc.nowFunc())
}

// HeightStart returns the wall time at which the given height begins
func (sc *SlotClock) HeightStart(height uint64) time.Time {
	if height <= sc.config.StartHeight {
		return sc.config.SystemStart
	}
	offset := time.Duration(height-sc.config.StartHeight) * sc.config.SlotLength //nolint:gosec
	return sc.config.SystemStart.Add(offset)
}

func (sc *SlotClock) heightAt(now time.Time) uint64 {
	if now.Before(sc.config.SystemStart) {
		return sc.config.StartHeight
	}
	elapsed := now.Sub(sc.config.SystemStart)
	return sc.config.StartHeight + uint64(elapsed/sc.config.SlotLength) //nolint:gosec
}

// Start runs the tick loop until Stop is called or ctx is done
func (sc *SlotClock) Start(ctx context.Context) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.running {
		return
	}
	sc.running = true
	ctx, sc.cancel = context.WithCancel(ctx)
	sc.wg.Add(1)
	go sc.run(ctx)
}

// Stop halts the tick loop and closes all subscriber channels
func (sc *SlotClock) Stop() {
	sc.mu.Lock()
	if !sc.running {
		sc.mu.Unlock()
		return
	}
	sc.running = false
	sc.cancel()
	sc.mu.Unlock()
	sc.wg.Wait()
	sc.mu.Lock()
	for _, ch := range sc.subscribers {
		close(ch)
	}
	sc.subscribers = nil
	sc.mu.Unlock()
}

// Subscribe returns a channel receiving a HeightTick at each height
// boundary. Ticks are dropped for slow subscribers.
func (sc *SlotClock) Subscribe() <-chan HeightTick {
	ch := make(chan HeightTick, 1)
	sc.mu.Lock()
	sc.subscribers = append(sc.subscribers, ch)
	sc.mu.Unlock()
	return ch
}

func (sc *SlotClock) run(ctx context.Context) {
	defer sc.wg.Done()
	logger := sc.config.Logger.With("component", "clock")
	for {
		now := sc.nowFunc()
		next := sc.heightAt(now) + 1
		nextStart := sc.HeightStart(next)
		timer := time.NewTimer(nextStart.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		tick := HeightTick{Height: next, Start: nextStart}
		logger.Debug("height tick", "height", next)
		sc.mu.Lock()
		for _, ch := range sc.subscribers {
			select {
			case ch <- tick:
			default:
			}
		}
		sc.mu.Unlock()
	}
}
