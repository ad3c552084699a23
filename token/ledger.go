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

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"

	"github.com/blinklabs-io/gridgov/governance"
)

const DefaultMaxSupply = 1_000_000_000

var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrPaused                = errors.New("token transfers paused")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrMaxSupply             = errors.New("max supply exceeded")
	ErrInvalidAmount         = errors.New("amount must not be negative")
	ErrInvalidAccount        = errors.New("invalid account")
)

// AllowanceKey identifies the amount Spender may move out of Owner's balance
type AllowanceKey struct {
	Owner   governance.Identity
	Spender governance.Identity
}

// BalanceStore persists the ledger state. Each Save call is applied
// atomically.
type BalanceStore interface {
	LoadBalances() (map[governance.Identity]*big.Int, error)
	SaveBalances(balances map[governance.Identity]*big.Int) error
	LoadAllowances() (map[AllowanceKey]*big.Int, error)
	// SaveAllowances writes allowances and balances in one transaction.
	// Either map may be empty.
	SaveAllowances(
		allowances map[AllowanceKey]*big.Int,
		balances map[governance.Identity]*big.Int,
	) error
	TokenPaused() (bool, error)
	SetTokenPaused(paused bool) error
}

// Ledger is a minimal fungible token ledger. It serves as the balance
// provider for governance vote weights.
type Ledger struct {
	balances    map[governance.Identity]*big.Int
	allowances  map[AllowanceKey]*big.Int
	store       BalanceStore
	logger      *slog.Logger
	maxSupply   *big.Int
	totalSupply *big.Int
	admin       governance.Identity
	mutex       sync.RWMutex
	paused      bool
}

type LedgerOptionFunc func(*Ledger)

// WithBalanceStore loads balances from store and writes every change back
func WithBalanceStore(store BalanceStore) LedgerOptionFunc {
	return func(l *Ledger) {
		l.store = store
	}
}

func WithLogger(logger *slog.Logger) LedgerOptionFunc {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// WithMaxSupply overrides DefaultMaxSupply
func WithMaxSupply(maxSupply *big.Int) LedgerOptionFunc {
	return func(l *Ledger) {
		l.maxSupply = new(big.Int).Set(maxSupply)
	}
}

// NewLedger creates a ledger administered by admin
func NewLedger(
	admin governance.Identity,
	opts ...LedgerOptionFunc,
) (*Ledger, error) {
	l := &Ledger{
		admin:       admin,
		balances:    make(map[governance.Identity]*big.Int),
		allowances:  make(map[AllowanceKey]*big.Int),
		maxSupply:   big.NewInt(DefaultMaxSupply),
		totalSupply: new(big.Int),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if l.store != nil {
		balances, err := l.store.LoadBalances()
		if err != nil {
			return nil, fmt.Errorf("load balances: %w", err)
		}
		for id, amount := range balances {
			l.balances[id] = new(big.Int).Set(amount)
			l.totalSupply.Add(l.totalSupply, amount)
		}
		allowances, err := l.store.LoadAllowances()
		if err != nil {
			return nil, fmt.Errorf("load allowances: %w", err)
		}
		for key, amount := range allowances {
			l.allowances[key] = new(big.Int).Set(amount)
		}
		paused, err := l.store.TokenPaused()
		if err != nil {
			return nil, fmt.Errorf("load pause flag: %w", err)
		}
		l.paused = paused
	}
	return l, nil
}

// BalanceOf returns a copy of the balance of identity, zero if unknown
func (l *Ledger) BalanceOf(identity governance.Identity) *big.Int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.balanceOf(identity)
}

func (l *Ledger) balanceOf(identity governance.Identity) *big.Int {
	if balance, ok := l.balances[identity]; ok {
		return new(big.Int).Set(balance)
	}
	return new(big.Int)
}

// TotalSupply returns a copy of the total supply
func (l *Ledger) TotalSupply() *big.Int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return new(big.Int).Set(l.totalSupply)
}

// Allowance returns a copy of the amount spender may still move out of
// owner's balance
func (l *Ledger) Allowance(owner, spender governance.Identity) *big.Int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.allowanceOf(AllowanceKey{Owner: owner, Spender: spender})
}

func (l *Ledger) allowanceOf(key AllowanceKey) *big.Int {
	if allowance, ok := l.allowances[key]; ok {
		return new(big.Int).Set(allowance)
	}
	return new(big.Int)
}

// Paused returns the ledger pause flag
func (l *Ledger) Paused() bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.paused
}

// SetPaused pauses or resumes burns, transfers and approvals. Only the admin
// may call it.
func (l *Ledger) SetPaused(caller governance.Identity, pause bool) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if caller != l.admin {
		return ErrUnauthorized
	}
	if l.store != nil {
		if err := l.store.SetTokenPaused(pause); err != nil {
			return fmt.Errorf("save pause flag: %w", err)
		}
	}
	l.paused = pause
	l.logger.Info(
		fmt.Sprintf("token paused set to %t", pause),
		"component", "token",
		"caller", caller,
	)
	return nil
}

// Mint creates amount new tokens for recipient. Only the admin may mint and
// the total supply may not exceed the max supply.
func (l *Ledger) Mint(
	caller governance.Identity,
	recipient governance.Identity,
	amount *big.Int,
) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if err := checkIdentities(recipient); err != nil {
		return err
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if caller != l.admin {
		return ErrUnauthorized
	}
	newSupply := new(big.Int).Add(l.totalSupply, amount)
	if newSupply.Cmp(l.maxSupply) > 0 {
		return fmt.Errorf(
			"%w: minting %s would bring supply to %s",
			ErrMaxSupply,
			amount.String(),
			newSupply.String(),
		)
	}
	updates := map[governance.Identity]*big.Int{
		recipient: new(big.Int).Add(l.balanceOf(recipient), amount),
	}
	if err := l.apply(updates); err != nil {
		return err
	}
	l.totalSupply = newSupply
	l.logger.Info(
		"minted tokens",
		"component", "token",
		"recipient", recipient,
		"amount", amount.String(),
	)
	return nil
}

// Burn destroys amount tokens held by caller
func (l *Ledger) Burn(caller governance.Identity, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if err := checkIdentities(caller); err != nil {
		return err
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.paused {
		return ErrPaused
	}
	balance := l.balanceOf(caller)
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf(
			"%w: %s has %s, burning %s",
			ErrInsufficientBalance,
			caller,
			balance.String(),
			amount.String(),
		)
	}
	updates := map[governance.Identity]*big.Int{
		caller: balance.Sub(balance, amount),
	}
	if err := l.apply(updates); err != nil {
		return err
	}
	l.totalSupply = new(big.Int).Sub(l.totalSupply, amount)
	l.logger.Info(
		"burned tokens",
		"component", "token",
		"account", caller,
		"amount", amount.String(),
	)
	return nil
}

// Transfer moves amount tokens from caller to recipient
func (l *Ledger) Transfer(
	caller governance.Identity,
	recipient governance.Identity,
	amount *big.Int,
) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if err := checkIdentities(caller, recipient); err != nil {
		return err
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.paused {
		return ErrPaused
	}
	balance := l.balanceOf(caller)
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf(
			"%w: %s has %s, transferring %s",
			ErrInsufficientBalance,
			caller,
			balance.String(),
			amount.String(),
		)
	}
	if caller == recipient {
		return nil
	}
	updates := map[governance.Identity]*big.Int{
		caller:    new(big.Int).Sub(balance, amount),
		recipient: new(big.Int).Add(l.balanceOf(recipient), amount),
	}
	if err := l.apply(updates); err != nil {
		return err
	}
	l.logger.Debug(
		"transferred tokens",
		"component", "token",
		"from", caller,
		"to", recipient,
		"amount", amount.String(),
	)
	return nil
}

// Approve sets the amount spender may move out of caller's balance,
// replacing any previous allowance
func (l *Ledger) Approve(
	caller governance.Identity,
	spender governance.Identity,
	amount *big.Int,
) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if err := checkIdentities(caller, spender); err != nil {
		return err
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.paused {
		return ErrPaused
	}
	key := AllowanceKey{Owner: caller, Spender: spender}
	allowances := map[AllowanceKey]*big.Int{
		key: new(big.Int).Set(amount),
	}
	if err := l.applyAllowances(allowances, nil); err != nil {
		return err
	}
	l.logger.Debug(
		"approved allowance",
		"component", "token",
		"owner", caller,
		"spender", spender,
		"amount", amount.String(),
	)
	return nil
}

// TransferFrom moves amount tokens from owner to recipient using the
// allowance owner granted to caller. The allowance is checked before the
// owner's balance.
func (l *Ledger) TransferFrom(
	caller governance.Identity,
	owner governance.Identity,
	recipient governance.Identity,
	amount *big.Int,
) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if err := checkIdentities(caller, owner, recipient); err != nil {
		return err
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.paused {
		return ErrPaused
	}
	key := AllowanceKey{Owner: owner, Spender: caller}
	allowance := l.allowanceOf(key)
	if allowance.Cmp(amount) < 0 {
		return fmt.Errorf(
			"%w: %s may spend %s of %s, transferring %s",
			ErrInsufficientAllowance,
			caller,
			allowance.String(),
			owner,
			amount.String(),
		)
	}
	balance := l.balanceOf(owner)
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf(
			"%w: %s has %s, transferring %s",
			ErrInsufficientBalance,
			owner,
			balance.String(),
			amount.String(),
		)
	}
	allowances := map[AllowanceKey]*big.Int{
		key: allowance.Sub(allowance, amount),
	}
	balances := map[governance.Identity]*big.Int{}
	if owner != recipient {
		balances[owner] = new(big.Int).Sub(balance, amount)
		balances[recipient] = new(big.Int).Add(l.balanceOf(recipient), amount)
	}
	if err := l.applyAllowances(allowances, balances); err != nil {
		return err
	}
	l.logger.Debug(
		"transferred tokens from allowance",
		"component", "token",
		"spender", caller,
		"from", owner,
		"to", recipient,
		"amount", amount.String(),
	)
	return nil
}

// apply persists the updated balances, then applies them in memory
func (l *Ledger) apply(updates map[governance.Identity]*big.Int) error {
	if l.store != nil {
		if err := l.store.SaveBalances(updates); err != nil {
			return fmt.Errorf("save balances: %w", err)
		}
	}
	for id, amount := range updates {
		l.balances[id] = amount
	}
	return nil
}

// applyAllowances persists allowances and balances together, then applies
// them in memory
func (l *Ledger) applyAllowances(
	allowances map[AllowanceKey]*big.Int,
	balances map[governance.Identity]*big.Int,
) error {
	if l.store != nil {
		if err := l.store.SaveAllowances(allowances, balances); err != nil {
			return fmt.Errorf("save allowances: %w", err)
		}
	}
	for key, amount := range allowances {
		l.allowances[key] = amount
	}
	for id, amount := range balances {
		l.balances[id] = amount
	}
	return nil
}

func checkIdentities(identities ...governance.Identity) error {
	for _, identity := range identities {
		if len(identity) > governance.MaxIdentityLength {
			return fmt.Errorf(
				"%w: account is %d bytes, limit is %d",
				ErrInvalidAccount,
				len(identity),
				governance.MaxIdentityLength,
			)
		}
	}
	return nil
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return nil
}
