package mana

import (
	"sync"
)

// Wallet holds a player's mana diamonds, the wildcard currency that covers
// any shortfall between a spell's rank and its mana pool.
type Wallet struct {
	mu       sync.RWMutex
	diamonds int
}

// NewWallet creates a wallet holding the given number of diamonds.
func NewWallet(diamonds int) *Wallet {
	if diamonds < 0 {
		diamonds = 0
	}
	return &Wallet{diamonds: diamonds}
}

// Available returns the number of diamonds in the wallet.
func (w *Wallet) Available() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.diamonds
}

// Add adds diamonds to the wallet.
func (w *Wallet) Add(amount int) {
	if amount <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.diamonds += amount
}

// Spend removes diamonds from the wallet. It returns false and leaves the
// wallet untouched when there are not enough diamonds.
func (w *Wallet) Spend(amount int) bool {
	if amount < 0 {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.diamonds < amount {
		return false
	}
	w.diamonds -= amount
	return true
}

// Set replaces the wallet contents.
func (w *Wallet) Set(diamonds int) {
	if diamonds < 0 {
		diamonds = 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.diamonds = diamonds
}

// Copy creates a copy of the wallet.
func (w *Wallet) Copy() *Wallet {
	return NewWallet(w.Available())
}
