// Package session holds the in-memory wallet session state and the dashboard
// service that gates token operations on it. Nothing here survives a process
// restart.
package session

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tokenflex/tokenflex-go/wallet"
)

// Session is the connected wallet's state as the dashboard sees it. Balance
// is a local mirror of the chain balance: decremented optimistically after a
// successful spend, then replaced by an authoritative refetch.
type Session struct {
	Address   string
	Connected bool
	IsAdmin   bool
	Network   wallet.NetworkInfo

	TokenName   string
	TokenSymbol string

	Balance decimal.Decimal
	// BalanceKnown distinguishes a genuine zero balance from one that was
	// never fetched.
	BalanceKnown bool
}

// Store guards the session behind a mutex. Reads return snapshots; callers
// never hold a reference into the store.
type Store struct {
	mu sync.RWMutex
	s  Session
}

// NewStore creates an empty, disconnected store.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns a copy of the current session.
func (st *Store) Snapshot() Session {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return st.s
}

// Set replaces the session wholesale.
func (st *Store) Set(s Session) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.s = s
}

// Update applies fn to the session under the lock.
func (st *Store) Update(fn func(*Session)) {
	st.mu.Lock()
	defer st.mu.Unlock()

	fn(&st.s)
}

// Clear resets the store to the disconnected state.
func (st *Store) Clear() {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.s = Session{}
}
