package rules

import (
	"fmt"
	"strings"
	"sync"
)

// WatcherScope says what a watcher aggregates over.
type WatcherScope int

const (
	// WatcherScopeCombat counts events for the whole fight.
	WatcherScopeCombat WatcherScope = iota
	// WatcherScopeSide counts events for one side, the player or the enemy.
	WatcherScopeSide
)

func (ws WatcherScope) String() string {
	switch ws {
	case WatcherScopeCombat:
		return "COMBAT"
	case WatcherScopeSide:
		return "SIDE"
	default:
		return "UNKNOWN"
	}
}

// Watcher accumulates statistics from combat events. Watchers are reset at
// the start of every combat.
type Watcher interface {
	Watch(event Event)
	Reset()
	// ConditionMet reports whether the watcher has seen a matching event since
	// the last reset.
	ConditionMet() bool
	GetScope() WatcherScope
	GetKey() string
	Copy() Watcher
}

// BaseWatcher carries the bookkeeping shared by all watchers. Embed it and
// implement Watch and Copy.
type BaseWatcher struct {
	scope     WatcherScope
	owner     string
	key       string
	condition bool
}

func NewBaseWatcher(scope WatcherScope) *BaseWatcher {
	return &BaseWatcher{scope: scope}
}

func (bw *BaseWatcher) GetScope() WatcherScope { return bw.scope }
func (bw *BaseWatcher) GetKey() string         { return bw.key }
func (bw *BaseWatcher) SetKey(key string)      { bw.key = key }
func (bw *BaseWatcher) Owner() string          { return bw.owner }

// SetOwner binds a side-scoped watcher to "player" or "enemy".
func (bw *BaseWatcher) SetOwner(side string) { bw.owner = side }

func (bw *BaseWatcher) ConditionMet() bool          { return bw.condition }
func (bw *BaseWatcher) SetCondition(condition bool) { bw.condition = condition }
func (bw *BaseWatcher) Reset()                      { bw.condition = false }

// WatcherRegistry fans events out to watchers in registration order.
type WatcherRegistry struct {
	mu       sync.RWMutex
	order    []Watcher
	watchers map[string]Watcher
}

func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{watchers: make(map[string]Watcher)}
}

// AddWatcher registers a watcher, deriving a key from its type and owner
// when it has none. A watcher with an existing key replaces the old one.
func (wr *WatcherRegistry) AddWatcher(watcher Watcher) {
	if watcher == nil {
		return
	}

	wr.mu.Lock()
	defer wr.mu.Unlock()

	key := watcher.GetKey()
	if key == "" {
		key = watcherKey(watcher)
		if setter, ok := watcher.(interface{ SetKey(string) }); ok {
			setter.SetKey(key)
		}
	}
	if _, exists := wr.watchers[key]; exists {
		wr.removeLocked(key)
	}
	wr.watchers[key] = watcher
	wr.order = append(wr.order, watcher)
}

func (wr *WatcherRegistry) RemoveWatcher(key string) {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	wr.removeLocked(key)
}

func (wr *WatcherRegistry) removeLocked(key string) {
	watcher, ok := wr.watchers[key]
	if !ok {
		return
	}
	delete(wr.watchers, key)
	for i, w := range wr.order {
		if w == watcher {
			wr.order = append(wr.order[:i], wr.order[i+1:]...)
			break
		}
	}
}

func (wr *WatcherRegistry) GetWatcher(key string) Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return wr.watchers[key]
}

// GetWatchersByScope returns the watchers of one scope in registration order.
func (wr *WatcherRegistry) GetWatchersByScope(scope WatcherScope) []Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	var result []Watcher
	for _, w := range wr.order {
		if w.GetScope() == scope {
			result = append(result, w)
		}
	}
	return result
}

func (wr *WatcherRegistry) ResetWatchers() {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	for _, w := range wr.order {
		w.Reset()
	}
}

// NotifyWatchers passes the event to every watcher. It has the EventBus
// handler signature so it can be subscribed directly.
func (wr *WatcherRegistry) NotifyWatchers(event Event) {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	for _, w := range wr.order {
		w.Watch(event)
	}
}

func watcherKey(watcher Watcher) string {
	name := fmt.Sprintf("%T", watcher)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.TrimPrefix(name, "*")
	if owned, ok := watcher.(interface{ Owner() string }); ok && watcher.GetScope() == WatcherScopeSide {
		if owner := owned.Owner(); owner != "" {
			return owner + "_" + name
		}
	}
	return name
}
