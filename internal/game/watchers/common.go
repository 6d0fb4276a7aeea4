package watchers

import (
	"github.com/koacards/koa-server-go/internal/game/rules"
)

// SpellsCastWatcher tracks spells cast during a combat.
type SpellsCastWatcher struct {
	*rules.BaseWatcher
	spellsCast map[string][]string // caster -> spell names in cast order
}

// NewSpellsCastWatcher creates a new spells cast watcher.
func NewSpellsCastWatcher() *SpellsCastWatcher {
	w := &SpellsCastWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeCombat),
		spellsCast:  make(map[string][]string),
	}
	w.SetKey("SpellsCastWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *SpellsCastWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventSpellCast {
		return
	}
	caster := event.SourceID
	if caster == "" {
		return
	}
	name := event.Data
	if name == "" {
		name = event.TargetID
	}
	w.spellsCast[caster] = append(w.spellsCast[caster], name)
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *SpellsCastWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.spellsCast = make(map[string][]string)
}

// GetSpellsCast returns the names of spells cast by a combatant.
func (w *SpellsCastWatcher) GetSpellsCast(caster string) []string {
	return w.spellsCast[caster]
}

// GetCount returns the number of spells cast by a combatant.
func (w *SpellsCastWatcher) GetCount(caster string) int {
	return len(w.spellsCast[caster])
}

// Copy creates a copy of this watcher.
func (w *SpellsCastWatcher) Copy() rules.Watcher {
	copy := NewSpellsCastWatcher()
	copy.SetCondition(w.ConditionMet())
	for k, v := range w.spellsCast {
		copy.spellsCast[k] = append([]string(nil), v...)
	}
	return copy
}

// CardsBurnedWatcher tracks mana cards burned into pools, per suit.
type CardsBurnedWatcher struct {
	*rules.BaseWatcher
	bySuit map[string]int
}

// NewCardsBurnedWatcher creates a new cards burned watcher.
func NewCardsBurnedWatcher() *CardsBurnedWatcher {
	w := &CardsBurnedWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeCombat),
		bySuit:      make(map[string]int),
	}
	w.SetKey("CardsBurnedWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *CardsBurnedWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventCardBurned {
		return
	}
	w.bySuit[event.Data]++
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *CardsBurnedWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.bySuit = make(map[string]int)
}

// GetCount returns the number of cards of a suit burned.
func (w *CardsBurnedWatcher) GetCount(suit string) int {
	return w.bySuit[suit]
}

// GetTotal returns the number of cards burned across all suits.
func (w *CardsBurnedWatcher) GetTotal() int {
	total := 0
	for _, count := range w.bySuit {
		total += count
	}
	return total
}

// Copy creates a copy of this watcher.
func (w *CardsBurnedWatcher) Copy() rules.Watcher {
	copy := NewCardsBurnedWatcher()
	copy.SetCondition(w.ConditionMet())
	for k, v := range w.bySuit {
		copy.bySuit[k] = v
	}
	return copy
}

// CardsDrawnWatcher tracks the number of cards drawn.
type CardsDrawnWatcher struct {
	*rules.BaseWatcher
	drawn int
}

// NewCardsDrawnWatcher creates a new cards drawn watcher.
func NewCardsDrawnWatcher() *CardsDrawnWatcher {
	w := &CardsDrawnWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeCombat),
	}
	w.SetKey("CardsDrawnWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *CardsDrawnWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventCardsDrawn || event.Amount <= 0 {
		return
	}
	w.drawn += event.Amount
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *CardsDrawnWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.drawn = 0
}

// GetCount returns the number of cards drawn.
func (w *CardsDrawnWatcher) GetCount() int {
	return w.drawn
}

// Copy creates a copy of this watcher.
func (w *CardsDrawnWatcher) Copy() rules.Watcher {
	copy := NewCardsDrawnWatcher()
	copy.SetCondition(w.ConditionMet())
	copy.drawn = w.drawn
	return copy
}

// DamageTakenWatcher tracks damage absorbed by each combatant, counting
// summons, block and health alike.
type DamageTakenWatcher struct {
	*rules.BaseWatcher
	byTarget map[string]int
}

// NewDamageTakenWatcher creates a new damage taken watcher.
func NewDamageTakenWatcher() *DamageTakenWatcher {
	w := &DamageTakenWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeCombat),
		byTarget:    make(map[string]int),
	}
	w.SetKey("DamageTakenWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *DamageTakenWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventDamageDealt || event.Amount <= 0 {
		return
	}
	w.byTarget[event.TargetID] += event.Amount
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *DamageTakenWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.byTarget = make(map[string]int)
}

// GetAmount returns the damage absorbed by a combatant.
func (w *DamageTakenWatcher) GetAmount(target string) int {
	return w.byTarget[target]
}

// Copy creates a copy of this watcher.
func (w *DamageTakenWatcher) Copy() rules.Watcher {
	copy := NewDamageTakenWatcher()
	copy.SetCondition(w.ConditionMet())
	for k, v := range w.byTarget {
		copy.byTarget[k] = v
	}
	return copy
}

// SummonsDiedWatcher tracks summons that died, by the side that owned them.
type SummonsDiedWatcher struct {
	*rules.BaseWatcher
	byOwner map[string][]string // owner -> summon names
}

// NewSummonsDiedWatcher creates a new summons died watcher.
func NewSummonsDiedWatcher() *SummonsDiedWatcher {
	w := &SummonsDiedWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeCombat),
		byOwner:     make(map[string][]string),
	}
	w.SetKey("SummonsDiedWatcher")
	return w
}

// Watch implements the Watcher interface.
func (w *SummonsDiedWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventSummonDied {
		return
	}
	w.byOwner[event.SourceID] = append(w.byOwner[event.SourceID], event.Data)
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *SummonsDiedWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.byOwner = make(map[string][]string)
}

// GetDied returns the names of the owner's summons that died.
func (w *SummonsDiedWatcher) GetDied(owner string) []string {
	return w.byOwner[owner]
}

// GetCount returns the number of the owner's summons that died.
func (w *SummonsDiedWatcher) GetCount(owner string) int {
	return len(w.byOwner[owner])
}

// Copy creates a copy of this watcher.
func (w *SummonsDiedWatcher) Copy() rules.Watcher {
	copy := NewSummonsDiedWatcher()
	copy.SetCondition(w.ConditionMet())
	for k, v := range w.byOwner {
		copy.byOwner[k] = append([]string(nil), v...)
	}
	return copy
}
