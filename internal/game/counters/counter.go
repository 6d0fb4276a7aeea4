package counters

import "sort"

// Counters holds non-negative tallies keyed by type. A tally that drops to
// zero is removed, so Has and ToView only see live counters.
type Counters struct {
	counts map[CounterType]int
}

func NewCounters() *Counters {
	return &Counters{counts: make(map[CounterType]int)}
}

// Add increases a tally. Non-positive amounts are ignored.
func (cs *Counters) Add(ct CounterType, amount int) {
	if amount <= 0 {
		return
	}
	cs.counts[ct] += amount
}

// Remove decreases a tally, flooring at zero. It reports whether the counter
// was present.
func (cs *Counters) Remove(ct CounterType, amount int) bool {
	current, ok := cs.counts[ct]
	if !ok || amount <= 0 {
		return false
	}
	if current <= amount {
		delete(cs.counts, ct)
	} else {
		cs.counts[ct] = current - amount
	}
	return true
}

func (cs *Counters) Count(ct CounterType) int {
	return cs.counts[ct]
}

func (cs *Counters) Has(ct CounterType) bool {
	return cs.counts[ct] > 0
}

func (cs *Counters) Clear() {
	clear(cs.counts)
}

// Total sums every tally.
func (cs *Counters) Total() int {
	total := 0
	for _, n := range cs.counts {
		total += n
	}
	return total
}

func (cs *Counters) Copy() *Counters {
	c := NewCounters()
	for ct, n := range cs.counts {
		c.counts[ct] = n
	}
	return c
}

// ToView lists the live counters sorted by name.
func (cs *Counters) ToView() []CounterView {
	views := make([]CounterView, 0, len(cs.counts))
	for ct, n := range cs.counts {
		views = append(views, CounterView{Name: ct.String(), Count: n})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	return views
}

// CounterView is the JSON form of one counter.
type CounterView struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
