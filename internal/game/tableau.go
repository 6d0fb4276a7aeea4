package game

// Tableau is the row of columns dealt at the start of combat. Only the bottom
// card of a column is guaranteed to be face up.
type Tableau struct {
	columns []*CardGroup
}

// NewTableau creates a tableau with size empty columns.
func NewTableau(size int) *Tableau {
	if size < 0 {
		size = 0
	}
	t := &Tableau{columns: make([]*CardGroup, size)}
	for i := range t.columns {
		t.columns[i] = NewCardGroup()
	}
	return t
}

// Size returns the number of columns.
func (t *Tableau) Size() int {
	return len(t.columns)
}

// Column returns column i, or nil when out of range.
func (t *Tableau) Column(i int) *CardGroup {
	if i < 0 || i >= len(t.columns) {
		return nil
	}
	return t.columns[i]
}

// Columns returns the tableau's columns.
func (t *Tableau) Columns() []*CardGroup {
	return append([]*CardGroup(nil), t.columns...)
}

// Deal clears the columns, gives column i up to i+1 cards from the deck and
// reveals each bottom. It stops early when the deck runs out. Callers must
// relocate any cards still on the tableau first.
func (t *Tableau) Deal(deck *DrawPile) int {
	for _, column := range t.columns {
		column.Clear()
	}
	dealt := 0
	for i, column := range t.columns {
		for j := 0; j <= i; j++ {
			card := deck.Draw()
			if card == nil {
				t.RevealBottoms()
				return dealt
			}
			card.Revealed = false
			column.Add(card)
			dealt++
		}
	}
	t.RevealBottoms()
	return dealt
}

// Locate returns the column holding the card and the card's index within it.
// It returns -1, -1 when the card is not on the tableau.
func (t *Tableau) Locate(card *Card) (int, int) {
	for i, column := range t.columns {
		if idx := column.IndexOf(card); idx >= 0 {
			return i, idx
		}
	}
	return -1, -1
}

// IsBottom reports whether the card is the bottom card of some column.
func (t *Tableau) IsBottom(card *Card) bool {
	col, idx := t.Locate(card)
	return col >= 0 && idx == t.columns[col].Size()-1
}

// Bottoms returns the bottom card of every non-empty column, in column order.
func (t *Tableau) Bottoms() []*Card {
	bottoms := make([]*Card, 0, len(t.columns))
	for _, column := range t.columns {
		if last := column.Last(); last != nil {
			bottoms = append(bottoms, last)
		}
	}
	return bottoms
}

// RevealBottoms turns the bottom card of every column face up.
func (t *Tableau) RevealBottoms() {
	for _, column := range t.columns {
		if last := column.Last(); last != nil {
			last.Revealed = true
		}
	}
}

// CardCount returns the number of cards across all columns.
func (t *Tableau) CardCount() int {
	total := 0
	for _, column := range t.columns {
		total += column.Size()
	}
	return total
}

// takeAll empties every column and returns the removed cards.
func (t *Tableau) takeAll() []*Card {
	var cards []*Card
	for _, column := range t.columns {
		cards = append(cards, column.takeAll()...)
	}
	return cards
}

// isValidRun reports whether cards form a descending run of alternating suits,
// each card one rank below the card before it.
func isValidRun(cards []*Card) bool {
	for i := 1; i < len(cards); i++ {
		prev, next := cards[i-1], cards[i]
		if next.Rank != prev.Rank-1 || next.Suit == prev.Suit {
			return false
		}
	}
	return true
}
