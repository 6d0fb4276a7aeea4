package catalog

// Keyword tags a card with a rule the player may want explained.
type Keyword string

const (
	KeywordBlock       Keyword = "block"
	KeywordSummon      Keyword = "summon"
	KeywordDraw        Keyword = "draw"
	KeywordRanged      Keyword = "ranged"
	KeywordMagic       Keyword = "magic"
	KeywordPiercing    Keyword = "piercing"
	KeywordBackstab    Keyword = "backstab"
	KeywordAoe         Keyword = "aoe"
	KeywordCharges     Keyword = "charges"
	KeywordManaDiamond Keyword = "manaDiamond"
)

var keywordExplanations = map[Keyword]string{
	KeywordBlock:       "Block: Prevents damage until end of turn; consumed when you take damage.",
	KeywordSummon:      "Summon: Adds a minion that acts at end of turn and can take damage for its summoner. Excess damage to summons is not carried over.",
	KeywordDraw:        "Draw: Adds cards from your deck to your hand. Draws as many as possible if the deck has fewer cards than needed.",
	KeywordRanged:      "Ranged: This damage ignores summons and is dealt directly to the player/enemy.",
	KeywordMagic:       "Magic: This damage ignores block.",
	KeywordPiercing:    "Piercing: Excess damage to summons is carried over to the next summon or player/enemy.",
	KeywordBackstab:    "Backstab: Deals damage to the back summon first. If there are no summons, deals double damage to the player/enemy.",
	KeywordAoe:         "Aoe: Deals damage to all summons and to the player/enemy.",
	KeywordCharges:     "Charges: This spell has limited uses per combat. When the last charge is used, the card is trashed.",
	KeywordManaDiamond: "Mana Diamond: Can be used to pay for the difference between the card's rank and the number of cards in the corresponding mana pool.",
}

// Explain returns the tooltip for a keyword, or the keyword itself when it
// has none.
func Explain(keyword string) string {
	if text, ok := keywordExplanations[Keyword(keyword)]; ok {
		return text
	}
	return keyword
}

func keywords(ks ...Keyword) []string {
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = string(k)
	}
	return out
}
