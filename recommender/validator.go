package recommender

// Validator decides whether a list of items is a legal outfit combination.
// Pure function of the list, no hidden state.
type Validator struct {
	Rules *RuleSet
}

// IsValidCombination applies the combination rules in order; any failure
// rejects the whole set.
//
// The first two items of the list are the caller's seeds: a (top, top) pair is
// allowed when both sit in the seed positions, so a user may deliberately
// anchor an outfit on two tops. No further plain top may be appended after
// that.
func (v *Validator) IsValidCombination(items []Item) bool {
	if len(items) == 0 {
		return false
	}

	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it.ID] {
			return false
		}
		seen[it.ID] = true
	}

	for i := range items {
		for j := range items {
			if i == j {
				continue
			}
			for _, pair := range v.Rules.ForbiddenPairs {
				if items[i].Category == pair[0] && items[j].Category == pair[1] {
					if pair[0] == "top" && pair[1] == "top" && i < 2 && j < 2 {
						continue // both tops are seeds
					}
					return false
				}
			}
		}
	}

	topCount := 0
	hasOuterwear := false
	for _, it := range items {
		if it.Category == "top" {
			topCount++
		}
		if it.Category == "outerwear" {
			hasOuterwear = true
		}
	}
	if topCount > 2 {
		return false
	}
	// with the two-top seed allowance exhausted, only outerwear may layer on.
	// The trailing top is fine when it is itself one of the two seeds.
	last := len(items) - 1
	if topCount == 2 && items[last].Category == "top" && last >= 2 && !hasOuterwear {
		return false
	}

	return true
}
