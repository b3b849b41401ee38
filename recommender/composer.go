package recommender

// dress-type garments cover top and bottom at once
var fullOutfitCategories = []string{"dress", "lehenga_set", "saree"}

// RequiredCategories derives which slots still have to be filled for the seed
// items to become a wearable outfit.
func RequiredCategories(seeds []Item) []string {
	hasTop, hasBottom, hasFull := false, false, false
	for _, it := range seeds {
		switch {
		case contains(fullOutfitCategories, it.Category):
			hasFull = true
		case it.Category == "top":
			hasTop = true
		case it.Category == "bottom":
			hasBottom = true
		}
	}
	switch {
	case hasFull:
		return []string{"shoes", "accessories", "bag"}
	case hasTop && !hasBottom:
		return []string{"bottom", "shoes", "accessories", "bag"}
	case hasBottom && !hasTop:
		return []string{"top", "shoes", "accessories", "bag"}
	case hasTop && hasBottom:
		return []string{"shoes", "accessories", "bag"}
	default:
		return []string{"top", "bottom", "shoes", "accessories", "bag"}
	}
}

// Composer fills missing required categories around the seeds, greedily
// picking the single best validator-passing candidate per slot. No
// backtracking: a slot with no valid candidate is left unfilled and the outfit
// proceeds degraded; the search loop decides later whether it survives.
type Composer struct {
	Pool      *ItemPool
	Validator *Validator
	// Score ranks a tentative outfit against the seeds, see Search.OutfitScore.
	Score func(outfit, seeds []Item) float64
}

func (c *Composer) Compose(seeds []Item) []Item {
	outfit := make([]Item, len(seeds))
	copy(outfit, seeds)

	for _, category := range RequiredCategories(seeds) {
		if hasCategory(outfit, category) {
			continue
		}
		candidates := c.Pool.ByCategory(category, itemIDSet(outfit))
		var best *Item
		bestScore := 0.0
		for i := range candidates {
			tentative := append(append([]Item{}, outfit...), candidates[i])
			if !c.Validator.IsValidCombination(tentative) {
				continue
			}
			score := c.Score(tentative, seeds)
			if best == nil || score > bestScore {
				best = &candidates[i]
				bestScore = score
			}
		}
		if best != nil {
			outfit = append(outfit, *best)
		}
	}
	return outfit
}

func hasCategory(items []Item, category string) bool {
	for _, it := range items {
		if it.Category == category {
			return true
		}
	}
	return false
}
