package recommender

// Item is one wardrobe or catalog entry, as produced by the classification
// pipeline. Ids are unique across both pools.
type Item struct {
	ID                string
	Category          string // top, bottom, dress, lehenga_set, saree, shoes, bag, accessories, outerwear
	Subcategory       string
	StyleTags         []string
	Pattern           string
	PatternConfidence float64
	PrimaryColor      string
	Occasion          string // casual, formal, semi_formal, party, wedding, work, beach, sports
	Tradition         string // ethnic, western, fusion
	Fit               string // fitted, loose, oversized, regular, skinny, wide, flared
	Filename          string // image key, only used by the collage renderer
}

// classifier defaults, applied when an attribute is missing
func (it Item) pattern() string {
	if it.Pattern == "" {
		return "solid"
	}
	return it.Pattern
}

func (it Item) occasion() string {
	if it.Occasion == "" {
		return "casual"
	}
	return it.Occasion
}

func (it Item) tradition() string {
	if it.Tradition == "" {
		return "western"
	}
	return it.Tradition
}

func (it Item) fit() string {
	if it.Fit == "" {
		return "regular"
	}
	return it.Fit
}

func (it Item) color() string {
	if it.PrimaryColor == "" {
		return "unknown"
	}
	return it.PrimaryColor
}

// ItemPool is the read-only snapshot of both collections a single
// recommendation call searches over. Wardrobe is always consulted first.
type ItemPool struct {
	Wardrobe []Item
	Catalog  []Item
}

func (p *ItemPool) FindByID(id string) (Item, bool) {
	for _, it := range p.Wardrobe {
		if it.ID == id {
			return it, true
		}
	}
	for _, it := range p.Catalog {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// ByCategory returns wardrobe then catalog items of the category, skipping
// already used ids.
func (p *ItemPool) ByCategory(category string, excludeIDs map[string]bool) []Item {
	var candidates []Item
	for _, it := range p.Wardrobe {
		if it.Category == category && !excludeIDs[it.ID] {
			candidates = append(candidates, it)
		}
	}
	for _, it := range p.Catalog {
		if it.Category == category && !excludeIDs[it.ID] {
			candidates = append(candidates, it)
		}
	}
	return candidates
}

// Outfit is one accepted recommendation.
type Outfit struct {
	Items       []Item  `json:"items"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
	Occasion    string  `json:"occasion"`
	ImagePath   *string `json:"image_path"`
}

func itemIDSet(items []Item) map[string]bool {
	ids := make(map[string]bool, len(items))
	for _, it := range items {
		ids[it.ID] = true
	}
	return ids
}
