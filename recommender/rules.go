package recommender

// RuleSet holds the static compatibility tables the scorer and validator work
// against. Loaded once at startup and passed by reference so tests can swap in
// alternate rules.
type RuleSet struct {
	// CategoryCompatibility is a directed adjacency: which categories an item
	// of a given category pairs well with.
	CategoryCompatibility map[string][]string

	// ForbiddenPairs are ordered (category, category) pairs that can never
	// appear together in one outfit. (top, top) has a seed exemption, see
	// Validator.
	ForbiddenPairs [][2]string

	ComplementaryPairs [][2]string
	AnalogousColors    map[string][]string
	NeutralColors      []string
	ClashPairs         [][2]string

	FormalOccasions []string
	CasualOccasions []string
}

func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		CategoryCompatibility: map[string][]string{
			"top":         {"bottom", "shoes", "accessories", "bag", "outerwear"},
			"bottom":      {"top", "shoes", "accessories", "bag", "outerwear"},
			"dress":       {"shoes", "accessories", "bag", "outerwear"},
			"lehenga_set": {"shoes", "accessories", "bag"},
			"saree":       {"shoes", "accessories", "bag"},
			"shoes":       {"top", "bottom", "dress", "lehenga_set", "saree", "accessories", "bag"},
			"accessories": {"top", "bottom", "dress", "lehenga_set", "saree", "shoes", "bag"},
			"bag":         {"top", "bottom", "dress", "lehenga_set", "saree", "shoes", "accessories"},
			"outerwear":   {"top", "bottom", "dress"},
		},
		ForbiddenPairs: [][2]string{
			{"top", "top"}, // no two tops unless one is outerwear, seeds exempt
			{"dress", "top"},
			{"dress", "bottom"},
			{"lehenga_set", "top"},
			{"lehenga_set", "bottom"},
			{"saree", "top"},
			{"saree", "bottom"},
		},
		ComplementaryPairs: [][2]string{
			{"red", "green"}, {"blue", "orange"}, {"yellow", "purple"},
			{"pink", "mint"}, {"navy", "coral"}, {"maroon", "teal"},
		},
		AnalogousColors: map[string][]string{
			"red":    {"pink", "maroon", "coral"},
			"blue":   {"navy", "teal", "mint"},
			"green":  {"mint", "teal"},
			"yellow": {"orange", "coral"},
			"purple": {"lavender", "maroon"},
			"brown":  {"beige", "cream", "tan"},
			"black":  {"grey", "navy"},
			"white":  {"cream", "beige"},
		},
		NeutralColors: []string{"black", "white", "grey", "gray", "beige", "cream", "brown", "navy"},
		// red/green and blue/orange sit in both the complementary and the
		// clash table. The complementary check runs first and wins.
		ClashPairs: [][2]string{
			{"red", "green"}, {"blue", "orange"}, {"yellow", "purple"},
			{"pink", "green"}, {"red", "blue"}, {"yellow", "blue"},
		},
		FormalOccasions: []string{"formal", "wedding", "work"},
		CasualOccasions: []string{"casual", "beach", "sports"},
	}
}

func pairMatches(pair [2]string, a, b string) bool {
	return (a == pair[0] || a == pair[1]) && (b == pair[0] || b == pair[1])
}

func contains(items []string, lookFor string) bool {
	for _, item := range items {
		if item == lookFor {
			return true
		}
	}
	return false
}
