package recommender

import "strings"

// Scorer computes the pairwise rule-based compatibility between two items.
// All weights are calibrated against the production rule set; changing any of
// them shifts every ranked result.
type Scorer struct {
	Rules *RuleSet
}

// Compatibility combines category, style, pattern, color, formality,
// tradition and fit signals into a single score clamped to [-1, 1].
func (s *Scorer) Compatibility(item1, item2 Item) float64 {
	score := 0.0

	// Category compatibility
	if contains(s.Rules.CategoryCompatibility[item1.Category], item2.Category) {
		score += 0.20
	}

	// Style overlap, capped at 3 shared tags
	overlap := styleOverlap(item1.StyleTags, item2.StyleTags)
	styleScore := float64(overlap) * 0.12
	if styleScore > 0.36 {
		styleScore = 0.36
	}
	score += styleScore

	// Pattern rules
	pattern1, pattern2 := item1.pattern(), item2.pattern()
	if pattern1 != "solid" && pattern2 != "solid" &&
		item1.PatternConfidence > 0.35 && item2.PatternConfidence > 0.35 {
		score -= 0.20 // pattern clash
	} else if (pattern1 == "solid") != (pattern2 == "solid") {
		score += 0.05 // good contrast
	}

	// Color harmony
	score += s.colorHarmony(item1.color(), item2.color())

	// Formality match
	occasion1, occasion2 := item1.occasion(), item2.occasion()
	if occasion1 == occasion2 {
		score += 0.12
	} else if s.formalityMismatch(occasion1, occasion2) {
		score -= 0.18
	}

	// Tradition match, fusion pairs with anything
	tradition1, tradition2 := item1.tradition(), item2.tradition()
	if tradition1 == tradition2 {
		score += 0.10
	} else if tradition1 != "fusion" && tradition2 != "fusion" {
		score -= 0.35 // ethnic vs western mismatch
	}

	// Proportion balance
	fit1, fit2 := item1.fit(), item2.fit()
	if (fit1 == "fitted" && fit2 == "loose") || (fit1 == "loose" && fit2 == "fitted") {
		score += 0.08
	} else if fit1 == "loose" && fit2 == "loose" {
		score -= 0.12
	}

	// Novelty bonus
	if addsNovelty(item1, item2) {
		score += 0.05
	}

	return clamp(score, -1.0, 1.0)
}

// colorHarmony compares lower-cased color names against the fixed tables.
// The complementary table is checked before the clash table; pairs that occur
// in both (red/green, blue/orange) score as complementary.
func (s *Scorer) colorHarmony(color1, color2 string) float64 {
	c1 := strings.ToLower(color1)
	c2 := strings.ToLower(color2)

	for _, pair := range s.Rules.ComplementaryPairs {
		if pairMatches(pair, c1, c2) {
			return 0.12
		}
	}

	for baseColor, analogous := range s.Rules.AnalogousColors {
		if (c1 == baseColor && contains(analogous, c2)) ||
			(c2 == baseColor && contains(analogous, c1)) {
			return 0.06
		}
	}

	if contains(s.Rules.NeutralColors, c1) || contains(s.Rules.NeutralColors, c2) {
		return 0.06
	}

	for _, pair := range s.Rules.ClashPairs {
		if pairMatches(pair, c1, c2) {
			return -0.05
		}
	}

	return 0.0
}

func (s *Scorer) formalityMismatch(occasion1, occasion2 string) bool {
	return (contains(s.Rules.FormalOccasions, occasion1) && contains(s.Rules.CasualOccasions, occasion2)) ||
		(contains(s.Rules.CasualOccasions, occasion1) && contains(s.Rules.FormalOccasions, occasion2))
}

// addsNovelty rewards pairs that differ in pattern or color, so an outfit does
// not end up with near-duplicate looking items.
func addsNovelty(item1, item2 Item) bool {
	return item1.pattern() != item2.pattern() || item1.color() != item2.color()
}

func styleOverlap(tags1, tags2 []string) int {
	seen := make(map[string]bool, len(tags1))
	for _, tag := range tags1 {
		seen[tag] = true
	}
	count := 0
	counted := make(map[string]bool)
	for _, tag := range tags2 {
		if seen[tag] && !counted[tag] {
			count++
			counted[tag] = true
		}
	}
	return count
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
