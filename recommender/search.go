package recommender

import (
	"context"
	"sort"
)

const (
	// MaxSearchAttempts bounds the work of one recommendation call.
	MaxSearchAttempts = 1000

	// JaccardDistinctBound is the maximum id-set overlap two accepted outfits
	// may have.
	JaccardDistinctBound = 0.85

	cosineWeight = 0.60
	ruleWeight   = 0.40
)

// Search drives the composer repeatedly and keeps the distinct, valid, scored
// outfits, ranked best first.
type Search struct {
	Pool      *ItemPool
	Store     *EmbeddingStore
	Scorer    *Scorer
	Validator *Validator

	MaxAttempts int
}

func NewSearch(pool *ItemPool, store *EmbeddingStore, rules *RuleSet) *Search {
	return &Search{
		Pool:        pool,
		Store:       store,
		Scorer:      &Scorer{Rules: rules},
		Validator:   &Validator{Rules: rules},
		MaxAttempts: MaxSearchAttempts,
	}
}

// OutfitScore blends embedding similarity with the pairwise rule score.
// Seed-to-item pairs with a missing embedding are skipped, not counted as 0.
func (s *Search) OutfitScore(outfit, seeds []Item) float64 {
	if len(outfit) == 0 {
		return 0.0
	}

	var cosSum float64
	cosCount := 0
	for _, seed := range seeds {
		seedEmb, seedOk := s.Store.Get(seed.ID)
		for _, it := range outfit {
			if it.ID == seed.ID || !seedOk {
				continue
			}
			itemEmb, ok := s.Store.Get(it.ID)
			if !ok {
				continue
			}
			cosSum += CosineSimilarity(seedEmb, itemEmb)
			cosCount++
		}
	}
	cosTerm := 0.0
	if cosCount > 0 {
		cosTerm = cosSum / float64(cosCount)
	}

	var ruleSum float64
	ruleCount := 0
	for i := range outfit {
		for j := range outfit {
			if i == j {
				continue
			}
			ruleSum += s.Scorer.Compatibility(outfit[i], outfit[j])
			ruleCount++
		}
	}
	ruleTerm := 0.0
	if ruleCount > 0 {
		ruleTerm = ruleSum / float64(ruleCount)
	}

	return cosineWeight*cosTerm + ruleWeight*ruleTerm
}

// Generate produces up to numOutfits distinct outfits from the resolved seeds.
// Fewer than requested is a normal outcome, not an error: composition is
// deterministic per seed set, so repeated attempts tend to regenerate the same
// combination. The loop stops early once an attempt reproduces the previous
// attempt's item set, which only skips work the fixed budget would waste.
//
// ctx is checked once per attempt so a request deadline can cut the search
// short; outfits collected so far are returned alongside the ctx error.
func (s *Search) Generate(ctx context.Context, seeds []Item, numOutfits int) ([]Outfit, error) {
	if len(seeds) == 0 {
		return nil, nil
	}

	maxAttempts := s.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = MaxSearchAttempts
	}

	composer := &Composer{Pool: s.Pool, Validator: s.Validator, Score: s.OutfitScore}

	var outfits []Outfit
	var previousIDs map[string]bool
	var ctxErr error

	for attempt := 0; attempt < maxAttempts && len(outfits) < numOutfits; attempt++ {
		if err := ctx.Err(); err != nil {
			ctxErr = err
			break
		}

		items := composer.Compose(seeds)
		ids := itemIDSet(items)
		samePrevious := previousIDs != nil && sameIDSet(ids, previousIDs)
		previousIDs = ids

		if len(items) < 2 || !s.Validator.IsValidCombination(items) {
			if samePrevious {
				break
			}
			continue
		}

		score := s.OutfitScore(items, seeds)

		distinct := true
		for _, existing := range outfits {
			if jaccard(ids, itemIDSet(existing.Items)) > JaccardDistinctBound {
				distinct = false
				break
			}
		}
		if distinct {
			outfits = append(outfits, Outfit{
				Items:       items,
				Score:       score,
				Description: DescribeOutfit(items),
				Occasion:    seeds[0].occasion(),
				ImagePath:   nil,
			})
		} else if samePrevious {
			break
		}
	}

	sort.SliceStable(outfits, func(i, j int) bool {
		return outfits[i].Score > outfits[j].Score
	})
	if len(outfits) > numOutfits {
		outfits = outfits[:numOutfits]
	}
	return outfits, ctxErr
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0.0
	}
	intersection := 0
	for id := range a {
		if b[id] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

func sameIDSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if !b[id] {
			return false
		}
	}
	return true
}
