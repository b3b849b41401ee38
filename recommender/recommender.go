package recommender

import (
	"context"
	"fmt"
	"strings"

	"stylistapi/languageutil"

	"github.com/getsentry/sentry-go"
)

// CollageRenderer turns an outfit's item images into one composite preview
// image. Rendering is best effort: a failure keeps the outfit, just without an
// image.
type CollageRenderer interface {
	RenderCollage(ctx context.Context, items []Item, outfitIdx int) (string, error)
}

// SnapshotWriter persists an audit record of a finished recommendation run.
// Failures are logged and swallowed, never surfaced to the caller.
type SnapshotWriter interface {
	SaveSnapshot(ctx context.Context, seedIDs []string, occasion string, outfits []Outfit) error
}

// Recommender is the thin coordination layer the request handlers call into.
type Recommender struct {
	Pool  *ItemPool
	Store *EmbeddingStore
	Rules *RuleSet

	Collage  CollageRenderer // optional
	Snapshot SnapshotWriter  // optional
}

// RecommendOutfits resolves the seed ids, runs the outfit search and attaches
// collage images. Seed ids that resolve in neither pool are skipped; if none
// resolve the result is an empty list, not an error, so callers can fall back
// to another strategy.
func (r *Recommender) RecommendOutfits(ctx context.Context, seedIDs []string, occasion string, numOutfits int) ([]Outfit, error) {
	if occasion == "" {
		occasion = "casual"
	}
	if numOutfits <= 0 {
		numOutfits = 3
	}
	fmt.Printf("[Stylist] Generating outfits, seeds: %v, occasion: %s, count: %d\n", seedIDs, occasion, numOutfits)

	var seeds []Item
	for _, id := range seedIDs {
		item, ok := r.Pool.FindByID(id)
		if !ok {
			fmt.Printf("[Stylist] Seed item %s not found in wardrobe or catalog, skipping\n", id)
			continue
		}
		seeds = append(seeds, item)
	}
	if len(seeds) == 0 {
		fmt.Println("[Stylist] No seed items resolved, returning empty result")
		return []Outfit{}, nil
	}

	search := NewSearch(r.Pool, r.Store, r.Rules)
	outfits, err := search.Generate(ctx, seeds, numOutfits)
	if err != nil {
		return outfits, err
	}

	for i := range outfits {
		if r.Collage == nil {
			break
		}
		path, renderErr := r.Collage.RenderCollage(ctx, outfits[i].Items, i)
		if renderErr != nil {
			fmt.Printf("[Stylist] Collage rendering failed for outfit %d: %v\n", i+1, renderErr)
			sentry.CaptureException(renderErr)
			continue
		}
		outfits[i].ImagePath = &path
	}

	if r.Snapshot != nil {
		if snapErr := r.Snapshot.SaveSnapshot(ctx, seedIDs, occasion, outfits); snapErr != nil {
			fmt.Printf("[Stylist] Could not save outfit snapshot: %v\n", snapErr)
			sentry.CaptureException(snapErr)
		}
	}

	fmt.Printf("[Stylist] Generated %d outfit(s)\n", len(outfits))
	return outfits, nil
}

// DescribeOutfit builds the human readable outfit line, one entry per item:
// "Top - Shirt (Blue) + Bottom - Jeans (Navy) + ..."
func DescribeOutfit(items []Item) string {
	if len(items) == 0 {
		return "Empty outfit"
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s - %s (%s)",
			languageutil.HumanizeLabel(it.Category),
			languageutil.HumanizeLabel(it.Subcategory),
			languageutil.HumanizeLabel(it.color()),
		))
	}
	return strings.Join(parts, " + ")
}

// Summary renders a short multi-line report of a recommendation run.
func Summary(outfits []Outfit) string {
	if len(outfits) == 0 {
		return "No recommendations generated."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Generated %d outfit recommendations:\n", len(outfits))
	for i, outfit := range outfits {
		fmt.Fprintf(&b, "\nOutfit %d (Score: %.2f):\n", i+1, outfit.Score)
		fmt.Fprintf(&b, "  %s\n", outfit.Description)
		fmt.Fprintf(&b, "  Occasion: %s\n", outfit.Occasion)
		if outfit.ImagePath != nil {
			fmt.Fprintf(&b, "  Image: %s\n", *outfit.ImagePath)
		}
	}
	return b.String()
}
