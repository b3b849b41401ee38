package models

import (
	"fmt"

	"github.com/lib/pq"

	"stylistapi/recommender"
)

// ItemAttributes holds the classifier output shared by wardrobe and
// catalog items. Embedded so both tables stay column-compatible.
type ItemAttributes struct {
	Category          string         `json:"category"`
	Subcategory       string         `json:"subcategory"`
	StyleTags         pq.StringArray `gorm:"type:text[]" json:"style_tags"`
	Pattern           string         `json:"pattern"`
	PatternConfidence float64        `json:"pattern_confidence"`
	PrimaryColor      string         `json:"primary_color"`
	Occasion          string         `json:"occasion"`
	Tradition         string         `json:"tradition"`
	Fit               string         `json:"fit"`

	// CLIP-style vector produced alongside classification
	Embedding pq.Float64Array `gorm:"type:float8[]" json:"-"`
}

type WardrobeItem struct {
	JsonModel
	ItemAttributes
	Name                string      `json:"name"`
	Owner               UserAccount `json:"-"`
	OwnerID             uint        `json:"-"`
	Status              string      `json:"status"`            // temporary, in_closet
	ImageStatus         string      `json:"image_status"`      // draft, uploaded
	ProcessingStatus    string      `json:"processing_status"` // idle, classifying, completed, failed
	ProcessRetryTimes   int         `json:"process_retry_times"`
	ProcessErrorMessage *string     `json:"process_error_message"`
	ImageURL            *string     `json:"image_url"`
	Filename            string      `json:"filename"`
}

type CatalogItem struct {
	JsonModel
	ItemAttributes
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	ImageURL *string `json:"image_url"`
	Filename string  `json:"filename"`
	Active   bool    `gorm:"default:true" json:"active"`
}

// OutfitSnapshot is the audit row for one generation request.
type OutfitSnapshot struct {
	JsonModel
	UserAccountID uint           `json:"-"`
	UserAccount   UserAccount    `json:"user_account"`
	SeedItemIDs   pq.StringArray `gorm:"type:text[]" json:"seed_item_ids"`
	Occasion      string         `json:"occasion"`
	OutfitCount   int            `json:"outfit_count"`
	BestScore     float64        `json:"best_score"`
	OutfitsJSON   string         `gorm:"type:text" json:"-"`
}

// Wardrobe and catalog rows live in separate tables with overlapping
// numeric ids, so the recommender sees prefixed string ids instead.
func (w *WardrobeItem) RecommenderID() string {
	return fmt.Sprintf("w%d", w.ID)
}

func (c *CatalogItem) RecommenderID() string {
	return fmt.Sprintf("c%d", c.ID)
}

func (a ItemAttributes) toRecommenderItem(id, filename string) recommender.Item {
	return recommender.Item{
		ID:                id,
		Category:          a.Category,
		Subcategory:       a.Subcategory,
		StyleTags:         []string(a.StyleTags),
		Pattern:           a.Pattern,
		PatternConfidence: a.PatternConfidence,
		PrimaryColor:      a.PrimaryColor,
		Occasion:          a.Occasion,
		Tradition:         a.Tradition,
		Fit:               a.Fit,
		Filename:          filename,
	}
}

func (w *WardrobeItem) ToRecommenderItem() recommender.Item {
	return w.ItemAttributes.toRecommenderItem(w.RecommenderID(), w.Filename)
}

func (c *CatalogItem) ToRecommenderItem() recommender.Item {
	return c.ItemAttributes.toRecommenderItem(c.RecommenderID(), c.Filename)
}
