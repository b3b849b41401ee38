package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newValidator() *Validator {
	return &Validator{Rules: DefaultRuleSet()}
}

func catItem(id, category string) Item {
	return Item{ID: id, Category: category}
}

func TestValidatorEmptySet(t *testing.T) {
	v := newValidator()
	assert.False(t, v.IsValidCombination(nil))
	assert.False(t, v.IsValidCombination([]Item{}))
}

func TestValidatorDuplicateIDs(t *testing.T) {
	v := newValidator()
	items := []Item{catItem("1", "top"), catItem("1", "shoes")}
	assert.False(t, v.IsValidCombination(items))
}

func TestValidatorDressWithTopRejected(t *testing.T) {
	v := newValidator()
	// forbidden pair, the seed exemption only covers top/top
	items := []Item{catItem("1", "dress"), catItem("2", "top")}
	assert.False(t, v.IsValidCombination(items))
}

func TestValidatorDressWithBottomRejected(t *testing.T) {
	v := newValidator()
	items := []Item{catItem("1", "dress"), catItem("2", "shoes"), catItem("3", "bottom")}
	assert.False(t, v.IsValidCombination(items))
}

func TestValidatorEthnicSetsExclusive(t *testing.T) {
	v := newValidator()
	assert.False(t, v.IsValidCombination([]Item{catItem("1", "lehenga_set"), catItem("2", "top")}))
	assert.False(t, v.IsValidCombination([]Item{catItem("1", "saree"), catItem("2", "bottom")}))
	assert.True(t, v.IsValidCombination([]Item{catItem("1", "saree"), catItem("2", "shoes"), catItem("3", "bag")}))
}

func TestValidatorTwoSeedTopsAllowed(t *testing.T) {
	v := newValidator()
	items := []Item{catItem("1", "top"), catItem("2", "top")}
	assert.True(t, v.IsValidCombination(items))
}

func TestValidatorTwoSeedTopsWithFilledSlots(t *testing.T) {
	v := newValidator()
	items := []Item{
		catItem("1", "top"), catItem("2", "top"),
		catItem("3", "bottom"), catItem("4", "shoes"),
	}
	assert.True(t, v.IsValidCombination(items))
}

func TestValidatorThreeTopsRejected(t *testing.T) {
	v := newValidator()
	items := []Item{catItem("1", "top"), catItem("2", "top"), catItem("3", "top")}
	assert.False(t, v.IsValidCombination(items))
}

func TestValidatorAppendedTopAfterSeedsRejected(t *testing.T) {
	v := newValidator()
	// one seed top plus a top appended later (position 2) with no outerwear
	items := []Item{catItem("1", "top"), catItem("2", "shoes"), catItem("3", "top")}
	assert.False(t, v.IsValidCombination(items))
}

func TestValidatorOuterwearLayersOverTop(t *testing.T) {
	v := newValidator()
	items := []Item{
		catItem("1", "top"), catItem("2", "bottom"),
		catItem("3", "outerwear"), catItem("4", "shoes"),
	}
	assert.True(t, v.IsValidCombination(items))
}

func TestValidatorFullCasualOutfit(t *testing.T) {
	v := newValidator()
	items := []Item{
		catItem("1", "top"), catItem("2", "bottom"), catItem("3", "shoes"),
		catItem("4", "accessories"), catItem("5", "bag"),
	}
	assert.True(t, v.IsValidCombination(items))
}
