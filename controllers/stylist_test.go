package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"stylistapi/dbhelper"
	"stylistapi/models"
	"stylistapi/recommender"
	"stylistapi/test"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOutfitsOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, test.AWSProviderMock{}, test.URLCacheMock{}, nil, nil, nil)
	user := test.FakeUser(db)

	seed := test.FakeWardrobeItem(db, user.ID, "t-shirt", "top", "white")
	test.FakeWardrobeItem(db, user.ID, "jeans", "bottom", "blue")
	test.FakeWardrobeItem(db, user.ID, "sneakers", "shoes", "white")

	reqBody := GenerateOutfitsIn{
		SeedItemIDs: []string{seed.RecommenderID()},
		Occasion:    "casual",
		NumOutfits:  2,
	}
	req := test.NewJSONAuthRequest("POST", "/api/stylist/generate", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response struct {
		Outfits []recommender.Outfit `json:"outfits"`
		Count   int                  `json:"count"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Greater(t, response.Count, 0, rec.Body.String())
	for _, outfit := range response.Outfits {
		assert.NotEmpty(t, outfit.Items)
		assert.NotEmpty(t, outfit.Description)
	}

	// a finished run leaves an audit snapshot behind
	var snapshots int64
	db.Model(&models.OutfitSnapshot{}).Where("user_account_id = ?", user.ID).Count(&snapshots)
	assert.Equal(t, int64(1), snapshots)
}

func TestGenerateOutfitsEmptyCloset(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, test.AWSProviderMock{}, test.URLCacheMock{}, nil, nil, nil)
	user := test.FakeUser(db)

	reqBody := GenerateOutfitsIn{
		SeedItemIDs: []string{"w1"},
	}
	req := test.NewJSONAuthRequest("POST", "/api/stylist/generate", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestGenerateOutfitsMissingSeeds(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, test.AWSProviderMock{}, test.URLCacheMock{}, nil, nil, nil)
	user := test.FakeUser(db)

	reqBody := GenerateOutfitsIn{
		SeedItemIDs: []string{},
	}
	req := test.NewJSONAuthRequest("POST", "/api/stylist/generate", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateOutfitsUnauthorized(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, test.AWSProviderMock{}, test.URLCacheMock{}, nil, nil, nil)

	reqBody := GenerateOutfitsIn{
		SeedItemIDs: []string{"w1"},
	}
	req := test.NewJSONAuthRequest("POST", "/api/stylist/generate", "", reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStyleCard(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, test.AWSProviderMock{}, test.URLCacheMock{}, nil, nil, nil)
	user := test.FakeUser(db)

	test.FakeWardrobeItem(db, user.ID, "t-shirt", "top", "white")
	test.FakeWardrobeItem(db, user.ID, "polo", "top", "navy")
	test.FakeWardrobeItem(db, user.ID, "jeans", "bottom", "blue")

	req := test.NewJSONAuthRequest("GET", "/api/style-card", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response struct {
		ItemCount  int            `json:"item_count"`
		Categories map[string]int `json:"categories"`
		Colors     map[string]int `json:"colors"`
		Occasions  map[string]int `json:"occasions"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, 3, response.ItemCount)
	assert.Equal(t, 2, response.Categories["top"])
	assert.Equal(t, 1, response.Categories["bottom"])
	assert.Equal(t, 1, response.Colors["white"])
	assert.Equal(t, 3, response.Occasions["casual"])
}

func TestTrendingPublic(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, test.AWSProviderMock{}, test.URLCacheMock{}, nil, nil, nil)

	imageURL := "catalog/denim-jacket.jpg"
	item := models.CatalogItem{
		Name:     "Denim Jacket",
		Brand:    "Acme",
		ImageURL: &imageURL,
		Filename: imageURL,
		Active:   true,
		ItemAttributes: models.ItemAttributes{
			Category:     "outerwear",
			Subcategory:  "denim jacket",
			StyleTags:    pq.StringArray{"casual"},
			Pattern:      "solid",
			PrimaryColor: "blue",
			Occasion:     "casual",
			Tradition:    "western",
			Fit:          "regular",
		},
	}
	require.NoError(t, db.Create(&item).Error)

	// no auth header on purpose
	req := test.NewJSONRequest("GET", "/api/trending", "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response struct {
		Items []map[string]interface{} `json:"items"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response.Items, 1)
	assert.Equal(t, "Denim Jacket", response.Items[0]["name"])
	assert.Equal(t, item.RecommenderID(), response.Items[0]["id"])
	assert.NotEmpty(t, response.Items[0]["uri"])
}

func TestHealth(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, test.AWSProviderMock{}, test.URLCacheMock{}, nil, nil, nil)

	req := test.NewJSONRequest("GET", "/api/health", "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
