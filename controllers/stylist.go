package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"stylistapi/models"
	"stylistapi/recommender"
	"stylistapi/services"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type GenerateOutfitsIn struct {
	SeedItemIDs []string `json:"seed_item_ids" validate:"required,min=1"`
	Occasion    string   `json:"occasion" validate:"omitempty,max=50"`
	NumOutfits  int      `json:"num_outfits" validate:"omitempty,min=1,max=10"`
}

type StylistController struct {
	AWSService  services.AWSServiceProvider
	FirebaseApp *firebase.App
	URLCache    services.URLCacheServiceProvider
}

func (controller *StylistController) StylistRoutes(g *echo.Group) {
	g.POST("/generate", controller.GenerateOutfits)
}

// loadItemPool reads the user's classified wardrobe plus the active catalog
// into the in-memory pool and embedding store the search runs against.
func loadItemPool(db *gorm.DB, userID uint) (*recommender.ItemPool, *recommender.EmbeddingStore, error) {
	var wardrobeRows []models.WardrobeItem
	if err := db.Where("owner_id = ? AND processing_status = ?", userID, "completed").Find(&wardrobeRows).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to fetch wardrobe items: %w", err)
	}
	var catalogRows []models.CatalogItem
	if err := db.Where("active = true").Find(&catalogRows).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to fetch catalog items: %w", err)
	}

	pool := &recommender.ItemPool{}
	store := recommender.NewEmbeddingStore()
	for i := range wardrobeRows {
		row := &wardrobeRows[i]
		pool.Wardrobe = append(pool.Wardrobe, row.ToRecommenderItem())
		if len(row.Embedding) > 0 {
			store.AddWardrobe(row.RecommenderID(), []float64(row.Embedding))
		}
	}
	for i := range catalogRows {
		row := &catalogRows[i]
		pool.Catalog = append(pool.Catalog, row.ToRecommenderItem())
		if len(row.Embedding) > 0 {
			store.AddCatalog(row.RecommenderID(), []float64(row.Embedding))
		}
	}
	return pool, store, nil
}

func (controller *StylistController) GenerateOutfits(c echo.Context) error {
	var req GenerateOutfitsIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	pool, store, err := loadItemPool(db, user.ID)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load your wardrobe, please try again"})
	}
	if len(pool.Wardrobe) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Your closet is empty, upload a few items first"})
	}

	rec := &recommender.Recommender{
		Pool:     pool,
		Store:    store,
		Rules:    recommender.DefaultRuleSet(),
		Collage:  services.NewCollageService(controller.URLCache, controller.AWSService, fmt.Sprintf("collages/%v", user.ID)),
		Snapshot: &services.SnapshotService{DB: db, UserID: user.ID},
	}

	outfits, err := rec.RecommendOutfits(c.Request().Context(), req.SeedItemIDs, req.Occasion, req.NumOutfits)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[User: %v] outfit generation failed: %w", user.ID, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate outfits, please try again"})
	}
	fmt.Printf("[User: %v] generated %v outfits for seeds %v\n", user.ID, len(outfits), req.SeedItemIDs)

	return c.JSON(http.StatusOK, echo.Map{
		"outfits": outfits,
		"count":   len(outfits),
		"summary": recommender.Summary(outfits),
	})
}

// TrendingRoutes are the unauthenticated discovery endpoints.
func (controller *StylistController) TrendingRoutes(e *echo.Echo) {
	e.GET("/api/trending", func(c echo.Context) error {
		db := c.Get("__db").(*gorm.DB)

		var items []models.CatalogItem
		if err := db.Where("active = true").Order("created_at desc").Limit(20).Find(&items).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch trending items"})
		}

		responses := make([]echo.Map, 0, len(items))
		for i := range items {
			item := &items[i]
			var uri string
			if item.ImageURL != nil && *item.ImageURL != "" {
				url, err := controller.URLCache.GetReadURL(c.Request().Context(), *item.ImageURL)
				if err == nil {
					uri = url
				}
			}
			responses = append(responses, echo.Map{
				"id":            item.RecommenderID(),
				"name":          item.Name,
				"brand":         item.Brand,
				"category":      item.Category,
				"subcategory":   item.Subcategory,
				"primary_color": item.PrimaryColor,
				"occasion":      item.Occasion,
				"uri":           uri,
			})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"items": responses,
		})
	})

	e.GET("/api/health", func(c echo.Context) error {
		db := c.Get("__db").(*gorm.DB)
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
}

// StyleCard summarizes a user's closet: category and color breakdown plus the
// occasions they are covered for.
func (controller *StylistController) StyleCard(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	var items []models.WardrobeItem
	result := db.Where("owner_id = ? AND processing_status = ?", user.ID, "completed").Find(&items)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe items"})
	}

	categories := map[string]int{}
	colors := map[string]int{}
	occasions := map[string]int{}
	styleTags := map[string]int{}
	for i := range items {
		item := &items[i]
		if item.Category != "" {
			categories[item.Category]++
		}
		if item.PrimaryColor != "" {
			colors[item.PrimaryColor]++
		}
		if item.Occasion != "" {
			occasions[item.Occasion]++
		}
		for _, tag := range item.StyleTags {
			styleTags[tag]++
		}
	}

	var snapshots int64
	db.Model(&models.OutfitSnapshot{}).Where("user_account_id = ?", user.ID).Count(&snapshots)

	return c.JSON(http.StatusOK, echo.Map{
		"item_count":        len(items),
		"categories":        categories,
		"colors":            colors,
		"occasions":         occasions,
		"style_tags":        styleTags,
		"outfits_generated": snapshots,
	})
}
