package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"stylistapi/models"
	"stylistapi/services"
	"stylistapi/tasks"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const freeWardrobeLimit = 10

type CreateWardrobeItemIn struct {
	Name     string  `json:"name" validate:"omitempty,max=100"`
	FileName *string `json:"file_name" validate:"required,max=200"`
}

type WardrobeItemResponse struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Category          string   `json:"category"`
	Subcategory       string   `json:"subcategory"`
	StyleTags         []string `json:"style_tags"`
	Pattern           string   `json:"pattern"`
	PatternConfidence float64  `json:"pattern_confidence"`
	PrimaryColor      string   `json:"primary_color"`
	Occasion          string   `json:"occasion"`
	Tradition         string   `json:"tradition"`
	Fit               string   `json:"fit"`
	ProcessingStatus  string   `json:"processing_status"`
	Uri               *string  `json:"uri,omitempty"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

type WardrobeItemCreatedResponse struct {
	Item          WardrobeItemResponse `json:"item"`
	FileUploadUrl string               `json:"file_upload_url"`
}

type WardrobeController struct {
	AWSService  services.AWSServiceProvider
	FirebaseApp *firebase.App
	URLCache    services.URLCacheServiceProvider
}

func (controller *WardrobeController) WardrobeRoutes(g *echo.Group) {
	g.POST("/upload", controller.CreateItem)
	g.GET("", controller.ListItems)
	g.DELETE("/:itemId", controller.DeleteItem)
}

func (controller *WardrobeController) CreateItem(c echo.Context) error {
	var req CreateWardrobeItemIn
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
	asynqClient, ok := c.Get("__asynqclient").(*asynq.Client)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Service is not available, please try again a bit later"})
	}

	if req.FileName == nil || *req.FileName == "" {
		sentry.CaptureException(fmt.Errorf("Image was not provided when creating wardrobe item %s, user %v", req.Name, user.ID))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Sorry, it seems image was not provided, please try again"})
	}
	if !services.IsAllowedImage(*req.FileName) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unsupported image format"})
	}

	subscription := models.Free
	if user.Subscription != nil {
		subscription = models.Subscription(*user.Subscription)
	}
	if subscription == models.Free {
		var totalItemCount int64
		if err := db.Model(&models.WardrobeItem{}).Where("owner_id = ?", user.ID).Count(&totalItemCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get wardrobe data"})
		}
		fmt.Printf("[User %v] Free plan, wardrobe count: %v", user.ID, totalItemCount)
		if totalItemCount >= freeWardrobeLimit {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the free limit of %v wardrobe items, please subscribe", freeWardrobeLimit)})
		}
	}

	var bucketName = services.GetEnv("R2_BUCKET_NAME", "")
	safeFileName := fmt.Sprintf("wardrobe/%v/%s", user.ID, *req.FileName)

	uploadUrl, presignErr := controller.AWSService.PresignLink(context.Background(), bucketName, safeFileName)
	if presignErr != nil {
		log.Printf("Unable to presign upload for %s!, %s", req.Name, presignErr)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"message": "Error while creating wardrobe item with attachment",
		})
	}

	item := models.WardrobeItem{
		Name:             req.Name,
		OwnerID:          user.ID,
		Status:           "in_closet",
		ImageStatus:      "draft",
		ProcessingStatus: "pending",
		ImageURL:         &safeFileName,
		Filename:         safeFileName,
	}
	if err := db.Create(&item).Error; err != nil {
		sentry.CaptureException(err)
		return err
	}

	task, err := tasks.NewClothingClassifyTask(item.ID)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process wardrobe item, please try again"})
	}
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("classify"))
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process wardrobe item, please try again"})
	}
	fmt.Println("[Queue] Classify wardrobe item task submitted, Item ID: ", item.ID, " Task ID: ", info.ID)

	response := WardrobeItemCreatedResponse{
		Item:          controller.toItemResponse(item, &uploadUrl),
		FileUploadUrl: uploadUrl,
	}

	return c.JSON(http.StatusCreated, response)
}

func (controller *WardrobeController) toItemResponse(item models.WardrobeItem, uri *string) WardrobeItemResponse {
	return WardrobeItemResponse{
		ID:                item.RecommenderID(),
		Name:              item.Name,
		Category:          item.Category,
		Subcategory:       item.Subcategory,
		StyleTags:         []string(item.StyleTags),
		Pattern:           item.Pattern,
		PatternConfidence: item.PatternConfidence,
		PrimaryColor:      item.PrimaryColor,
		Occasion:          item.Occasion,
		Tradition:         item.Tradition,
		Fit:               item.Fit,
		ProcessingStatus:  item.ProcessingStatus,
		Uri:               uri,
		CreatedAt:         item.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:         item.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// populatePresignedItemImages enriches raw wardrobe rows with presigned URLs
// concurrently, with a direct R2 fallback when the cache system itself fails.
func (controller *WardrobeController) populatePresignedItemImages(ctx context.Context, items []models.WardrobeItem) []WardrobeItemResponse {
	if len(items) == 0 {
		return []WardrobeItemResponse{}
	}

	var wg sync.WaitGroup
	processedResponses := make([]WardrobeItemResponse, len(items))
	bucketName := services.GetEnv("R2_BUCKET_NAME", "")

	for i, wardrobeItem := range items {
		wg.Add(1)
		go func(index int, item models.WardrobeItem) {
			defer wg.Done()

			var imageUrl string
			if item.ImageURL != nil && *item.ImageURL != "" {
				objectKey := *item.ImageURL

				url, err := controller.URLCache.GetReadURL(ctx, objectKey)

				if err == nil {
					imageUrl = url
				} else {
					log.Printf("CACHE WARNING: Cache system failed for key '%s': %v. Triggering manual R2 fallback.", objectKey, err)

					sentry.WithScope(func(scope *sentry.Scope) {
						scope.SetTag("failure_type", "cache_system")
						scope.SetExtra("objectKey", objectKey)
						sentry.CaptureException(err)
					})

					fallbackUrl, fallbackErr := controller.AWSService.GetPresignedR2FileReadURL(ctx, bucketName, objectKey)
					if fallbackErr != nil {
						log.Printf("CRITICAL: Manual R2 fallback also failed for key '%s': %v", objectKey, fallbackErr)
						sentry.CaptureException(fallbackErr)
						// imageUrl remains empty, but we don't fail the entire request
					} else {
						imageUrl = fallbackUrl
					}
				}
			}
			processedResponses[index] = controller.toItemResponse(item, &imageUrl)
		}(i, wardrobeItem)
	}

	wg.Wait()
	return processedResponses
}

func (controller *WardrobeController) ListItems(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	var items []models.WardrobeItem
	if err := db.Where("owner_id = ?", user.ID).Order("created_at desc").Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe items"})
	}

	processedResponses := controller.populatePresignedItemImages(c.Request().Context(), items)

	// group by category for the closet UI
	grouped := map[string][]WardrobeItemResponse{}
	for _, item := range processedResponses {
		category := item.Category
		if category == "" {
			category = "unclassified"
		}
		grouped[category] = append(grouped[category], item)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items":   processedResponses,
		"grouped": grouped,
		"count":   len(processedResponses),
	})
}

func (controller *WardrobeController) DeleteItem(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	var itemId uint
	if err := echo.PathParamsBinder(c).Uint("itemId", &itemId).BindError(); err != nil {
		return echo.ErrBadRequest
	}

	var item models.WardrobeItem
	result := db.Where("id = ? AND owner_id = ?", itemId, user.ID).Take(&item)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Wardrobe item not found"})
	}
	if result.Error != nil {
		fmt.Println("Failed to fetch wardrobe item", result.Error)
		return echo.ErrInternalServerError
	}

	if err := db.Delete(&item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete wardrobe item"})
	}
	fmt.Printf("[Item: %v] deleted by user %v\n", item.ID, user.ID)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "deleted",
		"id":      item.RecommenderID(),
	})
}
