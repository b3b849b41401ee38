package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"stylistapi/models"
	"stylistapi/services"
	"stylistapi/telegram"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ClothingClassifyPayload struct {
	ItemID uint `json:"item_id"`
}

// NewClothingClassifyTask enqueues a wardrobe item for classification.
func NewClothingClassifyTask(itemID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(ClothingClassifyPayload{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask("stylist:classify", payload), nil
}

func getFileForItem(awsService services.AWSServiceProvider, item models.WardrobeItem) ([]byte, string, error) {
	bucketName := os.Getenv("R2_BUCKET_NAME")
	fmt.Printf("[Item: %v] Bucket name: %s\n", item.ID, bucketName)
	fmt.Printf("[Item: %v] Request presigned download url.. ", item.ID)
	if item.ImageURL == nil {
		return nil, "", fmt.Errorf("[Item: %v] Image URL is nil", item.ID)
	}
	fileUrl, err := awsService.GetPresignedR2FileReadURL(context.TODO(), bucketName, *item.ImageURL)
	fileName := filepath.Base(*item.ImageURL)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on getting presigned URL for file %s", item.ID, *item.ImageURL))
		return nil, fileName, err
	}
	fmt.Printf("Downloading... %s\n", fileUrl)
	fileBytes, err := services.ReadFileFromUrl(fileUrl)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on downloading file %s: %v", item.ID, *item.ImageURL, err))
		return nil, fileName, err
	}

	return fileBytes, fileName, nil
}

// HandleClassifyClothingTask downloads the item photo, classifies it with the
// LLM, computes its embedding and stores everything back on the row.
func HandleClassifyClothingTask(
	ctx context.Context, t *asynq.Task, db *gorm.DB, stylist services.LLMStylistProcessor,
	awsService services.AWSServiceProvider, fbApp *firebase.App) error {
	google_key := os.Getenv("GOOGLE_API_KEY")
	if google_key == "" {
		sentry.CaptureException(fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload())))
		return fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload()))
	}
	var payload ClothingClassifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[Item: %v] Start Classifying\n", payload.ItemID)
	var item models.WardrobeItem
	res := db.First(&item, payload.ItemID)
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving wardrobe item for classifying %v", payload.ItemID))
		return res.Error
	}
	if item.ProcessingStatus == "completed" {
		fmt.Printf("[Item: %v] Already classified\n", payload.ItemID)
		return nil
	}

	fileBytes, fileName, err := getFileForItem(awsService, item)
	if err != nil {
		saveItemProcessingFail(db, item, "Failed to read item photo, please upload it again", true)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on getting file %s: %v", payload.ItemID, item.Filename, err))
		return err
	}
	fmt.Printf("[Item: %v] Downloaded file size: %d bytes\n", payload.ItemID, len(fileBytes))

	filePath, err := services.CreateTempFile(fileBytes, fileName)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on creating temp file %s: %v", payload.ItemID, fileName, err))
		return err
	}
	defer os.Remove(filePath)

	model := services.Flash25
	fmt.Printf("[Item: %v] Model: %s\n", payload.ItemID, model.String())

	item.ImageStatus = "uploaded"
	item.ProcessingStatus = "classifying"
	if err := db.Save(&item).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on saving item mid classify %v", payload.ItemID, err))
	}

	classification, err := stylist.ClassifyClothing(filePath, model)
	if err != nil {
		fmt.Printf("[Item: %v] Error on classifying item %s: %v\n", payload.ItemID, item.Filename, err)
		saveItemProcessingFail(db, item, "Failed to analyze the item photo, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on classifying item %s: %v", payload.ItemID, item.Filename, err))
		return err
	}
	if classification == nil {
		fmt.Printf("[Item: %v] Classification is nil but no error provided\n", payload.ItemID)
		// the item still participates in recommendations with neutral defaults
		classification = services.NeutralClassification()
	}
	fmt.Printf("[Item: %v] LLM Classified: %s/%s, color: %s, IT: %d, OT: %d, TT: %d\n",
		payload.ItemID, classification.Category, classification.Subcategory, classification.PrimaryColor,
		classification.InputTokenCount, classification.OutputTokenCount, classification.TotalTokenCount)

	item.Category = classification.Category
	item.Subcategory = classification.Subcategory
	item.StyleTags = pq.StringArray(classification.StyleTags)
	item.Pattern = classification.Pattern
	item.PatternConfidence = classification.PatternConfidence
	item.PrimaryColor = classification.PrimaryColor
	item.Occasion = classification.Occasion
	item.Tradition = classification.Tradition
	item.Fit = classification.Fit
	if item.Name == "" {
		item.Name = fmt.Sprintf("%s %s", classification.PrimaryColor, classification.Subcategory)
	}

	embedding, err := stylist.EmbedClothing(ctx, services.DescribeForEmbedding(classification))
	if err != nil {
		// embedding is an enhancement, classification alone is enough to recommend
		fmt.Printf("[Item: %v] Error on embedding item: %v\n", payload.ItemID, err)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on embedding item: %v", payload.ItemID, err))
	} else {
		item.Embedding = pq.Float64Array(embedding)
	}

	item.ProcessingStatus = "completed"
	item.ProcessErrorMessage = nil
	tx := db.Save(&item)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on saving wardrobe item %v", payload.ItemID))
		return tx.Error
	}
	fmt.Printf("[Item: %v] Classifying finished succesfully..", payload.ItemID)

	var owner models.UserAccount
	if db.First(&owner, item.OwnerID).Error == nil && owner.ReceiveNotifications {
		fmt.Printf("[Item: %v] Sending notification to user %v\n", payload.ItemID, item.OwnerID)
		services.SendNotification(fbApp, db, item.OwnerID, "Item Added to Your Closet",
			fmt.Sprintf("Your %s is ready, generate an outfit with it", item.Name),
			map[string]string{"item_id": fmt.Sprintf("%d", item.ID), "type": "item_classified"})
	}
	return nil
}

func saveItemProcessingFail(db *gorm.DB, item models.WardrobeItem, msg string, shouldRetry bool) error {
	item.ProcessRetryTimes = item.ProcessRetryTimes + 1
	item.ProcessErrorMessage = &msg
	if !shouldRetry || item.ProcessRetryTimes >= 3 {

		item.ProcessingStatus = "failed"
		telegram.NotifyOps(fmt.Sprintf("Wardrobe item %v classification failed permanently: %s", item.ID, msg))
	}
	tx := db.Save(&item)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Item %v] Error on saving item for failed status", item.ID))
		return tx.Error
	}
	return nil
}

// ScheduledStyleDigestTask nudges users who have a ready closet but no recent
// outfit snapshots.
func ScheduledStyleDigestTask(ctx context.Context, t *asynq.Task, db *gorm.DB, fbApp *firebase.App) error {

	fmt.Printf("[Style Digest] Processing for all users\n")

	var users []models.UserAccount
	result := db.Where("banned = ? AND receive_notifications = ?", false, true).Find(&users)
	if result.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Style Digest] Error fetching users: %v", result.Error))
		return result.Error
	}

	fmt.Printf("[Style Digest] Found %d users to check\n", len(users))

	for _, user := range users {
		var itemCount int64
		if err := db.Model(&models.WardrobeItem{}).Where("owner_id = ? AND processing_status = ?", user.ID, "completed").Count(&itemCount).Error; err != nil {
			continue
		}
		if itemCount < 3 {
			continue
		}
		var recentSnapshots int64
		weekAgo := time.Now().AddDate(0, 0, -7)
		db.Model(&models.OutfitSnapshot{}).Where("user_account_id = ? AND created_at > ?", user.ID, weekAgo).Count(&recentSnapshots)
		if recentSnapshots > 0 {
			continue
		}

		fmt.Printf("[Style Digest] Sending digest to user %d (%v items)\n", user.ID, itemCount)
		services.SendNotification(fbApp, db, user.ID, "Fresh Outfit Ideas",
			fmt.Sprintf("You have %v items ready, let the stylist mix them into new outfits", itemCount),
			map[string]string{"type": "style_digest"})
		time.Sleep(1 * time.Second) // To avoid hitting rate limits
	}

	return nil
}
