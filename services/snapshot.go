package services

import (
	"context"
	"encoding/json"
	"fmt"

	"stylistapi/models"
	"stylistapi/recommender"

	"github.com/getsentry/sentry-go"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// SnapshotService persists one audit row per generation request. It satisfies
// recommender.SnapshotWriter.
type SnapshotService struct {
	DB     *gorm.DB
	UserID uint
}

func (ss *SnapshotService) SaveSnapshot(ctx context.Context, seedIDs []string, occasion string, outfits []recommender.Outfit) error {
	bestScore := 0.0
	if len(outfits) > 0 {
		bestScore = outfits[0].Score
	}

	outfitsJSON, err := json.Marshal(outfits)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[User: %v] error marshaling outfit snapshot: %w", ss.UserID, err))
		return fmt.Errorf("failed to marshal outfits: %v", err)
	}

	snapshot := models.OutfitSnapshot{
		UserAccountID: ss.UserID,
		SeedItemIDs:   pq.StringArray(seedIDs),
		Occasion:      occasion,
		OutfitCount:   len(outfits),
		BestScore:     bestScore,
		OutfitsJSON:   string(outfitsJSON),
	}
	result := ss.DB.WithContext(ctx).Create(&snapshot)
	if result.Error != nil {
		sentry.CaptureException(fmt.Errorf("[User: %v] error saving outfit snapshot: %w", ss.UserID, result.Error))
		return result.Error
	}
	return nil
}
