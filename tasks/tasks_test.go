package tasks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"stylistapi/dbhelper"
	"stylistapi/models"
	"stylistapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringPtr(s string) *string {
	return &s
}

func TestClassifyClothingTaskOk(t *testing.T) {
	os.Setenv("GOOGLE_API_KEY", "fake-test-key")
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUserV2(db, "Tester", "classify@example.com")

	item := models.WardrobeItem{
		OwnerID:          user.ID,
		Status:           "in_closet",
		ImageStatus:      "draft",
		ProcessingStatus: "pending",
		ImageURL:         stringPtr("wardrobe/1/test-image.jpg"),
		Filename:         "wardrobe/1/test-image.jpg",
	}
	db.Create(&item)

	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("fake-jpeg-bytes"))
	}))
	defer mockServer.Close()

	fakeTask, err := NewClothingClassifyTask(item.ID)
	require.NoError(t, err)
	awsServiceMock := &test.AWSProviderMock{MockUrl: mockServer.URL}

	err = HandleClassifyClothingTask(context.Background(), fakeTask, db, test.MockStylistProcessor{}, awsServiceMock, nil)
	assert.NoError(t, err)

	var updated models.WardrobeItem
	require.NoError(t, db.First(&updated, item.ID).Error)
	assert.Equal(t, "completed", updated.ProcessingStatus)
	assert.Equal(t, "uploaded", updated.ImageStatus)
	assert.Equal(t, "top", updated.Category)
	assert.Equal(t, "t-shirt", updated.Subcategory)
	assert.Equal(t, "white", updated.PrimaryColor)
	assert.Equal(t, "solid", updated.Pattern)
	assert.Contains(t, []string(updated.StyleTags), "casual")
	assert.Len(t, []float64(updated.Embedding), 512)
	// auto named from the classification
	assert.Equal(t, "white t-shirt", updated.Name)
	assert.Nil(t, updated.ProcessErrorMessage)
}

func TestClassifyClothingTaskAlreadyCompleted(t *testing.T) {
	os.Setenv("GOOGLE_API_KEY", "fake-test-key")
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUserV2(db, "Tester", "classify2@example.com")

	item := models.WardrobeItem{
		Name:             "Known Tee",
		OwnerID:          user.ID,
		Status:           "in_closet",
		ImageStatus:      "uploaded",
		ProcessingStatus: "completed",
		ImageURL:         stringPtr("wardrobe/1/known.jpg"),
		Filename:         "wardrobe/1/known.jpg",
	}
	db.Create(&item)

	fakeTask, err := NewClothingClassifyTask(item.ID)
	require.NoError(t, err)

	// no mock server needed: the handler must return before any download
	err = HandleClassifyClothingTask(context.Background(), fakeTask, db, test.MockStylistProcessor{}, &test.AWSProviderMock{}, nil)
	assert.NoError(t, err)

	var updated models.WardrobeItem
	require.NoError(t, db.First(&updated, item.ID).Error)
	assert.Equal(t, "Known Tee", updated.Name)
	assert.Equal(t, 0, updated.ProcessRetryTimes)
}

func TestClassifyClothingTaskMissingImage(t *testing.T) {
	os.Setenv("GOOGLE_API_KEY", "fake-test-key")
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUserV2(db, "Tester", "classify3@example.com")

	item := models.WardrobeItem{
		OwnerID:          user.ID,
		Status:           "in_closet",
		ImageStatus:      "draft",
		ProcessingStatus: "pending",
	}
	db.Create(&item)

	fakeTask, err := NewClothingClassifyTask(item.ID)
	require.NoError(t, err)

	err = HandleClassifyClothingTask(context.Background(), fakeTask, db, test.MockStylistProcessor{}, &test.AWSProviderMock{}, nil)
	assert.Error(t, err)

	var updated models.WardrobeItem
	require.NoError(t, db.First(&updated, item.ID).Error)
	assert.Equal(t, 1, updated.ProcessRetryTimes)
	require.NotNil(t, updated.ProcessErrorMessage)
	assert.Contains(t, *updated.ProcessErrorMessage, "upload it again")
}

func TestSaveItemProcessingFailRetryLimit(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUserV2(db, "Tester", "classify4@example.com")

	item := models.WardrobeItem{
		OwnerID:          user.ID,
		Status:           "in_closet",
		ProcessingStatus: "pending",
	}
	db.Create(&item)

	for i := 0; i < 2; i++ {
		var current models.WardrobeItem
		require.NoError(t, db.First(&current, item.ID).Error)
		require.NoError(t, saveItemProcessingFail(db, current, "transient failure", true))
	}
	var current models.WardrobeItem
	require.NoError(t, db.First(&current, item.ID).Error)
	assert.Equal(t, "pending", current.ProcessingStatus)

	require.NoError(t, saveItemProcessingFail(db, current, "transient failure", true))
	require.NoError(t, db.First(&current, item.ID).Error)
	assert.Equal(t, "failed", current.ProcessingStatus)
	assert.Equal(t, 3, current.ProcessRetryTimes)
}

func TestSaveItemProcessingFailNoRetry(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUserV2(db, "Tester", "classify5@example.com")

	item := models.WardrobeItem{
		OwnerID:          user.ID,
		Status:           "in_closet",
		ProcessingStatus: "pending",
	}
	db.Create(&item)

	require.NoError(t, saveItemProcessingFail(db, item, "permanent failure", false))

	var updated models.WardrobeItem
	require.NoError(t, db.First(&updated, item.ID).Error)
	assert.Equal(t, "failed", updated.ProcessingStatus)
	assert.Equal(t, 1, updated.ProcessRetryTimes)
}
