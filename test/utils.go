package test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"stylistapi/models"
	"stylistapi/services"

	"github.com/golang-jwt/jwt/v4"
	"github.com/lib/pq"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {

	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(userPk string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		log.Fatalf("Error when signing user token for %s. Error %s ", userPk, err)
	}
	return t
}

func NewJSONAuthRequest(method string, target string, userPk string, param interface{}) *http.Request {
	log.Println(JsonString(param))
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	token := GenerateUserToken(userPk)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	return req
}

func NewJSONAuthRequestCustomAuth(method string, target string, authorizationString string, param interface{}) *http.Request {
	log.Println(JsonString(param))
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", authorizationString)
	return req
}

func NewJSONAuthRequestRaw(method string, target string, userPk string, json string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(json))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	token := GenerateUserToken(userPk)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	return req
}

func NewRefString(data string) *string {
	return &data
}

func FakeUser(db *gorm.DB) *models.UserAccount {
	user := &models.UserAccount{
		Name:                 "OurName",
		Email:                "email@example.com",
		GoogleID:             "12232",
		Platform:             models.PlatformIOS,
		LastIp:               "123.122.122.122",
		Status:               "FINISHED_AUTH",
		AvatarURL:            "pictureurl",
		ReceiveNotifications: true,
	}
	db.Create(&user)
	tokenDb := models.UserPushToken{
		UserAccountID: user.ID,
		Platform:      "android",
		Token:         "cX-UZ3zwQEiPt-2GJkG2gA:APA91bGqRflaGrJrnynhRwZ442HdgUjVcO7mWMFnx6IwAdJ9RRKopvSP4QU7hbvTmk1XAp8XGvtHZLvo5JmOPTVKBbGqqvhfbZWKlXA9csEjx1hgpNvrWepU-rqG1sxS8_WCF5cGZchf",
		Active:        true,
	}
	db.Save(&tokenDb)

	return user
}

func FakeUserV2(db *gorm.DB, userName string, email string) *models.UserAccount {

	if email == "" {
		email = "email@example.com"
	}
	user := &models.UserAccount{
		Name:      userName,
		Email:     email,
		GoogleID:  "12232",
		Platform:  models.PlatformIOS,
		LastIp:    "123.122.122.122",
		Status:    "FINISHED_AUTH",
		AvatarURL: "pictureurl",
	}
	db.Create(&user)
	return user
}

// FakeWardrobeItem creates a classified item ready for recommendations.
func FakeWardrobeItem(db *gorm.DB, ownerID uint, name string, category string, color string) *models.WardrobeItem {
	imageURL := fmt.Sprintf("wardrobe/%v/%s.jpg", ownerID, strings.ReplaceAll(name, " ", "-"))
	item := &models.WardrobeItem{
		Name:             name,
		OwnerID:          ownerID,
		Status:           "in_closet",
		ImageStatus:      "uploaded",
		ProcessingStatus: "completed",
		ImageURL:         &imageURL,
		Filename:         imageURL,
		ItemAttributes: models.ItemAttributes{
			Category:          category,
			Subcategory:       name,
			StyleTags:         pq.StringArray{"casual"},
			Pattern:           "solid",
			PatternConfidence: 0.9,
			PrimaryColor:      color,
			Occasion:          "casual",
			Tradition:         "western",
			Fit:               "regular",
		},
	}
	db.Create(&item)
	return item
}

func Contains(items []string, lookFor string) bool {

	for i := 0; i < len(items); i++ {

		if items[i] == lookFor {
			return true
		}
	}
	return false
}

type GoogleServiceMock struct{}

func (gsm GoogleServiceMock) ValidateIdToken(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error) {

	return &idtoken.Payload{Issuer: "Issue", Audience: "AAA", Expires: 119919191919, IssuedAt: 12312321321, Subject: "fake@example.com", Claims: map[string]interface{}{
		"email":   "fake@example.com",
		"picture": "pictureurl",
		"sub":     "123googleid",
	}}, nil

}

func (gsm GoogleServiceMock) GetUserSubscriptionStatus(ctx context.Context, appUserId string) ([]byte, error) {
	data := `
	{
		"request_date": "2024-05-11T06:50:56Z",
		"subscriber": {
		  "entitlements": {
			"Pro": {
			  "expires_date": "2029-05-11T06:51:15Z",
			  "product_identifier": "prostandard",
			  "product_plan_identifier": "monthly-autorenew",
			  "purchase_date": "2024-05-11T06:49:05Z"
			}
		  },
		  "management_url": "https://play.google.com/store/account/subscriptions",
		  "subscriptions": {}
		}
	  }
	  `

	return []byte(data), nil
}

type AWSProviderMock struct {
	MockUrl string
}

func (awsService AWSProviderMock) InitPresignClient(ctx context.Context) error {
	return nil
}

func (awsService AWSProviderMock) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {

	return fmt.Sprintf("https://fakebucketurl.com/%s", fileName), nil
}

func (awsService AWSProviderMock) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	return awsService.MockUrl, nil
}

func (awsService AWSProviderMock) UploadToPresignedURL(ctx context.Context, bucketName, url string, fileContent []byte) (string, int, error) {
	return url, 204, nil
}

type URLCacheMock struct {
	MockUrl string
}

func (cache URLCacheMock) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	if cache.MockUrl != "" {
		return cache.MockUrl, nil
	}
	return fmt.Sprintf("https://fakebucketurl.com/%s", objectKey), nil
}

type MockStylistProcessor struct{}

func (m MockStylistProcessor) ClassifyClothing(filePath string, modelName services.LLMModelName) (*services.ClassificationResult, error) {
	return &services.ClassificationResult{
		Category:          "top",
		Subcategory:       "t-shirt",
		StyleTags:         []string{"casual", "minimal"},
		Pattern:           "solid",
		PatternConfidence: 0.92,
		PrimaryColor:      "white",
		Occasion:          "casual",
		Tradition:         "western",
		Fit:               "regular",

		InputTokenCount:  10,
		OutputTokenCount: 13,
		TotalTokenCount:  23,
	}, nil
}

func (m MockStylistProcessor) EmbedClothing(ctx context.Context, description string) ([]float64, error) {
	vector := make([]float64, 512)
	for i := range vector {
		vector[i] = 0.01
	}
	return vector, nil
}
