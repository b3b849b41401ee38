package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"stylistapi/dbhelper"
	"stylistapi/models"
	"stylistapi/test"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthGoogleNewUser(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, test.AWSProviderMock{}, test.URLCacheMock{}, nil, nil, nil)

	param := models.GoogleAuthSignIn{
		IdToken:  "faketokenfromclient",
		Platform: "ios",
	}
	req := test.NewJSONRequest("POST", "/auth/google", param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp echo.Map
	json.Unmarshal(rec.Body.Bytes(), &resp)

	assert.Equal(t, "fake@example.com", resp["email"], resp)
	assert.Equal(t, true, resp["new"], resp)
	assert.Equal(t, "pictureurl", resp["avatar"], resp)
	assert.NotEmpty(t, resp["access_token"], resp)
	assert.NotEmpty(t, resp["refresh_token"], resp)

	var user models.UserAccount
	db.First(&user, "email = ?", "fake@example.com")

	assert.Equal(t, "fake@example.com", user.Email)
	assert.Equal(t, "FINISHED_AUTH", user.Status)
	assert.Equal(t, models.PlatformIOS, user.Platform)
	assert.Equal(t, "123googleid", user.GoogleID)
}

func TestAuthGoogleExistingUserByEmail(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, test.AWSProviderMock{}, test.URLCacheMock{}, nil, nil, nil)
	existing := test.FakeUserV2(db, "Old Name", "fake@example.com")

	param := models.GoogleAuthSignIn{
		IdToken:  "faketokenfromclient",
		Platform: "android",
	}
	req := test.NewJSONRequest("POST", "/auth/google", param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp echo.Map
	json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.Equal(t, false, resp["new"], resp)

	var user models.UserAccount
	db.First(&user, existing.ID)
	// google identity gets attached to the matched account
	assert.Equal(t, "123googleid", user.GoogleID)
	assert.Equal(t, models.PlatformAndroid, user.Platform)
}

func TestAuthGoogleMissingPlatform(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, test.AWSProviderMock{}, test.URLCacheMock{}, nil, nil, nil)

	param := models.GoogleAuthSignIn{
		IdToken: "faketokenfromclient",
	}
	req := test.NewJSONRequest("POST", "/auth/google", param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestRefreshToken(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, test.AWSProviderMock{}, test.URLCacheMock{}, nil, nil, nil)
	user := test.FakeUser(db)

	refreshToken, err := GenerateRefreshToken(fmt.Sprint(user.ID))
	require.NoError(t, err)

	param := models.RefreshTokenIn{RefreshToken: refreshToken}
	req := test.NewJSONRequest("POST", "/auth/refresh-token", param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp echo.Map
	json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.NotEmpty(t, resp["access_token"], resp)
	assert.NotEmpty(t, resp["refresh_token"], resp)
}

func TestRefreshTokenInvalid(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, test.AWSProviderMock{}, test.URLCacheMock{}, nil, nil, nil)

	param := models.RefreshTokenIn{RefreshToken: "not-a-token"}
	req := test.NewJSONRequest("POST", "/auth/refresh-token", param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserMe(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, test.AWSProviderMock{}, test.URLCacheMock{}, nil, nil, nil)
	user := test.FakeUser(db)
	test.FakeWardrobeItem(db, user.ID, "t-shirt", "top", "white")
	test.FakeWardrobeItem(db, user.ID, "jeans", "bottom", "blue")

	req := test.NewJSONAuthRequest("GET", "/auth/me", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp models.UserMeInfoOut
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, user.Name, resp.Name)
	assert.Equal(t, user.Email, resp.Email)
	assert.Equal(t, int64(2), resp.WardrobeItemCount)
}

func TestUserSettings(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, test.AWSProviderMock{}, test.URLCacheMock{}, nil, nil, nil)
	user := test.FakeUser(db)
	require.True(t, user.ReceiveNotifications)

	param := models.UserSettingsIn{ReceiveNotifications: false}
	req := test.NewJSONAuthRequest("POST", "/auth/settings", strconv.FormatUint(uint64(user.ID), 10), param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.UserAccount
	db.First(&updated, user.ID)
	assert.False(t, updated.ReceiveNotifications)
}

func TestRegisterAndDeletePush(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, test.AWSProviderMock{}, test.URLCacheMock{}, nil, nil, nil)
	user := test.FakeUser(db)
	userPk := strconv.FormatUint(uint64(user.ID), 10)

	param := models.UserPushIn{Token: "new-device-token", Platform: "ios"}
	req := test.NewJSONAuthRequest("POST", "/auth/register-push", userPk, param)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var count int64
	db.Model(&models.UserPushToken{}).Where("user_account_id = ? and token = ?", user.ID, "new-device-token").Count(&count)
	assert.Equal(t, int64(1), count)

	// registering the same token again must not duplicate it
	req = test.NewJSONAuthRequest("POST", "/auth/register-push", userPk, param)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	db.Model(&models.UserPushToken{}).Where("user_account_id = ? and token = ?", user.ID, "new-device-token").Count(&count)
	assert.Equal(t, int64(1), count)

	req = test.NewJSONAuthRequest("POST", "/auth/delete-push", userPk, param)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	db.Model(&models.UserPushToken{}).Where("user_account_id = ? and token = ?", user.ID, "new-device-token").Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDeleteAccount(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, test.AWSProviderMock{}, test.URLCacheMock{}, nil, nil, nil)
	user := test.FakeUser(db)

	req := test.NewJSONAuthRequest("POST", "/auth/delete-account", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.UserAccount
	db.First(&updated, user.ID)
	assert.NotNil(t, updated.ConfirmedDeleteDate)
}
