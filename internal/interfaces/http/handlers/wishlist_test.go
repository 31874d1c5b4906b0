package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/wishlist-backend/internal/config"
	"github.com/your-org/wishlist-backend/internal/domain/user"
	"github.com/your-org/wishlist-backend/internal/domain/wishlist"
	"github.com/your-org/wishlist-backend/internal/interfaces/http/routes"
	"github.com/your-org/wishlist-backend/internal/realtime"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:             "test-secret-key-for-unit-tests-only!!",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{
			BcryptCost:         4,
			PasswordResetTTL:   time.Hour,
			CORSAllowedOrigins: []string{"*"},
		},
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, *realtime.Hub) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&wishlist.Wishlist{}, &wishlist.WishlistItem{},
		&wishlist.Reservation{}, &wishlist.Contribution{},
	))

	hub := realtime.NewHub()
	router := gin.New()
	routes.SetupRoutes(router.Group("/api/v1"), db, hub, testConfig())
	return router, hub
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func createList(t *testing.T, router *gin.Engine) (slug, creatorSecret string) {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/v1/wishlists", gin.H{"title": "Birthday"})
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	return data["slug"].(string), data["creator_secret"].(string)
}

func addItem(t *testing.T, router *gin.Engine, creatorSecret string, body gin.H) float64 {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/v1/wishlists/m/"+creatorSecret+"/items", body)
	require.Equal(t, http.StatusOK, w.Code)
	return decodeData(t, w)["id"].(float64)
}

func TestCreateAndViewWishlist(t *testing.T) {
	router, _ := newTestRouter(t)

	slug, secret := createList(t, router)
	assert.Len(t, slug, 22)
	assert.Len(t, secret, 22)

	w := doJSON(t, router, http.MethodGet, "/api/v1/wishlists/s/"+slug, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The public payload must not carry the management capability
	assert.NotContains(t, w.Body.String(), "creator_secret")
	assert.NotContains(t, w.Body.String(), secret)

	w = doJSON(t, router, http.MethodGet, "/api/v1/wishlists/m/"+secret, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, secret, decodeData(t, w)["creator_secret"])
}

func TestSlugDoesNotOpenManagement(t *testing.T) {
	router, _ := newTestRouter(t)

	slug, _ := createList(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/v1/wishlists/m/"+slug, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownSlugIs404(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/wishlists/s/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReserveConflictIs409(t *testing.T) {
	router, _ := newTestRouter(t)

	slug, secret := createList(t, router)
	itemID := addItem(t, router, secret, gin.H{"title": "Bike"})

	path := fmt.Sprintf("/api/v1/wishlists/s/%s/items/%d/reserve", slug, int(itemID))

	w := doJSON(t, router, http.MethodPost, path, gin.H{"reserver_name": "Ваня"})
	require.Equal(t, http.StatusOK, w.Code)
	reserverSecret := decodeData(t, w)["reserver_secret"].(string)
	assert.Len(t, reserverSecret, 22)

	w = doJSON(t, router, http.MethodPost, path, gin.H{"reserver_name": "Оля"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestContributionLimitIs400WithNumbers(t *testing.T) {
	router, _ := newTestRouter(t)

	slug, secret := createList(t, router)
	itemID := addItem(t, router, secret, gin.H{"title": "Bike", "price": "300.00"})

	path := fmt.Sprintf("/api/v1/wishlists/s/%s/items/%d/contribute", slug, int(itemID))

	w := doJSON(t, router, http.MethodPost, path, gin.H{"contributor_name": "Оля", "amount": "250.00"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, path, gin.H{"contributor_name": "Петя", "amount": "100.00"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, "50", data["remaining"])
}

func TestContributeUnpricedItemIs400(t *testing.T) {
	router, _ := newTestRouter(t)

	slug, secret := createList(t, router)
	itemID := addItem(t, router, secret, gin.H{"title": "Socks"})

	path := fmt.Sprintf("/api/v1/wishlists/s/%s/items/%d/contribute", slug, int(itemID))
	w := doJSON(t, router, http.MethodPost, path, gin.H{"contributor_name": "Оля", "amount": "10.00"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelReservationLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	slug, secret := createList(t, router)
	itemID := addItem(t, router, secret, gin.H{"title": "Bike"})

	path := fmt.Sprintf("/api/v1/wishlists/s/%s/items/%d/reserve", slug, int(itemID))
	w := doJSON(t, router, http.MethodPost, path, gin.H{"reserver_name": "Ваня"})
	require.Equal(t, http.StatusOK, w.Code)
	reserverSecret := decodeData(t, w)["reserver_secret"].(string)

	w = doJSON(t, router, http.MethodGet, "/api/v1/reservations/"+reserverSecret, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ваня", decodeData(t, w)["reserver_name"])

	w = doJSON(t, router, http.MethodDelete, "/api/v1/reservations/"+reserverSecret, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// Cancelled secret is dead
	w = doJSON(t, router, http.MethodDelete, "/api/v1/reservations/"+reserverSecret, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvalidItemIDIs400(t *testing.T) {
	router, _ := newTestRouter(t)

	_, secret := createList(t, router)

	w := doJSON(t, router, http.MethodPatch, "/api/v1/wishlists/m/"+secret+"/items/not-a-number", gin.H{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMineRequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/wishlists/mine", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticatedCreateOwnsList(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	accessToken := decodeData(t, w)["access_token"].(string)

	payload, _ := json.Marshal(gin.H{"title": "Mine"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wishlists", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/wishlists/mine", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Mine", envelope.Data[0]["title"])
}
