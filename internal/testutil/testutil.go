// Package testutil sets up an in-memory database and request helpers for
// handler tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"arvista/config"
	"arvista/database"
	"arvista/internal/domain/catalog"
	"arvista/internal/domain/users"
	"arvista/internal/infra/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	JWTSecret = "test-secret"
	Password  = "secret123"
)

var seq atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
}

// SetupCache points the catalog cache at an in-process Redis for the
// duration of the test.
func SetupCache(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	require.NoError(t, cache.Connect(context.Background(), mr.Addr(), ""))
	t.Cleanup(func() { _ = cache.Close() })
	return mr
}

// SetupDB opens a fresh in-memory sqlite database, migrates it and installs
// it as database.DB for the duration of the test. It also sets the config
// values handlers read.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is its own database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		_ = sqlDB.Close()
	})

	config.JWT_SECRET = JWTSecret
	config.APP_URL = "http://localhost:3000"
	config.CURRENCY = "eur"
	config.SHIPPING_FEE = 1500
	config.FREE_SHIPPING_THRESHOLD = 50000
	config.CACHE_TTL = time.Minute
	config.MAX_UPLOAD_MB = 1
	config.STRIPE_SECRET_KEY = ""
	config.STRIPE_WEBHOOK_SECRET = ""
	return db
}

// CreateUser inserts a local account with Password as its password.
func CreateUser(t *testing.T, db *gorm.DB, role string) users.User {
	t.Helper()
	n := seq.Add(1)
	hashed, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)
	h := string(hashed)
	u := users.User{
		Name:         fmt.Sprintf("User %d", n),
		Email:        fmt.Sprintf("user%d@arvista.test", n),
		Password:     &h,
		AuthProvider: users.ProviderLocal,
		Role:         role,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// Token signs a bearer token for u the way the login endpoint does.
func Token(t *testing.T, u users.User) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"role":    u.Role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(config.JWT_SECRET))
	require.NoError(t, err)
	return tok
}

// ArtworkOpt tweaks a fixture before it is saved.
type ArtworkOpt func(*catalog.Artwork)

func WithPrice(cents int64) ArtworkOpt { return func(a *catalog.Artwork) { a.PriceCents = cents } }
func WithStock(n int) ArtworkOpt       { return func(a *catalog.Artwork) { a.Stock = n } }
func WithStatus(s string) ArtworkOpt   { return func(a *catalog.Artwork) { a.Status = s } }
func WithTitle(s string) ArtworkOpt    { return func(a *catalog.Artwork) { a.Title = s } }
func WithCategory(id uint) ArtworkOpt  { return func(a *catalog.Artwork) { a.CategoryID = &id } }

// CreateArtwork inserts an available artwork priced at 100.00 with stock 1.
func CreateArtwork(t *testing.T, db *gorm.DB, artistID uint, opts ...ArtworkOpt) catalog.Artwork {
	t.Helper()
	n := seq.Add(1)
	a := catalog.Artwork{
		Title:      fmt.Sprintf("Artwork %d", n),
		ArtistID:   artistID,
		PriceCents: 10000,
		Stock:      1,
		Status:     catalog.StatusAvailable,
	}
	for _, o := range opts {
		o(&a)
	}
	a.Slug = catalog.MakeSlug(a.Title, "artwork") + fmt.Sprintf("-%d", n)
	require.NoError(t, db.Create(&a).Error)
	return a
}

func CreateCategory(t *testing.T, db *gorm.DB, name string) catalog.Category {
	t.Helper()
	c := catalog.Category{Name: name, Slug: catalog.MakeSlug(name, "category")}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// Do sends a JSON request through h. body may be nil; token may be empty.
func Do(t *testing.T, h http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Decode unmarshals a recorded JSON response into v.
func Decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}
