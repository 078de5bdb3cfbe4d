package reviews

import (
	"fmt"
	"net/http"
	"testing"

	"arvista/internal/app/http/middleware"
	"arvista/internal/domain/catalog"
	"arvista/internal/domain/engagement"
	"arvista/internal/domain/users"
	"arvista/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() *gin.Engine {
	r := gin.New()
	r.GET("/api/artworks/:id/reviews", middleware.OptionalAuth(), ListReviews)
	g := r.Group("/api", middleware.AuthMiddleware())
	g.POST("/artworks/:id/reviews", CreateReview)
	g.PUT("/reviews/:id", UpdateReview)
	g.DELETE("/reviews/:id", DeleteReview)
	return r
}

type listResponse struct {
	Reviews []ReviewDTO `json:"reviews"`
	Average float64     `json:"average"`
	Count   int64       `json:"count"`
}

func TestCreateReviewValidatesRating(t *testing.T) {
	db := testutil.SetupDB(t)
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	critic := testutil.CreateUser(t, db, users.RoleCustomer)
	a := testutil.CreateArtwork(t, db, artist.ID)
	r := newRouter()
	tok := testutil.Token(t, critic)
	path := "/api/artworks/" + a.ID + "/reviews"

	for _, rating := range []int{0, 6, -1} {
		w := testutil.Do(t, r, http.MethodPost, path, gin.H{"rating": rating}, tok)
		assert.Equal(t, http.StatusBadRequest, w.Code, "rating %d", rating)
	}

	w := testutil.Do(t, r, http.MethodPost, path, gin.H{"rating": 5, "title": " Lovely ", "comment": "Great light"}, tok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var got ReviewDTO
	testutil.Decode(t, w, &got)
	assert.Equal(t, "Lovely", got.Title)
	assert.Equal(t, critic.Name, got.Author)

	w = testutil.Do(t, r, http.MethodPost, path, gin.H{"rating": 4}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code, "second review by the same user")
}

func TestCreateReviewUnknownOrDraftArtwork(t *testing.T) {
	db := testutil.SetupDB(t)
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	critic := testutil.CreateUser(t, db, users.RoleCustomer)
	draft := testutil.CreateArtwork(t, db, artist.ID, testutil.WithStatus(catalog.StatusDraft))
	r := newRouter()
	tok := testutil.Token(t, critic)

	assert.Equal(t, http.StatusNotFound, testutil.Do(t, r, http.MethodPost, "/api/artworks/"+draft.ID+"/reviews", gin.H{"rating": 3}, tok).Code)
	assert.Equal(t, http.StatusNotFound, testutil.Do(t, r, http.MethodPost, "/api/artworks/nope/reviews", gin.H{"rating": 3}, tok).Code)
}

func TestListReviewsAverage(t *testing.T) {
	db := testutil.SetupDB(t)
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	a := testutil.CreateArtwork(t, db, artist.ID)
	r := newRouter()

	for _, rating := range []int{5, 4, 4} {
		critic := testutil.CreateUser(t, db, users.RoleCustomer)
		w := testutil.Do(t, r, http.MethodPost, "/api/artworks/"+a.ID+"/reviews", gin.H{"rating": rating}, testutil.Token(t, critic))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := testutil.Do(t, r, http.MethodGet, "/api/artworks/"+a.ID+"/reviews", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var res listResponse
	testutil.Decode(t, w, &res)
	assert.Len(t, res.Reviews, 3)
	assert.Equal(t, int64(3), res.Count)
	assert.Equal(t, 4.3, res.Average)
}

func TestUpdateAndDeleteReviewPermissions(t *testing.T) {
	db := testutil.SetupDB(t)
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	author := testutil.CreateUser(t, db, users.RoleCustomer)
	other := testutil.CreateUser(t, db, users.RoleCustomer)
	admin := testutil.CreateUser(t, db, users.RoleAdmin)
	a := testutil.CreateArtwork(t, db, artist.ID)
	r := newRouter()

	w := testutil.Do(t, r, http.MethodPost, "/api/artworks/"+a.ID+"/reviews", gin.H{"rating": 2}, testutil.Token(t, author))
	require.Equal(t, http.StatusCreated, w.Code)
	var rev ReviewDTO
	testutil.Decode(t, w, &rev)
	path := fmt.Sprintf("/api/reviews/%d", rev.ID)

	assert.Equal(t, http.StatusForbidden, testutil.Do(t, r, http.MethodPut, path, gin.H{"rating": 1}, testutil.Token(t, other)).Code)

	w = testutil.Do(t, r, http.MethodPut, path, gin.H{"rating": 3, "comment": "Grew on me"}, testutil.Token(t, author))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.Decode(t, w, &rev)
	assert.Equal(t, 3, rev.Rating)
	assert.Equal(t, "Grew on me", rev.Comment)

	assert.Equal(t, http.StatusForbidden, testutil.Do(t, r, http.MethodDelete, path, nil, testutil.Token(t, other)).Code)
	assert.Equal(t, http.StatusOK, testutil.Do(t, r, http.MethodDelete, path, nil, testutil.Token(t, admin)).Code)
	assert.Equal(t, http.StatusNotFound, testutil.Do(t, r, http.MethodDelete, path, nil, testutil.Token(t, admin)).Code)
	assert.Equal(t, http.StatusBadRequest, testutil.Do(t, r, http.MethodDelete, "/api/reviews/abc", nil, testutil.Token(t, admin)).Code)
}

func TestListReviewsHidesDrafts(t *testing.T) {
	db := testutil.SetupDB(t)
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	critic := testutil.CreateUser(t, db, users.RoleCustomer)
	draft := testutil.CreateArtwork(t, db, artist.ID)
	require.NoError(t, db.Create(&engagement.Review{UserID: critic.ID, ArtworkID: draft.ID, Rating: 2}).Error)
	require.NoError(t, db.Model(&catalog.Artwork{}).Where("id = ?", draft.ID).Update("status", catalog.StatusDraft).Error)
	r := newRouter()
	path := "/api/artworks/" + draft.ID + "/reviews"

	assert.Equal(t, http.StatusNotFound, testutil.Do(t, r, http.MethodGet, path, nil, "").Code)
	assert.Equal(t, http.StatusNotFound, testutil.Do(t, r, http.MethodGet, path, nil, testutil.Token(t, critic)).Code)

	w := testutil.Do(t, r, http.MethodGet, path, nil, testutil.Token(t, artist))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"count":1`)

	assert.Equal(t, http.StatusNotFound, testutil.Do(t, r, http.MethodGet, "/api/artworks/00000000-0000-0000-0000-000000000000/reviews", nil, "").Code)
}
