package taxonomy

import (
	"fmt"
	"net/http"
	"testing"

	"arvista/internal/app/http/middleware"
	"arvista/internal/domain/catalog"
	"arvista/internal/domain/users"
	"arvista/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() *gin.Engine {
	r := gin.New()
	r.GET("/api/categories", ListCategories)
	r.GET("/api/categories/:slug", GetCategory)
	r.GET("/api/collections", ListCollections)
	r.GET("/api/tags", ListTags)

	staff := r.Group("/api", middleware.AuthMiddleware(), middleware.RequireRole(users.RoleAdmin))
	staff.POST("/categories", CreateCategory)
	staff.PUT("/categories/:id", UpdateCategory)
	staff.DELETE("/categories/:id", DeleteCategory)
	staff.POST("/collections", CreateCollection)
	staff.POST("/tags", CreateTag)
	staff.DELETE("/tags/:id", DeleteTag)
	return r
}

func TestCategoryCRUD(t *testing.T) {
	db := testutil.SetupDB(t)
	admin := testutil.Token(t, testutil.CreateUser(t, db, users.RoleAdmin))
	artist := testutil.CreateUser(t, db, users.RoleArtist)
	r := newRouter()

	assert.Equal(t, http.StatusForbidden,
		testutil.Do(t, r, http.MethodPost, "/api/categories", gin.H{"name": "Painting"}, testutil.Token(t, artist)).Code)

	w := testutil.Do(t, r, http.MethodPost, "/api/categories", gin.H{"name": " Oil Painting ", "description": "On canvas"}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cat catalog.Category
	testutil.Decode(t, w, &cat)
	assert.Equal(t, "Oil Painting", cat.Name)
	assert.Equal(t, "oil-painting", cat.Slug)

	w = testutil.Do(t, r, http.MethodPost, "/api/categories", gin.H{"name": "oil painting"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code, "names are unique regardless of case")

	testutil.CreateArtwork(t, db, artist.ID, testutil.WithCategory(cat.ID))
	testutil.CreateArtwork(t, db, artist.ID, testutil.WithCategory(cat.ID), testutil.WithStatus(catalog.StatusDraft))

	w = testutil.Do(t, r, http.MethodGet, "/api/categories/oil-painting", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got CategoryWithCount
	testutil.Decode(t, w, &got)
	assert.Equal(t, int64(1), got.ArtworkCount, "drafts are not counted")

	w = testutil.Do(t, r, http.MethodPut, fmt.Sprintf("/api/categories/%d", cat.ID), gin.H{"name": "Oils", "slug": "oils"}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.Decode(t, w, &cat)
	assert.Equal(t, "Oils", cat.Name)
	assert.Equal(t, "oils", cat.Slug)

	assert.Equal(t, http.StatusNotFound, testutil.Do(t, r, http.MethodGet, "/api/categories/oil-painting", nil, "").Code)

	w = testutil.Do(t, r, http.MethodDelete, fmt.Sprintf("/api/categories/%d", cat.ID), nil, admin)
	require.Equal(t, http.StatusOK, w.Code)

	var attached int64
	db.Model(&catalog.Artwork{}).Where("category_id IS NOT NULL").Count(&attached)
	assert.Zero(t, attached, "artworks are detached, not deleted")
	var left int64
	db.Model(&catalog.Artwork{}).Count(&left)
	assert.Equal(t, int64(2), left)

	assert.Equal(t, http.StatusNotFound, testutil.Do(t, r, http.MethodDelete, fmt.Sprintf("/api/categories/%d", cat.ID), nil, admin).Code)
}

func TestCollectionsFeaturedFilter(t *testing.T) {
	db := testutil.SetupDB(t)
	admin := testutil.Token(t, testutil.CreateUser(t, db, users.RoleAdmin))
	r := newRouter()

	require.Equal(t, http.StatusCreated, testutil.Do(t, r, http.MethodPost, "/api/collections", gin.H{"name": "Summer Show", "featured": true}, admin).Code)
	require.Equal(t, http.StatusCreated, testutil.Do(t, r, http.MethodPost, "/api/collections", gin.H{"name": "Archive"}, admin).Code)

	var all []CollectionWithCount
	testutil.Decode(t, testutil.Do(t, r, http.MethodGet, "/api/collections", nil, ""), &all)
	require.Len(t, all, 2)
	assert.Equal(t, "Summer Show", all[0].Name, "featured first")

	var featured []CollectionWithCount
	testutil.Decode(t, testutil.Do(t, r, http.MethodGet, "/api/collections?featured=true", nil, ""), &featured)
	require.Len(t, featured, 1)
	assert.Equal(t, "summer-show", featured[0].Slug)

	assert.Equal(t, http.StatusBadRequest, testutil.Do(t, r, http.MethodGet, "/api/collections?featured=sometimes", nil, "").Code)
}

func TestTagsAreLowerCased(t *testing.T) {
	db := testutil.SetupDB(t)
	admin := testutil.Token(t, testutil.CreateUser(t, db, users.RoleAdmin))
	r := newRouter()

	w := testutil.Do(t, r, http.MethodPost, "/api/tags", gin.H{"name": "Abstract"}, admin)
	require.Equal(t, http.StatusCreated, w.Code)
	var tag catalog.Tag
	testutil.Decode(t, w, &tag)
	assert.Equal(t, "abstract", tag.Name)

	assert.Equal(t, http.StatusBadRequest, testutil.Do(t, r, http.MethodPost, "/api/tags", gin.H{"name": "ABSTRACT"}, admin).Code)

	require.Equal(t, http.StatusOK, testutil.Do(t, r, http.MethodDelete, fmt.Sprintf("/api/tags/%d", tag.ID), nil, admin).Code)
	var tags []TagWithCount
	testutil.Decode(t, testutil.Do(t, r, http.MethodGet, "/api/tags", nil, ""), &tags)
	assert.Empty(t, tags)
}
