package catalog_test

import (
	"testing"

	"arvista/internal/domain/catalog"
	"arvista/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertTagsReusesAndDisambiguates(t *testing.T) {
	db := testutil.SetupDB(t)

	first, err := catalog.UpsertTags(db, []string{"水彩", "Été"})
	require.NoError(t, err)
	second, err := catalog.UpsertTags(db, []string{"油彩", "ete", "水彩"})
	require.NoError(t, err)

	require.Len(t, first, 2)
	require.Len(t, second, 3)
	assert.Equal(t, "tag", first[0].Slug)
	assert.Equal(t, "tag-2", second[0].Slug, "distinct name with the same fallback slug")
	assert.Equal(t, first[0].ID, second[2].ID, "known names are reused")
	assert.NotEqual(t, first[1].Slug, second[1].Slug)

	var n int64
	db.Model(&catalog.Tag{}).Count(&n)
	assert.Equal(t, int64(4), n)
}
