package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDiskPutDelete(t *testing.T) {
	root := t.TempDir()
	d := NewLocalDisk(root, "http://localhost:8080/storage/")
	ctx := context.Background()

	require.NoError(t, d.Put(ctx, "artworks/a/b.png", strings.NewReader("png"), "image/png"))

	data, err := os.ReadFile(filepath.Join(root, "artworks", "a", "b.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, "http://localhost:8080/storage/artworks/a/b.png", d.URL("artworks/a/b.png"))

	require.NoError(t, d.Delete(ctx, "artworks/a/b.png"))
	_, err = os.Stat(filepath.Join(root, "artworks", "a", "b.png"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, d.Delete(ctx, "artworks/a/b.png"))
}

func TestLocalDiskRejectsEscapes(t *testing.T) {
	d := NewLocalDisk(t.TempDir(), "http://x")
	err := d.Put(context.Background(), "../outside.txt", strings.NewReader("x"), "")
	assert.Error(t, err)
}
