package uploads

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"arvista/config"
	"arvista/database"
	"arvista/internal/api/common"
	"arvista/internal/domain/media"
	"arvista/internal/infra/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// allowed maps sniffed content types to the extension stored on disk.
var allowed = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// POST /images (multipart field "file")
func UploadImage(c *gin.Context) {
	userID, ok := common.MustUserID(c)
	if !ok {
		return
	}
	if storage.Default == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage is not configured"})
		return
	}

	maxBytes := config.MAX_UPLOAD_MB << 20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	if fh.Size > maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("File exceeds %d MB", config.MAX_UPLOAD_MB)})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable file"})
		return
	}
	if int64(len(data)) > maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("File exceeds %d MB", config.MAX_UPLOAD_MB)})
		return
	}

	mt := mimetype.Detect(data)
	ext, ok := allowed[mt.String()]
	if !ok {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Only JPEG, PNG, WebP and GIF images are accepted"})
		return
	}

	id := uuid.NewString()
	path := fmt.Sprintf("artworks/%s/%s%s", time.Now().UTC().Format("2006/01"), id, ext)
	ctx := c.Request.Context()
	if err := storage.Default.Put(ctx, path, bytes.NewReader(data), mt.String()); err != nil {
		common.InternalError(c, "Failed to store image", err)
		return
	}

	img := media.Image{
		ID:          id,
		Disk:        storage.Default.Name(),
		Path:        path,
		URL:         storage.Default.URL(path),
		ContentType: mt.String(),
		Size:        int64(len(data)),
		UploadedBy:  userID,
	}
	if err := database.DB.Create(&img).Error; err != nil {
		if derr := storage.Default.Delete(ctx, path); derr != nil {
			zerolog.Ctx(ctx).Warn().Err(derr).Str("path", path).Msg("orphaned upload not removed")
		}
		common.InternalError(c, "Failed to save image", err)
		return
	}

	c.JSON(http.StatusCreated, img)
}
