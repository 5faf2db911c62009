package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImageStore saves product image bytes and returns the public URL for them.
type ImageStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

func AllowedImageExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(path.Ext(filename))]
}

// ObjectKey builds products/<productID>/<unix nanos>-<short id><ext>.
func ObjectKey(productID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("products/%s/%d-%s%s", productID, time.Now().UnixNano(), uuid.New().String()[:8], ext)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
