// Package blob stores announcement images and other binary objects, either in
// S3 or on the local file system.
package blob

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Uploader writes objects and returns the URL they can be fetched from.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Fetcher reads objects back.
type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Store is a readable and writable blob store.
type Store interface {
	Uploader
	Fetcher
}

var extensionsByType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
	"image/heic": "heic",
}

// ImageExtension returns the file extension for an image content type, and
// false if the type is not an accepted image type.
func ImageExtension(contentType string) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	ext, ok := extensionsByType[strings.ToLower(mediaType)]
	return ext, ok
}

// ObjectKey builds a collision-free key under the owner's folder:
// <owner>/<unixnano>-<uuid>.<ext>.
func ObjectKey(owner uuid.UUID, ext string, now time.Time) string {
	return path.Join(owner.String(), fmt.Sprintf("%d-%s.%s", now.UnixNano(), uuid.NewString(), ext))
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
