// Package blob defines the object-storage collaborator the gallery uploads
// media to. Adapters live under internal/blob/<driver>/.
package blob

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/memvault/memvault/internal/model"
)

// Bucket is the single bucket all gallery media lives in. Public URLs embed
// it, which is what lets PathFromPublicURL recover the object path.
const Bucket = "memories"

// Store is the narrow blob-store interface the gallery consumes.
type Store interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(path string) string
	Remove(ctx context.Context, paths ...string) error
}

// MemoryPath builds the object path for a memory upload:
// "<mediaType>/<uuid>.<ext>".
func MemoryPath(mt model.MediaType, ext string) string {
	return fmt.Sprintf("%s/%s.%s", mt, uuid.New().String(), strings.TrimPrefix(ext, "."))
}

// CoverPath builds the object path for an album cover upload:
// "album-covers/<uuid>.<ext>".
func CoverPath(ext string) string {
	return fmt.Sprintf("album-covers/%s.%s", uuid.New().String(), strings.TrimPrefix(ext, "."))
}

// ThumbPath derives the thumbnail object path from a memory path:
// "photo/<uuid>.jpg" becomes "photo/<uuid>_thumb.jpg".
func ThumbPath(memoryPath string) string {
	if i := strings.LastIndex(memoryPath, "."); i > 0 {
		return memoryPath[:i] + "_thumb.jpg"
	}
	return memoryPath + "_thumb.jpg"
}

// PathFromPublicURL recovers the object path from a public media URL by
// splitting on the bucket segment. It returns false for URLs that do not
// point into the bucket; callers treat that as nothing to clean up.
func PathFromPublicURL(url string) (string, bool) {
	marker := "/" + Bucket + "/"
	i := strings.Index(url, marker)
	if i < 0 {
		return "", false
	}
	path := url[i+len(marker):]
	if path == "" {
		return "", false
	}
	return path, true
}
