// Package media validates and prepares uploaded assets before they reach
// the blob store: content-type sniffing, per-kind acceptance rules, photo
// thumbnail generation and tag normalization.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nfnt/resize"

	"github.com/memvault/memvault/internal/model"
)

// ThumbnailWidth is the width photo thumbnails are downscaled to.
const ThumbnailWidth = 600

var (
	photoExts = map[string]bool{"jpg": true, "jpeg": true, "png": true, "webp": true}
	videoExts = map[string]bool{"mp4": true, "mov": true}
)

// Upload describes a validated asset ready for the blob store.
type Upload struct {
	Ext         string
	ContentType string
}

// Validate sniffs the payload and checks it against the accepted types for
// the given media kind. The extension comes from the detected type, not the
// client-supplied filename.
func Validate(kind model.MediaType, data []byte) (*Upload, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", model.ErrValidation)
	}
	mt := mimetype.Detect(data)
	ext := strings.TrimPrefix(mt.Extension(), ".")

	switch kind {
	case model.MediaPhoto:
		if !strings.HasPrefix(mt.String(), "image/") || !photoExts[ext] {
			return nil, fmt.Errorf("%w: %s is not an accepted photo type", model.ErrValidation, mt.String())
		}
	case model.MediaVideo:
		// .mov detects as video/quicktime with extension ".mov".
		if !strings.HasPrefix(mt.String(), "video/") || !videoExts[ext] {
			return nil, fmt.Errorf("%w: %s is not an accepted video type", model.ErrValidation, mt.String())
		}
	default:
		return nil, fmt.Errorf("%w: unknown media type %q", model.ErrValidation, kind)
	}
	return &Upload{Ext: ext, ContentType: mt.String()}, nil
}

// Thumbnail downscales a photo to ThumbnailWidth, preserving aspect ratio,
// and re-encodes it as JPEG. WEBP payloads are not decodable here; callers
// fall back to the full-size URL when this fails.
func Thumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	small := resize.Resize(ThumbnailWidth, 0, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, small, &jpeg.Options{Quality: 80}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NormalizeTags turns a comma-separated tag string into the stored form:
// trimmed, lowercased, inner whitespace hyphenated, empties dropped,
// duplicates removed with first-seen order kept.
func NormalizeTags(raw string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, t := range strings.Split(raw, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		t = strings.Join(strings.Fields(t), "-")
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
