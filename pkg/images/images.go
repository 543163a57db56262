package images

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var extensionByMIME = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// Store persists decoded data-URL images under a base directory.
type Store struct {
	dir      string
	maxBytes int64
}

// NewStore builds a Store rooted at dir with an upload cap in megabytes.
func NewStore(dir string, maxUploadMB int) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	if maxUploadMB <= 0 {
		maxUploadMB = 5
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &Store{dir: dir, maxBytes: int64(maxUploadMB) * 1024 * 1024}, nil
}

// SaveDataURL decodes a base64 data URL (data:image/png;base64,...) and
// writes it under the store directory with a generated name. It returns the
// relative file path recorded on the owning row.
func (s *Store) SaveDataURL(dataURL, prefix string) (string, error) {
	mime, payload, err := splitDataURL(dataURL)
	if err != nil {
		return "", err
	}

	ext, ok := extensionByMIME[mime]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", mime)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decoding image payload: %w", err)
	}
	if int64(len(raw)) > s.maxBytes {
		return "", fmt.Errorf("image exceeds %d byte limit", s.maxBytes)
	}

	name := fmt.Sprintf("%s-%s%s", prefix, uuid.NewString(), ext)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return path, nil
}

func splitDataURL(dataURL string) (mime, payload string, err error) {
	trimmed := strings.TrimSpace(dataURL)
	if !strings.HasPrefix(trimmed, "data:") {
		return "", "", fmt.Errorf("not a data url")
	}
	head, rest, found := strings.Cut(trimmed[len("data:"):], ",")
	if !found {
		return "", "", fmt.Errorf("malformed data url")
	}
	if !strings.HasSuffix(head, ";base64") {
		return "", "", fmt.Errorf("data url must be base64 encoded")
	}
	return strings.TrimSuffix(head, ";base64"), rest, nil
}
