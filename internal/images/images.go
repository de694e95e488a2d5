// Package images serves product photography from a local directory tree.
//
// Images are laid out as <dir>/<image_ref>/<index>.<ext> where index is
// 1-based and ext is one of the supported formats. The catalog declares how
// many images each product has; indexes outside that range are rejected
// before touching the filesystem.
package images

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/luxecurl/storefront/internal/catalog"
	sferrors "github.com/luxecurl/storefront/internal/errors"
	"github.com/luxecurl/storefront/pkg/config"
)

// extensions are probed in order when resolving an image file.
var extensions = []string{".webp", ".jpg", ".jpeg", ".png"}

var mimeByExt = map[string]string{
	".webp": "image/webp",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Image is a resolved product image ready to be written to a response.
type Image struct {
	Data        []byte
	ContentType string
}

// Store resolves product images from the configured directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates an image store rooted at cfg.Dir.
func NewStore(cfg config.ImagesConfig, logger *slog.Logger) *Store {
	return &Store{dir: cfg.Dir, logger: logger.With("component", "images")}
}

// Get returns the index-th image (1-based) for a catalog product.
// Unknown products and out-of-range indexes return ErrInvalidImageRef;
// a catalog entry whose file is missing on disk returns ErrImageNotFound.
func (s *Store) Get(productID string, index int) (*Image, error) {
	product, err := catalog.Lookup(productID)
	if err != nil {
		return nil, sferrors.ErrInvalidImageRef
	}
	if index < 1 || index > product.ImageCount {
		return nil, sferrors.ErrInvalidImageRef
	}
	if !validRef(product.ImageRef) {
		return nil, sferrors.ErrInvalidImageRef
	}

	for _, ext := range extensions {
		path := filepath.Join(s.dir, product.ImageRef, fmt.Sprintf("%d%s", index, ext))
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read image %s: %w", path, err)
		}
		return &Image{Data: data, ContentType: mimeByExt[ext]}, nil
	}

	s.logger.Warn("Catalog references image missing on disk", "product_id", productID, "index", index)
	return nil, sferrors.ErrImageNotFound
}

// validRef rejects refs that could escape the image directory.
func validRef(ref string) bool {
	if ref == "" {
		return false
	}
	if strings.ContainsAny(ref, "/\\") || strings.Contains(ref, "..") {
		return false
	}
	return true
}
