package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of decoded images kept when no size is
// configured.
const DefaultCacheSize = 32

// ImageCache keeps recently loaded images keyed by file path.
//
// The cache is bounded: once it holds size images, loading another evicts the
// least recently used one. A page image is typically loaded several times in
// a review session (overlay, then one crop per difference), so even a small
// cache saves most disk reads.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Example Usage
//
//	cache, _ := imaging.NewImageCache(16)
//	img, err := cache.Load("/path/to/page1.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache.Evict("/path/to/page1.png") // Optional: free memory
type ImageCache struct {
	images *lru.Cache[string, image.Image]
}

// NewImageCache creates a cache holding at most size images. A size of zero
// or less selects DefaultCacheSize.
func NewImageCache(size int) (*ImageCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	images, err := lru.New[string, image.Image](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create image cache: %w", err)
	}
	return &ImageCache{images: images}, nil
}

// Load returns the image at path, decoding it from disk on a cache miss.
// PNG, JPEG and GIF are supported.
//
// The image is cached under the exact path string provided. Different paths
// to the same file (e.g., relative vs absolute) result in separate entries.
func (c *ImageCache) Load(path string) (image.Image, error) {
	if img, ok := c.images.Get(path); ok {
		return img, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	img, err := Decode(data)
	if err != nil {
		return nil, err
	}

	c.images.Add(path, img)
	return img, nil
}

// Evict removes path from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.images.Remove(path)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.images.Purge()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	return c.images.Len()
}

// Decode decodes an encoded PNG, JPEG or GIF image.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
