package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// ImageCache provides thread-safe caching of decoded radiographs so that a
// client can load an image once and run several measurements on it.
//
// The cache stores the decoded source image keyed by its path string.
// Grayscale conversion happens on every LoadGray call and never touches the
// cached image.
//
// # Memory Management
//
// Cached images remain in memory until removed via Evict() or Clear().
// Radiographs are large; long-running servers should evict images once a
// study is done.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]cachedImage
}

type cachedImage struct {
	img    image.Image
	format string
}

// NewImageCache creates an empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]cachedImage),
	}
}

// Load returns the decoded image at path, reading it from disk on first use.
// Errors wrap ErrUnreadable.
func (c *ImageCache) Load(path string) (image.Image, error) {
	entry, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return entry.img, nil
}

// LoadGray returns an 8-bit grayscale copy of the image at path, windowed
// with w when the source is 16-bit.
func (c *ImageCache) LoadGray(path string, w Window) (*image.Gray, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	return ToGray(img, w), nil
}

func (c *ImageCache) load(path string) (cachedImage, error) {
	c.mu.RLock()
	if entry, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return entry, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return cachedImage{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return cachedImage{}, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}

	entry := cachedImage{img: img, format: format}
	c.mu.Lock()
	c.images[path] = entry
	c.mu.Unlock()

	return entry, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cachedImage)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path. Unknown paths
// are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Path is the path the image was loaded from.
	Path string `json:"path"`

	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the name of the decoder that read the file: "png", "jpeg",
	// "gif", "bmp" or "tiff".
	Format string `json:"format"`

	// Mode describes the pixel layout: "gray", "gray16", "rgb", "rgba",
	// "rgba64", "paletted" or "ycbcr".
	Mode string `json:"mode"`

	// BitDepth is the number of bits per channel, 8 or 16.
	BitDepth int `json:"bit_depth"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image into the cache (if not already cached) and
// reports its metadata.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	entry, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	mode, depth := describe(entry.img)
	bounds := entry.img.Bounds()
	return &ImageInfo{
		Path:          path,
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        entry.format,
		Mode:          mode,
		BitDepth:      depth,
		FileSizeBytes: stat.Size(),
	}, nil
}

func describe(img image.Image) (mode string, depth int) {
	switch img.(type) {
	case *image.Gray:
		return "gray", 8
	case *image.Gray16:
		return "gray16", 16
	case *image.RGBA, *image.NRGBA:
		return "rgba", 8
	case *image.RGBA64, *image.NRGBA64:
		return "rgba64", 16
	case *image.Paletted:
		return "paletted", 8
	case *image.YCbCr:
		return "ycbcr", 8
	case *image.CMYK:
		return "cmyk", 8
	default:
		return "rgb", 8
	}
}
