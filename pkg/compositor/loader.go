// loader.go — Resolve asset sources to decoded images.
package compositor

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/xob0t/memoria/pkg/media"
	"github.com/xob0t/memoria/pkg/store"
)

// Loader decodes the image behind an asset.
type Loader interface {
	Load(ctx context.Context, a media.Asset) (image.Image, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, a media.Asset) (image.Image, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, a media.Asset) (image.Image, error) { return f(ctx, a) }

// Opener opens stored blobs by id. store.AssetStore satisfies it.
type Opener interface {
	Open(ctx context.Context, id string) (io.ReadCloser, error)
}

// ErrSourceNotAllowed is returned for file paths and URLs when a loader
// only accepts store and inline sources.
var ErrSourceNotAllowed = errors.New("asset source not allowed")

// SourceLoader resolves media.Asset.ImageSource(): "store:<id>" through
// Store, "data:" URLs inline, http(s) URLs through Client and anything else
// as a file path.
type SourceLoader struct {
	Store  Opener
	Client *http.Client

	// StoreOnly refuses file paths and http(s) URLs.
	StoreOnly bool
}

// CheckStoreOnly reports whether every asset resolves through the store or
// an inline data URL.
func CheckStoreOnly(assets ...media.Asset) error {
	for _, a := range assets {
		if src := a.ImageSource(); !isInline(src) {
			return fmt.Errorf("%w: asset %q", ErrSourceNotAllowed, a.Name)
		}
	}
	return nil
}

func isInline(src string) bool {
	return strings.HasPrefix(src, store.SourcePrefix) || strings.HasPrefix(src, "data:")
}

// Load opens and decodes the asset image, applying EXIF orientation.
func (l SourceLoader) Load(ctx context.Context, a media.Asset) (image.Image, error) {
	rc, err := l.open(ctx, a.ImageSource())
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, err := imaging.Decode(rc, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", a.Name, err)
	}
	return img, nil
}

func (l SourceLoader) open(ctx context.Context, src string) (io.ReadCloser, error) {
	switch {
	case src == "":
		return nil, fmt.Errorf("asset has no source")
	case l.StoreOnly && !isInline(src):
		return nil, ErrSourceNotAllowed
	case strings.HasPrefix(src, "data:"):
		data, err := decodeDataURL(src)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	case strings.HasPrefix(src, store.SourcePrefix):
		if l.Store == nil {
			return nil, fmt.Errorf("no asset store for %q", src)
		}
		return l.Store.Open(ctx, strings.TrimPrefix(src, store.SourcePrefix))
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, err
		}
		client := l.Client
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", src, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: status %d", src, resp.StatusCode)
		}
		return resp.Body, nil
	default:
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", src, err)
		}
		return f, nil
	}
}

// decodeDataURL returns the payload of an RFC 2397 "data:" URL.
func decodeDataURL(src string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URL")
	}
	if strings.HasSuffix(header, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data URL: %w", err)
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data URL: %w", err)
	}
	return []byte(data), nil
}

// imageCache memoises decoded images for a single render. Failures are
// cached too, so a broken asset is attempted once.
type imageCache struct {
	loader Loader
	assets map[string]media.Asset
	images map[string]image.Image
	errs   map[string]error
}

func newImageCache(l Loader, assets []media.Asset) *imageCache {
	return &imageCache{
		loader: l,
		assets: media.Index(assets),
		images: make(map[string]image.Image),
		errs:   make(map[string]error),
	}
}

func (c *imageCache) get(ctx context.Context, assetID string) (image.Image, error) {
	if img, ok := c.images[assetID]; ok {
		return img, nil
	}
	if err, ok := c.errs[assetID]; ok {
		return nil, err
	}

	a, ok := c.assets[assetID]
	if !ok {
		err := fmt.Errorf("unknown asset %q", assetID)
		c.errs[assetID] = err
		return nil, err
	}
	img, err := c.loader.Load(ctx, a)
	if err != nil {
		c.errs[assetID] = err
		return nil, err
	}
	c.images[assetID] = img
	return img, nil
}
