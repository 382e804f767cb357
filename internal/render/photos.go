package render

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentLoads bounds parallel photo downloads.
const maxConcurrentLoads = 4

// Texture is a decoded photo ready for upload.
type Texture struct {
	Index int
	Image image.Image
}

// LoadPhotos fetches and decodes every source in the background. Sources
// are http(s) URLs or local file paths. Each decoded photo is sent on the
// returned channel, which is closed when all loads finish. Failed loads are
// logged and skipped, leaving that photo detached.
func LoadPhotos(ctx context.Context, client *http.Client, sources []string, logger *log.Logger) <-chan Texture {
	if client == nil {
		client = http.DefaultClient
	}
	out := make(chan Texture, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)

	go func() {
		defer close(out)
		for i, src := range sources {
			g.Go(func() error {
				img, err := loadImage(ctx, client, src)
				if err != nil {
					logger.Warn("photo unavailable", "index", i, "source", src, "err", err)
					return nil
				}
				select {
				case out <- Texture{Index: i, Image: img}:
				case <-ctx.Done():
				}
				return nil
			})
		}
		_ = g.Wait()
	}()

	return out
}

func loadImage(ctx context.Context, client *http.Client, src string) (image.Image, error) {
	var r io.ReadCloser

	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch: unexpected status %s", resp.Status)
		}
		r = resp.Body
	} else {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("open: %w", err)
		}
		r = f
	}
	defer r.Close()

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}
