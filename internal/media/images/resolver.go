package images

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/glazepal/glazepal/internal/logger"
)

// Asset is a photo returned by an image picker.
type Asset struct {
	URI     string `json:"uri"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	AssetID string `json:"assetId,omitempty"`
}

// Sources are the URIs recorded for one image.
type Sources struct {
	CacheURI  string  `json:"cacheUri"`
	LocalURI  *string `json:"localUri"`
	PublicURI *string `json:"publicUri"`
	BlurHash  string  `json:"blurHash,omitempty"`
}

// Uploader publishes a local image and returns its public URL, or "" when
// nothing was published.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// NoopUploader never publishes anything.
type NoopUploader struct{}

// Upload always returns "".
func (NoopUploader) Upload(context.Context, string) (string, error) { return "", nil }

// Resolver turns picker assets into Sources.
type Resolver struct {
	storage  *Storage
	uploader Uploader
	logger   *slog.Logger
}

// NewResolver creates a resolver. A nil uploader means NoopUploader.
func NewResolver(storage *Storage, uploader Uploader, log *slog.Logger) *Resolver {
	if uploader == nil {
		uploader = NoopUploader{}
	}
	return &Resolver{storage: storage, uploader: uploader, logger: logger.OrDiscard(log)}
}

// Resolve copies the asset into local storage and publishes it, both at
// once. It never fails: a failed copy falls back to the cache URI and a
// failed upload leaves PublicURI nil.
func (r *Resolver) Resolve(ctx context.Context, asset Asset) Sources {
	out := Sources{CacheURI: asset.URI}

	var (
		local  string
		hash   string
		public string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		local, hash = r.copyLocal(asset)
		return nil
	})
	g.Go(func() error {
		path, ok := filePath(asset.URI)
		if !ok {
			return nil
		}
		var err error
		public, err = r.uploader.Upload(gctx, path)
		if err != nil {
			r.logger.Warn("failed to publish image", "uri", asset.URI, logger.Err(err))
			public = ""
		}
		return nil
	})
	_ = g.Wait()

	out.LocalURI = &local
	if public != "" {
		out.PublicURI = &public
	}
	out.BlurHash = hash
	return out
}

// copyLocal stores a durable copy of the asset and hashes it. When the
// asset is not a readable file the cache URI is returned unchanged.
func (r *Resolver) copyLocal(asset Asset) (uri, hash string) {
	path, ok := filePath(asset.URI)
	if !ok || r.storage == nil {
		return asset.URI, ""
	}

	f, err := os.Open(path)
	if err != nil {
		r.logger.Warn("failed to open picked image", "uri", asset.URI, logger.Err(err))
		return asset.URI, ""
	}
	defer f.Close()

	stored, err := r.storage.Save(f, filepath.Ext(path))
	if err != nil {
		r.logger.Warn("failed to copy picked image", "uri", asset.URI, logger.Err(err))
		return asset.URI, ""
	}

	hash, err = ComputeBlurHashFile(stored)
	if err != nil {
		r.logger.Debug("no blurhash for image", "path", stored, logger.Err(err))
	}
	return "file://" + stored, hash
}

// filePath extracts a filesystem path from a file URI or a bare path.
func filePath(uri string) (string, bool) {
	if uri == "" {
		return "", false
	}
	if !strings.Contains(uri, "://") {
		return uri, true
	}
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	return u.Path, true
}
