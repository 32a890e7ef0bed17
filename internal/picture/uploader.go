package picture

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/picstash/service/internal/apperr"
	"github.com/picstash/service/internal/storage"
)

// Uploader runs the upload pipeline: validate the source, synthesize a
// collision-resistant storage key, materialize the source into a scoped temp
// file, submit it to the object store, and normalize the store's answer into
// an UploadedAsset.
type Uploader struct {
	store storage.Store
}

// NewUploader creates an Uploader backed by store.
func NewUploader(store storage.Store) *Uploader {
	return &Uploader{store: store}
}

// Upload ingests src under pathPrefix. Validation failures keep their own
// error codes; any later failure surfaces as SYSTEM_ERROR. The temp artifact
// is removed on every path, success or not.
func (u *Uploader) Upload(ctx context.Context, src Source, pathPrefix string) (*UploadedAsset, error) {
	if err := src.Validate(ctx); err != nil {
		return nil, err
	}

	originalName := src.OriginalName()
	key := synthesizeKey(pathPrefix, originalName)

	tmp, err := os.CreateTemp("", "picstash-upload-*")
	if err != nil {
		return nil, apperr.System("create temp file", err)
	}
	defer removeTemp(tmp.Name())

	if err := src.Materialize(ctx, tmp); err != nil {
		tmp.Close()
		return nil, apperr.System("materialize upload source", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, apperr.System("flush temp file", err)
	}

	result, err := u.store.PutPicture(ctx, key, tmp.Name())
	if err != nil {
		return nil, apperr.System("upload to object store", err)
	}

	return buildAsset(originalName, result), nil
}

// synthesizeKey builds "{prefix}/{yyyyMMdd}_{random16}.{ext}". The random
// component keeps concurrently uploaded same-named files from colliding.
func synthesizeKey(prefix, originalName string) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	ext := strings.TrimPrefix(path.Ext(originalName), ".")
	return fmt.Sprintf("%s/%s_%s.%s",
		strings.Trim(prefix, "/"), time.Now().Format("20060102"), random, ext)
}

// buildAsset normalizes the store result. When the store's processing
// pipeline produced variants, the first variant becomes the primary object
// and the second (when present) the thumbnail; otherwise the original
// metadata and key-derived URL are used.
func buildAsset(originalName string, result *storage.PutResult) *UploadedAsset {
	name := strings.TrimSuffix(path.Base(originalName), path.Ext(originalName))

	if len(result.Variants) > 0 {
		primary := result.Variants[0]
		asset := &UploadedAsset{
			URL:          primary.URL,
			OriginalName: name,
			SizeBytes:    primary.SizeBytes,
			Width:        primary.Width,
			Height:       primary.Height,
			AspectRatio:  roundRatio(primary.Width, primary.Height),
			Format:       primary.Format,
		}
		if len(result.Variants) > 1 {
			thumb := result.Variants[1].URL
			asset.ThumbnailURL = &thumb
		}
		return asset
	}

	return &UploadedAsset{
		URL:          result.URL,
		OriginalName: name,
		SizeBytes:    result.Original.SizeBytes,
		Width:        result.Original.Width,
		Height:       result.Original.Height,
		AspectRatio:  roundRatio(result.Original.Width, result.Original.Height),
		Format:       result.Original.Format,
	}
}

// roundRatio computes width/height in floating point, rounded to 2 decimals.
func roundRatio(width, height int) float64 {
	if height == 0 {
		return 0
	}
	return math.Round(float64(width)/float64(height)*100) / 100
}

func removeTemp(name string) {
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		log.Printf("picture: failed to remove temp file %s: %v", name, err)
	}
}
