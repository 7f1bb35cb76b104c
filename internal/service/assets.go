package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/catalog/internal/storage"
)

// FileUpload is an uploaded file taken from a multipart request.
type FileUpload struct {
	FileName string
	Data     []byte
}

// assets uploads and removes images on the asset store. Removal is always
// best-effort: failures are logged and swallowed.
type assets struct {
	store  storage.Storage
	logger *slog.Logger
}

// upload stores every file under folder. If any upload fails the files
// already stored are removed again.
func (a assets) upload(ctx context.Context, folder string, files ...FileUpload) ([]storage.Asset, error) {
	uploaded := make([]storage.Asset, 0, len(files))
	for _, f := range files {
		asset, err := a.store.Upload(ctx, storage.Object{
			Folder:   folder,
			FileName: storage.NewFileName(f.FileName),
			Data:     f.Data,
		})
		if err != nil {
			a.discard(ctx, uploaded...)
			return nil, fmt.Errorf("upload %s: %w", f.FileName, err)
		}
		uploaded = append(uploaded, asset)
	}
	return uploaded, nil
}

// discard removes freshly uploaded assets.
func (a assets) discard(ctx context.Context, uploaded ...storage.Asset) {
	for _, asset := range uploaded {
		a.remove(ctx, asset.AssetID)
	}
}

// removeURLs removes the assets behind delivery URLs.
func (a assets) removeURLs(ctx context.Context, urls ...string) {
	for _, u := range urls {
		a.remove(ctx, storage.AssetIDFromURL(u))
	}
}

func (a assets) remove(ctx context.Context, assetID string) {
	if assetID == "" {
		return
	}
	if err := a.store.Delete(ctx, assetID); err != nil {
		a.logger.WarnContext(ctx, "failed to delete asset",
			slog.String("asset_id", assetID),
			slog.String("error", err.Error()),
		)
	}
}

func urlsOf(uploaded []storage.Asset) []string {
	urls := make([]string, len(uploaded))
	for i, a := range uploaded {
		urls[i] = a.URL
	}
	return urls
}
