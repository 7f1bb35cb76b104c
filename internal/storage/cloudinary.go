package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// uploadAPI is the part of the Cloudinary upload API the store needs.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryStore stores assets on Cloudinary.
type CloudinaryStore struct {
	api uploadAPI
}

// NewCloudinaryStore creates a store from a cloudinary:// URL.
func NewCloudinaryStore(cloudinaryURL string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("create cloudinary client: %w", err)
	}
	return &CloudinaryStore{api: &cld.Upload}, nil
}

// Upload stores obj under its folder with the file name, minus extension, as
// the public id.
func (s *CloudinaryStore) Upload(ctx context.Context, obj Object) (Asset, error) {
	publicID := strings.TrimSuffix(obj.FileName, path.Ext(obj.FileName))
	res, err := s.api.Upload(ctx, bytes.NewReader(obj.Data), uploader.UploadParams{
		Folder:    obj.Folder,
		PublicID:  publicID,
		Overwrite: api.Bool(false),
	})
	if err != nil {
		return Asset{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return Asset{}, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return Asset{URL: res.SecureURL, AssetID: res.PublicID}, nil
}

// Delete destroys the asset. A missing asset is not an error.
func (s *CloudinaryStore) Delete(ctx context.Context, assetID string) error {
	if assetID == "" {
		return errors.New("cloudinary destroy: empty asset id")
	}
	res, err := s.api.Destroy(ctx, uploader.DestroyParams{PublicID: assetID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", res.Error.Message)
	}
	return nil
}
