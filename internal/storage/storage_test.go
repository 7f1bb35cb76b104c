package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetIDFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"cloudinary with version", "https://res.cloudinary.com/demo/image/upload/v1712345678/matrixsol/abc123.jpg", "matrixsol/abc123"},
		{"cloudinary brand folder", "https://res.cloudinary.com/demo/image/upload/v1/matrixsol/brand/logo.png", "matrixsol/brand/logo"},
		{"without version", "https://res.cloudinary.com/demo/image/upload/matrixsol/abc123.webp", "matrixsol/abc123"},
		{"plain url", "https://cdn.example.com/files/abc123.jpg", "abc123"},
		{"no extension", "https://cdn.example.com/abc123", "abc123"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AssetIDFromURL(tt.url))
		})
	}
}

func TestNewFileName(t *testing.T) {
	a := NewFileName("Photo.JPG")
	b := NewFileName("Photo.JPG")

	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^[0-9a-f-]{36}\.jpg$`, a)
	assert.Regexp(t, `^[0-9a-f-]{36}$`, NewFileName("noext"))
}

func TestMemoryStore_UploadDelete(t *testing.T) {
	s := NewMemoryStore("http://assets.local/")
	ctx := context.Background()

	asset, err := s.Upload(ctx, Object{Folder: BrandFolder, FileName: "logo.png", Data: []byte("png")})
	require.NoError(t, err)

	assert.Equal(t, "matrixsol/brand/logo", asset.AssetID)
	assert.Equal(t, "http://assets.local/image/upload/matrixsol/brand/logo.png", asset.URL)
	assert.Equal(t, asset.AssetID, AssetIDFromURL(asset.URL))
	assert.True(t, s.Has(asset.AssetID))

	require.NoError(t, s.Delete(ctx, asset.AssetID))
	assert.False(t, s.Has(asset.AssetID))
	assert.Equal(t, 0, s.Len())

	// Deleting an unknown asset is a no-op.
	assert.NoError(t, s.Delete(ctx, "missing"))
}
