// Package storage uploads and deletes catalog image assets on an external
// object store.
package storage

import (
	"context"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Asset folders.
const (
	ProductFolder = "matrixsol"
	BrandFolder   = "matrixsol/brand"
)

// Object is a file to upload.
type Object struct {
	Folder   string
	FileName string
	Data     []byte
}

// Asset identifies an uploaded object. URL is the public delivery URL and
// AssetID the key the store deletes it by.
type Asset struct {
	URL     string
	AssetID string
}

// Storage is an asset store.
type Storage interface {
	Upload(ctx context.Context, obj Object) (Asset, error)
	Delete(ctx context.Context, assetID string) error
}

// NewFileName returns a unique object name keeping the extension of the
// client supplied name.
func NewFileName(original string) string {
	return uuid.NewString() + strings.ToLower(path.Ext(original))
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// AssetIDFromURL derives the asset id from a delivery URL: the path after
// the "upload" segment, without the version segment or the extension. URLs
// without an "upload" segment fall back to the last path segment.
func AssetIDFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}

	parts := strings.Split(strings.Trim(p, "/"), "/")
	start := len(parts) - 1
	for i, part := range parts {
		if part == "upload" && i+1 < len(parts) {
			start = i + 1
			break
		}
	}
	if start < len(parts)-1 && versionSegment.MatchString(parts[start]) {
		start++
	}

	id := strings.Join(parts[start:], "/")
	return strings.TrimSuffix(id, path.Ext(id))
}
