package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUploadAPI struct {
	mock.Mock
}

func (m *mockUploadAPI) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	data, _ := io.ReadAll(file.(io.Reader))
	args := m.Called(ctx, string(data), params)
	if r := args.Get(0); r != nil {
		return r.(*uploader.UploadResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUploadAPI) Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	args := m.Called(ctx, params)
	if r := args.Get(0); r != nil {
		return r.(*uploader.DestroyResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCloudinaryStore_Upload(t *testing.T) {
	m := new(mockUploadAPI)
	s := &CloudinaryStore{api: m}

	m.On("Upload", mock.Anything, "img", mock.MatchedBy(func(p uploader.UploadParams) bool {
		return p.Folder == ProductFolder && p.PublicID == "abc" && p.Overwrite != nil && !*p.Overwrite
	})).Return(&uploader.UploadResult{
		SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/matrixsol/abc.jpg",
		PublicID:  "matrixsol/abc",
	}, nil)

	asset, err := s.Upload(context.Background(), Object{Folder: ProductFolder, FileName: "abc.jpg", Data: []byte("img")})

	require.NoError(t, err)
	assert.Equal(t, "matrixsol/abc", asset.AssetID)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/matrixsol/abc.jpg", asset.URL)
	m.AssertExpectations(t)
}

func TestCloudinaryStore_Upload_APIError(t *testing.T) {
	m := new(mockUploadAPI)
	s := &CloudinaryStore{api: m}

	m.On("Upload", mock.Anything, mock.Anything, mock.Anything).
		Return(&uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}, nil)

	_, err := s.Upload(context.Background(), Object{Folder: ProductFolder, FileName: "x.jpg"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid image file")
}

func TestCloudinaryStore_Delete(t *testing.T) {
	m := new(mockUploadAPI)
	s := &CloudinaryStore{api: m}

	m.On("Destroy", mock.Anything, uploader.DestroyParams{PublicID: "matrixsol/abc"}).
		Return(&uploader.DestroyResult{Result: "ok"}, nil).Once()
	m.On("Destroy", mock.Anything, uploader.DestroyParams{PublicID: "matrixsol/down"}).
		Return(nil, errors.New("dial tcp: timeout")).Once()

	assert.NoError(t, s.Delete(context.Background(), "matrixsol/abc"))
	assert.Error(t, s.Delete(context.Background(), "matrixsol/down"))
	assert.Error(t, s.Delete(context.Background(), ""))
	m.AssertExpectations(t)
}
