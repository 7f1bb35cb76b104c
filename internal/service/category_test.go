package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/internal/repository"
	apperrors "github.com/utafrali/catalog/pkg/errors"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestCategoryService(repo *mockCategoryRepository, pub *mockPublisher) *CategoryService {
	svc := NewCategoryService(repo, pub, newTestLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func electronicsTree(t *testing.T) *domain.Category {
	t.Helper()
	c := domain.NewCategory("category0001", "Electronics", fixedNow)
	require.NoError(t, c.AddChild(domain.CategoryPath{Main: "Electronics"}, "Phones", fixedNow))
	require.NoError(t, c.AddChild(domain.CategoryPath{Main: "Electronics", Sub: "Phones"}, "Smartphones", fixedNow))
	return c
}

func errorMessage(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Message
}

// ============================================================================
// CreateMain
// ============================================================================

func TestCreateMain_FillsIDGap(t *testing.T) {
	repo := new(mockCategoryRepository)
	pub := new(mockPublisher)
	svc := newTestCategoryService(repo, pub)

	repo.On("ListIDs", mock.Anything).Return([]string{"category0001", "category0002", "category0004"}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Category) bool {
		return c.CategoryID == "category0003" && c.MainCategory == "Home" && len(c.Subcategories) == 0
	})).Return(nil)
	pub.On("PublishCategory", mock.Anything, "created", mock.Anything).Return(nil)

	c, err := svc.CreateMain(context.Background(), "  Home ")

	require.NoError(t, err)
	assert.Equal(t, "category0003", c.CategoryID)
	assert.Equal(t, fixedNow, c.CreatedAt)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestCreateMain_BlankName(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo, permissivePublisher())

	_, err := svc.CreateMain(context.Background(), "   ")

	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	repo.AssertNotCalled(t, "ListIDs", mock.Anything)
}

func TestCreateMain_DuplicateIsConflict(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo, permissivePublisher())

	repo.On("ListIDs", mock.Anything).Return([]string{"category0001"}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(apperrors.Conflict(repository.MsgDuplicateMainCategory))

	_, err := svc.CreateMain(context.Background(), "Electronics")

	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Equal(t, repository.MsgDuplicateMainCategory, errorMessage(t, err))
}

func TestCreateMain_PublishFailureIsNotFatal(t *testing.T) {
	repo := new(mockCategoryRepository)
	pub := new(mockPublisher)
	svc := newTestCategoryService(repo, pub)

	repo.On("ListIDs", mock.Anything).Return([]string{}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishCategory", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	c, err := svc.CreateMain(context.Background(), "Toys")

	require.NoError(t, err)
	assert.Equal(t, "category0001", c.CategoryID)
}

// ============================================================================
// AddChild / Rename
// ============================================================================

func TestAddChild_PersistsTree(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo, permissivePublisher())
	tree := electronicsTree(t)

	repo.On("GetByMainCategory", mock.Anything, "Electronics").Return(tree, nil)
	repo.On("Update", mock.Anything, tree).Return(nil)

	c, err := svc.AddChild(context.Background(),
		domain.CategoryPath{Main: "Electronics", Sub: "Phones", SubSub: "Smartphones"}, "Android")

	require.NoError(t, err)
	node, err := c.Find(domain.CategoryPath{Main: "Electronics", Sub: "Phones", SubSub: "Smartphones", Level3: "Android"})
	require.NoError(t, err)
	assert.Equal(t, domain.LevelLevel3, node.Level)
	repo.AssertExpectations(t)
}

func TestAddChild_GappedPathIsRejectedBeforeRead(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo, permissivePublisher())

	_, err := svc.AddChild(context.Background(), domain.CategoryPath{Main: "Electronics", SubSub: "Smartphones"}, "Android")

	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	repo.AssertNotCalled(t, "GetByMainCategory", mock.Anything, mock.Anything)
}

func TestAddChild_MissingSubNamesTheLevel(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo, permissivePublisher())

	repo.On("GetByMainCategory", mock.Anything, "Electronics").Return(electronicsTree(t), nil)

	_, err := svc.AddChild(context.Background(), domain.CategoryPath{Main: "Electronics", Sub: "Tablets"}, "iPad")

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, "Subcategory not found", errorMessage(t, err))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAddChild_AfterMainDeletedIsNotFound(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo, permissivePublisher())
	tree := electronicsTree(t)

	repo.On("GetByMainCategory", mock.Anything, "Electronics").Return(tree, nil).Once()
	repo.On("DeleteByMainCategory", mock.Anything, "Electronics").Return(nil).Once()
	repo.On("GetByMainCategory", mock.Anything, "Electronics").Return(nil, domain.ErrLevelNotFound(domain.LevelMain)).Once()

	removed, err := svc.Remove(context.Background(), domain.CategoryPath{Main: "Electronics"})
	require.NoError(t, err)
	assert.Nil(t, removed)

	_, err = svc.AddChild(context.Background(), domain.CategoryPath{Main: "Electronics"}, "Audio")
	assert.Equal(t, "Main category not found", errorMessage(t, err))
	repo.AssertExpectations(t)
}

func TestRename_MainConflictFromStore(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo, permissivePublisher())

	repo.On("GetByMainCategory", mock.Anything, "Electronics").Return(electronicsTree(t), nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(apperrors.Conflict(repository.MsgDuplicateMainCategory))

	_, err := svc.Rename(context.Background(), domain.CategoryPath{Main: "Electronics"}, "Home")

	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestRename_Leaf(t *testing.T) {
	repo := new(mockCategoryRepository)
	pub := new(mockPublisher)
	svc := newTestCategoryService(repo, pub)

	repo.On("GetByMainCategory", mock.Anything, "Electronics").Return(electronicsTree(t), nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishCategory", mock.Anything, "updated", mock.Anything).Return(nil).Once()

	c, err := svc.Rename(context.Background(),
		domain.CategoryPath{Main: "Electronics", Sub: "Phones", SubSub: "Smartphones"}, "Feature phones")

	require.NoError(t, err)
	assert.Equal(t, "Feature phones", c.Subcategories[0].Children[0].Name)
	pub.AssertExpectations(t)
}

func TestRename_LogsPreviousName(t *testing.T) {
	tests := []struct {
		name    string
		path    domain.CategoryPath
		oldName string
	}{
		{"main", domain.CategoryPath{Main: "Electronics"}, "Electronics"},
		{"sub", domain.CategoryPath{Main: "Electronics", Sub: "Phones"}, "Phones"},
		{"subsub", domain.CategoryPath{Main: "Electronics", Sub: "Phones", SubSub: "Smartphones"}, "Smartphones"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockCategoryRepository)
			svc := newTestCategoryService(repo, permissivePublisher())
			var logs bytes.Buffer
			svc.logger = slog.New(slog.NewJSONHandler(&logs, nil))

			repo.On("GetByMainCategory", mock.Anything, "Electronics").Return(electronicsTree(t), nil)
			repo.On("Update", mock.Anything, mock.Anything).Return(nil)

			_, err := svc.Rename(context.Background(), tt.path, " Renamed ")
			require.NoError(t, err)

			assert.Contains(t, logs.String(), `"msg":"category renamed"`)
			assert.Contains(t, logs.String(), `"old_name":"`+tt.oldName+`"`)
			assert.Contains(t, logs.String(), `"new_name":"Renamed"`)
		})
	}
}

func TestRename_MissingNodeWritesNothing(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo, permissivePublisher())

	repo.On("GetByMainCategory", mock.Anything, "Electronics").Return(electronicsTree(t), nil)

	_, err := svc.Rename(context.Background(), domain.CategoryPath{Main: "Electronics", Sub: "Laptops"}, "Notebooks")

	assert.Equal(t, "Subcategory not found", errorMessage(t, err))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// ============================================================================
// Remove / List
// ============================================================================

func TestRemove_SubtreePersistsRemainingTree(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo, permissivePublisher())

	repo.On("GetByMainCategory", mock.Anything, "Electronics").Return(electronicsTree(t), nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(c *domain.Category) bool {
		return len(c.Subcategories) == 1 && len(c.Subcategories[0].Children) == 0
	})).Return(nil)

	c, err := svc.Remove(context.Background(), domain.CategoryPath{Main: "Electronics", Sub: "Phones", SubSub: "Smartphones"})

	require.NoError(t, err)
	require.NotNil(t, c)
	repo.AssertExpectations(t)
}

func TestRemove_MainPublishesDeletion(t *testing.T) {
	repo := new(mockCategoryRepository)
	pub := new(mockPublisher)
	svc := newTestCategoryService(repo, pub)

	repo.On("GetByMainCategory", mock.Anything, "Electronics").Return(electronicsTree(t), nil)
	repo.On("DeleteByMainCategory", mock.Anything, "Electronics").Return(nil)
	pub.On("PublishCategoryDeleted", mock.Anything, "category0001", "Electronics").Return(nil)

	_, err := svc.Remove(context.Background(), domain.CategoryPath{Main: "Electronics"})

	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestRemove_MissingMain(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo, permissivePublisher())

	repo.On("GetByMainCategory", mock.Anything, "Toys").Return(nil, domain.ErrLevelNotFound(domain.LevelMain))

	_, err := svc.Remove(context.Background(), domain.CategoryPath{Main: "Toys"})

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	repo.AssertNotCalled(t, "DeleteByMainCategory", mock.Anything, mock.Anything)
}

func TestList(t *testing.T) {
	repo := new(mockCategoryRepository)
	svc := newTestCategoryService(repo, permissivePublisher())

	repo.On("ListAll", mock.Anything).Return([]domain.Category{*electronicsTree(t)}, nil)

	categories, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}
