package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/internal/event"
	"github.com/utafrali/catalog/internal/repository"
	apperrors "github.com/utafrali/catalog/pkg/errors"
)

// CategoryService implements the category tree operations. Every edit loads
// the whole tree, changes one level and writes the tree back.
type CategoryService struct {
	repo      repository.CategoryRepository
	publisher event.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo repository.CategoryRepository, publisher event.Publisher, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateMain creates a new tree rooted at name.
func (s *CategoryService) CreateMain(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.InvalidInput("mainCategory is required")
	}

	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list category ids: %w", err)
	}

	category := domain.NewCategory(domain.AllocateID(domain.CategoryIDPrefix, ids), name, s.now())
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.publish(ctx, event.ActionCreated, category)
	s.logger.InfoContext(ctx, "main category created",
		slog.String("category_id", category.CategoryID),
		slog.String("main_category", category.MainCategory),
	)
	return category, nil
}

// AddChild appends name under the node addressed by parent.
func (s *CategoryService) AddChild(ctx context.Context, parent domain.CategoryPath, name string) (*domain.Category, error) {
	return s.edit(ctx, parent, "add child", func(c *domain.Category) error {
		return c.AddChild(parent, name, s.now())
	})
}

// Rename renames the node addressed by path. A path holding only the main
// category renames the tree itself.
func (s *CategoryService) Rename(ctx context.Context, path domain.CategoryPath, newName string) (*domain.Category, error) {
	var oldName string
	category, err := s.edit(ctx, path, "rename", func(c *domain.Category) error {
		oldName = c.MainCategory
		if strings.TrimSpace(path.Sub) != "" {
			node, err := c.Find(path)
			if err != nil {
				return err
			}
			oldName = node.Name
		}
		return c.Rename(path, newName, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "category renamed",
		slog.String("category_id", category.CategoryID),
		slog.String("old_name", oldName),
		slog.String("new_name", strings.TrimSpace(newName)),
	)
	return category, nil
}

// Remove deletes the node addressed by path with its subtree. A path holding
// only the main category deletes the whole tree and returns nil.
func (s *CategoryService) Remove(ctx context.Context, path domain.CategoryPath) (*domain.Category, error) {
	depth, err := path.Depth()
	if err != nil {
		return nil, err
	}
	if depth > domain.LevelMain {
		return s.edit(ctx, path, "remove", func(c *domain.Category) error {
			return c.Remove(path, s.now())
		})
	}

	main := strings.TrimSpace(path.Main)
	category, err := s.repo.GetByMainCategory(ctx, main)
	if err != nil {
		return nil, fmt.Errorf("get category %q: %w", main, err)
	}
	if err := s.repo.DeleteByMainCategory(ctx, main); err != nil {
		return nil, fmt.Errorf("delete category %q: %w", main, err)
	}

	if err := s.publisher.PublishCategoryDeleted(ctx, category.CategoryID, main); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.deleted event",
			slog.String("category_id", category.CategoryID),
			slog.String("error", err.Error()),
		)
	}
	s.logger.InfoContext(ctx, "main category deleted",
		slog.String("category_id", category.CategoryID),
		slog.String("main_category", main),
	)
	return nil, nil
}

// List returns every category tree.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// edit validates path, loads the tree it starts at, applies fn and persists
// the result. Nothing is written when fn fails.
func (s *CategoryService) edit(ctx context.Context, path domain.CategoryPath, op string, fn func(*domain.Category) error) (*domain.Category, error) {
	segs, err := path.Segments()
	if err != nil {
		return nil, err
	}

	category, err := s.repo.GetByMainCategory(ctx, segs[0])
	if err != nil {
		return nil, fmt.Errorf("get category %q: %w", segs[0], err)
	}
	if err := fn(category); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, event.ActionUpdated, category)
	s.logger.InfoContext(ctx, "category tree updated",
		slog.String("category_id", category.CategoryID),
		slog.String("operation", op),
		slog.String("path", strings.Join(segs, " > ")),
	)
	return category, nil
}

func (s *CategoryService) publish(ctx context.Context, action string, category *domain.Category) {
	if err := s.publisher.PublishCategory(ctx, action, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category event",
			slog.String("category_id", category.CategoryID),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}
