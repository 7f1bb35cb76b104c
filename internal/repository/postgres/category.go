package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/internal/repository"
	"github.com/utafrali/catalog/pkg/database"
	apperrors "github.com/utafrali/catalog/pkg/errors"
)

// CategoryRepository stores each category tree as one row with the subtree
// in a JSONB column.
type CategoryRepository struct {
	db database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(db database.DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a new category tree.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) (err error) {
	tree, err := json.Marshal(c.Subcategories)
	if err != nil {
		return fmt.Errorf("marshal subcategories: %w", err)
	}

	query := `
		INSERT INTO categories (category_id, main_category, subcategories, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	ctx, end := database.TraceQuery(ctx, "CreateCategory", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query, c.CategoryID, c.MainCategory, tree, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return categoryWriteError(err, c.CategoryID, "insert category")
	}
	return nil
}

// GetByMainCategory retrieves the tree rooted at mainCategory.
func (r *CategoryRepository) GetByMainCategory(ctx context.Context, mainCategory string) (c *domain.Category, err error) {
	query := `
		SELECT category_id, main_category, subcategories, created_at, updated_at
		FROM categories
		WHERE main_category = $1`

	ctx, end := database.TraceQuery(ctx, "GetCategory", query)
	defer func() { end(err) }()

	c, err = scanCategory(r.db.QueryRow(ctx, query, mainCategory))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLevelNotFound(domain.LevelMain)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// Update replaces the main name and subtree of the row with c's id.
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) (err error) {
	tree, err := json.Marshal(c.Subcategories)
	if err != nil {
		return fmt.Errorf("marshal subcategories: %w", err)
	}

	query := `
		UPDATE categories
		SET main_category = $1, subcategories = $2, updated_at = $3
		WHERE category_id = $4`

	ctx, end := database.TraceQuery(ctx, "UpdateCategory", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, c.MainCategory, tree, c.UpdatedAt, c.CategoryID)
	if err != nil {
		return categoryWriteError(err, c.CategoryID, "update category")
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrLevelNotFound(domain.LevelMain)
	}
	return nil
}

// DeleteByMainCategory removes the whole tree rooted at mainCategory.
func (r *CategoryRepository) DeleteByMainCategory(ctx context.Context, mainCategory string) (err error) {
	query := `DELETE FROM categories WHERE main_category = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteCategory", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, mainCategory)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrLevelNotFound(domain.LevelMain)
	}
	return nil
}

// ListAll returns every category tree in creation order.
func (r *CategoryRepository) ListAll(ctx context.Context) (categories []domain.Category, err error) {
	query := `
		SELECT category_id, main_category, subcategories, created_at, updated_at
		FROM categories
		ORDER BY created_at, category_id`

	ctx, end := database.TraceQuery(ctx, "ListCategories", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories = []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return categories, nil
}

// ListIDs returns every category id.
func (r *CategoryRepository) ListIDs(ctx context.Context) ([]string, error) {
	return listIDs(ctx, r.db, "ListCategoryIDs", `SELECT category_id FROM categories ORDER BY category_id`)
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var (
		c    domain.Category
		tree []byte
	)
	if err := row.Scan(&c.CategoryID, &c.MainCategory, &tree, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if len(tree) > 0 {
		if err := json.Unmarshal(tree, &c.Subcategories); err != nil {
			return nil, fmt.Errorf("unmarshal subcategories: %w", err)
		}
	}
	if c.Subcategories == nil {
		c.Subcategories = []domain.CategoryNode{}
	}
	return &c, nil
}

func categoryWriteError(err error, categoryID, op string) error {
	constraint, ok := uniqueConstraint(err)
	if !ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	if constraint == "categories_main_category_key" {
		return apperrors.Conflict(repository.MsgDuplicateMainCategory)
	}
	return repository.IDTaken("category", categoryID)
}
