package repository

import (
	"context"

	"github.com/utafrali/catalog/internal/domain"
	apperrors "github.com/utafrali/catalog/pkg/errors"
)

// Conflict messages shared by the store drivers.
const (
	MsgDuplicateModelNumber  = "This model number already exists. Please use a different model number."
	MsgDuplicateMainCategory = "Main category already exists"
	MsgDuplicateBrandName    = "Brand name already exists"
)

// IDTaken reports that a freshly allocated id lost a race with a concurrent
// create.
func IDTaken(resource, id string) *apperrors.AppError {
	return apperrors.Conflict(resource + " id " + id + " is already taken, please retry")
}

// ProductFilter defines equality filters and the page window for listing
// products. Nil filters match everything. Results are always ordered by
// creation time, newest first.
type ProductFilter struct {
	CategoryName       *string
	SubCategoryName    *string
	SubSubCategoryName *string
	Brand              *string
	Active             *bool
	IsDraft            *bool

	Limit  int
	Offset int
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product. A duplicate model number or product id is
	// reported as a conflict.
	Create(ctx context.Context, product *domain.Product) error

	// GetByProductID retrieves a product by its productid#### identifier.
	GetByProductID(ctx context.Context, productID string) (*domain.Product, error)

	// Update replaces a stored product.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product and returns what was stored.
	Delete(ctx context.Context, productID string) (*domain.Product, error)

	// List returns one page of products matching filter along with the total
	// number of matches.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// ListIDs returns every stored product id.
	ListIDs(ctx context.Context) ([]string, error)
}

// CategoryRepository defines the interface for category tree persistence.
type CategoryRepository interface {
	// Create inserts a new root category.
	Create(ctx context.Context, category *domain.Category) error

	// GetByMainCategory retrieves the tree rooted at the given main name.
	GetByMainCategory(ctx context.Context, mainCategory string) (*domain.Category, error)

	// Update replaces the main name and subtree of the category with the same
	// category id.
	Update(ctx context.Context, category *domain.Category) error

	// DeleteByMainCategory removes a whole tree.
	DeleteByMainCategory(ctx context.Context, mainCategory string) error

	// ListAll returns every tree.
	ListAll(ctx context.Context) ([]domain.Category, error)

	// ListIDs returns every stored category id.
	ListIDs(ctx context.Context) ([]string, error)
}

// BrandRepository defines the interface for brand persistence operations.
type BrandRepository interface {
	Create(ctx context.Context, brand *domain.Brand) error
	GetByBrandID(ctx context.Context, brandID string) (*domain.Brand, error)
	Update(ctx context.Context, brand *domain.Brand) error
	Delete(ctx context.Context, brandID string) error
	ListAll(ctx context.Context) ([]domain.Brand, error)
	Count(ctx context.Context) (int, error)
	ListIDs(ctx context.Context) ([]string, error)
}
