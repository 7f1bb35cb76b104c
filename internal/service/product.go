package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/catalog/internal/cache"
	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/internal/event"
	"github.com/utafrali/catalog/internal/repository"
	"github.com/utafrali/catalog/internal/storage"
	apperrors "github.com/utafrali/catalog/pkg/errors"
)

// ProductService implements the business logic for product writes and
// single-product reads. Listings go through QueryEngine.
type ProductService struct {
	repo      repository.ProductRepository
	cache     cache.Store
	assets    assets
	publisher event.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewProductService creates a new product service.
func NewProductService(
	repo repository.ProductRepository,
	store cache.Store,
	assetStore storage.Storage,
	publisher event.Publisher,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		repo:      repo,
		cache:     store,
		assets:    assets{store: assetStore, logger: logger},
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ProductInput carries the writable product fields. Nil fields are left
// untouched on update and empty on create.
type ProductInput struct {
	CategoryName          *string
	SubCategoryName       *string
	SubSubCategoryName    *string
	Level3SubCategoryName *string
	Level4SubCategoryName *string
	Title                 *string
	Brand                 *string
	BrandImage            *string
	ModelNumber           *string
	Price                 *string
	Discount              *string
	OfferPrice            *string
	InStockAvailable      *string
	SoldOutStock          *string
	FullTitleDescription  *string
	FullDescription       *string
	Specifications        *[]domain.Specification
	Active                *bool
	IsDraft               *bool
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	ProductInput
	Images    []FileUpload
	Thumbnail *FileUpload
}

// UpdateProductInput holds the parameters for updating a product.
type UpdateProductInput struct {
	ProductInput
	RemovedImages []string
	NewImages     []FileUpload
	Thumbnail     *FileUpload
}

func (in ProductInput) apply(p *domain.Product) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.CategoryName, in.CategoryName)
	set(&p.SubCategoryName, in.SubCategoryName)
	set(&p.SubSubCategoryName, in.SubSubCategoryName)
	set(&p.Level3SubCategoryName, in.Level3SubCategoryName)
	set(&p.Level4SubCategoryName, in.Level4SubCategoryName)
	set(&p.Title, in.Title)
	set(&p.Brand, in.Brand)
	set(&p.BrandImage, in.BrandImage)
	set(&p.ModelNumber, in.ModelNumber)
	set(&p.Price, in.Price)
	set(&p.Discount, in.Discount)
	set(&p.OfferPrice, in.OfferPrice)
	set(&p.InStockAvailable, in.InStockAvailable)
	set(&p.SoldOutStock, in.SoldOutStock)
	set(&p.FullDescription, in.FullDescription)
	if in.FullTitleDescription != nil {
		p.FullTitleDescription = domain.SplitLines(*in.FullTitleDescription)
	}
	if in.Specifications != nil {
		p.Specifications = *in.Specifications
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if in.IsDraft != nil {
		p.IsDraft = *in.IsDraft
	}
}

// CreateProduct validates the input, uploads the images and stores the
// product. Uploaded images are removed again if the product cannot be saved.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	product := &domain.Product{}
	input.apply(product)
	product.Normalize()

	if err := product.ValidatePending(len(input.Images) > 0, input.Thumbnail != nil); err != nil {
		return nil, err
	}
	if product.Active && product.IsDraft {
		return nil, apperrors.InvalidInput("a draft product cannot be active")
	}

	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list product ids: %w", err)
	}
	product.ProductID = domain.AllocateID(domain.ProductIDPrefix, ids)

	images, err := s.assets.upload(ctx, storage.ProductFolder, input.Images...)
	if err != nil {
		return nil, err
	}
	product.Images = urlsOf(images)

	var uploaded []storage.Asset
	uploaded = append(uploaded, images...)
	if input.Thumbnail != nil {
		thumb, err := s.assets.upload(ctx, storage.ProductFolder, *input.Thumbnail)
		if err != nil {
			s.assets.discard(ctx, uploaded...)
			return nil, err
		}
		product.ProductThumbnailImage = thumb[0].URL
		uploaded = append(uploaded, thumb...)
	}

	now := s.now()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.repo.Create(ctx, product); err != nil {
		s.assets.discard(ctx, uploaded...)
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.afterWrite(ctx, event.ActionCreated, product)
	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ProductID),
		slog.String("model_number", product.ModelNumber),
		slog.Bool("draft", product.IsDraft),
	)
	return product, nil
}

// GetProduct retrieves a product by its id.
func (s *ProductService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.repo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// UpdateProduct applies the given fields, drops RemovedImages, appends
// NewImages and replaces the thumbnail. Assets replaced or removed are
// deleted from the store only once the product is saved.
func (s *ProductService) UpdateProduct(ctx context.Context, productID string, input *UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	input.apply(product)
	removed := product.RemoveImages(input.RemovedImages)

	newImages, err := s.assets.upload(ctx, storage.ProductFolder, input.NewImages...)
	if err != nil {
		return nil, err
	}
	product.Images = append(product.Images, urlsOf(newImages)...)

	uploaded := newImages
	if input.Thumbnail != nil {
		thumb, err := s.assets.upload(ctx, storage.ProductFolder, *input.Thumbnail)
		if err != nil {
			s.assets.discard(ctx, uploaded...)
			return nil, err
		}
		if product.ProductThumbnailImage != "" {
			removed = append(removed, product.ProductThumbnailImage)
		}
		product.ProductThumbnailImage = thumb[0].URL
		uploaded = append(uploaded, thumb...)
	}

	product.Normalize()
	if err := product.Validate(); err != nil {
		s.assets.discard(ctx, uploaded...)
		return nil, err
	}
	if product.Active {
		if err := product.ValidateActivation(); err != nil {
			s.assets.discard(ctx, uploaded...)
			return nil, err
		}
	}
	product.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, product); err != nil {
		s.assets.discard(ctx, uploaded...)
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.assets.removeURLs(ctx, removed...)

	s.afterWrite(ctx, event.ActionUpdated, product)
	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ProductID),
		slog.Int("images_removed", len(removed)),
		slog.Int("images_added", len(newImages)),
	)
	return product, nil
}

// DeleteProduct removes the product and then, best-effort, its images.
func (s *ProductService) DeleteProduct(ctx context.Context, productID string) error {
	product, err := s.repo.Delete(ctx, productID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.assets.removeURLs(ctx, product.Images...)
	s.assets.removeURLs(ctx, product.ProductThumbnailImage)
	s.cache.InvalidateByTag(ctx, cache.TagProducts)

	if err := s.publisher.PublishProductDeleted(ctx, productID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", productID))
	return nil
}

// ToggleActive flips the active flag of a product. Activating requires a
// complete, published product; deactivating zeroes its stock counters.
func (s *ProductService) ToggleActive(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.repo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	if err := product.ToggleActive(s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("toggle product active: %w", err)
	}

	s.afterWrite(ctx, event.ActionUpdated, product)
	s.logger.InfoContext(ctx, "product active state toggled",
		slog.String("product_id", product.ProductID),
		slog.Bool("active", product.Active),
	)
	return product, nil
}

// afterWrite flushes every cached listing and publishes the product event.
func (s *ProductService) afterWrite(ctx context.Context, action string, product *domain.Product) {
	s.cache.InvalidateByTag(ctx, cache.TagProducts)

	if err := s.publisher.PublishProduct(ctx, action, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product event",
			slog.String("product_id", product.ProductID),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}
