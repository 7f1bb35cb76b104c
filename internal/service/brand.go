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
	"github.com/utafrali/catalog/internal/storage"
	apperrors "github.com/utafrali/catalog/pkg/errors"
)

// BrandService implements the business logic for brands and their logos.
type BrandService struct {
	repo      repository.BrandRepository
	assets    assets
	publisher event.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewBrandService creates a new brand service.
func NewBrandService(repo repository.BrandRepository, assetStore storage.Storage, publisher event.Publisher, logger *slog.Logger) *BrandService {
	return &BrandService{
		repo:      repo,
		assets:    assets{store: assetStore, logger: logger},
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateBrand uploads the logo and stores a new brand. The logo is required.
func (s *BrandService) CreateBrand(ctx context.Context, name string, image *FileUpload) (*domain.Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.InvalidInput("brandname is required")
	}
	if image == nil {
		return nil, apperrors.InvalidInput("No file uploaded")
	}
	if len(image.Data) == 0 {
		return nil, apperrors.InvalidInput("File is empty")
	}

	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brand ids: %w", err)
	}

	uploaded, err := s.assets.upload(ctx, storage.BrandFolder, *image)
	if err != nil {
		return nil, err
	}

	now := s.now()
	brand := &domain.Brand{
		BrandID:    domain.AllocateID(domain.BrandIDPrefix, ids),
		BrandName:  name,
		BrandImage: uploaded[0].URL,
		PublicID:   uploaded[0].AssetID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, brand); err != nil {
		s.assets.discard(ctx, uploaded...)
		return nil, fmt.Errorf("create brand: %w", err)
	}

	s.publish(ctx, event.ActionCreated, brand)
	s.logger.InfoContext(ctx, "brand created",
		slog.String("brand_id", brand.BrandID),
		slog.String("brandname", brand.BrandName),
	)
	return brand, nil
}

// ListBrands returns every brand.
func (s *BrandService) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	brands, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return brands, nil
}

// CountBrands returns the number of brands.
func (s *BrandService) CountBrands(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count brands: %w", err)
	}
	return n, nil
}

// UpdateBrand renames the brand and, when image is given, replaces its logo.
// The previous logo is deleted once the brand is saved.
func (s *BrandService) UpdateBrand(ctx context.Context, brandID string, name *string, image *FileUpload) (*domain.Brand, error) {
	brand, err := s.repo.GetByBrandID(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("get brand: %w", err)
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperrors.InvalidInput("brandname must not be blank")
		}
		brand.BrandName = trimmed
	}

	var uploaded []storage.Asset
	oldAssetID := ""
	if image != nil {
		if len(image.Data) == 0 {
			return nil, apperrors.InvalidInput("File is empty")
		}
		uploaded, err = s.assets.upload(ctx, storage.BrandFolder, *image)
		if err != nil {
			return nil, err
		}
		oldAssetID = brand.PublicID
		if oldAssetID == "" {
			oldAssetID = storage.AssetIDFromURL(brand.BrandImage)
		}
		brand.BrandImage = uploaded[0].URL
		brand.PublicID = uploaded[0].AssetID
	}
	brand.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, brand); err != nil {
		s.assets.discard(ctx, uploaded...)
		return nil, fmt.Errorf("update brand: %w", err)
	}
	s.assets.remove(ctx, oldAssetID)

	s.publish(ctx, event.ActionUpdated, brand)
	s.logger.InfoContext(ctx, "brand updated",
		slog.String("brand_id", brand.BrandID),
		slog.Bool("image_replaced", image != nil),
	)
	return brand, nil
}

// DeleteBrand removes the brand and, best-effort, its logo.
func (s *BrandService) DeleteBrand(ctx context.Context, brandID string) error {
	brand, err := s.repo.GetByBrandID(ctx, brandID)
	if err != nil {
		return fmt.Errorf("get brand: %w", err)
	}
	if err := s.repo.Delete(ctx, brandID); err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}
	s.assets.remove(ctx, brand.PublicID)

	if err := s.publisher.PublishBrandDeleted(ctx, brandID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish brand.deleted event",
			slog.String("brand_id", brandID),
			slog.String("error", err.Error()),
		)
	}
	s.logger.InfoContext(ctx, "brand deleted", slog.String("brand_id", brandID))
	return nil
}

func (s *BrandService) publish(ctx context.Context, action string, brand *domain.Brand) {
	if err := s.publisher.PublishBrand(ctx, action, brand); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish brand event",
			slog.String("brand_id", brand.BrandID),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}
