package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/internal/repository"
	"github.com/utafrali/catalog/pkg/database"
	apperrors "github.com/utafrali/catalog/pkg/errors"
)

const brandColumns = `brand_id, brandname, brand_image, public_id, created_at, updated_at`

// BrandRepository implements repository.BrandRepository using PostgreSQL.
type BrandRepository struct {
	db database.DBTX
}

// NewBrandRepository creates a new PostgreSQL-backed brand repository.
func NewBrandRepository(db database.DBTX) *BrandRepository {
	return &BrandRepository{db: db}
}

// Create inserts a new brand.
func (r *BrandRepository) Create(ctx context.Context, b *domain.Brand) (err error) {
	query := `INSERT INTO brands (` + brandColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	ctx, end := database.TraceQuery(ctx, "CreateBrand", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query, b.BrandID, b.BrandName, b.BrandImage, b.PublicID, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return brandWriteError(err, b.BrandID, "insert brand")
	}
	return nil
}

// GetByBrandID retrieves a brand by its brand id.
func (r *BrandRepository) GetByBrandID(ctx context.Context, brandID string) (b *domain.Brand, err error) {
	query := `SELECT ` + brandColumns + ` FROM brands WHERE brand_id = $1`

	ctx, end := database.TraceQuery(ctx, "GetBrand", query)
	defer func() { end(err) }()

	var brand domain.Brand
	err = r.db.QueryRow(ctx, query, brandID).Scan(
		&brand.BrandID,
		&brand.BrandName,
		&brand.BrandImage,
		&brand.PublicID,
		&brand.CreatedAt,
		&brand.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, brandNotFound()
		}
		return nil, fmt.Errorf("get brand: %w", err)
	}
	return &brand, nil
}

// Update replaces the name and image of an existing brand.
func (r *BrandRepository) Update(ctx context.Context, b *domain.Brand) (err error) {
	query := `
		UPDATE brands
		SET brandname = $1, brand_image = $2, public_id = $3, updated_at = $4
		WHERE brand_id = $5`

	ctx, end := database.TraceQuery(ctx, "UpdateBrand", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, b.BrandName, b.BrandImage, b.PublicID, b.UpdatedAt, b.BrandID)
	if err != nil {
		return brandWriteError(err, b.BrandID, "update brand")
	}
	if ct.RowsAffected() == 0 {
		return brandNotFound()
	}
	return nil
}

// Delete removes a brand.
func (r *BrandRepository) Delete(ctx context.Context, brandID string) (err error) {
	query := `DELETE FROM brands WHERE brand_id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteBrand", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, brandID)
	if err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return brandNotFound()
	}
	return nil
}

// ListAll returns all brands in creation order.
func (r *BrandRepository) ListAll(ctx context.Context) (brands []domain.Brand, err error) {
	query := `SELECT ` + brandColumns + ` FROM brands ORDER BY created_at, brand_id`

	ctx, end := database.TraceQuery(ctx, "ListBrands", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	brands = []domain.Brand{}
	for rows.Next() {
		var b domain.Brand
		if err := rows.Scan(
			&b.BrandID,
			&b.BrandName,
			&b.BrandImage,
			&b.PublicID,
			&b.CreatedAt,
			&b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan brand row: %w", err)
		}
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brand rows: %w", err)
	}
	return brands, nil
}

// Count returns the number of brands.
func (r *BrandRepository) Count(ctx context.Context) (n int, err error) {
	query := `SELECT count(*) FROM brands`

	ctx, end := database.TraceQuery(ctx, "CountBrands", query)
	defer func() { end(err) }()

	if err = r.db.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count brands: %w", err)
	}
	return n, nil
}

// ListIDs returns every brand id.
func (r *BrandRepository) ListIDs(ctx context.Context) ([]string, error) {
	return listIDs(ctx, r.db, "ListBrandIDs", `SELECT brand_id FROM brands ORDER BY brand_id`)
}

func brandNotFound() error {
	return apperrors.NotFoundMessage("Brand not found")
}

func brandWriteError(err error, brandID, op string) error {
	constraint, ok := uniqueConstraint(err)
	if !ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	if constraint == "brands_brandname_key" {
		return apperrors.Conflict(repository.MsgDuplicateBrandName)
	}
	return repository.IDTaken("brand", brandID)
}
