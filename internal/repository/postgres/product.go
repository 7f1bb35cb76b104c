package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/internal/repository"
	"github.com/utafrali/catalog/pkg/database"
	apperrors "github.com/utafrali/catalog/pkg/errors"
)

const productColumns = `product_id, category_name, sub_category_name, sub_sub_category_name,
	level3_sub_category_name, level4_sub_category_name, title, brand, brand_image, model_number,
	price, discount, offer_price, in_stock_available, sold_out_stock, full_title_description,
	full_description, specifications, images, thumbnail_image, active, is_draft, created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	specs, err := json.Marshal(p.Specifications)
	if err != nil {
		return fmt.Errorf("marshal specifications: %w", err)
	}

	query := `INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`

	ctx, end := database.TraceQuery(ctx, "CreateProduct", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		p.ProductID,
		p.CategoryName,
		p.SubCategoryName,
		p.SubSubCategoryName,
		p.Level3SubCategoryName,
		p.Level4SubCategoryName,
		p.Title,
		p.Brand,
		p.BrandImage,
		p.ModelNumber,
		p.Price,
		p.Discount,
		p.OfferPrice,
		p.InStockAvailable,
		p.SoldOutStock,
		p.FullTitleDescription,
		p.FullDescription,
		specs,
		p.Images,
		p.ProductThumbnailImage,
		p.Active,
		p.IsDraft,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return productWriteError(err, p.ProductID, "insert product")
	}
	return nil
}

// GetByProductID retrieves a product by its product id.
func (r *ProductRepository) GetByProductID(ctx context.Context, productID string) (p *domain.Product, err error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_id = $1`

	ctx, end := database.TraceQuery(ctx, "GetProduct", query)
	defer func() { end(err) }()

	p, err = scanProduct(r.db.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, productNotFound()
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update replaces every column of an existing product.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	specs, err := json.Marshal(p.Specifications)
	if err != nil {
		return fmt.Errorf("marshal specifications: %w", err)
	}

	query := `
		UPDATE products
		SET category_name = $1, sub_category_name = $2, sub_sub_category_name = $3,
		    level3_sub_category_name = $4, level4_sub_category_name = $5, title = $6, brand = $7,
		    brand_image = $8, model_number = $9, price = $10, discount = $11, offer_price = $12,
		    in_stock_available = $13, sold_out_stock = $14, full_title_description = $15,
		    full_description = $16, specifications = $17, images = $18, thumbnail_image = $19,
		    active = $20, is_draft = $21, updated_at = $22
		WHERE product_id = $23`

	ctx, end := database.TraceQuery(ctx, "UpdateProduct", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query,
		p.CategoryName,
		p.SubCategoryName,
		p.SubSubCategoryName,
		p.Level3SubCategoryName,
		p.Level4SubCategoryName,
		p.Title,
		p.Brand,
		p.BrandImage,
		p.ModelNumber,
		p.Price,
		p.Discount,
		p.OfferPrice,
		p.InStockAvailable,
		p.SoldOutStock,
		p.FullTitleDescription,
		p.FullDescription,
		specs,
		p.Images,
		p.ProductThumbnailImage,
		p.Active,
		p.IsDraft,
		p.UpdatedAt,
		p.ProductID,
	)
	if err != nil {
		return productWriteError(err, p.ProductID, "update product")
	}
	if ct.RowsAffected() == 0 {
		return productNotFound()
	}
	return nil
}

// Delete removes a product and returns the deleted row.
func (r *ProductRepository) Delete(ctx context.Context, productID string) (p *domain.Product, err error) {
	query := `DELETE FROM products WHERE product_id = $1 RETURNING ` + productColumns

	ctx, end := database.TraceQuery(ctx, "DeleteProduct", query)
	defer func() { end(err) }()

	p, err = scanProduct(r.db.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, productNotFound()
		}
		return nil, fmt.Errorf("delete product: %w", err)
	}
	return p, nil
}

// List returns products matching the filter, newest first, with the total
// match count computed in the same query.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) (products []domain.Product, total int, err error) {
	var (
		conditions []string
		args       []any
	)
	addString := func(column string, v *string) {
		if v != nil {
			args = append(args, *v)
			conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	addBool := func(column string, v *bool) {
		if v != nil {
			args = append(args, *v)
			conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}

	addString("category_name", filter.CategoryName)
	addString("sub_category_name", filter.SubCategoryName)
	addString("sub_sub_category_name", filter.SubSubCategoryName)
	addString("brand", filter.Brand)
	addBool("active", filter.Active)
	addBool("is_draft", filter.IsDraft)

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 15
	}
	args = append(args, limit, max(filter.Offset, 0))

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM products
		%s
		ORDER BY created_at DESC, product_id DESC
		LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, len(args)-1, len(args),
	)

	ctx, end := database.TraceQuery(ctx, "ListProducts", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products = []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	// An offset past the last row returns no rows and therefore no window
	// count; fall back to a plain count so pagination metadata stays right.
	if len(products) == 0 && filter.Offset > 0 {
		countQuery := "SELECT count(*) FROM products " + whereClause
		if err := r.db.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count products: %w", err)
		}
	}

	return products, total, nil
}

// ListIDs returns every product id.
func (r *ProductRepository) ListIDs(ctx context.Context) ([]string, error) {
	return listIDs(ctx, r.db, "ListProductIDs", `SELECT product_id FROM products ORDER BY product_id`)
}

func scanProduct(row pgx.Row, extra ...any) (*domain.Product, error) {
	var (
		p     domain.Product
		specs []byte
	)
	dest := []any{
		&p.ProductID,
		&p.CategoryName,
		&p.SubCategoryName,
		&p.SubSubCategoryName,
		&p.Level3SubCategoryName,
		&p.Level4SubCategoryName,
		&p.Title,
		&p.Brand,
		&p.BrandImage,
		&p.ModelNumber,
		&p.Price,
		&p.Discount,
		&p.OfferPrice,
		&p.InStockAvailable,
		&p.SoldOutStock,
		&p.FullTitleDescription,
		&p.FullDescription,
		&specs,
		&p.Images,
		&p.ProductThumbnailImage,
		&p.Active,
		&p.IsDraft,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &p.Specifications); err != nil {
			return nil, fmt.Errorf("unmarshal specifications: %w", err)
		}
	}
	p.Normalize()
	return &p, nil
}

func productNotFound() error {
	return apperrors.NotFoundMessage("Product not found")
}

func productWriteError(err error, productID, op string) error {
	constraint, ok := uniqueConstraint(err)
	if !ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	if constraint == "products_model_number_key" {
		return apperrors.Conflict(repository.MsgDuplicateModelNumber)
	}
	return repository.IDTaken("product", productID)
}

func listIDs(ctx context.Context, db database.DBTX, op, query string) (ids []string, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return ids, nil
}
