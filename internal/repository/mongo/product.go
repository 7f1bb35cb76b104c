package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/internal/repository"
	apperrors "github.com/utafrali/catalog/pkg/errors"
)

// ProductRepository stores products as documents in the products collection.
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository creates a new MongoDB-backed product repository.
func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(ProductsCollection)}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	ctx, end := trace(ctx, ProductsCollection, "insertOne")
	defer func() { end(err) }()

	if _, err = r.coll.InsertOne(ctx, p); err != nil {
		return writeError(err, "product", p.ProductID, "insert product")
	}
	return nil
}

func (r *ProductRepository) GetByProductID(ctx context.Context, productID string) (p *domain.Product, err error) {
	ctx, end := trace(ctx, ProductsCollection, "findOne")
	defer func() { end(err) }()

	var out domain.Product
	if err = r.coll.FindOne(ctx, bson.D{{Key: "productId", Value: productID}}).Decode(&out); err != nil {
		if isNoDocuments(err) {
			return nil, apperrors.NotFoundMessage("Product not found")
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	out.Normalize()
	return &out, nil
}

// Update replaces the stored document with p, matched by product id.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	ctx, end := trace(ctx, ProductsCollection, "replaceOne")
	defer func() { end(err) }()

	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "productId", Value: p.ProductID}}, p)
	if err != nil {
		return writeError(err, "product", p.ProductID, "update product")
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFoundMessage("Product not found")
	}
	return nil
}

// Delete removes the product and returns the document as it was, so callers
// can clean up its assets.
func (r *ProductRepository) Delete(ctx context.Context, productID string) (p *domain.Product, err error) {
	ctx, end := trace(ctx, ProductsCollection, "findOneAndDelete")
	defer func() { end(err) }()

	var out domain.Product
	if err = r.coll.FindOneAndDelete(ctx, bson.D{{Key: "productId", Value: productID}}).Decode(&out); err != nil {
		if isNoDocuments(err) {
			return nil, apperrors.NotFoundMessage("Product not found")
		}
		return nil, fmt.Errorf("delete product: %w", err)
	}
	out.Normalize()
	return &out, nil
}

// List returns one page of matching products, newest first, and the total
// number of matches.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) (products []domain.Product, total int, err error) {
	ctx, end := trace(ctx, ProductsCollection, "find")
	defer func() { end(err) }()

	query := productQuery(filter)

	count, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 15
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "productId", Value: -1}}).
		SetSkip(int64(max(filter.Offset, 0))).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer cur.Close(ctx)

	products = []domain.Product{}
	for cur.Next(ctx) {
		var p domain.Product
		if err := cur.Decode(&p); err != nil {
			return nil, 0, fmt.Errorf("decode product: %w", err)
		}
		p.Normalize()
		products = append(products, p)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products: %w", err)
	}
	return products, int(count), nil
}

func (r *ProductRepository) ListIDs(ctx context.Context) ([]string, error) {
	return listIDs(ctx, r.coll, "productId")
}

func productQuery(filter repository.ProductFilter) bson.D {
	query := bson.D{}
	addString := func(field string, v *string) {
		if v != nil {
			query = append(query, bson.E{Key: field, Value: *v})
		}
	}
	addBool := func(field string, v *bool) {
		if v != nil {
			query = append(query, bson.E{Key: field, Value: *v})
		}
	}
	addString("categoryName", filter.CategoryName)
	addString("subCategoryName", filter.SubCategoryName)
	addString("subSubCategoryName", filter.SubSubCategoryName)
	addString("brand", filter.Brand)
	addBool("active", filter.Active)
	addBool("isdraft", filter.IsDraft)
	return query
}
