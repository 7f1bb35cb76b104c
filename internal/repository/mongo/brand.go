package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/utafrali/catalog/internal/domain"
	apperrors "github.com/utafrali/catalog/pkg/errors"
)

// BrandRepository stores brands in the brands collection.
type BrandRepository struct {
	coll *mongo.Collection
}

// NewBrandRepository creates a new MongoDB-backed brand repository.
func NewBrandRepository(db *mongo.Database) *BrandRepository {
	return &BrandRepository{coll: db.Collection(BrandsCollection)}
}

func brandNotFound() error {
	return apperrors.NotFoundMessage("Brand not found")
}

func (r *BrandRepository) Create(ctx context.Context, b *domain.Brand) (err error) {
	ctx, end := trace(ctx, BrandsCollection, "insertOne")
	defer func() { end(err) }()

	if _, err = r.coll.InsertOne(ctx, b); err != nil {
		return writeError(err, "brand", b.BrandID, "insert brand")
	}
	return nil
}

func (r *BrandRepository) GetByBrandID(ctx context.Context, brandID string) (b *domain.Brand, err error) {
	ctx, end := trace(ctx, BrandsCollection, "findOne")
	defer func() { end(err) }()

	var out domain.Brand
	if err = r.coll.FindOne(ctx, bson.D{{Key: "brandId", Value: brandID}}).Decode(&out); err != nil {
		if isNoDocuments(err) {
			return nil, brandNotFound()
		}
		return nil, fmt.Errorf("get brand: %w", err)
	}
	return &out, nil
}

func (r *BrandRepository) Update(ctx context.Context, b *domain.Brand) (err error) {
	ctx, end := trace(ctx, BrandsCollection, "replaceOne")
	defer func() { end(err) }()

	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "brandId", Value: b.BrandID}}, b)
	if err != nil {
		return writeError(err, "brand", b.BrandID, "update brand")
	}
	if res.MatchedCount == 0 {
		return brandNotFound()
	}
	return nil
}

func (r *BrandRepository) Delete(ctx context.Context, brandID string) (err error) {
	ctx, end := trace(ctx, BrandsCollection, "deleteOne")
	defer func() { end(err) }()

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "brandId", Value: brandID}})
	if err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}
	if res.DeletedCount == 0 {
		return brandNotFound()
	}
	return nil
}

func (r *BrandRepository) ListAll(ctx context.Context) (brands []domain.Brand, err error) {
	ctx, end := trace(ctx, BrandsCollection, "find")
	defer func() { end(err) }()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "brandId", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer cur.Close(ctx)

	brands = []domain.Brand{}
	if err := cur.All(ctx, &brands); err != nil {
		return nil, fmt.Errorf("decode brands: %w", err)
	}
	return brands, nil
}

func (r *BrandRepository) Count(ctx context.Context) (n int, err error) {
	ctx, end := trace(ctx, BrandsCollection, "countDocuments")
	defer func() { end(err) }()

	count, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count brands: %w", err)
	}
	return int(count), nil
}

func (r *BrandRepository) ListIDs(ctx context.Context) ([]string, error) {
	return listIDs(ctx, r.coll, "brandId")
}
