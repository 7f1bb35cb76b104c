package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/utafrali/catalog/internal/domain"
)

// CategoryRepository stores each category tree as one document.
type CategoryRepository struct {
	coll *mongo.Collection
}

// NewCategoryRepository creates a new MongoDB-backed category repository.
func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{coll: db.Collection(CategoriesCollection)}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) (err error) {
	ctx, end := trace(ctx, CategoriesCollection, "insertOne")
	defer func() { end(err) }()

	if _, err = r.coll.InsertOne(ctx, c); err != nil {
		return writeError(err, "category", c.CategoryID, "insert category")
	}
	return nil
}

func (r *CategoryRepository) GetByMainCategory(ctx context.Context, mainCategory string) (c *domain.Category, err error) {
	ctx, end := trace(ctx, CategoriesCollection, "findOne")
	defer func() { end(err) }()

	var out domain.Category
	if err = r.coll.FindOne(ctx, bson.D{{Key: "mainCategory", Value: mainCategory}}).Decode(&out); err != nil {
		if isNoDocuments(err) {
			return nil, domain.ErrLevelNotFound(domain.LevelMain)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	if out.Subcategories == nil {
		out.Subcategories = []domain.CategoryNode{}
	}
	return &out, nil
}

// Update rewrites the main name and subtree of the document with c's id.
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) (err error) {
	ctx, end := trace(ctx, CategoriesCollection, "updateOne")
	defer func() { end(err) }()

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "mainCategory", Value: c.MainCategory},
		{Key: "subcategories", Value: c.Subcategories},
		{Key: "updatedAt", Value: c.UpdatedAt},
	}}}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "categoryId", Value: c.CategoryID}}, update)
	if err != nil {
		return writeError(err, "category", c.CategoryID, "update category")
	}
	if res.MatchedCount == 0 {
		return domain.ErrLevelNotFound(domain.LevelMain)
	}
	return nil
}

func (r *CategoryRepository) DeleteByMainCategory(ctx context.Context, mainCategory string) (err error) {
	ctx, end := trace(ctx, CategoriesCollection, "deleteOne")
	defer func() { end(err) }()

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "mainCategory", Value: mainCategory}})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrLevelNotFound(domain.LevelMain)
	}
	return nil
}

// ListAll returns every category tree in creation order.
func (r *CategoryRepository) ListAll(ctx context.Context) (categories []domain.Category, err error) {
	ctx, end := trace(ctx, CategoriesCollection, "find")
	defer func() { end(err) }()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "categoryId", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer cur.Close(ctx)

	categories = []domain.Category{}
	for cur.Next(ctx) {
		var c domain.Category
		if err := cur.Decode(&c); err != nil {
			return nil, fmt.Errorf("decode category: %w", err)
		}
		if c.Subcategories == nil {
			c.Subcategories = []domain.CategoryNode{}
		}
		categories = append(categories, c)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) ListIDs(ctx context.Context) ([]string, error) {
	return listIDs(ctx, r.coll, "categoryId")
}
