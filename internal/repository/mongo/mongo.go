// Package mongo implements the catalog repositories on MongoDB. Each entity
// lives in its own collection, keyed by the public id rather than _id.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/utafrali/catalog/internal/repository"
	"github.com/utafrali/catalog/pkg/database"
	apperrors "github.com/utafrali/catalog/pkg/errors"
)

// Collection names.
const (
	ProductsCollection   = "products"
	CategoriesCollection = "categories"
	BrandsCollection     = "brands"
)

// Unique index names. Duplicate key errors are attributed by index name.
const (
	idxProductID    = "productId_unique"
	idxModelNumber  = "modelNumber_unique"
	idxCategoryID   = "categoryId_unique"
	idxMainCategory = "mainCategory_unique"
	idxBrandID      = "brandId_unique"
	idxBrandName    = "brandname_unique"
)

var collectionIndexes = map[string][]mongo.IndexModel{
	ProductsCollection: {
		{Keys: bson.D{{Key: "productId", Value: 1}}, Options: options.Index().SetName(idxProductID).SetUnique(true)},
		{Keys: bson.D{{Key: "modelNumber", Value: 1}}, Options: options.Index().SetName(idxModelNumber).SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "productId", Value: -1}}, Options: options.Index().SetName("createdAt_desc")},
		{Keys: bson.D{{Key: "categoryName", Value: 1}, {Key: "subCategoryName", Value: 1}, {Key: "subSubCategoryName", Value: 1}}, Options: options.Index().SetName("category_path")},
		{Keys: bson.D{{Key: "brand", Value: 1}}, Options: options.Index().SetName("brand")},
	},
	CategoriesCollection: {
		{Keys: bson.D{{Key: "categoryId", Value: 1}}, Options: options.Index().SetName(idxCategoryID).SetUnique(true)},
		{Keys: bson.D{{Key: "mainCategory", Value: 1}}, Options: options.Index().SetName(idxMainCategory).SetUnique(true)},
	},
	BrandsCollection: {
		{Keys: bson.D{{Key: "brandId", Value: 1}}, Options: options.Index().SetName(idxBrandID).SetUnique(true)},
		{Keys: bson.D{{Key: "brandname", Value: 1}}, Options: options.Index().SetName(idxBrandName).SetUnique(true)},
	},
}

// EnsureIndexes creates the unique and listing indexes on every catalog
// collection. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, models := range collectionIndexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// duplicateIndex reports the name of the unique index a duplicate key error
// was raised on. The server only carries it in the error message.
func duplicateIndex(err error) (string, bool) {
	if !mongo.IsDuplicateKeyError(err) {
		return "", false
	}
	msg := err.Error()
	for _, idx := range []string{idxProductID, idxModelNumber, idxCategoryID, idxMainCategory, idxBrandID, idxBrandName} {
		if strings.Contains(msg, idx) {
			return idx, true
		}
	}
	return "", true
}

func writeError(err error, resource, id, op string) error {
	idx, ok := duplicateIndex(err)
	if !ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch idx {
	case idxModelNumber:
		return apperrors.Conflict(repository.MsgDuplicateModelNumber)
	case idxMainCategory:
		return apperrors.Conflict(repository.MsgDuplicateMainCategory)
	case idxBrandName:
		return apperrors.Conflict(repository.MsgDuplicateBrandName)
	}
	return repository.IDTaken(resource, id)
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func trace(ctx context.Context, collection, op string) (context.Context, func(error)) {
	return database.TraceOperation(ctx, database.SystemMongo, op, collection+"."+op)
}

// listIDs returns the string value of field for every document in coll.
func listIDs(ctx context.Context, coll *mongo.Collection, field string) (ids []string, err error) {
	ctx, end := trace(ctx, coll.Name(), "listIds")
	defer func() { end(err) }()

	opts := options.Find().
		SetProjection(bson.D{{Key: field, Value: 1}, {Key: "_id", Value: 0}}).
		SetSort(bson.D{{Key: field, Value: 1}})
	cur, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s ids: %w", coll.Name(), err)
	}
	defer cur.Close(ctx)

	ids = []string{}
	for cur.Next(ctx) {
		v, ok := cur.Current.Lookup(field).StringValueOK()
		if ok {
			ids = append(ids, v)
		}
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s ids: %w", coll.Name(), err)
	}
	return ids, nil
}
