package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/utafrali/catalog/internal/cache"
	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/internal/repository"
	apperrors "github.com/utafrali/catalog/pkg/errors"
	"github.com/utafrali/catalog/pkg/pagination"
)

// ProductQuery holds listing filters exactly as received on the query
// string. Nil means the filter was not given.
type ProductQuery struct {
	CategoryName       *string
	SubCategoryName    *string
	SubSubCategoryName *string
	Brand              *string
	IsDraft            *string
	Active             *string
}

// CategoryScope addresses the category-path listings. Sub and SubSub are
// optional but SubSub requires Sub.
type CategoryScope struct {
	Category string
	Sub      string
	SubSub   string
}

// ProductPage is one page of products.
type ProductPage = pagination.Result[domain.Product]

// QueryEngine serves paginated product listings through the catalog cache.
type QueryEngine struct {
	repo   repository.ProductRepository
	cache  cache.Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewQueryEngine creates a query engine. A zero ttl uses cache.DefaultTTL.
func NewQueryEngine(repo repository.ProductRepository, store cache.Store, ttl time.Duration, logger *slog.Logger) *QueryEngine {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &QueryEngine{repo: repo, cache: store, ttl: ttl, logger: logger}
}

// List returns one page of products matching q. An empty page is a valid
// result.
func (e *QueryEngine) List(ctx context.Context, q ProductQuery, params pagination.Params) (*ProductPage, error) {
	filter := repository.ProductFilter{
		CategoryName:       decoded(q.CategoryName),
		SubCategoryName:    decoded(q.SubCategoryName),
		SubSubCategoryName: decoded(q.SubSubCategoryName),
		Brand:              decoded(q.Brand),
	}
	var err error
	if filter.IsDraft, err = parseBool("isdraft", q.IsDraft); err != nil {
		return nil, err
	}
	if filter.Active, err = parseBool("active", q.Active); err != nil {
		return nil, err
	}

	return e.query(ctx, listKey(q, params), filter, params, "")
}

// ByCategory returns published products under the given category path.
func (e *QueryEngine) ByCategory(ctx context.Context, scope CategoryScope, params pagination.Params) (*ProductPage, error) {
	if scope.Category == "" || (scope.SubSub != "" && scope.Sub == "") {
		return nil, apperrors.InvalidInput("Invalid category path")
	}

	published := false
	filter := repository.ProductFilter{
		CategoryName: decoded(&scope.Category),
		IsDraft:      &published,
	}
	key := "category:" + scope.Category
	notFound := "No products found for this category"
	if scope.Sub != "" {
		filter.SubCategoryName = decoded(&scope.Sub)
		key += "-subcategory:" + scope.Sub
		notFound = "No products found for this subcategory"
	}
	if scope.SubSub != "" {
		filter.SubSubCategoryName = decoded(&scope.SubSub)
		key += "-subsubcategory:" + scope.SubSub
		notFound = "No products found for this subsubcategory"
	}
	key += pageSuffix(params)

	return e.query(ctx, key, filter, params, notFound)
}

// ByBrand returns published products of brand.
func (e *QueryEngine) ByBrand(ctx context.Context, brand string, params pagination.Params) (*ProductPage, error) {
	published := false
	filter := repository.ProductFilter{
		Brand:   decoded(&brand),
		IsDraft: &published,
	}
	return e.query(ctx, "brand:"+brand+pageSuffix(params), filter, params, "No products found for this brand")
}

// query serves key from the cache or loads it from the store. A non-empty
// notFound turns an empty result into a NotFound error; such results are
// never cached. A page is only cached if no product write invalidated the
// cache while it was being read.
func (e *QueryEngine) query(ctx context.Context, key string, filter repository.ProductFilter, params pagination.Params, notFound string) (*ProductPage, error) {
	if raw, ok := e.cache.Get(ctx, key); ok {
		var page ProductPage
		if err := json.Unmarshal(raw, &page); err == nil {
			return &page, nil
		}
		e.logger.WarnContext(ctx, "discarding undecodable cache entry", slog.String("key", key))
	}

	gen := e.cache.Generation(ctx, cache.TagProducts)

	filter.Limit = params.Limit
	filter.Offset = params.Offset
	products, total, err := e.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 && notFound != "" {
		return nil, apperrors.NotFoundMessage(notFound)
	}

	page := pagination.NewResult(products, total, params)
	if raw, err := json.Marshal(page); err == nil {
		if !e.cache.SetIfCurrent(ctx, key, raw, e.ttl, cache.TagProducts, gen) {
			e.logger.DebugContext(ctx, "skipped caching page read during a product write", slog.String("key", key))
		}
	} else {
		e.logger.WarnContext(ctx, "failed to encode page for cache", slog.String("error", err.Error()))
	}
	return &page, nil
}

// listKey builds the cache key for the generic listing from the raw filter
// values.
func listKey(q ProductQuery, params pagination.Params) string {
	var b strings.Builder
	fmt.Fprintf(&b, "page:%d-limit:%d", params.Page, params.Limit)
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"categoryName", q.CategoryName},
		{"subCategoryName", q.SubCategoryName},
		{"subSubCategoryName", q.SubSubCategoryName},
		{"brand", q.Brand},
		{"isdraft", q.IsDraft},
		{"active", q.Active},
	} {
		if f.value != nil {
			b.WriteString("-" + f.name + ":" + *f.value)
		}
	}
	return b.String()
}

func pageSuffix(params pagination.Params) string {
	return fmt.Sprintf("-page:%d-limit:%d", params.Page, params.Limit)
}

func decoded(raw *string) *string {
	if raw == nil {
		return nil
	}
	v := domain.DecodeURLToken(*raw)
	return &v
}

func parseBool(name string, raw *string) (*bool, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := strconv.ParseBool(*raw)
	if err != nil {
		return nil, apperrors.InvalidInput(name + " must be true or false")
	}
	return &v, nil
}
