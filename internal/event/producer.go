package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/catalog/internal/domain"
	pkgkafka "github.com/utafrali/catalog/pkg/kafka"
)

// Aggregate types.
const (
	AggregateProduct  = "product"
	AggregateCategory = "category"
	AggregateBrand    = "brand"
)

// Actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// SourceCatalogService identifies events emitted by this service.
const SourceCatalogService = "catalog-service"

// Publisher publishes catalog domain events. Callers treat failures as
// best-effort and only log them.
type Publisher interface {
	PublishProduct(ctx context.Context, action string, product *domain.Product) error
	PublishProductDeleted(ctx context.Context, productID string) error
	PublishCategory(ctx context.Context, action string, category *domain.Category) error
	PublishCategoryDeleted(ctx context.Context, categoryID, mainCategory string) error
	PublishBrand(ctx context.Context, action string, brand *domain.Brand) error
	PublishBrandDeleted(ctx context.Context, brandID string) error
}

// ProductData is the payload for product.created and product.updated.
type ProductData struct {
	ProductID    string `json:"productId"`
	Title        string `json:"title"`
	ModelNumber  string `json:"modelNumber"`
	Brand        string `json:"brand"`
	CategoryName string `json:"categoryName"`
	Price        string `json:"price"`
	OfferPrice   string `json:"offerPrice"`
	Active       bool   `json:"active"`
	IsDraft      bool   `json:"isdraft"`
}

// CategoryData is the payload for category events. Subcategories is omitted
// on delete.
type CategoryData struct {
	CategoryID    string                `json:"categoryId"`
	MainCategory  string                `json:"mainCategory"`
	Subcategories []domain.CategoryNode `json:"subcategories,omitempty"`
}

// BrandData is the payload for brand events.
type BrandData struct {
	BrandID    string `json:"brandId"`
	BrandName  string `json:"brandname,omitempty"`
	BrandImage string `json:"brandimage,omitempty"`
}

// DeletedData is the payload for product.deleted and brand.deleted.
type DeletedData struct {
	ID string `json:"id"`
}

type eventWriter interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes catalog domain events to Kafka.
type Producer struct {
	kafka  eventWriter
	logger *slog.Logger
}

// NewProducer creates a new event producer for the catalog service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

func (p *Producer) publish(ctx context.Context, aggregate, action, aggregateID string, data any) error {
	topic := pkgkafka.Topic(aggregate, action)

	evt, err := pkgkafka.NewEvent(ctx, topic, aggregateID, aggregate, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

// PublishProduct publishes product.created or product.updated.
func (p *Producer) PublishProduct(ctx context.Context, action string, product *domain.Product) error {
	return p.publish(ctx, AggregateProduct, action, product.ProductID, ProductData{
		ProductID:    product.ProductID,
		Title:        product.Title,
		ModelNumber:  product.ModelNumber,
		Brand:        product.Brand,
		CategoryName: product.CategoryName,
		Price:        product.Price,
		OfferPrice:   product.OfferPrice,
		Active:       product.Active,
		IsDraft:      product.IsDraft,
	})
}

func (p *Producer) PublishProductDeleted(ctx context.Context, productID string) error {
	return p.publish(ctx, AggregateProduct, ActionDeleted, productID, DeletedData{ID: productID})
}

// PublishCategory publishes category.created or category.updated with the
// full tree.
func (p *Producer) PublishCategory(ctx context.Context, action string, category *domain.Category) error {
	return p.publish(ctx, AggregateCategory, action, category.CategoryID, CategoryData{
		CategoryID:    category.CategoryID,
		MainCategory:  category.MainCategory,
		Subcategories: category.Subcategories,
	})
}

func (p *Producer) PublishCategoryDeleted(ctx context.Context, categoryID, mainCategory string) error {
	return p.publish(ctx, AggregateCategory, ActionDeleted, categoryID, CategoryData{
		CategoryID:   categoryID,
		MainCategory: mainCategory,
	})
}

func (p *Producer) PublishBrand(ctx context.Context, action string, brand *domain.Brand) error {
	return p.publish(ctx, AggregateBrand, action, brand.BrandID, BrandData{
		BrandID:    brand.BrandID,
		BrandName:  brand.BrandName,
		BrandImage: brand.BrandImage,
	})
}

func (p *Producer) PublishBrandDeleted(ctx context.Context, brandID string) error {
	return p.publish(ctx, AggregateBrand, ActionDeleted, brandID, BrandData{BrandID: brandID})
}

// NopPublisher discards every event. It is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) PublishProduct(context.Context, string, *domain.Product) error   { return nil }
func (NopPublisher) PublishProductDeleted(context.Context, string) error             { return nil }
func (NopPublisher) PublishCategory(context.Context, string, *domain.Category) error { return nil }
func (NopPublisher) PublishCategoryDeleted(context.Context, string, string) error    { return nil }
func (NopPublisher) PublishBrand(context.Context, string, *domain.Brand) error       { return nil }
func (NopPublisher) PublishBrandDeleted(context.Context, string) error               { return nil }
