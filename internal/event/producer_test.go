package event

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/catalog/internal/domain"
	pkgkafka "github.com/utafrali/catalog/pkg/kafka"
	"github.com/utafrali/catalog/pkg/logger"
)

var (
	_ Publisher = (*Producer)(nil)
	_ Publisher = NopPublisher{}
)

type published struct {
	topic string
	event *pkgkafka.Event
}

type fakeKafka struct {
	sent []published
	err  error
}

func (f *fakeKafka) Publish(_ context.Context, topic string, evt *pkgkafka.Event) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{topic: topic, event: evt})
	return nil
}

func newTestProducer(k *fakeKafka) *Producer {
	return &Producer{
		kafka:  k,
		logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})),
	}
}

func TestProducer_PublishProduct(t *testing.T) {
	k := &fakeKafka{}
	p := newTestProducer(k)
	ctx := logger.WithCorrelationID(context.Background(), "req-42")

	err := p.PublishProduct(ctx, ActionCreated, &domain.Product{
		ProductID:   "productid0001",
		Title:       "Phone X",
		ModelNumber: "AX-1",
		IsDraft:     true,
	})
	require.NoError(t, err)
	require.Len(t, k.sent, 1)

	sent := k.sent[0]
	assert.Equal(t, "catalog.product.created", sent.topic)
	assert.Equal(t, "productid0001", sent.event.AggregateID)
	assert.Equal(t, AggregateProduct, sent.event.AggregateType)
	assert.Equal(t, SourceCatalogService, sent.event.Source)
	assert.Equal(t, "req-42", sent.event.CorrelationID)

	var data ProductData
	require.NoError(t, sent.event.UnmarshalData(&data))
	assert.Equal(t, "AX-1", data.ModelNumber)
	assert.True(t, data.IsDraft)
}

func TestProducer_PublishCategory(t *testing.T) {
	k := &fakeKafka{}
	p := newTestProducer(k)

	c := domain.NewCategory("category0001", "Electronics", time.Now().UTC())
	require.NoError(t, p.PublishCategory(context.Background(), ActionUpdated, c))
	require.NoError(t, p.PublishCategoryDeleted(context.Background(), "category0001", "Electronics"))

	require.Len(t, k.sent, 2)
	assert.Equal(t, "catalog.category.updated", k.sent[0].topic)
	assert.Equal(t, "catalog.category.deleted", k.sent[1].topic)

	var data CategoryData
	require.NoError(t, k.sent[1].event.UnmarshalData(&data))
	assert.Equal(t, "Electronics", data.MainCategory)
	assert.Empty(t, data.Subcategories)
}

func TestProducer_PublishBrandAndDeletes(t *testing.T) {
	k := &fakeKafka{}
	p := newTestProducer(k)
	ctx := context.Background()

	require.NoError(t, p.PublishBrand(ctx, ActionCreated, &domain.Brand{BrandID: "brand0001", BrandName: "Acme"}))
	require.NoError(t, p.PublishBrandDeleted(ctx, "brand0001"))
	require.NoError(t, p.PublishProductDeleted(ctx, "productid0001"))

	topics := make([]string, 0, len(k.sent))
	for _, s := range k.sent {
		topics = append(topics, s.topic)
	}
	assert.Equal(t, []string{"catalog.brand.created", "catalog.brand.deleted", "catalog.product.deleted"}, topics)
}

func TestProducer_PublishError(t *testing.T) {
	p := newTestProducer(&fakeKafka{err: errors.New("broker down")})

	err := p.PublishProductDeleted(context.Background(), "productid0001")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog.product.deleted")
}
