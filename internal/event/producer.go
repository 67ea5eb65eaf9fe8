package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pricewise/catalog-admin/internal/domain"
	pkgkafka "github.com/pricewise/catalog-admin/pkg/kafka"
	"github.com/pricewise/catalog-admin/pkg/logger"
)

// Kafka topics for catalog domain events.
const (
	TopicVariantCreated = "catalog.variant.created"
	TopicVariantDeleted = "catalog.variant.deleted"
	TopicPriceAdded     = "catalog.price.added"
)

const (
	aggregateTypeVariant = "variant"
	aggregateTypePrice   = "price"
	source               = "catalog-admin"
)

// VariantCreatedData is the payload for a variant.created event.
type VariantCreatedData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Slug      string `json:"slug"`
	Status    string `json:"status"`
	Color     string `json:"color,omitempty"`
	Storage   string `json:"storage,omitempty"`
	RAM       string `json:"ram,omitempty"`
}

// VariantDeletedData is the payload for a variant.deleted event.
type VariantDeletedData struct {
	ID             string `json:"id"`
	ProductDeleted bool   `json:"product_deleted"`
}

// PriceAddedData is the payload for a price.added event.
type PriceAddedData struct {
	ID        string  `json:"id"`
	VariantID string  `json:"variant_id"`
	StoreName string  `json:"store_name"`
	Country   string  `json:"country"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
}

// Producer publishes catalog domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates an event producer for the catalog service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishVariantCreated publishes a variant.created event.
func (p *Producer) PublishVariantCreated(ctx context.Context, v *domain.Variant) error {
	data := VariantCreatedData{
		ID:        v.ID,
		ProductID: v.ProductID,
		SKU:       v.SKU,
		Slug:      v.Slug,
		Status:    v.Status,
		Color:     v.Color,
		Storage:   v.Storage,
		RAM:       v.RAM,
	}
	return p.publish(ctx, TopicVariantCreated, v.ID, aggregateTypeVariant, data)
}

// PublishVariantDeleted publishes a variant.deleted event.
func (p *Producer) PublishVariantDeleted(ctx context.Context, id string, productDeleted bool) error {
	data := VariantDeletedData{ID: id, ProductDeleted: productDeleted}
	return p.publish(ctx, TopicVariantDeleted, id, aggregateTypeVariant, data)
}

// PublishPriceAdded publishes a price.added event.
func (p *Producer) PublishPriceAdded(ctx context.Context, price *domain.Price) error {
	data := PriceAddedData{
		ID:        price.ID,
		VariantID: price.VariantID,
		StoreName: price.StoreName,
		Country:   price.Country,
		Price:     price.Price,
		Currency:  price.Currency,
	}
	return p.publish(ctx, TopicPriceAdded, price.VariantID, aggregateTypePrice, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published catalog event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}
