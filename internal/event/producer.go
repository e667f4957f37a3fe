// Package event publishes storefront domain events to Kafka.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dwatson/storefront/internal/domain"
	pkgkafka "github.com/dwatson/storefront/pkg/kafka"
)

// Kafka topic constants for homepage section domain events.
const (
	TopicSectionCreated = "storefront.section.created"
	TopicSectionUpdated = "storefront.section.updated"
	TopicSectionDeleted = "storefront.section.deleted"
)

// Aggregate type constant.
const AggregateTypeSection = "section"

// Source identifier for events originating from the storefront service.
const SourceStorefront = "storefront"

// SectionCreatedData is the payload for a section.created event.
type SectionCreatedData struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Ordering    int    `json:"ordering"`
	IsActive    bool   `json:"is_active"`
	IsPublished bool   `json:"is_published"`
}

// SectionUpdatedData is the payload for a section.updated event.
type SectionUpdatedData struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Ordering    int    `json:"ordering"`
	IsActive    bool   `json:"is_active"`
	IsPublished bool   `json:"is_published"`
}

// SectionDeletedData is the payload for a section.deleted event.
type SectionDeletedData struct {
	ID string `json:"id"`
}

// Producer publishes section domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishSectionCreated publishes a section.created event.
func (p *Producer) PublishSectionCreated(ctx context.Context, section *domain.Section) error {
	data := SectionCreatedData{
		ID:          section.ID,
		Name:        section.Name,
		Type:        section.Type,
		Ordering:    section.Ordering,
		IsActive:    section.IsActive,
		IsPublished: section.IsPublished,
	}

	event, err := pkgkafka.NewEvent(TopicSectionCreated, section.ID, AggregateTypeSection, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create section.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSectionCreated, event); err != nil {
		return fmt.Errorf("publish section.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published section.created event",
		slog.String("section_id", section.ID),
		slog.String("section_type", section.Type),
	)

	return nil
}

// PublishSectionUpdated publishes a section.updated event.
func (p *Producer) PublishSectionUpdated(ctx context.Context, section *domain.Section) error {
	data := SectionUpdatedData{
		ID:          section.ID,
		Name:        section.Name,
		Type:        section.Type,
		Ordering:    section.Ordering,
		IsActive:    section.IsActive,
		IsPublished: section.IsPublished,
	}

	event, err := pkgkafka.NewEvent(TopicSectionUpdated, section.ID, AggregateTypeSection, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create section.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSectionUpdated, event); err != nil {
		return fmt.Errorf("publish section.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published section.updated event",
		slog.String("section_id", section.ID),
		slog.String("section_type", section.Type),
	)

	return nil
}

// PublishSectionDeleted publishes a section.deleted event.
func (p *Producer) PublishSectionDeleted(ctx context.Context, id string) error {
	data := SectionDeletedData{ID: id}

	event, err := pkgkafka.NewEvent(TopicSectionDeleted, id, AggregateTypeSection, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create section.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSectionDeleted, event); err != nil {
		return fmt.Errorf("publish section.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published section.deleted event",
		slog.String("section_id", id),
	)

	return nil
}
