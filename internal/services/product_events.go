package services

import (
	"time"

	"estoque/internal/models"
)

// Product event types, also used as routing keys.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// EventPublisher delivers serialized events under a routing key.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// ProductEvent describes a change to a stored product. Product is nil for
// deletions.
type ProductEvent struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	ProductID  uint            `json:"product_id"`
	Product    *models.Product `json:"product"`
	OccurredAt time.Time       `json:"occurred_at"`
}
