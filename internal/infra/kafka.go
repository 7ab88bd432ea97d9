package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/DrgGomes/cft-estoque-fast/internal/model"

	"github.com/segmentio/kafka-go"
)

// MovementEvent is the audit message published for every committed ledger
// record. Downstream consumers (BI, reorder automation) read this topic.
type MovementEvent struct {
	MovementID  string    `json:"movement_id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	SKU         string    `json:"sku"`
	Type        string    `json:"type"`
	Amount      int       `json:"amount"`
	PreviousQty int       `json:"previous_qty"`
	NewQty      int       `json:"new_qty"`
	Timestamp   time.Time `json:"timestamp"`
}

// AuditProducer publishes committed stock movements to Kafka.
type AuditProducer interface {
	PublishMovement(ctx context.Context, m *model.StockMovement) error
	Close() error
}

type auditProducer struct {
	writer *kafka.Writer
}

// NewAuditProducer builds a kafka writer for the audit topic. brokers is a
// comma-separated list.
func NewAuditProducer(brokers, topic string) AuditProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Compression:  kafka.Snappy,
	}
	return &auditProducer{writer: writer}
}

func (p *auditProducer) PublishMovement(ctx context.Context, m *model.StockMovement) error {
	event := MovementEvent{
		MovementID:  m.ID.String(),
		ProductID:   m.ProductID.String(),
		ProductName: m.ProductName,
		SKU:         m.SKU,
		Type:        m.Type,
		Amount:      m.Amount,
		PreviousQty: m.PreviousQty,
		NewQty:      m.NewQty,
		Timestamp:   m.CreatedAt,
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal movement event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.ProductID),
		Value: value,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("write movement event to kafka: %w", err)
	}
	return nil
}

func (p *auditProducer) Close() error {
	return p.writer.Close()
}
