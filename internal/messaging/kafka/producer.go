package kafka

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// Producer публикует события жизненного цикла заказов и товаров в Kafka.
// Реализует domain.EventPublisher: публикация — fire-and-forget, ошибки
// логируются и не проваливают бизнес-операцию.
type Producer struct {
	producer sarama.SyncProducer
	logger   *log.Entry
}

// NewProducer создаёт sync producer с идемпотентной доставкой.
func NewProducer(brokers []string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1 // требование идемпотентного producer

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &Producer{
		producer: producer,
		logger:   log.WithField("component", "kafka-producer"),
	}, nil
}

// OrderCreated публикует событие создания заказа.
func (p *Producer) OrderCreated(order domain.Order) {
	p.publishOrderEvent(EventTypeOrderCreated, order.ID, map[string]any{"lines": len(order.Lines)})
}

// OrderUpdated публикует событие изменения состава заказа.
func (p *Producer) OrderUpdated(order domain.Order) {
	p.publishOrderEvent(EventTypeOrderUpdated, order.ID, map[string]any{"lines": len(order.Lines)})
}

// OrderDeleted публикует событие удаления заказа (явного или каскадного).
func (p *Producer) OrderDeleted(orderID int64) {
	p.publishOrderEvent(EventTypeOrderDeleted, orderID, nil)
}

// ProductCreated публикует событие добавления товара в каталог.
func (p *Producer) ProductCreated(product domain.Product) {
	p.publishProductEvent(EventTypeProductCreated, product.ID, map[string]any{"name": product.Name})
}

// ProductUpdated публикует событие изменения товара.
func (p *Producer) ProductUpdated(product domain.Product) {
	p.publishProductEvent(EventTypeProductUpdated, product.ID, map[string]any{"name": product.Name})
}

// ProductDeleted публикует событие каскадного удаления товара.
func (p *Producer) ProductDeleted(productID int64) {
	p.publishProductEvent(EventTypeProductDeleted, productID, nil)
}

func (p *Producer) publishOrderEvent(eventType EventType, orderID int64, metadata map[string]any) {
	event := OrderEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		OrderID:   orderID,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
	p.publish(TopicOrderEvents, strconv.FormatInt(orderID, 10), event)
}

func (p *Producer) publishProductEvent(eventType EventType, productID int64, metadata map[string]any) {
	event := ProductEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		ProductID: productID,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
	p.publish(TopicProductEvents, strconv.FormatInt(productID, 10), event)
}

func (p *Producer) publish(topic, key string, event any) {
	eventData, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).WithField("topic", topic).Error("failed to marshal event")
		return
	}

	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(eventData),
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"topic": topic,
			"key":   key,
		}).Error("failed to send message to kafka")
		return
	}

	p.logger.WithFields(log.Fields{
		"topic":     topic,
		"key":       key,
		"partition": partition,
		"offset":    offset,
	}).Debug("message sent to kafka")
}

// Close закрывает producer.
func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}

var _ domain.EventPublisher = (*Producer)(nil)
