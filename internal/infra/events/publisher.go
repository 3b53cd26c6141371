package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultBatchSize    = 50
)

var (
	// ErrPublish возвращается, если брокер не принял пачку событий
	ErrPublish = errors.New("events.publisher: failed to publish batch")

	// ErrStorage возвращается при ошибках чтения или отметки outbox
	ErrStorage = errors.New("events.publisher: outbox storage error")
)

// Config параметры публикатора
type Config struct {
	Topic        string
	PollInterval time.Duration
	BatchSize    int
}

// Publisher переносит события из таблицы outbox в Kafka.
// Пачка читается и отмечается в одной транзакции, поэтому при сбое
// брокера события остаются неопубликованными и уйдут на следующем тике.
type Publisher struct {
	repo      OutboxRepository
	txManager TransactionManager
	writer    MessageWriter
	metrics   Metrics
	logger    Logger

	topic     string
	pollEvery time.Duration
	batchSize int
}

// NewPublisher создает публикатор
func NewPublisher(repo OutboxRepository, txManager TransactionManager, writer MessageWriter, metrics Metrics, cfg Config, logger Logger) *Publisher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}

	return &Publisher{
		repo:      repo,
		txManager: txManager,
		writer:    writer,
		metrics:   metrics,
		logger:    logger,
		topic:     cfg.Topic,
		pollEvery: cfg.PollInterval,
		batchSize: cfg.BatchSize,
	}
}

// NewKafkaWriter создает писателя с ключевым балансировщиком:
// события одной записи попадают в одну партицию и сохраняют порядок
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// Run публикует события по таймеру до отмены контекста
func (p *Publisher) Run(ctx context.Context) {
	p.logger.Info("Publisher: started, topic=%s, every=%s, batch=%d", p.topic, p.pollEvery, p.batchSize)

	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Publisher: stopped")
			return
		case <-ticker.C:
			n, err := p.PublishBatch(ctx)
			if err != nil {
				p.logger.Error("Publisher: %v", err)
				continue
			}
			if n > 0 {
				p.logger.Info("Publisher: published %d events", n)
			}
		}
	}
}

// PublishBatch публикует одну пачку и возвращает количество отправленных событий
func (p *Publisher) PublishBatch(ctx context.Context) (int, error) {
	published := 0

	err := p.txManager.Do(ctx, func(txCtx context.Context) error {
		records, err := p.repo.FetchUnpublished(txCtx, p.batchSize)
		if err != nil {
			return fmt.Errorf("%w: fetch: %v", ErrStorage, err)
		}
		if len(records) == 0 {
			return nil
		}

		msgs := make([]kafka.Message, 0, len(records))
		ids := make([]uuid.UUID, 0, len(records))
		for _, r := range records {
			msgs = append(msgs, p.message(ctx, r))
			ids = append(ids, r.ID)
		}

		if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
			for range records {
				p.metrics.IncOutboxEvent("failed")
			}
			return fmt.Errorf("%w: %v", ErrPublish, err)
		}

		if err := p.repo.MarkPublished(txCtx, ids); err != nil {
			return fmt.Errorf("%w: mark published: %v", ErrStorage, err)
		}

		for range records {
			p.metrics.IncOutboxEvent("published")
		}
		published = len(records)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return published, nil
}

func (p *Publisher) message(ctx context.Context, e *domain.OutboxEvent) kafka.Message {
	headers := headerCarrier{
		{Key: "event_id", Value: []byte(e.ID.String())},
		{Key: "event_type", Value: []byte(e.EventType)},
	}
	otel.GetTextMapPropagator().Inject(ctx, &headers)

	return kafka.Message{
		Topic:   p.topic,
		Key:     []byte(strconv.FormatInt(e.AggregateID, 10)),
		Value:   e.Payload,
		Headers: headers,
		Time:    e.CreatedAt,
	}
}

// headerCarrier заголовки Kafka как носитель W3C trace context
type headerCarrier []kafka.Header

var _ propagation.TextMapCarrier = (*headerCarrier)(nil)

func (c *headerCarrier) Get(key string) string {
	for _, h := range *c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Set(key, value string) {
	for i := range *c {
		if (*c)[i].Key == key {
			(*c)[i].Value = []byte(value)
			return
		}
	}
	*c = append(*c, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(*c))
	for _, h := range *c {
		keys = append(keys, h.Key)
	}
	return keys
}
