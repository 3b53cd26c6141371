package events

import (
	"context"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// MessageWriter писатель сообщений в брокер (*kafka.Writer)
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// OutboxRepository источник неопубликованных событий
type OutboxRepository interface {
	FetchUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчик опубликованных событий
type Metrics interface {
	IncOutboxEvent(status string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
