package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/federal-archive/backend/internal/logger"
)

// Op names the mutation that produced a change.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change is published after every successful store mutation.
type Change struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	DocumentID string    `json:"documentId"`
	Op         Op        `json:"op"`
	At         time.Time `json:"at"`
}

// NewChange stamps a change with a fresh event id and the current time.
func NewChange(collection, documentID string, op Op) Change {
	return Change{
		ID:         uuid.NewString(),
		Collection: collection,
		DocumentID: documentID,
		Op:         op,
		At:         time.Now().UTC(),
	}
}

// MessageWriter is the part of kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessageReader is the part of kafka.Reader a listener needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Publisher writes change events keyed by collection, so a collection's events stay
// on one partition in order.
type Publisher struct {
	w   MessageWriter
	log *slog.Logger
}

// NewPublisher creates a Kafka backed publisher.
func NewPublisher(brokers []string, topic string, log *slog.Logger) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	return NewPublisherWithWriter(w, log)
}

// NewPublisherWithWriter wraps an existing writer.
func NewPublisherWithWriter(w MessageWriter, log *slog.Logger) *Publisher {
	if log == nil {
		log = logger.Discard()
	}
	return &Publisher{w: w, log: log}
}

// Publish sends one change event.
func (p *Publisher) Publish(ctx context.Context, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(change.Collection),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "op", Value: []byte(change.Op)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish change %s: %w", change.ID, err)
	}

	p.log.Debug("change published",
		slog.String("collection", change.Collection),
		slog.String("document_id", change.DocumentID),
		slog.String("op", string(change.Op)),
	)
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}

// ReaderFactory opens a fresh reader for one listener.
type ReaderFactory func() MessageReader

// NewReaderFactory returns readers that each join their own consumer group and start
// at the tail of the topic, so every listener sees every change published after it
// opened.
func NewReaderFactory(brokers []string, topic string) ReaderFactory {
	return func() MessageReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			Topic:       topic,
			GroupID:     "admin-feed-" + uuid.NewString(),
			StartOffset: kafka.LastOffset,
			MinBytes:    1,
			MaxBytes:    1e6,
			MaxWait:     500 * time.Millisecond,
		})
	}
}

// Listen reads changes until ctx is cancelled or the reader fails. Undecodable
// messages are skipped. A read failure other than cancellation is passed to onError
// and ends the loop.
func Listen(ctx context.Context, r MessageReader, log *slog.Logger, handle func(Change), onError func(error)) {
	if log == nil {
		log = logger.Discard()
	}

	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			if onError != nil {
				onError(fmt.Errorf("read change: %w", err))
			}
			return
		}

		var change Change
		if err := json.Unmarshal(msg.Value, &change); err != nil {
			log.Warn("skip malformed change",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)
			continue
		}
		handle(change)
	}
}
