package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/federal-archive/backend/internal/changefeed"
	"github.com/DeafMist/federal-archive/backend/internal/config"
	"github.com/DeafMist/federal-archive/backend/internal/dedupe"
	"github.com/DeafMist/federal-archive/backend/internal/docstore"
	"github.com/DeafMist/federal-archive/backend/internal/elasticsearch"
	"github.com/DeafMist/federal-archive/backend/internal/forms"
	"github.com/DeafMist/federal-archive/backend/internal/logger"
	"github.com/DeafMist/federal-archive/backend/internal/metrics"
	"github.com/DeafMist/federal-archive/backend/internal/models"
	"github.com/DeafMist/federal-archive/backend/internal/processing"
)

const dlqAttempts = 5

// dlqBackoff is the wait before DLQ attempt n+1; it doubles per attempt.
var dlqBackoff = time.Second

// ownerKey optionally routes a record into an identity's collection under the
// per-identity scope.
const ownerKey = "owner"

type documentInserter interface {
	Insert(ctx context.Context, collection string, record models.Document) (string, error)
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

func main() {
	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := esClient.WaitReady(ctx, 10, 2*time.Second); err != nil {
		log.Error("wait for elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}
	if err := esClient.EnsureIndex(ctx, docstore.IndexName(docstore.GlobalCollection)); err != nil {
		log.Error("ensure index", slog.Any("err", err))
		os.Exit(1)
	}

	publisher := changefeed.NewPublisher(cfg.KafkaBrokers, cfg.ChangesTopic, log)
	defer publisher.Close()

	store := docstore.New(esClient, publisher, nil, docstore.Options{Log: log, Metrics: metrics.New(nil)})
	cache := dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.IngestTopic,
		GroupID:        cfg.KafkaConsumer,
		QueueCapacity:  cfg.BatchSize,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit only
	})
	defer reader.Close()

	dlqTopic := cfg.IngestTopic + "_dlq"
	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       dlqTopic,
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.IngestTopic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("dlq_topic", dlqTopic),
		slog.String("scope", cfg.CollectionScope),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processMessage(ctx, log, store, cache, cfg, msg); err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)

			// Commit only once the DLQ holds the message; otherwise it is reprocessed on restart.
			sent, canceled := sendToDLQ(ctx, log, dlqWriter, msg, err)
			if canceled {
				log.Info("context canceled during DLQ retry")
				return
			}
			if !sent {
				log.Error("DLQ write exhausted retries, message may be lost if later messages commit",
					slog.Int("partition", msg.Partition),
					slog.Int64("offset", msg.Offset),
				)
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

// processMessage turns one raw record into a stored document. A record is a flat JSON
// object keyed by document field name with a "type" discriminator. Its id is derived
// from type, title and date, so a record seen twice lands on one document.
func processMessage(ctx context.Context, log *slog.Logger, store documentInserter, cache *dedupe.Cache, cfg *config.Worker, msg kafka.Message) error {
	var raw map[string]any
	if err := json.Unmarshal(msg.Value, &raw); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		s, ok := v.(string)
		if !ok && v != nil {
			return fmt.Errorf("field %q must be a string: %w", k, models.ErrValidation)
		}
		values[k] = s
	}

	doc := forms.Assemble(models.DocType(strings.TrimSpace(values["type"])), values)
	if err := forms.Validate(doc); err != nil {
		return err
	}
	doc.ID = processing.BuildDocumentID(string(doc.Type), doc.Title, doc.Date())

	if cache.IsSeen(doc.ID) {
		log.Debug("duplicate record", slog.String("id", doc.ID))
		return nil
	}

	collection := docstore.Collection(cfg.CollectionScope, strings.TrimSpace(values[ownerKey]))
	if _, err := store.Insert(ctx, collection, doc); err != nil {
		return err
	}

	cache.MarkSeen(doc.ID)
	log.Info("ingested document",
		slog.String("id", doc.ID),
		slog.String("type", string(doc.Type)),
		slog.String("title", doc.Title),
	)
	return nil
}

// sendToDLQ writes msg with its failure context to the dead letter topic, retrying with
// exponential backoff. canceled reports that ctx ended first.
func sendToDLQ(ctx context.Context, log *slog.Logger, w messageWriter, msg kafka.Message, cause error) (sent, canceled bool) {
	dlqMsg := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(msg.Headers,
			kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
			kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
			kafka.Header{Key: "error", Value: []byte(cause.Error())},
			kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		),
	}

	for attempt := range dlqAttempts {
		err := w.WriteMessages(ctx, dlqMsg)
		if err == nil {
			log.Info("message sent to DLQ",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.Int("attempt", attempt+1),
			)
			return true, false
		}

		backoff := dlqBackoff << uint(attempt)
		log.Warn("DLQ write failed, retrying",
			slog.Any("err", err),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return false, true
		}
	}
	return false, false
}
