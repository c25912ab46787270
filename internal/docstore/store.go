package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/DeafMist/federal-archive/backend/internal/changefeed"
	"github.com/DeafMist/federal-archive/backend/internal/dedupe"
	"github.com/DeafMist/federal-archive/backend/internal/elasticsearch"
	"github.com/DeafMist/federal-archive/backend/internal/logger"
	"github.com/DeafMist/federal-archive/backend/internal/metrics"
	"github.com/DeafMist/federal-archive/backend/internal/models"
)

// MaxMembershipValues bounds the value list of a membership query.
const MaxMembershipValues = 10

// Index is the document index the store writes to. *elasticsearch.Client implements it.
type Index interface {
	IndexDocument(ctx context.Context, index, id string, doc models.Document) error
	GetDocument(ctx context.Context, index, id string) (models.Document, error)
	Search(ctx context.Context, index string, filter map[string]any, size int) ([]models.Document, error)
	UpdateDocument(ctx context.Context, index, id string, partial map[string]any) error
	DeleteDocument(ctx context.Context, index, id string) error
}

// ChangePublisher announces committed mutations.
type ChangePublisher interface {
	Publish(ctx context.Context, change changefeed.Change) error
}

// Options tunes a Store.
type Options struct {
	PageSize int
	Log      *slog.Logger
	Metrics  *metrics.Metrics
}

// Store is the document store adapter: collections of documents with equality and
// bounded membership queries, permanent writes and live subscriptions.
type Store struct {
	idx      Index
	pub      ChangePublisher
	readers  changefeed.ReaderFactory
	pageSize int
	log      *slog.Logger
	metrics  *metrics.Metrics
	newID    func() string
}

// New builds a store. readers may be nil, in which case Subscribe only delivers the
// initial snapshot.
func New(idx Index, pub ChangePublisher, readers changefeed.ReaderFactory, opts Options) *Store {
	if opts.PageSize <= 0 {
		opts.PageSize = 1000
	}
	if opts.Log == nil {
		opts.Log = logger.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}
	return &Store{
		idx:      idx,
		pub:      pub,
		readers:  readers,
		pageSize: opts.PageSize,
		log:      opts.Log,
		metrics:  opts.Metrics,
		newID:    uuid.NewString,
	}
}

// Insert stores record and returns its id. Records that already carry an id (bulk
// imports) keep it and overwrite any previous version.
func (s *Store) Insert(ctx context.Context, collection string, record models.Document) (string, error) {
	id := record.ID
	if id == "" {
		id = s.newID()
	}

	if err := s.idx.IndexDocument(ctx, IndexName(collection), id, record); err != nil {
		s.metrics.StoreErrors.WithLabelValues("insert").Inc()
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}

	s.metrics.DocumentWrites.WithLabelValues("insert").Inc()
	s.announce(ctx, collection, id, changefeed.OpInsert)
	return id, nil
}

// Get returns one document or models.ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (models.Document, error) {
	doc, err := s.idx.GetDocument(ctx, IndexName(collection), id)
	if err != nil {
		if !isNotFound(err) {
			s.metrics.StoreErrors.WithLabelValues("get").Inc()
		}
		return models.Document{}, fmt.Errorf("get from %s: %w", collection, err)
	}
	return doc, nil
}

// QueryEqual returns documents whose field equals value, in store order.
func (s *Store) QueryEqual(ctx context.Context, collection, field, value string) ([]models.Document, error) {
	return s.search(ctx, "query_equal", collection, elasticsearch.TermFilter(field, value))
}

// QueryIn returns documents whose field is one of values. More than
// MaxMembershipValues values is refused with models.ErrMembershipLimit.
func (s *Store) QueryIn(ctx context.Context, collection, field string, values []string) ([]models.Document, error) {
	if len(values) > MaxMembershipValues {
		return nil, fmt.Errorf("%d values for %s: %w", len(values), field, models.ErrMembershipLimit)
	}
	if len(values) == 0 {
		return []models.Document{}, nil
	}
	return s.search(ctx, "query_in", collection, elasticsearch.TermsFilter(field, values))
}

// QueryAll returns the whole collection in store order.
func (s *Store) QueryAll(ctx context.Context, collection string) ([]models.Document, error) {
	return s.search(ctx, "query_all", collection, nil)
}

func (s *Store) search(ctx context.Context, op, collection string, filter map[string]any) ([]models.Document, error) {
	docs, err := s.idx.Search(ctx, IndexName(collection), filter, s.pageSize)
	if err != nil {
		s.metrics.StoreErrors.WithLabelValues(op).Inc()
		return nil, fmt.Errorf("%s on %s: %w", op, collection, err)
	}
	return docs, nil
}

// Update merges partial into the document. Keys are JSON field names.
func (s *Store) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	if err := s.idx.UpdateDocument(ctx, IndexName(collection), id, partial); err != nil {
		if !isNotFound(err) {
			s.metrics.StoreErrors.WithLabelValues("update").Inc()
		}
		return fmt.Errorf("update in %s: %w", collection, err)
	}

	s.metrics.DocumentWrites.WithLabelValues("update").Inc()
	s.announce(ctx, collection, id, changefeed.OpUpdate)
	return nil
}

// Delete removes the document permanently.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := s.idx.DeleteDocument(ctx, IndexName(collection), id); err != nil {
		if !isNotFound(err) {
			s.metrics.StoreErrors.WithLabelValues("delete").Inc()
		}
		return fmt.Errorf("delete from %s: %w", collection, err)
	}

	s.metrics.DocumentWrites.WithLabelValues("delete").Inc()
	s.announce(ctx, collection, id, changefeed.OpDelete)
	return nil
}

// announce publishes a change for a write that already succeeded. A publish failure
// leaves the write in place; subscribers catch up on the next change.
func (s *Store) announce(ctx context.Context, collection, id string, op changefeed.Op) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, changefeed.NewChange(collection, id, op)); err != nil {
		s.metrics.ChangePublishErrors.Inc()
		s.log.Warn("publish change",
			slog.Any("err", err),
			slog.String("collection", collection),
			slog.String("document_id", id),
			slog.String("op", string(op)),
		)
	}
}

// Subscribe delivers the collection's full contents to onChange once, then again
// after every change to the collection, until the returned function is called.
// Failures go to onError. No callback starts after unsubscribe returns.
func (s *Store) Subscribe(collection string, onChange func([]models.Document), onError func(error)) func() {
	ctx, cancel := context.WithCancel(context.Background())

	var stopped atomic.Bool
	deliver := func(docs []models.Document, err error) {
		if stopped.Load() {
			return
		}
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(docs)
	}

	var reader changefeed.MessageReader
	if s.readers != nil {
		reader = s.readers()
	}

	s.metrics.ActiveSubscriptions.Inc()

	go func() {
		deliver(s.snapshot(ctx, collection))
		if reader == nil {
			<-ctx.Done()
			return
		}

		seen := dedupe.NewCache(512, 10*time.Minute)
		changefeed.Listen(ctx, reader, s.log, func(change changefeed.Change) {
			if change.Collection != collection || seen.Observe(change.ID) {
				return
			}
			deliver(s.snapshot(ctx, collection))
		}, func(err error) {
			deliver(nil, err)
		})
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stopped.Store(true)
			cancel()
			if reader != nil {
				if err := reader.Close(); err != nil {
					s.log.Debug("close change reader", slog.Any("err", err))
				}
			}
			s.metrics.ActiveSubscriptions.Dec()
		})
	}
}

func (s *Store) snapshot(ctx context.Context, collection string) ([]models.Document, error) {
	qctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.QueryAll(qctx, collection)
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
