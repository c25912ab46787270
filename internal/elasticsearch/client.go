package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/DeafMist/federal-archive/backend/internal/logger"
	"github.com/DeafMist/federal-archive/backend/internal/models"
)

// Client wraps go-elasticsearch with helpers tailored to the archive. Every
// collection is its own index; indices are created on first write.
type Client struct {
	es      *elasticsearch.Client
	log     *slog.Logger
	ensured sync.Map
}

// New instantiates the Elasticsearch client.
func New(addr string, log *slog.Logger) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{addr},
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	if log == nil {
		log = logger.Discard()
	}

	return &Client{es: es, log: log}, nil
}

// indexMapping keeps every enumerated or filterable field as a keyword so term and
// terms queries compare stored values byte for byte. One shard keeps _doc order equal
// to insertion order and unique, which Search pages on.
var indexMapping = map[string]any{
	"settings": map[string]any{
		"number_of_shards": 1,
	},
	"mappings": map[string]any{
		"properties": map[string]any{
			"type":              map[string]any{"type": "keyword"},
			"title":             map[string]any{"type": "text", "fields": map[string]any{"raw": map[string]any{"type": "keyword"}}},
			"summary":           map[string]any{"type": "text"},
			"externalUrl":       map[string]any{"type": "keyword", "index": false},
			"dateEnacted":       map[string]any{"type": "keyword"},
			"dateIssued":        map[string]any{"type": "keyword"},
			"dateSignedAdopted": map[string]any{"type": "keyword"},
			"issuingAuthority":  map[string]any{"type": "keyword"},
			"status":            map[string]any{"type": "keyword"},
			"codeTitle":         map[string]any{"type": "keyword"},
			"sponsor":           map[string]any{"type": "keyword"},
			"tags":              map[string]any{"type": "keyword"},
			"documentType":      map[string]any{"type": "keyword"},
			"court":             map[string]any{"type": "keyword"},
			"judgeProsecutor":   map[string]any{"type": "keyword"},
			"caseType":          map[string]any{"type": "keyword"},
			"plaintiff":         map[string]any{"type": "keyword"},
			"defendant":         map[string]any{"type": "keyword"},
			"partiesInvolved":   map[string]any{"type": "keyword"},
		},
	},
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}

	return nil
}

// Health checks cluster health.
func (c *Client) Health(ctx context.Context) error {
	res, err := c.es.Cluster.Health(c.es.Cluster.Health.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(res.Body)
		return fmt.Errorf("cluster health bad: %s", strings.TrimSpace(string(data)))
	}
	return nil
}

// EnsureIndex creates index with the archive mapping unless it already exists.
func (c *Client) EnsureIndex(ctx context.Context, index string) error {
	if _, ok := c.ensured.Load(index); ok {
		return nil
	}

	res, err := c.es.Indices.Exists([]string{index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		payload, err := json.Marshal(indexMapping)
		if err != nil {
			return fmt.Errorf("marshal mapping: %w", err)
		}

		res, err := c.es.Indices.Create(index,
			c.es.Indices.Create.WithContext(ctx),
			c.es.Indices.Create.WithBody(bytes.NewReader(payload)),
		)
		if err != nil {
			return fmt.Errorf("create index %s: %w", index, err)
		}
		defer res.Body.Close()

		if res.IsError() {
			body, _ := io.ReadAll(res.Body)
			if !strings.Contains(string(body), "resource_already_exists_exception") {
				return fmt.Errorf("create index %s failed: %s", index, strings.TrimSpace(string(body)))
			}
		}
		c.log.Info("index created", slog.String("index", index))
	} else if res.IsError() {
		return fmt.Errorf("check index %s failed: %s", index, res.Status())
	}

	c.ensured.Store(index, struct{}{})
	return nil
}

// IndexDocument writes doc under id, replacing any previous version.
func (c *Client) IndexDocument(ctx context.Context, index, id string, doc models.Document) error {
	if err := c.EnsureIndex(ctx, index); err != nil {
		return err
	}

	doc.ID = ""
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(payload),
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("index doc: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index doc failed: %s", strings.TrimSpace(string(body)))
	}

	return nil
}

// GetDocument fetches a single document. A missing document or index yields
// models.ErrNotFound.
func (c *Client) GetDocument(ctx context.Context, index, id string) (models.Document, error) {
	req := esapi.GetRequest{Index: index, DocumentID: id}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return models.Document{}, fmt.Errorf("get doc: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return models.Document{}, fmt.Errorf("document %s: %w", id, models.ErrNotFound)
	}
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return models.Document{}, fmt.Errorf("get doc failed: %s", strings.TrimSpace(string(body)))
	}

	var parsed struct {
		ID     string          `json:"_id"`
		Found  bool            `json:"found"`
		Source models.Document `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return models.Document{}, fmt.Errorf("decode get response: %w", err)
	}
	if !parsed.Found {
		return models.Document{}, fmt.Errorf("document %s: %w", id, models.ErrNotFound)
	}

	doc := parsed.Source
	doc.ID = parsed.ID
	return doc, nil
}

// TermFilter builds an equality filter clause.
func TermFilter(field, value string) map[string]any {
	return map[string]any{"term": map[string]any{field: value}}
}

// TermsFilter builds a membership filter clause.
func TermsFilter(field string, values []string) map[string]any {
	return map[string]any{"terms": map[string]any{field: values}}
}

// Search returns every document matching filter (nil means all) in index order,
// fetching pageSize hits per request. A missing index is an empty collection, not an
// error.
func (c *Client) Search(ctx context.Context, index string, filter map[string]any, pageSize int) ([]models.Document, error) {
	query := map[string]any{"match_all": map[string]any{}}
	if filter != nil {
		query = map[string]any{
			"bool": map[string]any{
				"filter": []map[string]any{filter},
			},
		}
	}

	items := []models.Document{}
	var after []any
	for {
		page, last, err := c.searchPage(ctx, index, query, pageSize, after)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
		if len(page) < pageSize {
			return items, nil
		}
		if len(last) == 0 {
			return nil, fmt.Errorf("search %s: page without sort values", index)
		}
		after = last
	}
}

type searchHit struct {
	ID     string          `json:"_id"`
	Source models.Document `json:"_source"`
	Sort   []any           `json:"sort"`
}

// searchPage fetches one page after the given sort values and returns the sort values
// of its last hit.
func (c *Client) searchPage(ctx context.Context, index string, query map[string]any, size int, after []any) ([]models.Document, []any, error) {
	body := map[string]any{
		"size":  size,
		"query": query,
		"sort":  []string{"_doc"},
	}
	if after != nil {
		body["search_after"] = after
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return []models.Document{}, nil, nil
	}
	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, nil, fmt.Errorf("search failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Hits struct {
			Hits []searchHit `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, nil, fmt.Errorf("decode search response: %w", err)
	}

	items := make([]models.Document, 0, len(parsed.Hits.Hits))
	var last []any
	for _, hit := range parsed.Hits.Hits {
		doc := hit.Source
		doc.ID = hit.ID
		items = append(items, doc)
		last = hit.Sort
	}
	return items, last, nil
}

// UpdateDocument merges partial into an existing document.
func (c *Client) UpdateDocument(ctx context.Context, index, id string, partial map[string]any) error {
	payload, err := json.Marshal(map[string]any{"doc": partial})
	if err != nil {
		return fmt.Errorf("marshal update body: %w", err)
	}

	req := esapi.UpdateRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(payload),
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("update doc: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return fmt.Errorf("document %s: %w", id, models.ErrNotFound)
	}
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("update doc failed: %s", strings.TrimSpace(string(body)))
	}
	return nil
}

// DeleteDocument removes a document permanently.
func (c *Client) DeleteDocument(ctx context.Context, index, id string) error {
	req := esapi.DeleteRequest{
		Index:      index,
		DocumentID: id,
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("delete doc: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return fmt.Errorf("document %s: %w", id, models.ErrNotFound)
	}
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("delete doc failed: %s", strings.TrimSpace(string(body)))
	}
	return nil
}
