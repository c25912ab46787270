package query

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/DeafMist/federal-archive/backend/internal/logger"
	"github.com/DeafMist/federal-archive/backend/internal/metrics"
	"github.com/DeafMist/federal-archive/backend/internal/models"
)

// MaxServerMembership is the largest type list the store accepts in one membership
// predicate.
const MaxServerMembership = 10

// Category is a search scope offered by the portal.
type Category string

const (
	CategoryHome        Category = "home"
	CategoryFederalLaws Category = "federal-laws"
	CategoryExecutive   Category = "executive-documents"
	CategoryJudicial    Category = "judicial-documents"
	CategoryTreaties    Category = "treaties-resolutions"
)

// Categories lists the search categories in navigation order.
var Categories = []Category{CategoryHome, CategoryFederalLaws, CategoryExecutive, CategoryJudicial, CategoryTreaties}

// DocType returns the single variant a category is restricted to. Home has none.
func (c Category) DocType() (models.DocType, bool) {
	switch c {
	case CategoryFederalLaws:
		return models.TypeFederalLaw, true
	case CategoryExecutive:
		return models.TypeExecutiveDocument, true
	case CategoryJudicial:
		return models.TypeJudicialDocument, true
	case CategoryTreaties:
		return models.TypeTreatyResolution, true
	}
	return "", false
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	if c == CategoryHome {
		return true
	}
	_, ok := c.DocType()
	return ok
}

// Filters is the filter set of one search. Empty values mean no constraint.
type Filters struct {
	Values     map[string]string
	Categories []string
}

// ParseFilters reads the filter set of category c from query parameters. Parameters
// that are not filters of c are ignored. documentCategories may be repeated or comma
// separated and only applies to home searches.
func ParseFilters(c Category, q url.Values) Filters {
	names := FilterNames(c)
	f := Filters{Values: make(map[string]string, len(names))}
	for _, name := range names {
		if v := q.Get(name); v != "" {
			f.Values[name] = v
		}
	}
	if c != CategoryHome {
		return f
	}
	for _, v := range q["documentCategories"] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				f.Categories = append(f.Categories, part)
			}
		}
	}
	return f
}

// Get returns the trimmed value of a filter.
func (f Filters) Get(name string) string {
	return strings.TrimSpace(f.Values[name])
}

// Op is a server-side comparison.
type Op string

const (
	OpEqual Op = "=="
	OpIn    Op = "in"
)

// Predicate is the part of a search the store evaluates.
type Predicate struct {
	Field  string
	Op     Op
	Values []string
}

// Plan splits a search into a store predicate and in-process conditions.
type Plan struct {
	Category Category
	Server   *Predicate
	Residual []Condition
	// Degraded is set when a membership predicate was too large for the store and
	// type filtering moved to the residual conditions.
	Degraded bool
}

// Matches reports whether doc passes every residual condition.
func (p Plan) Matches(doc models.Document) bool {
	for _, c := range p.Residual {
		if !c.Match(doc) {
			return false
		}
	}
	return true
}

// Apply keeps the documents that match, preserving order.
func (p Plan) Apply(docs []models.Document) []models.Document {
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if p.Matches(d) {
			out = append(out, d)
		}
	}
	return out
}

// Planner builds and executes search plans.
type Planner struct {
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewPlanner creates a planner. Nil arguments fall back to no-op implementations.
func NewPlanner(log *slog.Logger, m *metrics.Metrics) *Planner {
	if log == nil {
		log = logger.Discard()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	return &Planner{log: log, metrics: m}
}

// Plan turns a category and filter set into a Plan. Only a malformed filter value is
// an error; oversized membership lists degrade instead.
func (p *Planner) Plan(category Category, filters Filters) (Plan, error) {
	if !category.Valid() {
		return Plan{}, fmt.Errorf("unknown category %q: %w", category, models.ErrNotFound)
	}

	plan := Plan{Category: category}

	if t, ok := category.DocType(); ok {
		plan.Server = &Predicate{Field: "type", Op: OpEqual, Values: []string{string(t)}}
	} else if len(filters.Categories) > 0 {
		if len(filters.Categories) <= MaxServerMembership {
			plan.Server = &Predicate{Field: "type", Op: OpIn, Values: filters.Categories}
		} else {
			plan.Degraded = true
			plan.Residual = append(plan.Residual, typeIn(filters.Categories))
			p.metrics.MembershipFallbacks.Inc()
			p.log.Warn("type membership too large for store, filtering in process",
				slog.Int("types", len(filters.Categories)),
				slog.Int("limit", MaxServerMembership),
			)
		}
	}

	for _, spec := range filtersFor(category) {
		raw := filters.Get(spec.name)
		if raw == "" {
			continue
		}
		cond, err := spec.build(raw)
		if err != nil {
			return Plan{}, err
		}
		plan.Residual = append(plan.Residual, cond)
	}

	return plan, nil
}

// Store is the read side of the document store.
type Store interface {
	QueryEqual(ctx context.Context, collection, field, value string) ([]models.Document, error)
	QueryIn(ctx context.Context, collection, field string, values []string) ([]models.Document, error)
	QueryAll(ctx context.Context, collection string) ([]models.Document, error)
}

// Execute runs plan against collection and returns the matching documents in store
// order.
func (p *Planner) Execute(ctx context.Context, store Store, collection string, plan Plan) ([]models.Document, error) {
	var (
		docs []models.Document
		err  error
	)

	switch {
	case plan.Server == nil:
		docs, err = store.QueryAll(ctx, collection)
	case plan.Server.Op == OpIn:
		docs, err = store.QueryIn(ctx, collection, plan.Server.Field, plan.Server.Values)
	default:
		docs, err = store.QueryEqual(ctx, collection, plan.Server.Field, plan.Server.Values[0])
	}
	if err != nil {
		return nil, fmt.Errorf("execute %s search: %w", plan.Category, err)
	}

	matched := plan.Apply(docs)
	p.metrics.Searches.WithLabelValues(string(plan.Category)).Inc()
	p.metrics.SearchResults.Observe(float64(len(matched)))
	p.log.Debug("search executed",
		slog.String("category", string(plan.Category)),
		slog.Int("fetched", len(docs)),
		slog.Int("matched", len(matched)),
	)
	return matched, nil
}

// Search plans and executes in one step.
func (p *Planner) Search(ctx context.Context, store Store, collection string, category Category, filters Filters) ([]models.Document, error) {
	plan, err := p.Plan(category, filters)
	if err != nil {
		return nil, err
	}
	return p.Execute(ctx, store, collection, plan)
}
