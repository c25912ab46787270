package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DeafMist/federal-archive/backend/internal/models"
	"github.com/DeafMist/federal-archive/backend/internal/processing"
)

// Kind is how a residual condition compares.
type Kind string

const (
	KindKeywords Kind = "keywords"
	KindYearFrom Kind = "yearFrom"
	KindYearTo   Kind = "yearTo"
	KindExact    Kind = "exact"
	KindContains Kind = "contains"
	KindTypeIn   Kind = "typeIn"
)

// Condition is one in-process filter.
type Condition struct {
	Filter string
	Kind   Kind
	Value  string
	Year   int
	Types  []string
	field  func(models.Document) string
}

// Match evaluates the condition against doc.
func (c Condition) Match(doc models.Document) bool {
	switch c.Kind {
	case KindKeywords:
		return processing.ContainsFold(strings.Join(doc.SearchText(), " "), c.Value)
	case KindYearFrom:
		year, ok := processing.YearPrefix(doc.Date())
		return ok && year >= c.Year
	case KindYearTo:
		year, ok := processing.YearPrefix(doc.Date())
		return ok && year <= c.Year
	case KindExact:
		return c.field(doc) == c.Value
	case KindContains:
		return processing.ContainsFold(c.field(doc), c.Value)
	case KindTypeIn:
		return models.OneOf(string(doc.Type), c.Types)
	}
	return false
}

func typeIn(types []string) Condition {
	return Condition{Filter: "documentCategories", Kind: KindTypeIn, Types: types}
}

type filterSpec struct {
	name  string
	build func(raw string) (Condition, error)
}

func keywords() filterSpec {
	return filterSpec{name: "keywords", build: func(raw string) (Condition, error) {
		return Condition{Filter: "keywords", Kind: KindKeywords, Value: raw}, nil
	}}
}

func yearBound(name string, kind Kind) filterSpec {
	return filterSpec{name: name, build: func(raw string) (Condition, error) {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return Condition{}, fmt.Errorf("%s %q is not a year: %w", name, raw, models.ErrValidation)
		}
		return Condition{Filter: name, Kind: kind, Value: raw, Year: year}, nil
	}}
}

func exact(name string, field func(models.Document) string) filterSpec {
	return filterSpec{name: name, build: func(raw string) (Condition, error) {
		return Condition{Filter: name, Kind: KindExact, Value: raw, field: field}, nil
	}}
}

func contains(name string, field func(models.Document) string) filterSpec {
	return filterSpec{name: name, build: func(raw string) (Condition, error) {
		return Condition{Filter: name, Kind: KindContains, Value: raw, field: field}, nil
	}}
}

func status(d models.Document) string           { return d.Status }
func codeTitle(d models.Document) string        { return d.CodeTitle }
func sponsor(d models.Document) string          { return d.Sponsor }
func issuingAuthority(d models.Document) string { return d.IssuingAuthority }
func documentType(d models.Document) string     { return d.DocumentType }
func court(d models.Document) string            { return d.Court }
func judgeProsecutor(d models.Document) string  { return d.JudgeProsecutor }
func caseType(d models.Document) string         { return d.CaseType }
func partiesInvolved(d models.Document) string  { return d.PartiesInvolved }
func title(d models.Document) string            { return d.Title }

// filtersFor lists the filters a category accepts. Filters a category does not offer
// are ignored.
func filtersFor(c Category) []filterSpec {
	common := []filterSpec{
		keywords(),
		yearBound("yearFrom", KindYearFrom),
		yearBound("yearTo", KindYearTo),
	}

	switch c {
	case CategoryFederalLaws:
		return append(common,
			exact("codeTitle", codeTitle),
			exact("status", status),
			contains("sponsor", sponsor),
		)
	case CategoryExecutive:
		return append(common,
			contains("issuingAuthority", issuingAuthority),
			contains("documentType", documentType),
		)
	case CategoryJudicial:
		return append(common,
			exact("court", court),
			contains("judgeProsecutor", judgeProsecutor),
			exact("caseType", caseType),
		)
	case CategoryTreaties:
		return append(common,
			exact("documentType", documentType),
			exact("status", status),
			contains("partiesInvolved", partiesInvolved),
			contains("titleNumber", title),
		)
	}
	return common
}

// FilterNames returns the filter names a category accepts, in form order.
func FilterNames(c Category) []string {
	specs := filtersFor(c)
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.name)
	}
	return names
}
