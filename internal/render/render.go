package render

import (
	"fmt"

	"github.com/DeafMist/federal-archive/backend/internal/models"
	"github.com/DeafMist/federal-archive/backend/internal/processing"
)

const (
	// NoResultsNotice is shown in place of an empty result list.
	NoResultsNotice = "No documents found for this category. Add some via the Admin Panel!"
	// NoDocumentsNotice is shown in place of an empty admin list.
	NoDocumentsNotice = "No documents added yet."
	// NotFoundNotice is shown when a document reference no longer resolves.
	NotFoundNotice = "Document not found."

	absent = "N/A"
)

// SummaryView is one entry of a result list.
type SummaryView struct {
	ID        string         `json:"id"`
	Type      models.DocType `json:"type"`
	Title     string         `json:"title"`
	Secondary string         `json:"secondary"`
	Summary   string         `json:"summary"`
}

// Field is a labelled value of a detail view.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ExternalLink is the external document affordance. When Visible is false, Notice
// carries the message to show if the user asks for the link anyway.
type ExternalLink struct {
	Visible bool   `json:"visible"`
	URL     string `json:"url,omitempty"`
	Notice  string `json:"notice,omitempty"`
}

// DetailView is the full view of one document.
type DetailView struct {
	ID       string         `json:"id"`
	Type     models.DocType `json:"type"`
	Title    string         `json:"title"`
	Fields   []Field        `json:"fields"`
	External ExternalLink   `json:"external"`
}

// AdminRow is one entry of the admin document list.
type AdminRow struct {
	ID      string         `json:"id"`
	Heading string         `json:"heading"`
	Type    models.DocType `json:"type"`
	Summary string         `json:"summary"`
}

// Renderer builds views from documents. It never performs I/O and never modifies its
// input.
type Renderer struct {
	summaryLength int
}

// New creates a renderer truncating summaries to summaryLength runes (0 keeps them
// whole).
func New(summaryLength int) *Renderer {
	return &Renderer{summaryLength: summaryLength}
}

// Summary renders a result list entry.
func (r *Renderer) Summary(doc models.Document) SummaryView {
	return SummaryView{
		ID:        doc.ID,
		Type:      doc.Type,
		Title:     doc.Title,
		Secondary: secondaryLine(doc),
		Summary:   processing.Truncate(doc.Summary, r.summaryLength),
	}
}

// Summaries renders a result list in order.
func (r *Renderer) Summaries(docs []models.Document) []SummaryView {
	out := make([]SummaryView, 0, len(docs))
	for _, d := range docs {
		out = append(out, r.Summary(d))
	}
	return out
}

func secondaryLine(doc models.Document) string {
	switch doc.Type {
	case models.TypeFederalLaw:
		return "Enactment Date: " + doc.DateEnacted
	case models.TypeExecutiveDocument:
		return fmt.Sprintf("Issuing Authority: %s | Date: %s", doc.IssuingAuthority, doc.DateIssued)
	case models.TypeJudicialDocument:
		return fmt.Sprintf("Court: %s | Date: %s", doc.Court, doc.DateIssued)
	case models.TypeTreatyResolution:
		return fmt.Sprintf("Type: %s | Date: %s | Status: %s", doc.DocumentType, doc.DateSignedAdopted, doc.Status)
	}
	return ""
}

// Detail renders the full view of a document. Only fields of the document's own
// variant appear.
func (r *Renderer) Detail(doc models.Document) DetailView {
	return DetailView{
		ID:       doc.ID,
		Type:     doc.Type,
		Title:    doc.Title,
		Fields:   detailFields(doc),
		External: External(doc),
	}
}

func detailFields(doc models.Document) []Field {
	switch doc.Type {
	case models.TypeFederalLaw:
		return []Field{
			{"Date Enacted", doc.DateEnacted},
			{"Issuing Authority", doc.IssuingAuthority},
			{"Status", doc.Status},
			{"Code Title", doc.CodeTitle},
			{"Sponsor", orAbsent(doc.Sponsor)},
			{"Summary", doc.Summary},
			{"Tags", doc.Tags},
		}
	case models.TypeExecutiveDocument:
		return []Field{
			{"Issuing Authority", doc.IssuingAuthority},
			{"Date Issued", doc.DateIssued},
			{"Document Type", doc.DocumentType},
			{"Summary", doc.Summary},
			{"Status", doc.Status},
		}
	case models.TypeJudicialDocument:
		return []Field{
			{"Court", doc.Court},
			{"Date Issued", doc.DateIssued},
			{"Judge / Prosecutor", doc.JudgeProsecutor},
			{"Case Type", doc.CaseType},
			{"Plaintiff", orAbsent(doc.Plaintiff)},
			{"Defendant", orAbsent(doc.Defendant)},
			{"Summary", doc.Summary},
			{"Status", doc.Status},
		}
	case models.TypeTreatyResolution:
		return []Field{
			{"Document Type", doc.DocumentType},
			{"Date Signed / Adopted", doc.DateSignedAdopted},
			{"Status", doc.Status},
			{"Parties Involved", doc.PartiesInvolved},
			{"Summary", doc.Summary},
		}
	}
	return []Field{{"Summary", doc.Summary}}
}

// External decides whether the external link is offered.
func External(doc models.Document) ExternalLink {
	if processing.HasHTTPScheme(doc.ExternalURL) {
		return ExternalLink{Visible: true, URL: doc.ExternalURL}
	}
	return ExternalLink{Notice: "No external URL provided for: " + doc.Title}
}

// AdminRows renders the admin document list.
func (r *Renderer) AdminRows(docs []models.Document) []AdminRow {
	out := make([]AdminRow, 0, len(docs))
	for _, d := range docs {
		out = append(out, AdminRow{
			ID:      d.ID,
			Heading: fmt.Sprintf("%s (%s)", d.Title, d.Type),
			Type:    d.Type,
			Summary: processing.Truncate(d.Summary, r.summaryLength),
		})
	}
	return out
}

func orAbsent(v string) string {
	if v == "" {
		return absent
	}
	return v
}
