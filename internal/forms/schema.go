package forms

import (
	"github.com/DeafMist/federal-archive/backend/internal/models"
)

// Kind is the input widget of a field.
type Kind string

const (
	KindText     Kind = "text"
	KindTextArea Kind = "textarea"
	KindDate     Kind = "date"
	KindSelect   Kind = "select"
	KindURL      Kind = "url"
)

// Field describes one input of the admin document form. Name is the document's JSON
// field the input maps to.
type Field struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Kind        Kind     `json:"kind"`
	Required    bool     `json:"required"`
	Options     []string `json:"options,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`

	Extract func(models.Document) string   `json:"-"`
	assign  func(*models.Document, string)
}

// CommonFields are present for every document type.
func CommonFields() []Field {
	return []Field{
		{
			ID: "doc-title", Name: "title", Label: "Title", Kind: KindText, Required: true,
			Placeholder: "Document Title",
			Extract:     func(d models.Document) string { return d.Title },
			assign:      func(d *models.Document, v string) { d.Title = v },
		},
		{
			ID: "doc-summary", Name: "summary", Label: "Summary", Kind: KindTextArea, Required: true,
			Placeholder: "Brief summary of the document",
			Extract:     func(d models.Document) string { return d.Summary },
			assign:      func(d *models.Document, v string) { d.Summary = v },
		},
		{
			ID: "doc-external-url", Name: "externalUrl", Label: "External URL (Optional)", Kind: KindURL,
			Placeholder: "e.g., https://example.com/document.pdf",
			Extract:     func(d models.Document) string { return d.ExternalURL },
			assign:      func(d *models.Document, v string) { d.ExternalURL = v },
		},
	}
}

// FieldsFor returns the variant specific fields of t in form order. Unknown types
// have none.
func FieldsFor(t models.DocType) []Field {
	switch t {
	case models.TypeFederalLaw:
		return []Field{
			dateField("fl-date-enacted", "dateEnacted", "Date Enacted",
				func(d models.Document) string { return d.DateEnacted },
				func(d *models.Document, v string) { d.DateEnacted = v }),
			textField("fl-issuing-authority", "issuingAuthority", "Issuing Authority", "e.g., State Duma", true,
				func(d models.Document) string { return d.IssuingAuthority },
				func(d *models.Document, v string) { d.IssuingAuthority = v }),
			selectField("fl-status", "status", "Status", models.FederalLawStatuses,
				func(d models.Document) string { return d.Status },
				func(d *models.Document, v string) { d.Status = v }),
			selectField("fl-code-title", "codeTitle", "Code Title", models.CodeTitles,
				func(d models.Document) string { return d.CodeTitle },
				func(d *models.Document, v string) { d.CodeTitle = v }),
			textField("fl-sponsor", "sponsor", "Sponsor / Author", "e.g., Ivanov", false,
				func(d models.Document) string { return d.Sponsor },
				func(d *models.Document, v string) { d.Sponsor = v }),
			textField("fl-tags", "tags", "Tags (comma-separated)", "e.g., environment, tax", false,
				func(d models.Document) string { return d.Tags },
				func(d *models.Document, v string) { d.Tags = v }),
		}
	case models.TypeExecutiveDocument:
		return []Field{
			textField("ed-issuing-authority", "issuingAuthority", "Issuing Authority", "e.g., President, Ministry of Justice", true,
				func(d models.Document) string { return d.IssuingAuthority },
				func(d *models.Document, v string) { d.IssuingAuthority = v }),
			dateField("ed-date-issued", "dateIssued", "Date Issued",
				func(d models.Document) string { return d.DateIssued },
				func(d *models.Document, v string) { d.DateIssued = v }),
			textField("ed-document-type", "documentType", "Document Type", "e.g., Order, Decree", true,
				func(d models.Document) string { return d.DocumentType },
				func(d *models.Document, v string) { d.DocumentType = v }),
			selectField("ed-status", "status", "Status", models.ExecutiveStatuses,
				func(d models.Document) string { return d.Status },
				func(d *models.Document, v string) { d.Status = v }),
		}
	case models.TypeJudicialDocument:
		return []Field{
			selectField("jd-court", "court", "Court", models.Courts,
				func(d models.Document) string { return d.Court },
				func(d *models.Document, v string) { d.Court = v }),
			dateField("jd-date-issued", "dateIssued", "Date Issued",
				func(d models.Document) string { return d.DateIssued },
				func(d *models.Document, v string) { d.DateIssued = v }),
			textField("jd-judge-prosecutor", "judgeProsecutor", "Judge / Prosecutor", "e.g., Judge Ivanov", true,
				func(d models.Document) string { return d.JudgeProsecutor },
				func(d *models.Document, v string) { d.JudgeProsecutor = v }),
			selectField("jd-case-type", "caseType", "Case Type", models.CaseTypes,
				func(d models.Document) string { return d.CaseType },
				func(d *models.Document, v string) { d.CaseType = v }),
			textField("jd-plaintiff", "plaintiff", "Plaintiff", "e.g., John Doe", false,
				func(d models.Document) string { return d.Plaintiff },
				func(d *models.Document, v string) { d.Plaintiff = v }),
			textField("jd-defendant", "defendant", "Defendant", "e.g., Jane Smith", false,
				func(d models.Document) string { return d.Defendant },
				func(d *models.Document, v string) { d.Defendant = v }),
			selectField("jd-status", "status", "Status", models.JudicialStatuses,
				func(d models.Document) string { return d.Status },
				func(d *models.Document, v string) { d.Status = v }),
		}
	case models.TypeTreatyResolution:
		return []Field{
			selectField("tr-document-type", "documentType", "Document Type", models.TreatyKinds,
				func(d models.Document) string { return d.DocumentType },
				func(d *models.Document, v string) { d.DocumentType = v }),
			dateField("tr-date-signed-adopted", "dateSignedAdopted", "Date Signed / Adopted",
				func(d models.Document) string { return d.DateSignedAdopted },
				func(d *models.Document, v string) { d.DateSignedAdopted = v }),
			selectField("tr-status", "status", "Status", models.TreatyStatuses,
				func(d models.Document) string { return d.Status },
				func(d *models.Document, v string) { d.Status = v }),
			textField("tr-parties-involved", "partiesInvolved", "Parties Involved (comma-separated)", "e.g., Russia, UN", false,
				func(d models.Document) string { return d.PartiesInvolved },
				func(d *models.Document, v string) { d.PartiesInvolved = v }),
		}
	}
	return nil
}

func textField(id, name, label, placeholder string, required bool, get func(models.Document) string, set func(*models.Document, string)) Field {
	return Field{ID: id, Name: name, Label: label, Kind: KindText, Required: required, Placeholder: placeholder, Extract: get, assign: set}
}

func dateField(id, name, label string, get func(models.Document) string, set func(*models.Document, string)) Field {
	return Field{ID: id, Name: name, Label: label, Kind: KindDate, Required: true, Extract: get, assign: set}
}

func selectField(id, name, label string, options []string, get func(models.Document) string, set func(*models.Document, string)) Field {
	return Field{ID: id, Name: name, Label: label, Kind: KindSelect, Required: true, Options: options, Extract: get, assign: set}
}
