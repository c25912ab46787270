package models

// DocType discriminates the four document variants stored in the archive.
type DocType string

const (
	TypeFederalLaw        DocType = "federal-law"
	TypeExecutiveDocument DocType = "executive-document"
	TypeJudicialDocument  DocType = "judicial-document"
	TypeTreatyResolution  DocType = "treaty-resolution"
)

// DocTypes lists every variant in display order.
var DocTypes = []DocType{
	TypeFederalLaw,
	TypeExecutiveDocument,
	TypeJudicialDocument,
	TypeTreatyResolution,
}

// Valid reports whether t names a known variant.
func (t DocType) Valid() bool {
	switch t {
	case TypeFederalLaw, TypeExecutiveDocument, TypeJudicialDocument, TypeTreatyResolution:
		return true
	}
	return false
}

// Label is the human readable variant name.
func (t DocType) Label() string {
	switch t {
	case TypeFederalLaw:
		return "Federal Law"
	case TypeExecutiveDocument:
		return "Executive Document"
	case TypeJudicialDocument:
		return "Judicial Document"
	case TypeTreatyResolution:
		return "Treaty & Resolution"
	}
	return string(t)
}

// Document is the canonical structure stored in Elasticsearch. Type decides which of
// the variant fields are meaningful; the others stay empty and must not be read.
type Document struct {
	ID          string  `json:"id,omitempty"`
	Type        DocType `json:"type"`
	Title       string  `json:"title"`
	Summary     string  `json:"summary"`
	ExternalURL string  `json:"externalUrl,omitempty"`

	// federal-law
	DateEnacted string `json:"dateEnacted,omitempty"`
	CodeTitle   string `json:"codeTitle,omitempty"`
	Sponsor     string `json:"sponsor,omitempty"`
	Tags        string `json:"tags,omitempty"`

	// federal-law, executive-document
	IssuingAuthority string `json:"issuingAuthority,omitempty"`

	// executive-document, judicial-document
	DateIssued string `json:"dateIssued,omitempty"`

	// executive-document (free text), treaty-resolution (enumerated)
	DocumentType string `json:"documentType,omitempty"`

	// judicial-document
	Court           string `json:"court,omitempty"`
	JudgeProsecutor string `json:"judgeProsecutor,omitempty"`
	CaseType        string `json:"caseType,omitempty"`
	Plaintiff       string `json:"plaintiff,omitempty"`
	Defendant       string `json:"defendant,omitempty"`

	// treaty-resolution
	DateSignedAdopted string `json:"dateSignedAdopted,omitempty"`
	PartiesInvolved   string `json:"partiesInvolved,omitempty"`

	// every variant
	Status string `json:"status,omitempty"`
}

// Date returns the variant's own date field. Exactly one date field is populated per
// document, and only the one belonging to its type is ever consulted.
func (d Document) Date() string {
	switch d.Type {
	case TypeFederalLaw:
		return d.DateEnacted
	case TypeExecutiveDocument, TypeJudicialDocument:
		return d.DateIssued
	case TypeTreatyResolution:
		return d.DateSignedAdopted
	}
	return ""
}

// SearchText gathers the text-bearing fields that belong to the document's variant.
// Absent fields contribute empty strings.
func (d Document) SearchText() []string {
	fields := []string{d.Title, d.Summary}
	switch d.Type {
	case TypeFederalLaw:
		fields = append(fields, d.Tags, d.Sponsor, d.IssuingAuthority)
	case TypeExecutiveDocument:
		fields = append(fields, d.IssuingAuthority)
	case TypeJudicialDocument:
		fields = append(fields, d.JudgeProsecutor, d.Plaintiff, d.Defendant)
	case TypeTreatyResolution:
		fields = append(fields, d.PartiesInvolved)
	}
	return fields
}
