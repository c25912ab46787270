package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/federal-archive/backend/internal/models"
)

func labels(fields []Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Label)
	}
	return out
}

func TestSummarySecondaryLine(t *testing.T) {
	r := New(0)
	tests := []struct {
		doc  models.Document
		want string
	}{
		{models.Document{Type: models.TypeFederalLaw, DateEnacted: "2020-01-01"}, "Enactment Date: 2020-01-01"},
		{models.Document{Type: models.TypeExecutiveDocument, IssuingAuthority: "President", DateIssued: "2021-03-04"}, "Issuing Authority: President | Date: 2021-03-04"},
		{models.Document{Type: models.TypeJudicialDocument, Court: "Supreme Court", DateIssued: "2022"}, "Court: Supreme Court | Date: 2022"},
		{models.Document{Type: models.TypeTreatyResolution, DocumentType: "Treaty", DateSignedAdopted: "2019", Status: "Active"}, "Type: Treaty | Date: 2019 | Status: Active"},
	}
	for _, tt := range tests {
		t.Run(string(tt.doc.Type), func(t *testing.T) {
			require.Equal(t, tt.want, r.Summary(tt.doc).Secondary)
		})
	}
}

func TestSummaryTruncates(t *testing.T) {
	r := New(20)
	view := r.Summary(models.Document{Type: models.TypeFederalLaw, Summary: strings.Repeat("word ", 20)})
	require.True(t, strings.HasSuffix(view.Summary, "..."))
	require.LessOrEqual(t, len([]rune(view.Summary)), 23)
}

func TestTreatyDetailNeverShowsCourt(t *testing.T) {
	doc := models.Document{
		Type:              models.TypeTreatyResolution,
		Title:             "Climate Accord",
		DocumentType:      "Treaty",
		DateSignedAdopted: "2015-12-12",
		Status:            "Active",
		Court:             "Supreme Court",
	}
	view := New(0).Detail(doc)
	require.Equal(t, []string{"Document Type", "Date Signed / Adopted", "Status", "Parties Involved", "Summary"}, labels(view.Fields))
	for _, f := range view.Fields {
		require.NotEqual(t, "Supreme Court", f.Value)
	}
}

func TestJudicialDetailNeverShowsTreatyFields(t *testing.T) {
	doc := models.Document{
		Type:              models.TypeJudicialDocument,
		Title:             "Case 12/2024",
		Court:             "Regional Courts",
		PartiesInvolved:   "UN",
		DateSignedAdopted: "2001",
	}
	view := New(0).Detail(doc)
	require.NotContains(t, labels(view.Fields), "Parties Involved")
	require.NotContains(t, labels(view.Fields), "Date Signed / Adopted")

	byLabel := map[string]string{}
	for _, f := range view.Fields {
		byLabel[f.Label] = f.Value
	}
	require.Equal(t, "N/A", byLabel["Plaintiff"])
	require.Equal(t, "N/A", byLabel["Defendant"])
}

func TestFederalLawSponsorAbsent(t *testing.T) {
	view := New(0).Detail(models.Document{Type: models.TypeFederalLaw, Title: "Act"})
	require.Equal(t, Field{Label: "Sponsor", Value: "N/A"}, view.Fields[4])
}

func TestExternalLink(t *testing.T) {
	shown := External(models.Document{Title: "Act", ExternalURL: "https://example.org/act.pdf"})
	require.True(t, shown.Visible)
	require.Equal(t, "https://example.org/act.pdf", shown.URL)

	for _, raw := range []string{"", "ftp://example.org/a", "example.org"} {
		hidden := External(models.Document{Title: "Act", ExternalURL: raw})
		require.False(t, hidden.Visible, raw)
		require.Equal(t, "No external URL provided for: Act", hidden.Notice)
	}
}

func TestRenderDoesNotMutateInput(t *testing.T) {
	doc := models.Document{ID: "1", Type: models.TypeFederalLaw, Title: "Act", Summary: strings.Repeat("x ", 200)}
	before := doc
	r := New(10)
	r.Summary(doc)
	r.Detail(doc)
	r.AdminRows([]models.Document{doc})
	require.Equal(t, before, doc)
}

func TestAdminRows(t *testing.T) {
	rows := New(0).AdminRows([]models.Document{{ID: "7", Type: models.TypeExecutiveDocument, Title: "Order 1", Summary: "s"}})
	require.Equal(t, []AdminRow{{ID: "7", Heading: "Order 1 (executive-document)", Type: models.TypeExecutiveDocument, Summary: "s"}}, rows)
}
