package forms

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/federal-archive/backend/internal/models"
)

func names(fields []Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Name)
	}
	return out
}

func validLaw() models.Document {
	return models.Document{
		ID:               "law-1",
		Type:             models.TypeFederalLaw,
		Title:            "Environmental Protection Act",
		Summary:          "Protects forests.",
		DateEnacted:      "2020-05-01",
		IssuingAuthority: "State Duma",
		Status:           "Active",
		CodeTitle:        models.CodeTitles[6],
		Sponsor:          "Ivanov",
		Tags:             "environment, forests",
	}
}

func TestFieldsForEachType(t *testing.T) {
	require.Equal(t, []string{"dateEnacted", "issuingAuthority", "status", "codeTitle", "sponsor", "tags"}, names(FieldsFor(models.TypeFederalLaw)))
	require.Equal(t, []string{"issuingAuthority", "dateIssued", "documentType", "status"}, names(FieldsFor(models.TypeExecutiveDocument)))
	require.Equal(t, []string{"court", "dateIssued", "judgeProsecutor", "caseType", "plaintiff", "defendant", "status"}, names(FieldsFor(models.TypeJudicialDocument)))
	require.Equal(t, []string{"documentType", "dateSignedAdopted", "status", "partiesInvolved"}, names(FieldsFor(models.TypeTreatyResolution)))
	require.Empty(t, FieldsFor("memo"))
}

func TestEnumeratedFieldsUseCanonicalOptions(t *testing.T) {
	for _, f := range FieldsFor(models.TypeJudicialDocument) {
		if f.Name == "court" {
			require.Equal(t, models.Courts, f.Options)
		}
	}
	for _, f := range FieldsFor(models.TypeFederalLaw) {
		if f.Name == "codeTitle" {
			require.Len(t, f.Options, 8)
		}
	}
}

func TestSwitchingTypeDropsForeignValues(t *testing.T) {
	form := EditForm(validLaw())
	require.Equal(t, "Ivanov", form.value("sponsor"))

	form.SelectType(models.TypeExecutiveDocument)
	view := form.View()
	require.Equal(t, models.TypeExecutiveDocument, view.Type)
	for _, fv := range view.Fields {
		require.Empty(t, fv.Value, fv.Name)
	}
	require.Empty(t, form.value("sponsor"))
	require.Empty(t, form.value("codeTitle"))

	rec := form.Record()
	require.Empty(t, rec.Sponsor)
	require.Empty(t, rec.Tags)
	require.Empty(t, rec.DateEnacted)
	require.Equal(t, "Environmental Protection Act", rec.Title)
}

func TestSwitchingBackToStoredTypeRestoresValues(t *testing.T) {
	form := EditForm(validLaw())
	form.SelectType(models.TypeTreatyResolution)
	form.SelectType(models.TypeFederalLaw)
	require.Equal(t, "Ivanov", form.value("sponsor"))
	require.Equal(t, "2020-05-01", form.value("dateEnacted"))
}

func TestNewFormNeverCarriesValues(t *testing.T) {
	form := NewForm()
	require.Equal(t, selectTypeHint, form.View().Hint)

	form.SelectType(models.TypeFederalLaw)
	form.Set("sponsor", "Ivanov")
	form.Set("court", "Supreme Court")
	require.Empty(t, form.value("court"))

	form.SelectType(models.TypeJudicialDocument)
	form.SelectType(models.TypeFederalLaw)
	require.Empty(t, form.value("sponsor"))
}

func TestAssembleOmitsForeignFields(t *testing.T) {
	rec := Assemble(models.TypeTreatyResolution, map[string]string{
		"title":           " Accord ",
		"documentType":    "Treaty",
		"court":           "Supreme Court",
		"sponsor":         "Ivanov",
		"partiesInvolved": "Russia,  UN ,",
	})
	require.Equal(t, "Accord", rec.Title)
	require.Equal(t, "Treaty", rec.DocumentType)
	require.Empty(t, rec.Court)
	require.Empty(t, rec.Sponsor)
	require.Equal(t, "Russia, UN", rec.PartiesInvolved)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(validLaw()))

	tests := []struct {
		name   string
		mutate func(*models.Document)
		field  string
	}{
		{"missing title", func(d *models.Document) { d.Title = "" }, "title"},
		{"bad status", func(d *models.Document) { d.Status = "active" }, "status"},
		{"bad code title", func(d *models.Document) { d.CodeTitle = "Title 9" }, "codeTitle"},
		{"relative url", func(d *models.Document) { d.ExternalURL = "/docs/a.pdf" }, "externalUrl"},
		{"missing date", func(d *models.Document) { d.DateEnacted = "" }, "dateEnacted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validLaw()
			tt.mutate(&doc)
			err := Validate(doc)
			require.ErrorIs(t, err, models.ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
}

func TestValidateJudicialCourtIsEnumerated(t *testing.T) {
	doc := models.Document{
		Type: models.TypeJudicialDocument, Title: "Case", Summary: "s",
		Court: "supreme", DateIssued: "2024-01-01", JudgeProsecutor: "Petrov",
		CaseType: "Civil", Status: "Final",
	}
	require.ErrorIs(t, Validate(doc), models.ErrValidation)

	doc.Court = "Supreme Court"
	require.NoError(t, Validate(doc))
}

func TestValidateUnknownType(t *testing.T) {
	require.ErrorIs(t, Validate(models.Document{Type: "memo", Title: "x"}), models.ErrValidation)
}

func TestCheckUpdateRejectsTypeChange(t *testing.T) {
	stored := validLaw()
	incoming := stored
	incoming.Type = models.TypeExecutiveDocument
	require.ErrorIs(t, CheckUpdate(stored, incoming), models.ErrImmutableType)
	require.NoError(t, CheckUpdate(stored, stored))
}

func TestPartialCoversVariantOnly(t *testing.T) {
	p := Partial(validLaw())
	require.Equal(t, "Ivanov", p["sponsor"])
	require.Contains(t, p, "externalUrl")
	require.NotContains(t, p, "court")
	require.NotContains(t, p, "type")
}
