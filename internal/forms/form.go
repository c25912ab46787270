package forms

import (
	"fmt"
	"strings"

	"github.com/DeafMist/federal-archive/backend/internal/models"
	"github.com/DeafMist/federal-archive/backend/internal/processing"
)

// FieldValue is a field together with its current value.
type FieldValue struct {
	Field
	Value string `json:"value"`
}

// View is the serialisable state of a form.
type View struct {
	DocumentID string         `json:"documentId,omitempty"`
	Editing    bool           `json:"editing"`
	Type       models.DocType `json:"type,omitempty"`
	Types      []TypeOption   `json:"types"`
	Common     []FieldValue   `json:"common"`
	Fields     []FieldValue   `json:"fields"`
	Hint       string         `json:"hint,omitempty"`
}

// TypeOption is an entry of the document type selector.
type TypeOption struct {
	Value models.DocType `json:"value"`
	Label string         `json:"label"`
}

const selectTypeHint = "Select a document type to see specific fields."

// Form holds the state of the admin document form while it is being filled in.
type Form struct {
	documentID string
	stored     *models.Document
	docType    models.DocType
	values     map[string]string
}

// NewForm starts a blank form for a new document.
func NewForm() *Form {
	return &Form{values: map[string]string{}}
}

// EditForm starts a form prefilled from an existing document.
func EditForm(doc models.Document) *Form {
	stored := doc
	f := &Form{documentID: doc.ID, stored: &stored, values: map[string]string{}}
	for _, field := range CommonFields() {
		f.values[field.Name] = field.Extract(doc)
	}
	f.SelectType(doc.Type)
	return f
}

// Editing reports whether the form edits a stored document.
func (f *Form) Editing() bool { return f.stored != nil }

// Type is the currently selected document type.
func (f *Form) Type() models.DocType { return f.docType }

// SelectType switches the variant. The variant fields are regenerated; their values
// survive only when editing and t is the stored document's type.
func (f *Form) SelectType(t models.DocType) {
	for _, field := range FieldsFor(f.docType) {
		delete(f.values, field.Name)
	}
	f.docType = t

	if f.stored == nil || f.stored.Type != t {
		return
	}
	for _, field := range FieldsFor(t) {
		f.values[field.Name] = field.Extract(*f.stored)
	}
}

// Set records a value for a common or current variant field. Unknown names are
// ignored.
func (f *Form) Set(name, value string) {
	for _, field := range append(CommonFields(), FieldsFor(f.docType)...) {
		if field.Name == name {
			f.values[name] = value
			return
		}
	}
}

func (f *Form) value(name string) string { return f.values[name] }

// View renders the form state.
func (f *Form) View() View {
	v := View{
		DocumentID: f.documentID,
		Editing:    f.Editing(),
		Type:       f.docType,
		Types:      typeOptions(),
		Common:     withValues(CommonFields(), f.values),
		Fields:     withValues(FieldsFor(f.docType), f.values),
	}
	if len(v.Fields) == 0 {
		v.Hint = selectTypeHint
	}
	return v
}

// Record assembles the current state into a document.
func (f *Form) Record() models.Document {
	return Assemble(f.docType, f.values)
}

func withValues(fields []Field, values map[string]string) []FieldValue {
	out := make([]FieldValue, 0, len(fields))
	for _, field := range fields {
		out = append(out, FieldValue{Field: field, Value: values[field.Name]})
	}
	return out
}

func typeOptions() []TypeOption {
	out := make([]TypeOption, 0, len(models.DocTypes))
	for _, t := range models.DocTypes {
		out = append(out, TypeOption{Value: t, Label: t.Label()})
	}
	return out
}

// Assemble builds a record of type t from values keyed by JSON field name. Values of
// fields that do not belong to t are dropped.
func Assemble(t models.DocType, values map[string]string) models.Document {
	doc := models.Document{Type: t}
	for _, field := range append(CommonFields(), FieldsFor(t)...) {
		v := strings.TrimSpace(values[field.Name])
		if field.Name == "tags" || field.Name == "partiesInvolved" {
			v = processing.NormalizeTags(v)
		}
		field.assign(&doc, v)
	}
	return doc
}

// FieldError is a rejected field value.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rejected field. It matches models.ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s: %s", models.ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return models.ErrValidation }

// Validate checks required fields, canonical enumerations and the external URL of
// doc's variant.
func Validate(doc models.Document) error {
	var errs []FieldError

	if !doc.Type.Valid() {
		errs = append(errs, FieldError{Field: "type", Message: fmt.Sprintf("unknown document type %q", doc.Type)})
		return &ValidationError{Fields: errs}
	}

	for _, field := range append(CommonFields(), FieldsFor(doc.Type)...) {
		v := field.Extract(doc)
		switch {
		case v == "" && field.Required:
			errs = append(errs, FieldError{Field: field.Name, Message: field.Label + " is required"})
		case v != "" && len(field.Options) > 0 && !models.OneOf(v, field.Options):
			errs = append(errs, FieldError{Field: field.Name, Message: fmt.Sprintf("%q is not one of %s", v, strings.Join(field.Options, ", "))})
		case v != "" && field.Kind == KindURL && !processing.IsAbsoluteHTTPURL(v):
			errs = append(errs, FieldError{Field: field.Name, Message: "must be an absolute http(s) URL"})
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// CheckUpdate rejects an update that would change the stored document's type.
func CheckUpdate(stored, incoming models.Document) error {
	if incoming.Type != stored.Type {
		return fmt.Errorf("%s to %s: %w", stored.Type, incoming.Type, models.ErrImmutableType)
	}
	return nil
}

// Partial is the update body for doc: the common fields and every field of its
// variant, empty ones included so cleared inputs are cleared in the store.
func Partial(doc models.Document) map[string]any {
	out := map[string]any{}
	for _, field := range append(CommonFields(), FieldsFor(doc.Type)...) {
		out[field.Name] = field.Extract(doc)
	}
	return out
}
