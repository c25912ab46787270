package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DeafMist/federal-archive/backend/internal/forms"
	"github.com/DeafMist/federal-archive/backend/internal/models"
	"github.com/DeafMist/federal-archive/backend/internal/render"
)

const (
	addedMessage      = "Document added successfully!"
	updatedMessage    = "Document updated successfully!"
	deletedMessage    = "Document deleted successfully!"
	editingMessage    = "Editing document."
	notFoundForEdit   = "Document not found for editing."
	saveFailedMessage = "Error saving document."
	loadFailedMessage = "Error loading documents."
)

type adminListResponse struct {
	Items  []render.AdminRow `json:"items"`
	Notice string            `json:"notice,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func (s *server) adminList(docs []models.Document) adminListResponse {
	resp := adminListResponse{Items: s.render.AdminRows(docs)}
	if len(resp.Items) == 0 {
		resp.Notice = render.NoDocumentsNotice
	}
	return resp
}

func (s *server) handleAdminList(w http.ResponseWriter, r *http.Request) {
	rs, _ := sessionFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	docs, err := s.store.QueryAll(ctx, s.collectionFor(rs.identity))
	if err != nil {
		s.logFailure(r, err)
		writeJSON(w, http.StatusBadGateway, adminListResponse{Items: []render.AdminRow{}, Error: loadFailedMessage})
		return
	}
	writeJSON(w, http.StatusOK, s.adminList(docs))
}

// handleAdminStream keeps the admin list live over server-sent events. The stream ends
// when the client goes away, the session signs out or the subscription fails.
func (s *server) handleAdminStream(w http.ResponseWriter, r *http.Request) {
	rs, _ := sessionFrom(r.Context())

	// The server's read and write timeouts would otherwise end the stream.
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		s.log.Warn("stream flush unsupported", slog.Any("err", err))
		return
	}

	updates := make(chan []models.Document)
	failures := make(chan error, 1)
	done := make(chan struct{})

	unsubscribe := s.store.Subscribe(s.collectionFor(rs.identity),
		func(docs []models.Document) {
			select {
			case updates <- docs:
			case <-done:
			}
		},
		func(err error) {
			select {
			case failures <- err:
			case <-done:
			}
		},
	)
	release := rs.ctl.Track(func() {
		unsubscribe()
		close(done)
	})
	defer release()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-done:
			return
		case docs := <-updates:
			if err := writeEvent(w, "documents", s.adminList(docs)); err != nil {
				return
			}
		case err := <-failures:
			s.logFailure(r, err)
			_ = writeEvent(w, "error", errorResponse{Error: loadFailedMessage})
			_ = rc.Flush()
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w io.Writer, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

type formResponse struct {
	Form    forms.View `json:"form"`
	Message string     `json:"message,omitempty"`
}

// handleForm describes the admin form for a type. With ?id= the form is prefilled from
// the stored document; picking another type than the stored one starts its fields
// blank. "none" yields the form with no type selected.
func (s *server) handleForm(w http.ResponseWriter, r *http.Request) {
	rs, _ := sessionFrom(r.Context())

	t := models.DocType(chi.URLParam(r, "type"))
	if t == "none" {
		t = ""
	}
	if t != "" && !t.Valid() {
		s.writeError(w, r, &forms.ValidationError{Fields: []forms.FieldError{
			{Field: "type", Message: fmt.Sprintf("unknown document type %q", t)},
		}})
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		form := forms.NewForm()
		form.SelectType(t)
		writeJSON(w, http.StatusOK, formResponse{Form: form.View()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	doc, err := s.store.Get(ctx, s.collectionFor(rs.identity), id)
	if err != nil {
		s.writeMissing(w, r, err, notFoundForEdit)
		return
	}

	form := forms.EditForm(doc)
	if t != "" && t != doc.Type {
		form.SelectType(t)
	}
	writeJSON(w, http.StatusOK, formResponse{Form: form.View(), Message: editingMessage})
}

// writeMissing answers 404 with notice for not-found errors and maps the rest.
func (s *server) writeMissing(w http.ResponseWriter, r *http.Request, err error, notice string) {
	if errors.Is(err, models.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: notice})
		return
	}
	s.writeError(w, r, err)
}

func (s *server) writeSaveFailure(w http.ResponseWriter, r *http.Request, err error) {
	if statusFor(err) != http.StatusBadGateway {
		s.writeError(w, r, err)
		return
	}
	s.logFailure(r, err)
	writeJSON(w, http.StatusBadGateway, errorResponse{Error: saveFailedMessage})
}

// fill copies a submitted body into form. Fields missing from the body keep the
// form's value; an empty string clears the field.
func fill(form *forms.Form, body map[string]string) {
	for name, value := range body {
		form.Set(name, value)
	}
}

func (s *server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	rs, _ := sessionFrom(r.Context())

	var body map[string]string
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	form := forms.NewForm()
	form.SelectType(models.DocType(body["type"]))
	fill(form, body)
	doc := form.Record()
	if err := forms.Validate(doc); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	id, err := s.store.Insert(ctx, s.collectionFor(rs.identity), doc)
	if err != nil {
		s.writeSaveFailure(w, r, err)
		return
	}

	s.log.Info("document added", slog.String("id", id), slog.String("type", string(doc.Type)))
	writeJSON(w, http.StatusCreated, messageResponse{Message: addedMessage, ID: id})
}

func (s *server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	rs, _ := sessionFrom(r.Context())
	id := chi.URLParam(r, "id")
	collection := s.collectionFor(rs.identity)

	var body map[string]string
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	stored, err := s.store.Get(ctx, collection, id)
	if err != nil {
		s.writeMissing(w, r, err, notFoundForEdit)
		return
	}

	t := models.DocType(body["type"])
	if t == "" {
		t = stored.Type
	}
	form := forms.EditForm(stored)
	form.SelectType(t)
	fill(form, body)
	doc := form.Record()
	if err := forms.CheckUpdate(stored, doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := forms.Validate(doc); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.store.Update(ctx, collection, id, forms.Partial(doc)); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.writeMissing(w, r, err, notFoundForEdit)
			return
		}
		s.writeSaveFailure(w, r, err)
		return
	}

	s.log.Info("document updated", slog.String("id", id))
	writeJSON(w, http.StatusOK, messageResponse{Message: updatedMessage, ID: id})
}

func (s *server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	rs, _ := sessionFrom(r.Context())
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if err := s.store.Delete(ctx, s.collectionFor(rs.identity), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.writeMissing(w, r, err, render.NotFoundNotice)
			return
		}
		s.writeSaveFailure(w, r, err)
		return
	}

	s.log.Info("document deleted", slog.String("id", id))
	writeJSON(w, http.StatusOK, messageResponse{Message: deletedMessage, ID: id})
}
