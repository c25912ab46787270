package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DeafMist/federal-archive/backend/internal/forms"
	"github.com/DeafMist/federal-archive/backend/internal/models"
	"github.com/DeafMist/federal-archive/backend/internal/portal"
	"github.com/DeafMist/federal-archive/backend/internal/query"
	"github.com/DeafMist/federal-archive/backend/internal/render"
	"github.com/DeafMist/federal-archive/backend/internal/session"
)

const storeTimeout = 5 * time.Second

func (s *server) handleView(w http.ResponseWriter, r *http.Request) {
	route := portal.Resolve(chi.URLParam(r, "route"))

	state := portal.AdminState{Mode: session.AdminLoading}
	if rs, ok := sessionFrom(r.Context()); ok {
		state.Mode = rs.ctl.AdminView()
		state.UserID = rs.identity.UID
	}

	writeJSON(w, http.StatusOK, portal.ViewFor(route, state))
}

type searchResponse struct {
	Category query.Category       `json:"category"`
	Panel    string               `json:"panel"`
	Items    []render.SummaryView `json:"items"`
	Notice   string               `json:"notice,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// handleSearch runs a category search. Each panel has at most one search in flight per
// session; a search overtaken by a newer one for the same panel answers 409 and its
// result is dropped. A category only renders into its own results panel.
func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	rs, _ := sessionFrom(r.Context())
	category := query.Category(chi.URLParam(r, "category"))
	if !category.Valid() {
		s.writeError(w, r, fmt.Errorf("search category %q: %w", category, models.ErrNotFound))
		return
	}

	panel := portal.ResultsPanel(category)
	if p := strings.TrimSpace(r.URL.Query().Get("panel")); p != "" && p != panel {
		s.writeError(w, r, &forms.ValidationError{Fields: []forms.FieldError{
			{Field: "panel", Message: fmt.Sprintf("%s results render into %q", category, panel)},
		}})
		return
	}

	seq := rs.ctl.Sequencer()
	ctx, token := seq.Begin(r.Context(), panel)
	defer seq.End(panel, token)

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	docs, err := s.planner.Search(ctx, s.store, s.collectionFor(rs.identity), category, query.ParseFilters(category, r.URL.Query()))
	if !seq.Current(panel, token) {
		s.writeError(w, r, models.ErrSuperseded)
		return
	}

	resp := searchResponse{Category: category, Panel: panel, Items: []render.SummaryView{}}
	if err != nil {
		if statusFor(err) != http.StatusBadGateway {
			s.writeError(w, r, err)
			return
		}
		s.logFailure(r, err)
		resp.Error = "Error loading documents."
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}

	resp.Items = s.render.Summaries(docs)
	if len(resp.Items) == 0 {
		resp.Notice = render.NoResultsNotice
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleDocument(w http.ResponseWriter, r *http.Request) {
	rs, _ := sessionFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	doc, err := s.store.Get(ctx, s.collectionFor(rs.identity), chi.URLParam(r, "id"))
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: render.NotFoundNotice})
			return
		}
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.render.Detail(doc))
}
