package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/DeafMist/federal-archive/backend/internal/auth"
	"github.com/DeafMist/federal-archive/backend/internal/models"
	"github.com/DeafMist/federal-archive/backend/internal/session"
)

const loggedOutMessage = "Logged out successfully!"

type sessionKey struct{}

// requestSession is the verified session of a request.
type requestSession struct {
	ctl      *session.Controller
	claims   *auth.Claims
	identity auth.Identity
}

func sessionFrom(ctx context.Context) (requestSession, bool) {
	rs, ok := ctx.Value(sessionKey{}).(requestSession)
	return rs, ok
}

func bearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// resolveSession verifies the bearer token and finds the session controller it
// belongs to. A token issued for an identity the session has since left is refused.
func (s *server) resolveSession(r *http.Request) (requestSession, error) {
	token, ok := bearerToken(r)
	if !ok {
		return requestSession{}, fmt.Errorf("missing bearer token: %w", models.ErrUnauthenticated)
	}

	claims, err := s.auth.VerifyToken(r.Context(), token)
	if err != nil {
		return requestSession{}, err
	}

	ctl := s.sessions.Resume(claims.SessionID, claims.Identity())
	id, err := ctl.RequireReady()
	if err != nil {
		return requestSession{}, err
	}
	if id.UID != claims.UserID {
		return requestSession{}, fmt.Errorf("token no longer matches session: %w", models.ErrUnauthenticated)
	}
	return requestSession{ctl: ctl, claims: claims, identity: id}, nil
}

func (s *server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs, err := s.resolveSession(r)
		if err != nil {
			s.log.Warn("session refused",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.Any("err", err),
			)
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, rs)))
	})
}

// optionalSession attaches the session when a valid token is presented and lets the
// request through either way.
func (s *server) optionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := bearerToken(r); ok {
			if rs, err := s.resolveSession(r); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), sessionKey{}, rs))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs, _ := sessionFrom(r.Context())
		if _, err := rs.ctl.RequireAdmin(); err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type sessionResponse struct {
	Token     string            `json:"token,omitempty"`
	SessionID string            `json:"sessionId"`
	State     session.State     `json:"state"`
	Identity  *auth.Identity    `json:"identity,omitempty"`
	AdminView session.AdminView `json:"adminView"`
	Message   string            `json:"message,omitempty"`
}

func describe(ctl *session.Controller) sessionResponse {
	return sessionResponse{
		SessionID: ctl.ID(),
		State:     ctl.State(),
		Identity:  ctl.Identity(),
		AdminView: ctl.AdminView(),
	}
}

// issue describes ctl together with a fresh token for its current identity.
func (s *server) issue(ctl *session.Controller) (sessionResponse, error) {
	resp := describe(ctl)
	if resp.Identity == nil {
		return sessionResponse{}, models.ErrNotReady
	}
	token, _, err := s.auth.IssueToken(ctl.ID(), *resp.Identity)
	if err != nil {
		return sessionResponse{}, err
	}
	resp.Token = token
	return resp, nil
}

func (s *server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctl, err := s.sessions.Create(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.issue(ctl)
	if err != nil {
		s.sessions.Remove(ctl.ID())
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	rs, _ := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, describe(rs.ctl))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	rs, _ := sessionFrom(r.Context())

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := rs.ctl.Login(r.Context(), req.Email, req.Password); err != nil {
		var authErr *auth.Error
		if errors.As(err, &authErr) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: authErr.Error()})
			return
		}
		s.writeError(w, r, err)
		return
	}

	resp, err := s.issue(rs.ctl)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.auth.Revoke(r.Context(), rs.claims); err != nil {
		s.log.Warn("revoke anonymous token", slog.Any("err", err))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	rs, _ := sessionFrom(r.Context())

	if err := s.auth.Revoke(r.Context(), rs.claims); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := rs.ctl.Logout(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.issue(rs.ctl)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp.Message = loggedOutMessage
	writeJSON(w, http.StatusOK, resp)
}
