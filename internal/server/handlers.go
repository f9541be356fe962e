package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tentacle-scylla/cqlcomplete/pkg/complete"
	"github.com/tentacle-scylla/cqlcomplete/pkg/history"
	"github.com/tentacle-scylla/cqlcomplete/pkg/hover"
	"github.com/tentacle-scylla/cqlcomplete/pkg/prefs"
	"github.com/tentacle-scylla/cqlcomplete/pkg/types"
)

const maxBody = 64 << 10

// completeRequest is also the hover request body.
type completeRequest struct {
	Text     string `json:"text"`
	Cursor   *int   `json:"cursor,omitempty"` // defaults to the end of Text
	Keyspace string `json:"keyspace,omitempty"`
}

type completeResponse struct {
	complete.Result
	Errors []string `json:"errors,omitempty"`
}

type keywordsResponse struct {
	Statements []string `json:"statements"`
	Keywords   []string `json:"keywords"`
}

type addHistoryRequest struct {
	Query string `json:"query"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cursor, keyspace, err := s.position(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	res := s.cfg.Engine.CompleteText(r.Context(), req.Text, cursor, keyspace)
	s.cfg.Metrics.ObserveCompletion(res, time.Since(start))

	writeJSON(w, http.StatusOK, completeResponse{Result: res, Errors: res.Errors.Strings()})
}

// hover answers 204 when there is nothing to describe at the cursor.
func (s *Server) hover(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cursor, keyspace, err := s.position(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	info := hover.GetHoverInfo(&hover.HoverContext{
		Query:           req.Text,
		Position:        cursor,
		Schema:          s.cfg.Schema,
		DefaultKeyspace: keyspace,
	})
	if info == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// position resolves the cursor and keyspace of a request.
func (s *Server) position(req completeRequest) (int, string, error) {
	cursor := len(req.Text)
	if req.Cursor != nil {
		cursor = *req.Cursor
		if cursor < 0 || cursor > len(req.Text) {
			return 0, "", errors.New("cursor out of range")
		}
	}
	keyspace := req.Keyspace
	if keyspace == "" {
		keyspace = s.cfg.DefaultKeyspace
	}
	return cursor, keyspace, nil
}

func (s *Server) keywords(w http.ResponseWriter, _ *http.Request) {
	kws := types.Keywords()
	resp := keywordsResponse{
		Statements: s.cfg.Engine.Registry().LeadingKeywords(),
		Keywords:   make([]string, len(kws)),
	}
	for i, kw := range kws {
		resp.Keywords[i] = kw.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	h, err := s.cfg.History.Get(chi.URLParam(r, "user"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) addHistory(w http.ResponseWriter, r *http.Request) {
	var req addHistoryRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, errors.New("query is required"))
		return
	}

	entry, err := s.cfg.History.Add(chi.URLParam(r, "user"), req.Query)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) getPrefs(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	if err := history.ValidateUser(user); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.Prefs.Get(user))
}

func (s *Server) putPrefs(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	if err := history.ValidateUser(user); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var p prefs.UserPreferences
	if err := decode(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.cfg.Prefs.Set(user, p)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	if !s.cfg.Metrics.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, history.ErrInvalidUser) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
