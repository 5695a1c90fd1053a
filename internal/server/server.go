package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ctkit/ctview/internal/api"
	"github.com/ctkit/ctview/internal/logging"
	"github.com/ctkit/ctview/internal/logstore"
)

const (
	defaultPageLimit   = 100
	defaultSecondLimit = 50
	maxUploadBytes     = 64 << 20
)

// Server routes the log query API onto a Store.
type Server struct {
	store *logstore.Store
	mux   *http.ServeMux
}

// New builds a Server and registers its routes.
func New(store *logstore.Store) *Server {
	s := &Server{
		store: store,
		mux:   http.NewServeMux(),
	}
	s.mux.HandleFunc("/api/stats", s.handleStats)
	s.mux.HandleFunc("/api/logs", s.handleLogs)
	s.mux.HandleFunc("/api/search", s.handleSearch)
	s.mux.HandleFunc("/api/seconds", s.handleSeconds)
	s.mux.HandleFunc("/api/errors", s.handleErrors)
	s.mux.HandleFunc("/api/files", s.handleFiles)
	s.mux.HandleFunc("/api/upload", s.handleUpload)
	return s
}

// Handler returns the root handler with request logging attached.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.Debug("%s %s", r.Method, r.URL)
		s.mux.ServeHTTP(w, r)
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	writeJSON(w, s.store.Stats())
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	query := r.URL.Query()
	panel, ok := panelParam(w, query.Get("panel"))
	if !ok {
		return
	}

	second := query.Get("second")
	limit, ok := intParam(w, query, "limit", defaultLimitFor(second))
	if !ok {
		return
	}

	if second != "" {
		lines, err := s.store.Second(panel, second, limit)
		if err != nil {
			serverError(w, err)
			return
		}
		writeJSON(w, api.LogsResponse{Lines: lines})
		return
	}

	offset, ok := intParam(w, query, "offset", 0)
	if !ok {
		return
	}
	lines, hasMore, err := s.store.Page(panel, offset, limit, query.Get("search"))
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, api.LogsResponse{Lines: lines, HasMore: hasMore})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	term := r.URL.Query().Get("q")
	if term == "" {
		http.Error(w, "search term required", http.StatusBadRequest)
		return
	}
	results, err := s.store.SearchAll(term)
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, results)
}

func (s *Server) handleSeconds(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	writeJSON(w, api.SecondsResponse{Seconds: s.store.Seconds()})
}

func (s *Server) handleErrors(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	panel, ok := panelParam(w, r.URL.Query().Get("panel"))
	if !ok {
		return
	}
	positions, err := s.store.Positions(panel)
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, api.ErrorsResponse{Positions: positions})
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	writeJSON(w, api.FilesResponse{Files: s.store.Files()})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	panel, ok := panelParam(w, r.FormValue("panel"))
	if !ok {
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	info, err := s.store.Upload(panel, file)
	if err != nil {
		serverError(w, err)
		return
	}
	logging.Info("upload bound %s to %s (%d bytes)", info.Panel, info.Name, info.Size)
	writeJSON(w, api.UploadResponse{Panel: info.Panel, Name: info.Name})
}

func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// panelParam validates the panel query value, writing the error
// response itself when invalid.
func panelParam(w http.ResponseWriter, value string) (api.Stream, bool) {
	if value == "" {
		http.Error(w, "panel required", http.StatusBadRequest)
		return "", false
	}
	panel := api.Stream(value)
	if !panel.Valid() {
		http.Error(w, fmt.Sprintf("unknown panel %q", value), http.StatusBadRequest)
		return "", false
	}
	return panel, true
}

func intParam(w http.ResponseWriter, query map[string][]string, name string, def int) (int, bool) {
	values := query[name]
	if len(values) == 0 || values[0] == "" {
		return def, true
	}
	n, err := strconv.Atoi(values[0])
	if err != nil || n < 0 {
		http.Error(w, fmt.Sprintf("invalid %s", name), http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

func defaultLimitFor(second string) int {
	if second != "" {
		return defaultSecondLimit
	}
	return defaultPageLimit
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error("encode response: %v", err)
	}
}

func serverError(w http.ResponseWriter, err error) {
	if errors.Is(err, logstore.ErrUnknownPanel) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	logging.Error("request failed: %v", err)
	http.Error(w, "server error", http.StatusInternalServerError)
}
