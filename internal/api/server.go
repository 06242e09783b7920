package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/streed/mod-notes/internal/config"
	"github.com/streed/mod-notes/internal/constants"
	interrors "github.com/streed/mod-notes/internal/errors"
	"github.com/streed/mod-notes/internal/logger"
	"github.com/streed/mod-notes/internal/models"
	"github.com/streed/mod-notes/internal/search"
	"github.com/streed/mod-notes/internal/services"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type APIServer struct {
	cfg      *config.Config
	db       Pinger
	services *services.Services
	server   *http.Server
}

type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

type CreateNoteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

type ListNotesResponse struct {
	Data       []*models.Note `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

func NewAPIServer(cfg *config.Config, db Pinger, svc *services.Services) *APIServer {
	return &APIServer{
		cfg:      cfg,
		db:       db,
		services: svc,
	}
}

// Handler builds the routed, CORS-wrapped handler served by Start
func (s *APIServer) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	api := router.PathPrefix("/api/v1").Subrouter()

	// Literal paths are registered before the {id} route
	api.HandleFunc("/notes", s.handleListNotes).Methods("GET")
	api.HandleFunc("/notes", s.handleCreateNote).Methods("POST")
	api.HandleFunc("/notes/search", s.handleSearchNotes).Methods("GET")
	api.HandleFunc("/notes/vector-search", s.handleVectorSearch).Methods("GET")
	api.HandleFunc("/notes/{id:[0-9]+}", s.handleGetNote).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, "Route not found")
	})
	router.NotFoundHandler = notFound
	api.NotFoundHandler = notFound

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "X-Search-Strategy"},
		AllowCredentials: false,
		MaxAge:           86400, // 24 hours
	})

	return c.Handler(router)
}

func (s *APIServer) Start(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Starting HTTP API server on %s", addr)
	return s.server.ListenAndServe()
}

func (s *APIServer) Stop() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger.LogRequest(r.Method, r.URL.Path, r.RemoteAddr)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.LogResponse(r.Method, r.URL.Path, rec.status, time.Since(start).String())
	})
}

func (s *APIServer) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response: %v", err)
	}
}

func (s *APIServer) writeError(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSON(w, statusCode, ErrorResponse{
		StatusCode: statusCode,
		Error:      http.StatusText(statusCode),
		Message:    message,
	})
}

// writeFailure maps a service error onto a status code. Server-side failures
// are logged and reported with the generic message.
func (s *APIServer) writeFailure(w http.ResponseWriter, err error, generic string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("%s: %v", generic, err)
		s.writeError(w, status, generic)
		return
	}
	s.writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, interrors.ErrNoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, interrors.ErrEmptyTitle),
		errors.Is(err, interrors.ErrEmptyContent),
		errors.Is(err, interrors.ErrTitleTooLong),
		errors.Is(err, interrors.ErrBodyTooLong),
		errors.Is(err, interrors.ErrInvalidPage),
		errors.Is(err, interrors.ErrInvalidLimit),
		errors.Is(err, interrors.ErrInvalidNoteID),
		errors.Is(err, interrors.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, interrors.ErrEmbedderUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// queryInt reads an integer query parameter, falling back to def when absent
// and rejecting values outside [lo, hi].
func queryInt(r *http.Request, name string, def, lo, hi int, sentinel error) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", sentinel, name)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%w: %s must be between %d and %d", sentinel, name, lo, hi)
	}
	return v, nil
}

func queryText(r *http.Request) (string, error) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		return "", fmt.Errorf("%w: q is required", interrors.ErrEmptyQuery)
	}
	return q, nil
}

// Handlers

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":             "ok",
		"timestamp":          time.Now().Format(time.RFC3339),
		"embedding_provider": s.cfg.EmbeddingProvider,
	}

	if err := s.db.Ping(r.Context()); err != nil {
		health["status"] = "unhealthy"
		health["database_error"] = err.Error()
		s.writeJSON(w, http.StatusServiceUnavailable, health)
		return
	}

	s.writeJSON(w, http.StatusOK, health)
}

func (s *APIServer) handleListNotes(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", constants.DefaultPage, 1, math.MaxInt, interrors.ErrInvalidPage)
	if err != nil {
		s.writeFailure(w, err, "Failed to retrieve notes")
		return
	}
	limit, err := queryInt(r, "limit", constants.DefaultListLimit, 1, constants.MaxLimit, interrors.ErrInvalidLimit)
	if err != nil {
		s.writeFailure(w, err, "Failed to retrieve notes")
		return
	}

	result, err := s.services.Search.List(r.Context(), page, limit)
	if err != nil {
		s.writeFailure(w, err, "Failed to retrieve notes")
		return
	}

	s.writeJSON(w, http.StatusOK, ListNotesResponse{
		Data: result.Items,
		Pagination: Pagination{
			Total: result.Total,
			Page:  result.Page,
			Limit: result.Limit,
			Pages: result.Pages,
		},
	})
}

func (s *APIServer) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		s.writeFailure(w, fmt.Errorf("%w: %v", interrors.ErrInvalidNoteID, err), "Failed to retrieve note")
		return
	}

	note, err := s.services.Notes.GetByID(r.Context(), id)
	if errors.Is(err, interrors.ErrNoteNotFound) {
		s.writeError(w, http.StatusNotFound, "Note not found")
		return
	}
	if err != nil {
		s.writeFailure(w, err, "Failed to retrieve note")
		return
	}

	s.writeJSON(w, http.StatusOK, note)
}

func (s *APIServer) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	note, err := s.services.Notes.Create(r.Context(), req.Title, req.Body)
	if err != nil {
		s.writeFailure(w, err, "Failed to create note")
		return
	}

	s.writeJSON(w, http.StatusCreated, note)
}

func (s *APIServer) handleSearchNotes(w http.ResponseWriter, r *http.Request) {
	q, err := queryText(r)
	if err != nil {
		s.writeFailure(w, err, "Failed to search notes")
		return
	}

	result, err := s.services.Search.SearchNotes(r.Context(), q)
	if err != nil {
		s.writeFailure(w, err, "Failed to search notes")
		return
	}

	w.Header().Set("X-Search-Strategy", result.Strategy.String())
	s.writeJSON(w, http.StatusOK, result.Notes)
}

func (s *APIServer) handleVectorSearch(w http.ResponseWriter, r *http.Request) {
	q, err := queryText(r)
	if err != nil {
		s.writeFailure(w, err, "Failed to perform vector search")
		return
	}
	limit, err := queryInt(r, "limit", constants.DefaultSearchLimit, 1, constants.MaxLimit, interrors.ErrInvalidLimit)
	if err != nil {
		s.writeFailure(w, err, "Failed to perform vector search")
		return
	}

	results, err := s.services.Search.VectorSearch(r.Context(), q, limit)
	if err != nil {
		s.writeFailure(w, err, "Failed to perform vector search")
		return
	}
	if results == nil {
		results = []*search.ScoredNote{}
	}

	s.writeJSON(w, http.StatusOK, results)
}
