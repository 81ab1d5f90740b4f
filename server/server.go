// Package server exposes the pipeline over HTTP: upload a dataset to get a
// session id, then ask questions against that session.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"github.com/rs/cors"

	"github.com/spektr-org/askdata/catalog"
	"github.com/spektr-org/askdata/config"
	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/engine"
	"github.com/spektr-org/askdata/pipeline"
)

// Server wires HTTP handlers to a pipeline and a session store.
type Server struct {
	pipeline *pipeline.Pipeline
	sessions *Sessions
	cfg      config.Config
}

// New creates a Server. cfg supplies CORS origins, upload limits and the
// optional S3 and Postgres sources.
func New(p *pipeline.Pipeline, cfg config.Config) *Server {
	return &Server{
		pipeline: p,
		sessions: NewSessions(),
		cfg:      cfg,
	}
}

// Sessions exposes the store, mainly for preloading datasets.
func (s *Server) Sessions() *Sessions { return s.sessions }

// Handler returns the routed handler with CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /operations", s.handleOperations)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("POST /upload_csv", s.handleUpload)
	mux.HandleFunc("POST /import", s.handleImport)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})
	return LoggingMiddleware(c.Handler(mux))
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the AskData API. POST a dataset to /upload, then questions to /analyze.",
	})
}

type operationInfo struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	TriggerWords []string       `json:"trigger_words"`
	Parameters   catalog.Schema `json:"parameters"`
}

func (s *Server) handleOperations(w http.ResponseWriter, _ *http.Request) {
	ops := s.pipeline.Registry().Operations()
	out := make([]operationInfo, 0, len(ops))
	for _, op := range ops {
		out = append(out, operationInfo{
			Name:         op.Name(),
			Description:  op.Description(),
			TriggerWords: op.TriggerWords(),
			Parameters:   op.Schema(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type uploadResponse struct {
	Message   string   `json:"message"`
	SessionID string   `json:"session_id"`
	Columns   []string `json:"columns"`
	Shape     [2]int   `json:"shape"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes())

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Missing upload field 'file': %v", err))
		return
	}
	defer file.Close()

	frame, err := dataset.Load(header.Filename, file)
	if err != nil {
		if errors.Is(err, dataset.ErrUnsupportedFormat) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid file type '%s'. Please upload a .csv, .xlsx or .parquet file.", filepath.Ext(header.Filename)))
			return
		}
		log.Printf("❌ AskData API: error processing %s: %v", header.Filename, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error processing file: %v", err))
		return
	}

	s.respondSession(w, frame, fmt.Sprintf("File '%s' uploaded successfully.", header.Filename))
}

type importRequest struct {
	S3URI string `json:"s3_uri"`
	Query string `json:"query"`
}

// handleImport loads a dataset from the configured S3 store or Postgres.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	var (
		frame  *dataset.Frame
		err    error
		source string
	)
	switch {
	case req.S3URI != "":
		if s.cfg.S3.Endpoint == "" {
			writeError(w, http.StatusNotImplemented, "S3 import is not configured.")
			return
		}
		bucket, key, perr := dataset.ParseS3URI(req.S3URI)
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		source = req.S3URI
		frame, err = dataset.LoadS3(r.Context(), s.cfg.S3.Dataset(), bucket, key)
	case req.Query != "":
		if s.cfg.Postgres.DSN == "" {
			writeError(w, http.StatusNotImplemented, "Postgres import is not configured.")
			return
		}
		source = "postgres query"
		frame, err = dataset.LoadPostgres(r.Context(), s.cfg.Postgres.DSN, req.Query)
	default:
		writeError(w, http.StatusBadRequest, "Provide either 's3_uri' or 'query'.")
		return
	}
	if err != nil {
		log.Printf("❌ AskData API: import from %s failed: %v", source, err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("Error importing dataset: %v", err))
		return
	}

	s.respondSession(w, frame, fmt.Sprintf("Imported %s successfully.", source))
}

func (s *Server) respondSession(w http.ResponseWriter, frame *dataset.Frame, message string) {
	id := s.sessions.Put(frame)
	rows, cols := frame.Shape()
	log.Printf("📂 AskData API: session %s (%d rows × %d columns)", id, rows, cols)

	writeJSON(w, http.StatusOK, uploadResponse{
		Message:   message,
		SessionID: id,
		Columns:   frame.Columns(),
		Shape:     [2]int{rows, cols},
	})
}

type analyzeRequest struct {
	SessionID string         `json:"session_id"`
	Command   string         `json:"command"`
	Intent    *engine.Intent `json:"intent,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	frame, ok := s.sessions.Get(req.SessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "Session ID not found. Please upload a file first.")
		return
	}

	var res *engine.Result
	switch {
	case req.Intent != nil:
		res = s.pipeline.RunIntent(r.Context(), *req.Intent, frame)
	case req.Command != "":
		res = s.pipeline.Run(r.Context(), req.Command, frame)
	default:
		writeError(w, http.StatusBadRequest, "Provide either 'command' or 'intent'.")
		return
	}

	if res.Type == engine.ResultError {
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: res.Message, ErrorKind: res.ErrorKind})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ============================================================================
// HELPERS
// ============================================================================

type errorBody struct {
	Detail    string           `json:"detail"`
	ErrorKind engine.ErrorKind `json:"error_kind,omitempty"`
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️ AskData API: failed to write response: %v", err)
	}
}
