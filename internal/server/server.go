package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"cv-rag/internal/models"
)

// QueryProcessor answers one question about the corpus.
type QueryProcessor interface {
	ProcessQuery(ctx context.Context, query string) (*models.QueryResult, error)
}

// Server exposes the chat API consumed by the UI.
type Server struct {
	rag  QueryProcessor
	addr string
}

func New(rag QueryProcessor, addr string) *Server {
	return &Server{rag: rag, addr: addr}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", s.handleChat)
	return mux
}

func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.addr).Msg("Starting chat API")
	return http.ListenAndServe(s.addr, s.Routes())
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Answer    string            `json:"answer"`
	Citations []models.Citation `json:"citations"`
	Timestamp string            `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Chat API is running"})
	case http.MethodPost:
		s.handleQuery(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	}
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required and must be a string"})
		return
	}

	result, err := s.rag.ProcessQuery(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, models.ErrEmptyQuery) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required and must be a string"})
			return
		}
		log.Error().Err(err).Msg("Query failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	log.Debug().Int("citations", len(result.Citations)).Msg("Query answered")
	writeJSON(w, http.StatusOK, chatResponse{
		Answer:    result.Answer,
		Citations: result.Citations,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
