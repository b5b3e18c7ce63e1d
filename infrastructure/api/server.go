// Package api is the HTTP JSON transport of the help desk.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"help-desk/auth"
	"help-desk/domain"
	"help-desk/errors"
	"help-desk/observability"
	"help-desk/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 64 << 10

// AskBody is the JSON body of POST /v1/ask.
type AskBody struct {
	Question string              `json:"question"`
	Context  domain.QueryContext `json:"context"`
}

type errorBody struct {
	Error string `json:"error"`
}

type Server struct {
	log        *slog.Logger
	service    services.IHelpDeskService
	tokens     *auth.Tokens
	monitoring *observability.MonitoringManager
	gatherer   prometheus.Gatherer
}

func NewServer(log *slog.Logger, service services.IHelpDeskService, tokens *auth.Tokens,
	monitoring *observability.MonitoringManager, gatherer prometheus.Gatherer) *Server {
	return &Server{
		log:        log,
		service:    service,
		tokens:     tokens,
		monitoring: monitoring,
		gatherer:   gatherer,
	}
}

// Handler routes the endpoints behind the bearer token middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/ask", s.ask)
	mux.HandleFunc("GET /healthz", s.health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return auth.Middleware(s.tokens, mux)
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		s.writeError(w, errors.ErrSessionMissing)
		return
	}

	var body AskBody
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}

	resp, err := s.service.Ask(r.Context(), claims.Session(), services.AskRequest{
		Question: body.Question,
		App:      body.Context.App,
		Page:     body.Context.Page,
	})
	if err != nil {
		s.log.Debug("Question rejected", "caller", claims.UserID, "error", err)
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.monitoring.GetLatest())
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.MapToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("Request failed", "error", err)
		message = "internal error"
	}
	s.writeJSON(w, status, errorBody{Error: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("Response encoding failed", "error", err)
	}
}
