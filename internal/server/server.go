// Package server exposes the gateway webhook and a small ops surface over
// HTTP.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"popbot-backend/internal/config"
	"popbot-backend/internal/engine"
	"popbot-backend/internal/session"
	"popbot-backend/internal/transport"
)

type Server struct {
	router    *chi.Mux
	store     *session.Store
	engine    *engine.Engine
	transport transport.Transport
	cfg       config.Config
}

func New(cfg config.Config, store *session.Store, eng *engine.Engine, tr transport.Transport) *Server {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{router: r, store: store, engine: eng, transport: tr, cfg: cfg}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Post("/webhook/message", s.handleWebhookMessage)
	// Ops surface for the operator panel
	s.router.Get("/api/sessions/{id}", s.handleGetSession)
	s.router.Post("/api/sessions/{id}/release", s.handleReleaseSession)
	s.router.Post("/api/operator/message", s.handleOperatorMessage)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.store.Len()})
}

// handleWebhookMessage accepts one inbound chat event from the gateway.
// The turn runs in its own goroutine: the webhook must answer fast, and
// per-user ordering is enforced by the engine, not the HTTP layer.
func (s *Server) handleWebhookMessage(w http.ResponseWriter, r *http.Request) {
	var msg transport.Inbound
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	go s.engine.HandleInbound(context.Background(), msg)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := s.store.Peek(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// handleReleaseSession is the operator channel's way out of
// HUMAN_REQUESTED: it hands the conversation back to the bot.
func (s *Server) handleReleaseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.store.Peek(id); !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	s.store.Update(id, func(sess *session.Session) { sess.State = session.StateIdle })
	log.Printf("[ops] session %s released back to the bot", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "released"})
}

type operatorMessageRequest struct {
	ClientID string `json:"clientId"`
	Content  string `json:"content"`
}

// handleOperatorMessage relays a human operator's text to a client.
func (s *Server) handleOperatorMessage(w http.ResponseWriter, r *http.Request) {
	var req operatorMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.ClientID) == "" || strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "clientId and content are required")
		return
	}
	if strings.HasSuffix(req.ClientID, "@g.us") {
		log.Printf("[ops] blocked operator message to group %s", req.ClientID)
		writeError(w, http.StatusBadRequest, "sending to groups is not allowed")
		return
	}
	relayID := uuid.NewString()
	if err := s.transport.SendText(r.Context(), req.ClientID, req.Content); err != nil {
		log.Printf("[ops] relay %s to %s failed: %v", relayID, req.ClientID, err)
		writeError(w, http.StatusBadGateway, "failed to deliver message")
		return
	}
	log.Printf("[ops] relay %s delivered to %s", relayID, req.ClientID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent", "relayId": relayID})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}
