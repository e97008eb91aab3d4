// Package server exposes the simulation registry over HTTP and drives the
// background round schedulers.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-arena/internal/chat"
	"github.com/rxtech-lab/argo-arena/internal/logger"
	"github.com/rxtech-lab/argo-arena/internal/persistence"
	"github.com/rxtech-lab/argo-arena/internal/simulation"
	"github.com/rxtech-lab/argo-arena/internal/types"
	"github.com/rxtech-lab/argo-arena/pkg/errors"
)

// Server routes simulation operations over REST. The archive is optional;
// when present, committed rounds are archived best effort.
type Server struct {
	manager *simulation.Manager
	archive *persistence.Archive
	logger  *logger.Logger

	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a server for an already-built simulation registry.
// Pass a nil archive to disable snapshot archiving.
func NewServer(manager *simulation.Manager, archive *persistence.Archive, log *logger.Logger) *Server {
	return &Server{
		manager: manager,
		archive: archive,
		logger:  log,
	}
}

// Router builds the REST routing table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/simulations/{id}/state", s.handleGetState).Methods("GET")
	router.HandleFunc("/api/simulations/{id}/advance", s.handleAdvance).Methods("POST")
	router.HandleFunc("/api/simulations/{id}/chat", s.handleSubmitChat).Methods("POST")
	router.HandleFunc("/api/simulations/{id}/chat/reply", s.handleAgentReply).Methods("POST")

	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method_not_allowed", Message: fmt.Sprintf("%s is not allowed on %s", r.Method, r.URL.Path)})
	})

	return router
}

// Start begins listening on the given port and serves until Stop.
func (s *Server) Start(port int) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnknown, "failed to create listener", err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("server listening", zap.String("addr", listener.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server stopped", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the HTTP server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type advanceRequest struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Username string `json:"username"`
	AgentID  string `json:"agentId"`
	Content  string `json:"content"`
}

type chatResponse struct {
	Message types.ChatMessage `json:"message"`
	Chat    types.ChatState   `json:"chat"`
}

type replyRequest struct {
	AgentID string `json:"agentId"`
	Content string `json:"content"`
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	store, err := s.manager.GetSimulation(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, store.Snapshot())
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	store, err := s.manager.GetSimulation(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)

		return
	}

	var req advanceRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err))

			return
		}
	}

	kind, err := simulation.ParseAdvanceKind(req.Type)
	if err != nil {
		s.writeError(w, err)

		return
	}

	snap, err := store.AdvanceRound(r.Context(), kind)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.archiveSnapshot(store.Definition().ID, snap)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSubmitChat(w http.ResponseWriter, r *http.Request) {
	store, err := s.manager.GetSimulation(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)

		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err))

		return
	}

	msg, snap, err := store.SubmitChat(chat.SubmitRequest{
		Username: req.Username,
		AgentID:  req.AgentID,
		Content:  req.Content,
	})
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusCreated, chatResponse{Message: msg, Chat: snap.Chat})
}

func (s *Server) handleAgentReply(w http.ResponseWriter, r *http.Request) {
	store, err := s.manager.GetSimulation(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)

		return
	}

	var req replyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err))

		return
	}

	snap, err := store.RecordAgentReply(req.AgentID, req.Content)
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, snap.Chat)
}

// archiveSnapshot persists a committed round without blocking the response on
// storage failures.
func (s *Server) archiveSnapshot(simulationID string, snap *types.SimulationSnapshot) {
	if s.archive == nil {
		return
	}

	if err := s.archive.Save(simulationID, snap); err != nil {
		s.logger.Warn("failed to archive snapshot",
			zap.String("simulation", simulationID),
			zap.Error(err),
		)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	label := "internal_error"

	switch {
	case errors.IsValidation(err):
		status = http.StatusBadRequest
		label = "validation_failed"
	case errors.IsNotFound(err):
		status = http.StatusNotFound
		label = "not_found"
	}

	writeJSON(w, status, errorBody{Error: label, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body) //nolint:errcheck // headers already sent
}
