package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/brianly1003/fuzzy-explorer/internal/commands"
	"github.com/brianly1003/fuzzy-explorer/internal/domain"
	"github.com/brianly1003/fuzzy-explorer/internal/domain/events"
	"github.com/brianly1003/fuzzy-explorer/internal/search"
	"github.com/gorilla/mux"
)

const maxBodySize = 64 * 1024

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// StatusResponse is returned by GET /api/status.
type StatusResponse struct {
	commands.StatusResult
	Clients       int    `json:"clients"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Version       string `json:"version,omitempty"`
}

// SearchResponse is returned by GET /api/search.
type SearchResponse struct {
	Query   string         `json:"query"`
	Matches []search.Match `json:"matches"`
}

// StreamCommand is a command sent over the event stream.
type StreamCommand struct {
	RequestID string          `json:"request_id"`
	Command   string          `json:"command"`
	Params    json.RawMessage `json:"params,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	res, err := s.opts.Commands.Dispatch(r.Context(), commands.Status, nil)
	if err != nil {
		s.respondCommandError(w, err)
		return
	}

	resp := StatusResponse{
		StatusResult:  res.(commands.StatusResult),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Version:       s.opts.Version,
	}
	if s.opts.Events != nil {
		resp.Clients = s.opts.Events.ClientCount()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	params := commands.Params{
		Force: queryFlag(r, "force"),
		Icons: queryFlag(r, "icons"),
	}
	s.dispatchParams(w, r, commands.Items, params)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit := s.opts.MaxResults
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.respondError(w, http.StatusBadRequest, domain.ErrCodeInvalidPayload, "limit must be a positive integer")
			return
		}
		limit = n
	}

	s.respondJSON(w, http.StatusOK, SearchResponse{
		Query:   q,
		Matches: search.Find(q, s.opts.Index.Items(), limit),
	})
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	res, err := s.opts.Commands.Dispatch(r.Context(), commands.Update, nil)
	if err != nil {
		s.respondCommandError(w, err)
		return
	}
	s.respondJSON(w, http.StatusAccepted, res)
}

func (s *Server) handleListCommands(w http.ResponseWriter, r *http.Request) {
	ids := s.opts.Commands.IDs()
	out := make([]map[string]string, len(ids))
	for i, id := range ids {
		out[i] = map[string]string{"id": id, "summary": s.opts.Commands.Summary(id)}
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, domain.ErrCodeInvalidPayload, "failed to read body")
		return
	}

	res, err := s.opts.Commands.Dispatch(r.Context(), id, body)
	if err != nil {
		s.respondCommandError(w, err)
		return
	}
	if res == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) dispatchParams(w http.ResponseWriter, r *http.Request, id string, params commands.Params) {
	raw, err := json.Marshal(params)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, domain.ErrCodeInternalError, err.Error())
		return
	}
	res, err := s.opts.Commands.Dispatch(r.Context(), id, raw)
	if err != nil {
		s.respondCommandError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) respondCommandError(w http.ResponseWriter, err error) {
	code := domain.ErrorCode(err)
	s.respondError(w, httpStatus(err), code, err.Error())
}

// handleStreamCommand runs a command received over the event stream and
// replies to the sender only.
func (s *Server) handleStreamCommand(clientID string, message []byte) {
	var cmd StreamCommand
	if err := json.Unmarshal(message, &cmd); err != nil || cmd.Command == "" {
		s.logger.Warn("Invalid stream command", "client_id", clientID, "error", err)
		s.opts.Events.SendTo(clientID, events.NewCommandResultEvent(cmd.RequestID, cmd.Command, nil,
			domain.ErrInvalidPayload, domain.ErrCodeInvalidPayload))
		return
	}

	res, err := s.opts.Commands.Dispatch(s.opts.Lifetime, cmd.Command, cmd.Params)
	code := ""
	if err != nil {
		code = domain.ErrorCode(err)
	}
	s.opts.Events.SendTo(clientID, events.NewCommandResultEvent(cmd.RequestID, cmd.Command, res, err, code))
}

func httpStatus(err error) int {
	var actionErr *domain.ActionError
	switch {
	case errors.Is(err, domain.ErrUnknownCommand):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidPayload), errors.Is(err, domain.ErrNoItem):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrBuildInProgress):
		return http.StatusConflict
	case errors.As(err, &actionErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func queryFlag(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
