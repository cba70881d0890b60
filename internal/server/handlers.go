package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/lox/pokerequity/equity"
	"github.com/lox/pokerequity/poker"
)

const maxBodyBytes = 64 << 10

var (
	errBadRequest = errors.New("bad request")
	errIncomplete = errors.New("calculation did not complete")
)

// legacyRequest is the two-player body accepted by POST /calculate-equity.
type legacyRequest struct {
	Player1Hand string `json:"player1Hand"`
	Player2Hand string `json:"player2Hand"`
	Board       string `json:"board,omitempty"`
}

type legacyResponse struct {
	Player1Equity float64 `json:"player1Equity"`
	Player2Equity float64 `json:"player2Equity"`
}

// equityRequest is the body accepted by the /api/v1 endpoints.
type equityRequest struct {
	Hands      []string `json:"hands"`
	Board      string   `json:"board,omitempty"`
	Variant    string   `json:"variant,omitempty"`
	Iterations int      `json:"iterations,omitempty"`
	Seed       int64    `json:"seed,omitempty"`
	Strategy   string   `json:"strategy,omitempty"`
}

func (b equityRequest) toRequest() (equity.Request, error) {
	req, err := equity.ParseRequest(b.Hands, b.Board, b.Variant, b.Iterations)
	if err != nil {
		return equity.Request{}, err
	}
	if req.Strategy, err = equity.ParseStrategy(b.Strategy); err != nil {
		return equity.Request{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	req.Seed = b.Seed
	return req, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("Equity request failed")
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps caller mistakes to 400 and everything else to 500.
func statusFor(err error) int {
	if errors.Is(err, errBadRequest) || poker.IsValidationError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %w", errBadRequest, err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCalculateEquity(w http.ResponseWriter, r *http.Request) {
	var body legacyRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if body.Player1Hand == "" || body.Player2Hand == "" {
		s.writeError(w, fmt.Errorf("%w: player1Hand and player2Hand are required", errBadRequest))
		return
	}

	req, err := equity.ParseRequest([]string{body.Player1Hand, body.Player2Hand}, body.Board, "", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.calculate(r.Context(), req, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if res.Partial {
		s.writeError(w, fmt.Errorf("%w after %d of %d trials", errIncomplete, res.Iterations, res.Planned))
		return
	}

	s.writeJSON(w, http.StatusOK, legacyResponse{
		Player1Equity: res.Players[0].Equity,
		Player2Equity: res.Players[1].Equity,
	})
}

func (s *Server) handleEquity(w http.ResponseWriter, r *http.Request) {
	var body equityRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	req, err := body.toRequest()
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.calculate(r.Context(), req, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

type statsResponse struct {
	UptimeSeconds float64 `json:"uptimeSeconds"`
	CacheEntries  int64   `json:"cacheEntries"`
	CacheHits     int64   `json:"cacheHits"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{UptimeSeconds: s.clock.Since(s.started).Seconds()}
	if s.cache != nil {
		stats, err := s.cache.Stats(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.CacheEntries, resp.CacheHits = stats.Entries, stats.Hits
	}
	s.writeJSON(w, http.StatusOK, resp)
}
