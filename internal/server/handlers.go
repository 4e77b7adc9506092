package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/roach88/affectgrid/internal/pipeline"
)

type errorResponse struct {
	Error        string `json:"error"`
	Message      string `json:"message,omitempty"`
	CoordinateID int64  `json:"coordinate_id,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", fmt.Sprintf("%s, %s", http.MethodGet, http.MethodHead))
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	token, err := s.sessionToken(r)
	if err != nil {
		s.logger.Error("session token generation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "session token unavailable"})
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.settings.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, s.pageData); err != nil {
		s.logger.Error("render grid surface failed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
	}
}

// sessionToken reuses the caller's cookie or issues a new token.
func (s *Server) sessionToken(r *http.Request) (string, error) {
	if c, err := r.Cookie(s.settings.CookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return s.tokens.NewToken()
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	if !s.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limited"})
		return
	}

	reader := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "payload exceeds limit"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unable to read body"})
		return
	}

	// The session token is never verified; it is only logged.
	session := ""
	if c, err := r.Cookie(s.settings.CookieName); err == nil {
		session = c.Value
	}
	s.logger.Debug("submission received", "session", session, "bytes", len(body))

	res, err := s.ingester.Ingest(r.Context(), body)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Warn("submission failed", "status", status, "session", session, "error", err)
		} else {
			s.logger.Debug("submission rejected", "status", status, "session", session, "error", err)
		}
		writeJSON(w, status, errorBody(err))
		return
	}

	s.logger.Debug("submission stored",
		"id", res.Coordinate.ID,
		"valence", res.Valence,
		"logged", res.Logged,
		"session", session,
	)
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch pipeline.CodeOf(err) {
	case pipeline.ErrCodeMalformedInput, pipeline.ErrCodeOutOfRange:
		return http.StatusBadRequest
	case pipeline.ErrCodeStorageUnavailable, pipeline.ErrCodeStopped:
		return http.StatusServiceUnavailable
	case pipeline.ErrCodeLogAppendFailure:
		return http.StatusInternalServerError
	}
	// Request context ended while queued.
	return http.StatusServiceUnavailable
}

func errorBody(err error) errorResponse {
	var ie *pipeline.IngestError
	if errors.As(err, &ie) {
		return errorResponse{Error: string(ie.Code), Message: ie.Message, CoordinateID: ie.CoordinateID}
	}
	return errorResponse{Error: "unavailable", Message: err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
