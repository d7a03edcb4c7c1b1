package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/aleister1102/sgpatch/internal/common/errorwrapper"
	"github.com/aleister1102/sgpatch/internal/models"
	"github.com/aleister1102/sgpatch/internal/orchestrator"
)

// FileOutcomeResponse is one file of a replace response
type FileOutcomeResponse struct {
	Path        string `json:"path"`
	Edits       int    `json:"edits"`
	BytesBefore int    `json:"bytesBefore"`
	BytesAfter  int    `json:"bytesAfter"`
	Error       string `json:"error,omitempty"`
}

// ReplaceResponse is the body returned by POST /api/replace-bytes
type ReplaceResponse struct {
	RunID     string                `json:"runId"`
	Succeeded int                   `json:"succeeded"`
	Failed    int                   `json:"failed"`
	Files     []FileOutcomeResponse `json:"files"`
}

// CheckResponse is the body returned by GET /api/sg-check
type CheckResponse struct {
	Installed bool   `json:"installed"`
	Version   string `json:"version,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req orchestrator.SearchRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.writeError(w, err)
		return
	}

	files, err := s.service.Search(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	var req models.PatchRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.service.Replace(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := ReplaceResponse{
		RunID:     result.RunID,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Files:     make([]FileOutcomeResponse, 0, len(result.Outcomes)),
	}
	for _, outcome := range result.Outcomes {
		file := FileOutcomeResponse{
			Path:        outcome.Path,
			Edits:       outcome.Edits,
			BytesBefore: outcome.BytesBefore,
			BytesAfter:  outcome.BytesAfter,
		}
		if outcome.Err != nil {
			file.Error = outcome.Err.Error()
		}
		resp.Files = append(resp.Files, file)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	installed, version := s.service.CheckEngine(r.Context())
	writeJSON(w, http.StatusOK, CheckResponse{Installed: installed, Version: version})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	value, found, err := s.service.GetState(r.Context(), r.PathValue("key"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !found {
		value = json.RawMessage("null")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(value)
}

func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, errorwrapper.NewValidationError("body", nil, err.Error()))
		return
	}
	if err := s.service.PutState(r.Context(), r.PathValue("key"), body); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, errorwrapper.NewValidationError("limit", raw, "must be an integer"))
			return
		}
		limit = n
	}

	runs, err := s.service.RecentRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func decodeJSON(body io.Reader, dst any) error {
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return errorwrapper.NewValidationError("body", nil, err.Error())
	}
	return nil
}

// StatusFor maps an error to the HTTP status it is reported with.
func StatusFor(err error) int {
	if errors.Is(err, orchestrator.ErrNoStore) {
		return http.StatusServiceUnavailable
	}
	kind, ok := errorwrapper.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case errorwrapper.KindConfig, errorwrapper.KindParse, errorwrapper.KindEngine,
		errorwrapper.KindValidation, errorwrapper.KindMalformedEdit:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Int("status", status).Msg("Request failed")
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
