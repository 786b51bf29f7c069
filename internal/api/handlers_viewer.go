package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docview/internal/surface"
)

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	status, loadErr := s.doc.Status()
	resp := map[string]any{
		"status":       status,
		"page_count":   s.doc.PageCount(),
		"render_width": s.doc.Width(),
	}
	if status == surface.StatusFailed {
		resp["error"] = loadErr
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFindings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"findings": s.views.findings})
}

func (s *Server) handleEvidence(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"evidence": s.views.evidence})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"analysis": s.views.analysis})
}

// handleSelect activates a finding (or evidence) by id. Unknown ids degrade
// to the first configured finding inside the controller; selection never
// fails from the caller's point of view.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "findingID")
	s.ctrl.Select(id)
	writeJSON(w, http.StatusAccepted, s.ctrl.Snapshot())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

// handleViewport re-renders the document at a new width. All page surfaces
// are replaced, so the active highlight is re-probed at the new scale.
func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Width float64 `json:"width"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Width <= 0 {
		jsonError(w, "width must be positive", http.StatusBadRequest)
		return
	}

	if err := s.doc.Render(r.Context(), req.Width); err != nil {
		// Document failed at load time; the viewport change is moot but
		// not an error worth failing the request for.
		s.log.Warn("viewport rerender skipped", "error", err)
		writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
		return
	}

	s.ctrl.Invalidate()
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handlePageFragments(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 1 {
		jsonError(w, "invalid page number", http.StatusBadRequest)
		return
	}

	surf, ok := s.doc.Page(page)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"available": false})
		return
	}

	resp := map[string]any{
		"available": true,
		"fragments": surf.Fragments(),
	}
	if ext, ok := surf.Extent(); ok {
		resp["extent"] = ext
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
