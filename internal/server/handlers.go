package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/safephase/pkg/buildinfo"
	"github.com/matzehuels/safephase/pkg/catalog"
	"github.com/matzehuels/safephase/pkg/errors"
	pkgio "github.com/matzehuels/safephase/pkg/io"
	"github.com/matzehuels/safephase/pkg/phase"
	"github.com/matzehuels/safephase/pkg/pipeline"
	"github.com/matzehuels/safephase/pkg/render"
	"github.com/matzehuels/safephase/pkg/signal"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// StatesResponse is the body of POST /v1/states.
type StatesResponse struct {
	Junction string   `json:"junction,omitempty"`
	States   []string `json:"states"`
}

// CatalogResponse is the body of GET /v1/catalog.
type CatalogResponse struct {
	Entries []catalog.Entry `json:"entries"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handlePhases(w http.ResponseWriter, r *http.Request) {
	out, err := s.enumerate(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if out.Junction.ID != "" {
		_, err := s.catalog.Put(r.Context(), catalog.Entry{
			Junction: out.Junction.ID,
			Type:     out.Junction.Type,
			Result:   out.Result,
			CacheKey: out.CacheKey,
		})
		if err != nil {
			s.logger.Warn("catalog write failed", "junction", out.Junction.ID, "error", err)
		}
	}
	w.Header().Set("X-Cache", cacheStatus(out.CacheHit))
	writeJSON(w, http.StatusOK, out.Result)
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	out, err := s.enumerate(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	states, err := signal.States(out.Result)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Cache", cacheStatus(out.CacheHit))
	writeJSON(w, http.StatusOK, StatesResponse{Junction: out.Junction.ID, States: states})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateRenderFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.readMatrix(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := render.Options{Title: doc.Junction.ID, ShowCompatible: true}
	if raw := r.URL.Query().Get("highlight"); raw != "" {
		var p phase.Phase
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidPhase, err, "highlight"))
			return
		}
		opts.Highlight = p
	}

	dot := render.ToDOT(doc.Matrix, opts)
	if format == pipeline.FormatDOT {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(dot))
		return
	}
	svg, err := render.RenderSVG(r.Context(), dot)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) handleCatalogList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.catalog.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}
	writeJSON(w, http.StatusOK, CatalogResponse{Entries: entries})
}

func (s *Server) handleCatalogGet(w http.ResponseWriter, r *http.Request) {
	e, err := s.catalog.Get(r.Context(), chi.URLParam(r, "junction"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// enumerate decodes the request matrix and runs it through the pipeline.
func (s *Server) enumerate(w http.ResponseWriter, r *http.Request) (*pipeline.Output, error) {
	doc, err := s.readMatrix(w, r)
	if err != nil {
		return nil, err
	}
	opts := pipeline.Options{
		MaxPhases: s.maxPhases,
		Refresh:   r.URL.Query().Get("refresh") == "true",
		Logger:    s.logger.With("request_id", RequestIDFrom(r.Context())),
	}
	if raw := r.URL.Query().Get("max_phases"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "max_phases must be a non-negative integer")
		}
		if limit > 0 && limit < s.maxPhases {
			opts.MaxPhases = limit
		}
	}
	return s.runner.EnumerateMatrix(r.Context(), doc.Junction, doc.Matrix, opts)
}

func (s *Server) readMatrix(w http.ResponseWriter, r *http.Request) (*pkgio.MatrixDocument, error) {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	defer body.Close()
	doc, err := pkgio.ReadMatrix(body)
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return nil, errors.New(errors.ErrCodePayloadTooLarge, "request body exceeds %d bytes", tooLarge.Limit)
	}
	return doc, err
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// statusOf maps error codes to HTTP status codes.
func statusOf(err error) int {
	switch code := errors.GetCode(err); {
	case code == errors.ErrCodeNotFound, code == errors.ErrCodeJunctionNotFound:
		return http.StatusNotFound
	case code == errors.ErrCodeLimitExceeded:
		return http.StatusUnprocessableEntity
	case code == errors.ErrCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case code == errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.IsValidation(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	resp := ErrorResponse{
		Code:    string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err, "request_id", RequestIDFrom(r.Context()))
		resp.Code = string(errors.ErrCodeInternal)
		resp.Message = "internal error"
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
