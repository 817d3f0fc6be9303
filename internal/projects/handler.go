package projects

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"

	"github.com/minsuklee/fundscope/pkg/handlers"
	"github.com/minsuklee/fundscope/pkg/pagination"
	"github.com/minsuklee/fundscope/pkg/routes"
)

// Handler provides HTTP endpoints for project operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, pagination config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "projects"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for project endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/projects",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "POST", Pattern: "/analyze", Handler: h.Analyze},
			{Method: "POST", Pattern: "/preview", Handler: h.Preview},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns a paginated list of projects with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single project by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidInput)
		return
	}

	project, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, project)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching projects.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidInput)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Analyze processes a multipart upload containing the announcement file and
// its metadata, runs the pipeline, and upserts the resulting project.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	cmd, err := h.parseAnalyzeForm(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	project, err := h.sys.Analyze(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, project)
}

// Preview runs the pipeline over a multipart upload without persisting the
// result.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	cmd, err := h.parseAnalyzeForm(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	report, err := h.sys.Preview(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}

// Delete removes a project by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidInput)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseAnalyzeForm(w http.ResponseWriter, r *http.Request) (AnalyzeCommand, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) {
			return AnalyzeCommand{}, ErrFileTooLarge
		}
		return AnalyzeCommand{}, ErrInvalidInput
	}

	title := r.FormValue("title")
	if title == "" {
		return AnalyzeCommand{}, ErrInvalidInput
	}

	endDate, err := ParseEndDate(r.FormValue("end_date"))
	if err != nil {
		return AnalyzeCommand{}, ErrInvalidInput
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return AnalyzeCommand{}, ErrInvalidInput
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return AnalyzeCommand{}, ErrInvalidInput
	}

	return AnalyzeCommand{
		Data:      data,
		Filename:  header.Filename,
		Title:     title,
		Agency:    r.FormValue("agency"),
		Budget:    r.FormValue("budget"),
		SourceURL: r.FormValue("source_url"),
		EndDate:   endDate,
	}, nil
}
