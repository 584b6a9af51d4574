// Package handler is the HTTP edge of the API. Handlers decode
// requests, call the service layer, and encode responses; all business
// rules live below them.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/dev-directory/internal/apperror"
	"github.com/sakif/dev-directory/internal/auth"
	"github.com/sakif/dev-directory/internal/query"
	"github.com/sakif/dev-directory/internal/service"
)

// DeveloperHandler serves the /api/developers routes.
type DeveloperHandler struct {
	directory *service.DirectoryService
	logger    *slog.Logger
}

func NewDeveloperHandler(directory *service.DirectoryService, logger *slog.Logger) *DeveloperHandler {
	return &DeveloperHandler{
		directory: directory,
		logger:    logger,
	}
}

// developerRequest is the JSON body for create and update. Pointer
// fields distinguish "absent" from "zero value" so updates can be
// partial: a field left out of the body is left unchanged.
type developerRequest struct {
	Name        *string   `json:"name"`
	Role        *string   `json:"role"`
	TechStack   *[]string `json:"techStack"`
	Experience  *int      `json:"experience"`
	About       *string   `json:"about"`
	JoiningDate *string   `json:"joiningDate"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// HandleList returns one filtered, sorted page of the directory.
//
// GET /api/developers?role=Backend&tech=react&search=ar&sort=experience_desc&page=2&pageSize=9
//
// All parameters are optional. Unknown sort keys and non-positive or
// non-numeric page values are rejected rather than silently corrected.
func (h *DeveloperHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.directory.List(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func parseListParams(r *http.Request) (query.Params, error) {
	q := r.URL.Query()

	params := query.Params{
		Search:   q.Get("search"),
		Role:     q.Get("role"),
		Tech:     q.Get("tech"),
		Sort:     q.Get("sort"),
		Page:     1,
		PageSize: query.DefaultPageSize,
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return query.Params{}, apperror.InvalidParameter("page", "page must be an integer")
		}
		params.Page = page
	}
	if raw := q.Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return query.Params{}, apperror.InvalidParameter("pageSize", "pageSize must be an integer")
		}
		params.PageSize = size
	}

	return params, nil
}

// HandleGet returns a single developer.
//
// GET /api/developers/{id}
func (h *DeveloperHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	dev, err := h.directory.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dev)
}

// HandleCreate adds a developer, owned by the authenticated user.
//
// POST /api/developers
func (h *DeveloperHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("authentication required"))
		return
	}

	var req developerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "request body must be valid JSON"))
		return
	}

	in := service.CreateInput{
		Name:        deref(req.Name),
		Role:        deref(req.Role),
		TechStack:   deref(req.TechStack),
		Experience:  deref(req.Experience),
		About:       deref(req.About),
		JoiningDate: deref(req.JoiningDate),
	}

	dev, err := h.directory.Create(r.Context(), in, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dev)
}

// HandleUpdate applies a partial update.
//
// PUT /api/developers/{id}
//
// Only fields present in the body change; the merged record is
// validated as a whole before anything is written.
func (h *DeveloperHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req developerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "request body must be valid JSON"))
		return
	}

	in := service.UpdateInput{
		Name:        req.Name,
		Role:        req.Role,
		TechStack:   req.TechStack,
		Experience:  req.Experience,
		About:       req.About,
		JoiningDate: req.JoiningDate,
	}

	dev, err := h.directory.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dev)
}

// HandleDelete removes a developer.
//
// DELETE /api/developers/{id}
func (h *DeveloperHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.directory.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
