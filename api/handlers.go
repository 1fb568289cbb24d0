/*
handlers.go - HTTP API handlers for the activity engine

PURPOSE:
  Exposes the activity engine via REST API. Handles HTTP request/response
  and JSON serialization, delegates everything else to the service.

ENDPOINTS:
  GET  /api/users/{userID}/activity/{year}     Year date->level map
  GET  /api/users/{userID}/heatmap/{year}      Rendered year cells
  GET  /api/users/{userID}/rollups/today       Ensure + return today's rollup
  GET  /api/users/{userID}/rollups/{date}      One rollup
  GET  /api/users/{userID}/completions         List completion logs
  POST /api/users/{userID}/completions/toggle  Toggle a completion

ERROR HANDLING:
  Errors are returned as JSON with status derived from the domain error:
  - 400: Invalid input (validation, malformed dates/years)
  - 401: Missing user identity
  - 404: Missing rollup/log
  - 409: Duplicate completion (only where not normalized away)
  - 503: Transient store failure (caller may re-fetch once)
  - 500: Everything else

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arcloom/activity-engine/activity"
	"github.com/arcloom/activity-engine/heatmap"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *activity.Service
}

// NewHandler creates a handler backed by the given service.
func NewHandler(svc *activity.Service) *Handler {
	return &Handler{Service: svc}
}

// =============================================================================
// ACTIVITY HANDLERS
// =============================================================================

// GetYearActivity returns the date -> intensity map for a year.
// GET /api/users/{userID}/activity/{year}
func (h *Handler) GetYearActivity(w http.ResponseWriter, r *http.Request) {
	userID := activity.UserID(chi.URLParam(r, "userID"))
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	intensities, err := h.Service.YearActivityMap(r.Context(), userID, year)
	if err != nil {
		writeDomainError(w, "Failed to build activity map", err)
		return
	}
	writeJSON(w, http.StatusOK, intensities)
}

// GetYearHeatmap returns rendered heatmap cells for a year.
// GET /api/users/{userID}/heatmap/{year}?week_start=monday
func (h *Handler) GetYearHeatmap(w http.ResponseWriter, r *http.Request) {
	userID := activity.UserID(chi.URLParam(r, "userID"))
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	weekStart, err := activity.ParseWeekStart(r.URL.Query().Get("week_start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week_start", err)
		return
	}

	grid, err := activity.BuildYearGrid(year, weekStart, h.Service.Now())
	if err != nil {
		writeDomainError(w, "Failed to build grid", err)
		return
	}
	intensities, err := h.Service.YearActivityMap(r.Context(), userID, year)
	if err != nil {
		writeDomainError(w, "Failed to build activity map", err)
		return
	}
	writeJSON(w, http.StatusOK, toCellDTOs(heatmap.RenderYear(grid, intensities)))
}

// =============================================================================
// ROLLUP HANDLERS
// =============================================================================

// GetTodayRollup ensures and returns the current day's rollup.
// GET /api/users/{userID}/rollups/today
func (h *Handler) GetTodayRollup(w http.ResponseWriter, r *http.Request) {
	userID := activity.UserID(chi.URLParam(r, "userID"))

	rollup, err := h.Service.TodayRollup(r.Context(), userID)
	if err != nil {
		writeDomainError(w, "Failed to get today's rollup", err)
		return
	}
	writeJSON(w, http.StatusOK, toRollupDTO(rollup))
}

// GetRollup returns one day's rollup.
// GET /api/users/{userID}/rollups/{date}
func (h *Handler) GetRollup(w http.ResponseWriter, r *http.Request) {
	userID := activity.UserID(chi.URLParam(r, "userID"))
	day, err := activity.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	rollup, err := h.Service.RefreshRollup(r.Context(), userID, day)
	if err != nil {
		writeDomainError(w, "Failed to get rollup", err)
		return
	}
	writeJSON(w, http.StatusOK, toRollupDTO(rollup))
}

// =============================================================================
// COMPLETION HANDLERS
// =============================================================================

// ListCompletions lists a user's completion logs.
// GET /api/users/{userID}/completions?kind=habit&from=2024-01-01&to=2024-12-31
func (h *Handler) ListCompletions(w http.ResponseWriter, r *http.Request) {
	userID := activity.UserID(chi.URLParam(r, "userID"))
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Missing user", nil)
		return
	}

	var filter activity.LogFilter
	if kind := r.URL.Query().Get("kind"); kind != "" {
		k := activity.EntityKind(kind)
		if !k.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid kind", activity.ErrInvalidKind)
			return
		}
		filter.Kind = &k
	}
	if from := r.URL.Query().Get("from"); from != "" {
		day, err := activity.ParseDate(from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date", err)
			return
		}
		filter.From = day
	}
	if to := r.URL.Query().Get("to"); to != "" {
		day, err := activity.ParseDate(to)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date", err)
			return
		}
		filter.To = day
	}

	logs, err := h.Service.Store.ListCompletionLogs(r.Context(), userID, filter)
	if err != nil {
		writeDomainError(w, "Failed to list completions", err)
		return
	}
	dtos := make([]CompletionLogDTO, len(logs))
	for i, l := range logs {
		dtos[i] = toLogDTO(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ToggleCompletion flips one completion and returns the new state.
// POST /api/users/{userID}/completions/toggle
func (h *Handler) ToggleCompletion(w http.ResponseWriter, r *http.Request) {
	userID := activity.UserID(chi.URLParam(r, "userID"))

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid toggle request", err)
		return
	}
	day, err := activity.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	result, err := h.Service.ToggleCompletion(r.Context(), userID,
		activity.EntityID(req.EntityID), activity.EntityKind(req.EntityKind), day)
	if err != nil {
		writeDomainError(w, "Failed to toggle completion", err)
		return
	}
	writeJSON(w, http.StatusOK, ToggleResponseDTO{
		Completed: result.Completed,
		Rollup:    toRollupDTO(result.Rollup),
	})
}

// Health is a liveness probe.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, activity.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, activity.ErrInvalidRange), errors.Is(err, activity.ErrInvalidKind):
		return http.StatusBadRequest
	case errors.Is(err, activity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, activity.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, activity.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
