package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/service"
)

type handlers struct {
	logger *slog.Logger

	game      service.GameService
	source    eventSource
	heartbeat time.Duration
}

type playRequest struct {
	Cell *int `json:"cell"`
}

type jumpRequest struct {
	Move *int `json:"move"`
}

type playResponse struct {
	Game    *entity.GameView `json:"game"`
	Applied bool             `json:"applied"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *handlers) create(w http.ResponseWriter, r *http.Request) {
	view, err := that.game.CreateSession(r.Context())
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, view)
}

func (that *handlers) get(w http.ResponseWriter, r *http.Request) {
	view, err := that.game.GetState(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, view)
}

func (that *handlers) end(w http.ResponseWriter, r *http.Request) {
	if err := that.game.EndSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) play(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cell == nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cell is required"})
		return
	}

	view, applied, err := that.game.Play(r.Context(), chi.URLParam(r, "id"), *req.Cell)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, playResponse{Game: view, Applied: applied})
}

func (that *handlers) jump(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Move == nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "move is required"})
		return
	}

	view, err := that.game.JumpTo(r.Context(), chi.URLParam(r, "id"), *req.Move)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, view)
}

func (that *handlers) restart(w http.ResponseWriter, r *http.Request) {
	view, err := that.game.Restart(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, view)
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

// writeError - maps domain errors to HTTP status codes.
func (that *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidCell):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrOutOfRange):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "path", r.URL.Path, "error", err)
		that.writeJSON(w, status, errorResponse{Error: "Internal Server Error"})
		return
	}

	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}
