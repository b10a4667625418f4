package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/jinbekim/quizquiz/models"
	"github.com/jinbekim/quizquiz/services"

	"github.com/gorilla/mux"
)

const maxLeaderboardLimit = 100

type LeaderboardService interface {
	Top(ctx context.Context, limit int) ([]*models.User, error)
	Post(ctx context.Context, limit int) (string, error)
}

type LeaderboardHandler struct {
	service      LeaderboardService
	defaultLimit int
}

func NewLeaderboardHandler(service LeaderboardService, defaultLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{service: service, defaultLimit: defaultLimit}
}

func (h *LeaderboardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/leaderboard", h.GetLeaderboard).Methods("GET")
	router.HandleFunc("/leaderboard/post", h.PostLeaderboard).Methods("POST")
}

func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := h.limit(r)
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	users, err := h.service.Top(r.Context(), limit)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve leaderboard")
		return
	}
	if users == nil {
		users = []*models.User{}
	}

	h.writeJSONResponse(w, http.StatusOK, users)
}

func (h *LeaderboardHandler) PostLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := h.limit(r)
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	message, err := h.service.Post(r.Context(), limit)
	if err != nil {
		if errors.Is(err, services.ErrNoPlayers) {
			h.writeErrorResponse(w, http.StatusNotFound, err.Error())
			return
		}
		h.writeErrorResponse(w, http.StatusBadGateway, err.Error())
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]string{"message": message})
}

func (h *LeaderboardHandler) limit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return h.defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > maxLeaderboardLimit {
		return 0, errors.New("limit must be between 1 and 100")
	}
	return limit, nil
}

func (h *LeaderboardHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *LeaderboardHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
