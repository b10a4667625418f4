package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/jinbekim/quizquiz/models"
	"github.com/jinbekim/quizquiz/services/quiz"
	"github.com/jinbekim/quizquiz/services/session"

	"github.com/gorilla/mux"
)

type SessionService interface {
	Start(ctx context.Context, category models.Category, difficulty models.Difficulty) (*models.QuizSession, *models.Quiz, error)
	Grade(ctx context.Context, sessionID int) (*models.GradeResult, error)
	GradeAllActive(ctx context.Context) (*session.GradeSummary, error)
	RecordResponse(ctx context.Context, sessionID int, userID, username, answer string, responseTime *float64) (*models.UserResponse, error)
	ActiveSessions(ctx context.Context) ([]*models.QuizSession, error)
}

type StartQuizRequest struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

type StartQuizResponse struct {
	Session *models.QuizSession `json:"session"`
	Quiz    *models.Quiz        `json:"quiz"`
}

type ResponseRequest struct {
	UserID       string   `json:"user_id"`
	Username     string   `json:"username"`
	Answer       string   `json:"answer"`
	ResponseTime *float64 `json:"response_time,omitempty"`
}

type QuizHandler struct {
	service SessionService
}

func NewQuizHandler(service SessionService) *QuizHandler {
	return &QuizHandler{service: service}
}

func (h *QuizHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/quiz/start", h.StartQuiz).Methods("POST")
	router.HandleFunc("/quiz/grade", h.GradeAll).Methods("POST")
	router.HandleFunc("/sessions/active", h.ActiveSessions).Methods("GET")
	router.HandleFunc("/sessions/{id:[0-9]+}/grade", h.GradeSession).Methods("POST")
	router.HandleFunc("/sessions/{id:[0-9]+}/responses", h.RecordResponse).Methods("POST")
}

func (h *QuizHandler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received quiz start request")

	var req StartQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	var category models.Category
	if req.Category != "" {
		c, err := models.ParseCategory(req.Category)
		if err != nil {
			h.writeErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		category = c
	}

	var difficulty models.Difficulty
	if req.Difficulty != "" {
		d, err := models.ParseDifficulty(req.Difficulty)
		if err != nil {
			h.writeErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		difficulty = d
	}

	s, q, err := h.service.Start(r.Context(), category, difficulty)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, StartQuizResponse{Session: s, Quiz: q})
}

func (h *QuizHandler) GradeAll(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GradeAllActive(r.Context())
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to grade sessions")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, summary)
}

func (h *QuizHandler) ActiveSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.ActiveSessions(r.Context())
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve sessions")
		return
	}
	if sessions == nil {
		sessions = []*models.QuizSession{}
	}

	h.writeJSONResponse(w, http.StatusOK, sessions)
}

func (h *QuizHandler) GradeSession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	result, err := h.service.Grade(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, result)
}

func (h *QuizHandler) RecordResponse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	var req ResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if req.UserID == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	response, err := h.service.RecordResponse(r.Context(), id, req.UserID, req.Username, req.Answer, req.ResponseTime)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, response)
}

func (h *QuizHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidAnswer), errors.Is(err, quiz.ErrUnsupportedCategory):
		h.writeErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrSessionNotFound):
		h.writeErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrChannelBusy), errors.Is(err, session.ErrSessionNotActive), errors.Is(err, session.ErrAlreadyResponded):
		h.writeErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, quiz.ErrGenerationFailed):
		h.writeErrorResponse(w, http.StatusBadGateway, err.Error())
	default:
		log.Printf("[ERROR] Request failed: %v", err)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *QuizHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *QuizHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
