package models

import (
	"fmt"
	"time"
)

type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	// SessionGrading is reserved; grading moves a session straight from
	// active to completed.
	SessionGrading   SessionStatus = "grading"
	SessionCompleted SessionStatus = "completed"
)

func ParseSessionStatus(s string) (SessionStatus, error) {
	switch SessionStatus(s) {
	case SessionActive, SessionGrading, SessionCompleted:
		return SessionStatus(s), nil
	}
	return "", fmt.Errorf("unknown session status %q", s)
}

type QuizSession struct {
	ID        int           `json:"id" db:"id"`
	QuizID    int           `json:"quiz_id" db:"quiz_id"`
	ChannelID string        `json:"channel_id" db:"channel_id"`
	PostID    *string       `json:"post_id,omitempty" db:"post_id"`
	Status    SessionStatus `json:"status" db:"status"`
	StartedAt time.Time     `json:"started_at" db:"started_at"`
	EndedAt   *time.Time    `json:"ended_at,omitempty" db:"ended_at"`
}

func (s *QuizSession) IsActive() bool {
	return s.Status == SessionActive
}

type UserResponse struct {
	ID           int       `json:"id" db:"id"`
	SessionID    int       `json:"session_id" db:"session_id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Answer       string    `json:"answer" db:"answer"`
	IsCorrect    bool      `json:"is_correct" db:"is_correct"`
	ResponseTime *float64  `json:"response_time,omitempty" db:"response_time"`
	PointsEarned int       `json:"points_earned" db:"points_earned"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// NewUserResponse scores an answer against the quiz.
func NewUserResponse(quiz *Quiz, sessionID int, userID, answer string, responseTime *float64) *UserResponse {
	r := &UserResponse{
		SessionID:    sessionID,
		UserID:       userID,
		Answer:       answer,
		IsCorrect:    quiz.IsCorrect(answer),
		ResponseTime: responseTime,
	}
	if r.IsCorrect {
		r.PointsEarned = quiz.Points()
	}
	return r
}

type GradeResult struct {
	Session        *QuizSession    `json:"session"`
	Quiz           *Quiz           `json:"quiz"`
	Responses      []*UserResponse `json:"responses"`
	CorrectUserIDs []string        `json:"correct_user_ids"`
	Accuracy       float64         `json:"accuracy"`
}

func NewGradeResult(session *QuizSession, quiz *Quiz, responses []*UserResponse) *GradeResult {
	result := &GradeResult{
		Session:        session,
		Quiz:           quiz,
		Responses:      responses,
		CorrectUserIDs: []string{},
	}
	for _, r := range responses {
		if r.IsCorrect {
			result.CorrectUserIDs = append(result.CorrectUserIDs, r.UserID)
		}
	}
	if len(responses) > 0 {
		result.Accuracy = float64(len(result.CorrectUserIDs)) / float64(len(responses)) * 100
	}
	return result
}

// Participations converts graded responses into per-user score updates.
func (g *GradeResult) Participations() []Participation {
	participations := make([]Participation, 0, len(g.Responses))
	for _, r := range g.Responses {
		participations = append(participations, Participation{
			UserID:       r.UserID,
			PointsEarned: r.PointsEarned,
			Correct:      r.IsCorrect,
		})
	}
	return participations
}
