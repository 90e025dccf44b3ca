package http

import (
	"github.com/randomtoy/faas-go/internal/app"
	"github.com/randomtoy/faas-go/internal/domain"
)

// upstreamUnavailableMsg is the user-facing text for any failure of the
// generation backend.
const upstreamUnavailableMsg = "AI分析服务暂时不可用，请稍后重试。"

type ErrorResponse struct {
	Error string `json:"error"`
}

type TarotQuestionRequest struct {
	Question string        `json:"question"`
	Gender   domain.Gender `json:"gender"`
}

type TarotPickRequest struct {
	Slot int `json:"slot"`
}

type AstrologyBeginRequest struct {
	Name      string        `json:"name"`
	BirthDate string        `json:"birthDate"`
	BirthTime string        `json:"birthTime"`
	Gender    domain.Gender `json:"gender"`
}

type DreamInterpretRequest struct {
	Content string            `json:"content"`
	Style   domain.DreamStyle `json:"style"`
}

type HuangliLookupRequest struct {
	Date string `json:"date"`
}

type HuangliPlanRequest struct {
	Plan string `json:"plan"`
}

type FollowupRequest struct {
	Question string `json:"question"`
}

// ProfileRequest completes the profile-collection form. Skip true means the
// user declined; the form still will not re-trigger.
type ProfileRequest struct {
	Skip    bool                `json:"skip"`
	Profile *domain.UserProfile `json:"profile"`
}

type VIPResponse struct {
	Outcome app.VIPOutcome `json:"outcome"`
}

type SaveResponse struct {
	ID string `json:"id"`
}

type ProfileResponse struct {
	Profile domain.UserProfile `json:"profile"`
	Seen    bool               `json:"seen"`
}

type HistoryResponse struct {
	Records []domain.HistoryRecord `json:"records"`
}
