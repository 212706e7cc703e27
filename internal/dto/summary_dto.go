package dto

import "github.com/google/uuid"

type GenerateSummaryRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
}

type DailySummaryResponse struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	Title         string    `json:"title"`
	Spotlight     string    `json:"spotlight,omitempty"`
	Summary       string    `json:"summary"`
}

type WeeklySummaryResponse struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	Themes        []string  `json:"themes"`
	Highlights    []string  `json:"highlights"`
	ActionItems   []string  `json:"action_items,omitempty"`
	RiskLevel     string    `json:"risk_level"`
}
