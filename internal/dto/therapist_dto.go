package dto

import "github.com/google/uuid"

type RecommendTherapistRequest struct {
	Concern string `json:"concern" validate:"required"`
	Locale  string `json:"locale,omitempty"`
	Limit   int    `json:"limit,omitempty" validate:"omitempty,min=1,max=10"`
}

type TherapistRecommendation struct {
	Id              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Title           string    `json:"title"`
	Specialties     []string  `json:"specialties"`
	Languages       []string  `json:"languages"`
	Score           float32   `json:"score"`
	Reason          string    `json:"reason"`
	MatchedKeywords []string  `json:"matched_keywords,omitempty"`
}

type RecommendTherapistResponse struct {
	Recommendations []TherapistRecommendation `json:"recommendations"`
}
