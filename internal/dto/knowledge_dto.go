package dto

type SearchKnowledgeRequest struct {
	Query  string `json:"query" validate:"required"`
	Locale string `json:"locale,omitempty"`
	Limit  int    `json:"limit,omitempty" validate:"omitempty,min=1,max=20"`
}

type KnowledgeHit struct {
	Id       string   `json:"id"`
	Locale   string   `json:"locale"`
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Guidance []string `json:"guidance"`
	Score    float32  `json:"score"`
}

type SearchKnowledgeResponse struct {
	Hits []KnowledgeHit `json:"hits"`
}
