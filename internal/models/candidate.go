package models

import "time"

// Screening decisions
const (
	DecisionAdvance = "advance"
	DecisionReject  = "reject"
)

// CandidateRecord is the archived outcome of a finished screening, persisted
// for the hiring team once a session completes.
type CandidateRecord struct {
	ConversationID  string    `json:"conversation_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	ExperienceYears int       `json:"experience_years"`
	Position        string    `json:"position"`
	TechStack       string    `json:"tech_stack"`
	Score           int       `json:"score"`
	Decision        string    `json:"decision"`
	FinishedAt      time.Time `json:"finished_at"`
}

// Transcript is the JSON document archived to object storage when an
// interview finishes.
type Transcript struct {
	ConversationID string    `json:"conversation_id"`
	Position       string    `json:"position"`
	TechStack      string    `json:"tech_stack"`
	Questions      []string  `json:"questions"`
	Answers        []string  `json:"answers"`
	Score          int       `json:"score"`
	Decision       string    `json:"decision"`
	FinishedAt     time.Time `json:"finished_at"`
}
