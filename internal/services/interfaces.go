package services

import (
	"context"

	"github.com/talentscout/talentscout-api/internal/models"
)

// ConversationServiceInterface defines the interface for conversation operations
type ConversationServiceInterface interface {
	StartConversation(ctx context.Context) (*models.StartChatResponse, error)
	HandleMessage(ctx context.Context, conversationID, text string) (*models.ChatMessageResponse, error)
	GetState(ctx context.Context, conversationID string) (*models.ChatStateResponse, error)
}

// VerificationServiceInterface defines the email ownership verification flow
type VerificationServiceInterface interface {
	IssueCode(ctx context.Context, s *models.Session) error
	CheckCode(s *models.Session, input string) bool
}

// InterviewServiceInterface defines interview setup and answer collection
type InterviewServiceInterface interface {
	Start(ctx context.Context, s *models.Session) error
	RecordAnswer(s *models.Session, answer string)
}

// ScoringServiceInterface defines interview evaluation and the final decision
type ScoringServiceInterface interface {
	ScoreInterview(ctx context.Context, s *models.Session) (int, []string)
	DecideAndNotify(ctx context.Context, s *models.Session, score int) string
}

// NotificationSender delivers one email to a candidate
type NotificationSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// CandidateArchiver persists a finished screening outcome
type CandidateArchiver interface {
	Archive(ctx context.Context, record *models.CandidateRecord) error
}

// TranscriptArchiver stores a finished interview transcript document
type TranscriptArchiver interface {
	UploadTranscript(ctx context.Context, conversationID string, transcriptJSON []byte) (string, error)
}

// Ensure services implement their interfaces
var _ ConversationServiceInterface = (*ConversationService)(nil)
var _ VerificationServiceInterface = (*VerificationService)(nil)
var _ InterviewServiceInterface = (*InterviewService)(nil)
var _ ScoringServiceInterface = (*ScoringService)(nil)
