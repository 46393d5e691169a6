package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/talentscout/talentscout-api/internal/inference"
	"github.com/talentscout/talentscout-api/internal/models"
	"github.com/talentscout/talentscout-api/pkg/errors"
	"github.com/talentscout/talentscout-api/pkg/logger"
	"github.com/talentscout/talentscout-api/pkg/metrics"
)

// InterviewService generates the technical questions and collects answers
type InterviewService struct {
	gateway inference.Gateway
}

// NewInterviewService creates a new interview service instance
func NewInterviewService(gateway inference.Gateway) *InterviewService {
	return &InterviewService{gateway: gateway}
}

// Start generates the question set for a fully collected profile and attaches
// the interview sub-state to the session. On failure the session is left
// untouched so the next turn can retry.
func (s *InterviewService) Start(ctx context.Context, sess *models.Session) error {
	if sess.Profile.TechStack == "" || sess.Profile.Position == "" {
		return errors.InvalidInputError("interview", "profile is incomplete")
	}
	if sess.Interview != nil {
		return nil
	}

	questions, err := s.gateway.GenerateQuestions(ctx, sess.Profile.TechStack, sess.Profile.Position)
	if err != nil {
		return fmt.Errorf("generate interview questions: %w", err)
	}
	if len(questions) == 0 {
		return errors.InternalError("question generation returned no questions")
	}

	sess.Interview = &models.Interview{
		Questions: questions,
		Answers:   make([]string, len(questions)),
	}

	metrics.InterviewsStarted.Inc()
	logger.Info("Interview started",
		zap.String("conversation_id", sess.ID),
		zap.String("position", sess.Profile.Position),
		zap.Int("questions", len(questions)))

	return nil
}

// RecordAnswer stores the candidate's answer verbatim and advances to the next
// question. Interview answers are never validated or rejected; quality is
// judged at scoring time.
func (s *InterviewService) RecordAnswer(sess *models.Session, answer string) {
	if sess.Interview == nil || sess.Interview.Complete() {
		return
	}
	sess.Interview.Answers[sess.Interview.CurrentIndex] = answer
	sess.Interview.CurrentIndex++
}
