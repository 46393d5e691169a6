package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/talentscout/talentscout-api/internal/inference"
	"github.com/talentscout/talentscout-api/internal/models"
	"github.com/talentscout/talentscout-api/pkg/logger"
	"github.com/talentscout/talentscout-api/pkg/metrics"
)

// passThreshold is the strict minimum total score. A candidate advances only
// when their total is strictly greater; 18 of 30 is a rejection.
const passThreshold = 18

// ScoringService evaluates a finished interview and delivers the decision
type ScoringService struct {
	gateway  inference.Gateway
	notifier NotificationSender
}

// NewScoringService creates a new scoring service instance
func NewScoringService(gateway inference.Gateway, notifier NotificationSender) *ScoringService {
	return &ScoringService{gateway: gateway, notifier: notifier}
}

// ScoreInterview scores every answer on a 0-10 scale and returns the total
// plus a note per question that could not be scored. An unscorable answer
// contributes zero; one evaluation failure never voids the whole interview.
func (s *ScoringService) ScoreInterview(ctx context.Context, sess *models.Session) (int, []string) {
	total := 0
	var notes []string

	for i, question := range sess.Interview.Questions {
		score, err := s.gateway.EvaluateAnswer(ctx, question, sess.Interview.Answers[i])
		if err != nil {
			logger.Error("Failed to score interview answer",
				zap.String("conversation_id", sess.ID),
				zap.Int("question", i+1),
				zap.Error(err))
			notes = append(notes, fmt.Sprintf("could not score question %d", i+1))
			continue
		}
		total += score
	}

	metrics.InterviewScores.Observe(float64(total))
	logger.Info("Interview scored",
		zap.String("conversation_id", sess.ID),
		zap.Int("score", total),
		zap.Int("unscored", len(notes)))

	return total, notes
}

// DecideAndNotify applies the pass threshold, emails the candidate the
// outcome, and returns the decision. A failed send is logged and counted but
// does not change the decision.
func (s *ScoringService) DecideAndNotify(ctx context.Context, sess *models.Session, score int) string {
	decision := models.DecisionReject
	if score > passThreshold {
		decision = models.DecisionAdvance
	}

	subject, body := decisionEmail(decision, sess.Profile.Name, sess.Profile.Position)

	kind := "decision_" + decision
	if err := s.notifier.Send(ctx, sess.Profile.Email, subject, body); err != nil {
		metrics.NotificationSends.WithLabelValues(kind, "error").Inc()
		logger.Error("Failed to send decision email",
			zap.String("conversation_id", sess.ID),
			zap.String("decision", decision),
			zap.Error(err))
	} else {
		metrics.NotificationSends.WithLabelValues(kind, "success").Inc()
	}

	metrics.InterviewsFinished.WithLabelValues(decision).Inc()

	return decision
}

func decisionEmail(decision, name, position string) (subject, body string) {
	if decision == models.DecisionAdvance {
		subject = "Congratulations! You are selected for the next round"
		body = fmt.Sprintf(
			"Dear %s,\n\nCongratulations! Based on your screening interview for the %s position, you have been selected for the next round of our hiring process. Our team will contact you shortly with the details.\n\nBest regards,\nTalentScout Hiring Team",
			name, position)
		return subject, body
	}

	subject = "Update on Your Interview Process"
	body = fmt.Sprintf(
		"Dear %s,\n\nThank you for taking the time to interview for the %s position. After careful consideration, we have decided not to move forward with your application at this time. We encourage you to apply again in the future.\n\nBest regards,\nTalentScout Hiring Team",
		name, position)
	return subject, body
}
