package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/talentscout/talentscout-api/internal/models"
	"github.com/talentscout/talentscout-api/internal/services"
)

func interviewSession(answers ...string) *models.Session {
	questions := []string{"q1", "q2", "q3"}
	return &models.Session{
		ID:      "conv-1",
		Profile: readyProfile(),
		Interview: &models.Interview{
			Questions:    questions,
			Answers:      answers,
			CurrentIndex: len(questions),
		},
	}
}

func TestScoringService_ScoreInterview(t *testing.T) {
	gateway := new(MockGateway)
	service := services.NewScoringService(gateway, new(MockNotificationSender))
	ctx := context.Background()

	sess := interviewSession("a1", "a2", "a3")

	gateway.On("EvaluateAnswer", ctx, "q1", "a1").Return(7, nil).Once()
	gateway.On("EvaluateAnswer", ctx, "q2", "a2").Return(8, nil).Once()
	gateway.On("EvaluateAnswer", ctx, "q3", "a3").Return(4, nil).Once()

	total, notes := service.ScoreInterview(ctx, sess)
	assert.Equal(t, 19, total)
	assert.Empty(t, notes)

	gateway.AssertExpectations(t)
}

func TestScoringService_ScoreInterview_EvaluationFailureContributesZero(t *testing.T) {
	gateway := new(MockGateway)
	service := services.NewScoringService(gateway, new(MockNotificationSender))
	ctx := context.Background()

	sess := interviewSession("a1", "a2", "a3")

	gateway.On("EvaluateAnswer", ctx, "q1", "a1").Return(9, nil).Once()
	gateway.On("EvaluateAnswer", ctx, "q2", "a2").Return(0, errors.New("model timeout")).Once()
	gateway.On("EvaluateAnswer", ctx, "q3", "a3").Return(6, nil).Once()

	total, notes := service.ScoreInterview(ctx, sess)
	assert.Equal(t, 15, total)
	assert.Equal(t, []string{"could not score question 2"}, notes)
}

func TestScoringService_DecideAndNotify_AdvanceAboveThreshold(t *testing.T) {
	notifier := new(MockNotificationSender)
	service := services.NewScoringService(new(MockGateway), notifier)
	ctx := context.Background()

	sess := interviewSession("a1", "a2", "a3")

	notifier.On("Send", ctx, "jane@x.com",
		"Congratulations! You are selected for the next round",
		mock.AnythingOfType("string")).Return(nil).Once()

	decision := service.DecideAndNotify(ctx, sess, 19)
	assert.Equal(t, models.DecisionAdvance, decision)

	notifier.AssertExpectations(t)
}

func TestScoringService_DecideAndNotify_RejectAtThreshold(t *testing.T) {
	notifier := new(MockNotificationSender)
	service := services.NewScoringService(new(MockGateway), notifier)
	ctx := context.Background()

	sess := interviewSession("a1", "a2", "a3")

	// 18 of 30 is a rejection: the threshold is strict
	notifier.On("Send", ctx, "jane@x.com",
		"Update on Your Interview Process",
		mock.AnythingOfType("string")).Return(nil).Once()

	decision := service.DecideAndNotify(ctx, sess, 18)
	assert.Equal(t, models.DecisionReject, decision)

	notifier.AssertExpectations(t)
}

func TestScoringService_DecideAndNotify_SendFailureKeepsDecision(t *testing.T) {
	notifier := new(MockNotificationSender)
	service := services.NewScoringService(new(MockGateway), notifier)
	ctx := context.Background()

	sess := interviewSession("a1", "a2", "a3")

	notifier.On("Send", ctx, "jane@x.com", mock.Anything, mock.Anything).
		Return(errors.New("smtp unreachable")).Once()

	decision := service.DecideAndNotify(ctx, sess, 25)
	assert.Equal(t, models.DecisionAdvance, decision)
}
