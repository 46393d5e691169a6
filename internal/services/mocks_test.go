package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/talentscout/talentscout-api/internal/inference"
	"github.com/talentscout/talentscout-api/internal/models"
)

// MockGateway is a mock implementation of inference.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Validate(ctx context.Context, input, stepPrompt, validationHint string, profile map[string]string) (*inference.ValidationResult, error) {
	args := m.Called(ctx, input, stepPrompt, validationHint, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inference.ValidationResult), args.Error(1)
}

func (m *MockGateway) CheckRelevance(ctx context.Context, question, answer string) (bool, error) {
	args := m.Called(ctx, question, answer)
	return args.Bool(0), args.Error(1)
}

func (m *MockGateway) GenerateQuestions(ctx context.Context, techStack, position string) ([]string, error) {
	args := m.Called(ctx, techStack, position)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockGateway) EvaluateAnswer(ctx context.Context, question, answer string) (int, error) {
	args := m.Called(ctx, question, answer)
	return args.Int(0), args.Error(1)
}

// MockNotificationSender is a mock implementation of services.NotificationSender
type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// MockCandidateArchiver is a mock implementation of services.CandidateArchiver
type MockCandidateArchiver struct {
	mock.Mock
}

func (m *MockCandidateArchiver) Archive(ctx context.Context, record *models.CandidateRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockTranscriptArchiver is a mock implementation of services.TranscriptArchiver
type MockTranscriptArchiver struct {
	mock.Mock
}

func (m *MockTranscriptArchiver) UploadTranscript(ctx context.Context, conversationID string, transcriptJSON []byte) (string, error) {
	args := m.Called(ctx, conversationID, transcriptJSON)
	return args.String(0), args.Error(1)
}
