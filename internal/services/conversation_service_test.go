package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/talentscout/talentscout-api/config"
	"github.com/talentscout/talentscout-api/internal/inference"
	"github.com/talentscout/talentscout-api/internal/models"
	"github.com/talentscout/talentscout-api/internal/services"
	"github.com/talentscout/talentscout-api/internal/session"
	apperrors "github.com/talentscout/talentscout-api/pkg/errors"
	"github.com/talentscout/talentscout-api/pkg/httpclient"
	"github.com/talentscout/talentscout-api/pkg/jwt"
)

type conversationFixture struct {
	service  *services.ConversationService
	store    *session.Store
	gateway  *MockGateway
	notifier *MockNotificationSender
	archiver *MockCandidateArchiver
}

func newConversationFixture() *conversationFixture {
	store := session.NewStore(time.Minute)
	gateway := new(MockGateway)
	notifier := new(MockNotificationSender)
	archiver := new(MockCandidateArchiver)

	service := services.NewConversationService(
		store,
		gateway,
		services.NewVerificationService(notifier),
		services.NewInterviewService(gateway),
		services.NewScoringService(gateway, notifier),
		archiver,
		nil,
		jwt.NewTokenManager("test-secret", "talentscout-api", time.Hour),
		&config.Config{},
		httpclient.NewStandardClient(),
	)

	return &conversationFixture{
		service:  service,
		store:    store,
		gateway:  gateway,
		notifier: notifier,
		archiver: archiver,
	}
}

func valid() *inference.ValidationResult {
	return &inference.ValidationResult{Valid: true}
}

// lastReply returns the content of the final assistant message of a turn
func lastReply(t *testing.T, resp *models.ChatMessageResponse) string {
	t.Helper()
	require.NotEmpty(t, resp.Messages)
	return resp.Messages[len(resp.Messages)-1].Content
}

func TestConversationService_StartConversation(t *testing.T) {
	f := newConversationFixture()

	resp, err := f.service.StartConversation(context.Background())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.ConversationID, "conv_"))
	assert.NotEmpty(t, resp.Token)
	require.Len(t, resp.Messages, 2)
	assert.Contains(t, resp.Messages[0].Content, "TalentScout")
	assert.Equal(t, "What is your full name?", resp.Messages[1].Content)

	sess, err := f.store.Get(resp.ConversationID)
	require.NoError(t, err)
	assert.False(t, sess.Finished)
}

func TestConversationService_FullScreeningRoundTrip(t *testing.T) {
	f := newConversationFixture()
	ctx := context.Background()

	f.gateway.On("Validate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(valid(), nil)

	start, err := f.service.StartConversation(ctx)
	require.NoError(t, err)
	id := start.ConversationID

	// Name
	resp, err := f.service.HandleMessage(ctx, id, "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, "What is your email address?", lastReply(t, resp))

	// Email triggers the verification code
	f.notifier.On("Send", mock.Anything, "jane@x.com", "Your TalentScout verification code", mock.Anything).
		Return(nil).Once()
	resp, err = f.service.HandleMessage(ctx, id, "jane@x.com")
	require.NoError(t, err)
	assert.Contains(t, lastReply(t, resp), "OTP has been sent")

	sess, err := f.store.Get(id)
	require.NoError(t, err)
	code := sess.OTPCode
	require.Len(t, code, 6)

	// Wrong code is rejected without burning the real one
	resp, err = f.service.HandleMessage(ctx, id, "000000")
	require.NoError(t, err)
	assert.Equal(t, "Invalid OTP. Please try again.", lastReply(t, resp))

	// Correct code verifies and moves on to the phone number
	resp, err = f.service.HandleMessage(ctx, id, code)
	require.NoError(t, err)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "Email verified successfully!", resp.Messages[0].Content)
	assert.Equal(t, "Please enter your phone number.", resp.Messages[1].Content)

	resp, err = f.service.HandleMessage(ctx, id, "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "How many years of experience do you have?", lastReply(t, resp))

	resp, err = f.service.HandleMessage(ctx, id, "5")
	require.NoError(t, err)
	assert.Equal(t, "Which position are you applying for?", lastReply(t, resp))

	resp, err = f.service.HandleMessage(ctx, id, "Backend Engineer")
	require.NoError(t, err)
	assert.Contains(t, lastReply(t, resp), "tech stack")

	// Tech stack starts the interview synchronously
	questions := []string{"What is a goroutine?", "Explain indexes.", "Design a rate limiter."}
	f.gateway.On("GenerateQuestions", mock.Anything, "Python, SQL", "Backend Engineer").
		Return(questions, nil).Once()
	resp, err = f.service.HandleMessage(ctx, id, "Python, SQL")
	require.NoError(t, err)
	assert.Equal(t, "Q1: What is a goroutine?", lastReply(t, resp))

	// Answers are accepted verbatim, including a plain refusal
	resp, err = f.service.HandleMessage(ctx, id, "Goroutines are lightweight threads.")
	require.NoError(t, err)
	assert.Equal(t, "Q2: Explain indexes.", lastReply(t, resp))

	resp, err = f.service.HandleMessage(ctx, id, "no")
	require.NoError(t, err)
	assert.Equal(t, "Q3: Design a rate limiter.", lastReply(t, resp))

	// Final answer completes the interview: 7+7+5 = 19 beats the threshold
	f.gateway.On("EvaluateAnswer", mock.Anything, "What is a goroutine?", "Goroutines are lightweight threads.").Return(7, nil).Once()
	f.gateway.On("EvaluateAnswer", mock.Anything, "Explain indexes.", "no").Return(7, nil).Once()
	f.gateway.On("EvaluateAnswer", mock.Anything, "Design a rate limiter.", "Token bucket per client.").Return(5, nil).Once()
	f.notifier.On("Send", mock.Anything, "jane@x.com",
		"Congratulations! You are selected for the next round", mock.Anything).Return(nil).Once()

	var archived *models.CandidateRecord
	f.archiver.On("Archive", mock.Anything, mock.AnythingOfType("*models.CandidateRecord")).
		Run(func(args mock.Arguments) { archived = args.Get(1).(*models.CandidateRecord) }).
		Return(nil).Once()

	resp, err = f.service.HandleMessage(ctx, id, "Token bucket per client.")
	require.NoError(t, err)
	assert.True(t, resp.Finished)
	assert.Contains(t, lastReply(t, resp), "19 out of 30")

	require.NotNil(t, archived)
	assert.Equal(t, id, archived.ConversationID)
	assert.Equal(t, "Jane Doe", archived.Name)
	assert.Equal(t, 19, archived.Score)
	assert.Equal(t, models.DecisionAdvance, archived.Decision)
	assert.Equal(t, 5, archived.ExperienceYears)

	// Turns after completion get the idle response
	resp, err = f.service.HandleMessage(ctx, id, "hello?")
	require.NoError(t, err)
	assert.Equal(t, "How can I assist you further?", lastReply(t, resp))
	assert.True(t, resp.Finished)

	f.gateway.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
	f.archiver.AssertExpectations(t)
}

func TestConversationService_RejectedInputReprompts(t *testing.T) {
	f := newConversationFixture()
	ctx := context.Background()

	start, err := f.service.StartConversation(ctx)
	require.NoError(t, err)

	f.gateway.On("Validate", mock.Anything, "asdf", mock.Anything, mock.Anything, mock.Anything).
		Return(&inference.ValidationResult{Valid: false, Message: "Please provide your full name (first and last name)"}, nil).Once()

	resp, err := f.service.HandleMessage(ctx, start.ConversationID, "asdf")
	require.NoError(t, err)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "Please provide your full name (first and last name)", resp.Messages[0].Content)
	assert.Equal(t, "What is your full name?", resp.Messages[1].Content)

	sess, err := f.store.Get(start.ConversationID)
	require.NoError(t, err)
	assert.Empty(t, sess.Profile.Name, "rejected input is never stored")
}

func TestConversationService_ValidationOutageReprompts(t *testing.T) {
	f := newConversationFixture()
	ctx := context.Background()

	start, err := f.service.StartConversation(ctx)
	require.NoError(t, err)

	f.gateway.On("Validate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("model unavailable")).Once()

	resp, err := f.service.HandleMessage(ctx, start.ConversationID, "Jane Doe")
	require.NoError(t, err, "a gateway outage never fails the turn")
	assert.Contains(t, lastReply(t, resp), "What is your full name?")

	sess, err := f.store.Get(start.ConversationID)
	require.NoError(t, err)
	assert.Empty(t, sess.Profile.Name)
}

func TestConversationService_MalformedEmailRejectedLocally(t *testing.T) {
	f := newConversationFixture()
	ctx := context.Background()

	f.gateway.On("Validate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(valid(), nil)

	start, err := f.service.StartConversation(ctx)
	require.NoError(t, err)
	id := start.ConversationID

	_, err = f.service.HandleMessage(ctx, id, "Jane Doe")
	require.NoError(t, err)

	// The address shape is checked locally, before the gateway is consulted
	// and before any code is sent.
	resp, err := f.service.HandleMessage(ctx, id, "not-an-email")
	require.NoError(t, err)
	assert.Equal(t, "Please provide a valid email address.", resp.Messages[0].Content)

	f.notifier.AssertNotCalled(t, "Send")
}

func TestConversationService_CodeDeliveryFailureDiscardsEmail(t *testing.T) {
	f := newConversationFixture()
	ctx := context.Background()

	f.gateway.On("Validate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(valid(), nil)

	start, err := f.service.StartConversation(ctx)
	require.NoError(t, err)
	id := start.ConversationID

	_, err = f.service.HandleMessage(ctx, id, "Jane Doe")
	require.NoError(t, err)

	f.notifier.On("Send", mock.Anything, "jane@x.com", mock.Anything, mock.Anything).
		Return(errors.New("smtp unreachable")).Once()

	resp, err := f.service.HandleMessage(ctx, id, "jane@x.com")
	require.NoError(t, err)
	assert.Contains(t, lastReply(t, resp), "re-enter your email")

	sess, err := f.store.Get(id)
	require.NoError(t, err)
	assert.Empty(t, sess.Profile.Email, "an unverifiable email is not kept")
}

func TestConversationService_NonNumericExperienceReprompts(t *testing.T) {
	f := newConversationFixture()
	ctx := context.Background()

	f.gateway.On("Validate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(valid(), nil)
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	start, err := f.service.StartConversation(ctx)
	require.NoError(t, err)
	id := start.ConversationID

	for _, input := range []string{"Jane Doe", "jane@x.com"} {
		_, err = f.service.HandleMessage(ctx, id, input)
		require.NoError(t, err)
	}
	sess, err := f.store.Get(id)
	require.NoError(t, err)
	_, err = f.service.HandleMessage(ctx, id, sess.OTPCode)
	require.NoError(t, err)
	_, err = f.service.HandleMessage(ctx, id, "+15551234567")
	require.NoError(t, err)

	resp, err := f.service.HandleMessage(ctx, id, "several")
	require.NoError(t, err)
	assert.Equal(t, "Please enter a valid number of years of experience.", resp.Messages[0].Content)

	sess, err = f.store.Get(id)
	require.NoError(t, err)
	assert.Nil(t, sess.Profile.Experience)
}

func TestConversationService_ExperienceOutsidePromisedRangeReprompts(t *testing.T) {
	f := newConversationFixture()
	ctx := context.Background()

	f.gateway.On("Validate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(valid(), nil)
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	start, err := f.service.StartConversation(ctx)
	require.NoError(t, err)
	id := start.ConversationID

	for _, input := range []string{"Jane Doe", "jane@x.com"} {
		_, err = f.service.HandleMessage(ctx, id, input)
		require.NoError(t, err)
	}
	sess, err := f.store.Get(id)
	require.NoError(t, err)
	_, err = f.service.HandleMessage(ctx, id, sess.OTPCode)
	require.NoError(t, err)
	_, err = f.service.HandleMessage(ctx, id, "+15551234567")
	require.NoError(t, err)

	// The prompt tells the candidate 0 to 30; 31 is rejected like a non-number
	resp, err := f.service.HandleMessage(ctx, id, "31")
	require.NoError(t, err)
	assert.Equal(t, "Please enter a valid number of years of experience.", resp.Messages[0].Content)

	sess, err = f.store.Get(id)
	require.NoError(t, err)
	assert.Nil(t, sess.Profile.Experience)

	resp, err = f.service.HandleMessage(ctx, id, "30")
	require.NoError(t, err)
	assert.Equal(t, "Which position are you applying for?", lastReply(t, resp))
}

func TestConversationService_ConcurrentTurnsAndStateReads(t *testing.T) {
	f := newConversationFixture()
	ctx := context.Background()

	f.gateway.On("Validate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&inference.ValidationResult{Valid: false, Message: "Please provide your full name."}, nil)

	start, err := f.service.StartConversation(ctx)
	require.NoError(t, err)
	id := start.ConversationID

	const writers, readers, turns = 4, 4, 25

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < turns; j++ {
				_, err := f.service.HandleMessage(ctx, id, "x")
				assert.NoError(t, err)
			}
		}()
	}
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < turns; j++ {
				state, err := f.service.GetState(ctx, id)
				assert.NoError(t, err)
				assert.Equal(t, "name", state.Step)
			}
		}()
	}
	wg.Wait()

	// Every rejected turn appends the user message, the feedback, and the
	// re-prompt; the greeting and first prompt precede them all.
	state, err := f.service.GetState(ctx, id)
	require.NoError(t, err)
	assert.Len(t, state.Messages, 2+writers*turns*3)
}

func TestConversationService_QuestionGenerationFailureRetriesNextTurn(t *testing.T) {
	f := newConversationFixture()
	ctx := context.Background()

	f.gateway.On("Validate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(valid(), nil)
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	start, err := f.service.StartConversation(ctx)
	require.NoError(t, err)
	id := start.ConversationID

	for _, input := range []string{"Jane Doe", "jane@x.com"} {
		_, err = f.service.HandleMessage(ctx, id, input)
		require.NoError(t, err)
	}
	sess, err := f.store.Get(id)
	require.NoError(t, err)
	for _, input := range []string{sess.OTPCode, "+15551234567", "5", "Backend Engineer"} {
		_, err = f.service.HandleMessage(ctx, id, input)
		require.NoError(t, err)
	}

	// First attempt fails; the tech stack is kept and the next turn retries
	f.gateway.On("GenerateQuestions", mock.Anything, "Python, SQL", "Backend Engineer").
		Return(nil, errors.New("model unavailable")).Once()
	resp, err := f.service.HandleMessage(ctx, id, "Python, SQL")
	require.NoError(t, err)
	assert.Contains(t, lastReply(t, resp), "try again")

	sess, err = f.store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Python, SQL", sess.Profile.TechStack)
	assert.Nil(t, sess.Interview)

	f.gateway.On("GenerateQuestions", mock.Anything, "Python, SQL", "Backend Engineer").
		Return([]string{"q1"}, nil).Once()
	resp, err = f.service.HandleMessage(ctx, id, "ok")
	require.NoError(t, err)
	assert.Equal(t, "Q1: q1", lastReply(t, resp))
}

func TestConversationService_UnknownConversation(t *testing.T) {
	f := newConversationFixture()

	_, err := f.service.HandleMessage(context.Background(), "conv_missing", "hello")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	_, err = f.service.GetState(context.Background(), "conv_missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestConversationService_GetState(t *testing.T) {
	f := newConversationFixture()
	ctx := context.Background()

	f.gateway.On("Validate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(valid(), nil)

	start, err := f.service.StartConversation(ctx)
	require.NoError(t, err)

	_, err = f.service.HandleMessage(ctx, start.ConversationID, "Jane Doe")
	require.NoError(t, err)

	state, err := f.service.GetState(ctx, start.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "email", state.Step)
	assert.Equal(t, "Jane Doe", state.Profile.Name)
	assert.False(t, state.Finished)
	assert.Len(t, state.Messages, 4)
}
