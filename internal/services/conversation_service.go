package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/talentscout/talentscout-api/config"
	"github.com/talentscout/talentscout-api/internal/flow"
	"github.com/talentscout/talentscout-api/internal/inference"
	"github.com/talentscout/talentscout-api/internal/models"
	"github.com/talentscout/talentscout-api/internal/session"
	"github.com/talentscout/talentscout-api/pkg/httpclient"
	"github.com/talentscout/talentscout-api/pkg/jwt"
	"github.com/talentscout/talentscout-api/pkg/logger"
	"github.com/talentscout/talentscout-api/pkg/metrics"
	"github.com/talentscout/talentscout-api/pkg/trigger"
)

const greeting = "Hello! I'm the TalentScout hiring assistant. I'll collect a few details about you and then ask a short technical interview tailored to your tech stack."

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ConversationService drives the intake conversation. Each turn is dispatched
// on the first incomplete step of the session, so replaying a turn after a
// failed write asks the same question again instead of corrupting state.
type ConversationService struct {
	store        *session.Store
	gateway      inference.Gateway
	verification VerificationServiceInterface
	interview    InterviewServiceInterface
	scoring      ScoringServiceInterface
	archiver     CandidateArchiver
	transcripts  TranscriptArchiver
	tokens       *jwt.TokenManager
	config       *config.Config
	httpClient   httpclient.Client
}

// NewConversationService creates a new conversation service instance.
// archiver and transcripts may be nil when the corresponding backend is not
// configured; completion then skips that archive step.
func NewConversationService(
	store *session.Store,
	gateway inference.Gateway,
	verification VerificationServiceInterface,
	interview InterviewServiceInterface,
	scoring ScoringServiceInterface,
	archiver CandidateArchiver,
	transcripts TranscriptArchiver,
	tokens *jwt.TokenManager,
	cfg *config.Config,
	httpClient httpclient.Client,
) *ConversationService {
	return &ConversationService{
		store:        store,
		gateway:      gateway,
		verification: verification,
		interview:    interview,
		scoring:      scoring,
		archiver:     archiver,
		transcripts:  transcripts,
		tokens:       tokens,
		config:       cfg,
		httpClient:   httpClient,
	}
}

// StartConversation creates a fresh session and returns the greeting, the
// first question, and a bearer token scoped to the new conversation.
func (s *ConversationService) StartConversation(ctx context.Context) (*models.StartChatResponse, error) {
	id, err := newConversationID()
	if err != nil {
		return nil, fmt.Errorf("generate conversation id: %w", err)
	}

	token, err := s.tokens.GenerateToken(id)
	if err != nil {
		return nil, fmt.Errorf("generate conversation token: %w", err)
	}

	now := time.Now().UTC()
	sess := &models.Session{ID: id, CreatedAt: now, UpdatedAt: now}
	sess.AppendAssistant(greeting)
	sess.AppendAssistant(flow.CurrentStep(sess).Prompt)

	s.store.Put(sess)
	metrics.SessionsStarted.Inc()
	logger.Info("Conversation started", zap.String("conversation_id", id))

	return &models.StartChatResponse{
		ConversationID: id,
		Token:          token,
		Messages:       sess.Messages,
	}, nil
}

// HandleMessage processes one candidate turn. Turns on the same conversation
// are serialized; a concurrent duplicate waits and is then dispatched against
// the updated state.
func (s *ConversationService) HandleMessage(ctx context.Context, conversationID, text string) (*models.ChatMessageResponse, error) {
	unlock := s.store.Lock(conversationID)
	defer unlock()

	sess, err := s.store.Get(conversationID)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	sess.AppendUser(text)

	var replies []models.Message
	add := func(content string) {
		replies = append(replies, sess.AppendAssistant(content))
	}

	step := flow.CurrentStep(sess)
	status := "accepted"

	switch step.Step {
	case flow.StepDone:
		add(step.Prompt)
		status = "idle"

	case flow.StepInterviewAnswer:
		// Interview answers are recorded verbatim; even an empty or
		// evasive reply counts as the answer to the active question.
		s.interview.RecordAnswer(sess, text)
		if sess.Interview.Complete() {
			s.finishScreening(ctx, sess, add)
		} else {
			add(flow.CurrentStep(sess).Prompt)
		}

	case flow.StepInterviewStart:
		// A previous turn stored the tech stack but question generation
		// failed; retry before asking anything else.
		if err := s.startInterview(ctx, sess, add); err != nil {
			status = "retry"
		}

	default:
		status = s.handleIntakeStep(ctx, sess, step, text, add)
	}

	if sess.Finished {
		status = "finished"
	}

	metrics.ChatTurns.WithLabelValues(string(step.Step), status).Inc()
	s.store.Put(sess)

	return &models.ChatMessageResponse{Messages: replies, Finished: sess.Finished}, nil
}

// GetState returns the transcript and derived step of a conversation. It takes
// the same lock as HandleMessage and returns a snapshot, so the response never
// aliases a session a concurrent turn is still appending to.
func (s *ConversationService) GetState(ctx context.Context, conversationID string) (*models.ChatStateResponse, error) {
	unlock := s.store.Lock(conversationID)
	defer unlock()

	sess, err := s.store.Get(conversationID)
	if err != nil {
		return nil, err
	}

	messages := make([]models.Message, len(sess.Messages))
	copy(messages, sess.Messages)

	return &models.ChatStateResponse{
		ConversationID: sess.ID,
		Step:           string(flow.CurrentStep(sess).Step),
		Profile:        sess.Profile,
		Messages:       messages,
		Finished:       sess.Finished,
	}, nil
}

// handleIntakeStep validates and stores one profile field. Returns the turn
// status for metrics.
func (s *ConversationService) handleIntakeStep(ctx context.Context, sess *models.Session, step flow.StepDescriptor, text string, add func(string)) string {
	// The verification code is checked locally, never sent to the model
	if step.Step == flow.StepOTP {
		if s.verification.CheckCode(sess, text) {
			add("Email verified successfully!")
			add(flow.CurrentStep(sess).Prompt)
			return "accepted"
		}
		add("Invalid OTP. Please try again.")
		return "rejected"
	}

	// A malformed address is rejected on shape alone, without consulting the
	// gateway's verdict.
	if step.Step == flow.StepEmail && !emailPattern.MatchString(text) {
		add("Please provide a valid email address.")
		add(step.Prompt)
		return "rejected"
	}

	result, err := s.gateway.Validate(ctx, text, step.Prompt, step.ValidationHint, sess.Profile.Fields())
	if err != nil {
		logger.Error("Input validation call failed",
			zap.String("conversation_id", sess.ID),
			zap.String("step", string(step.Step)),
			zap.Error(err))
		add("Sorry, I couldn't process that. " + step.Prompt)
		return "error"
	}
	if !result.Valid {
		feedback := result.Message
		if feedback == "" {
			feedback = step.ValidationHint
		}
		add(feedback)
		add(step.Prompt)
		return "rejected"
	}

	switch step.Step {
	case flow.StepName:
		sess.Profile.Name = text

	case flow.StepEmail:
		sess.Profile.Email = text
		if err := s.verification.IssueCode(ctx, sess); err != nil {
			// Without a delivered code the candidate can never verify,
			// so the email is discarded and asked for again.
			sess.Profile.Email = ""
			add("I couldn't send the verification code to that address. Please re-enter your email address.")
			return "error"
		}
		add("An OTP has been sent to your email. Please enter it here to verify your email address.")
		return "accepted"

	case flow.StepPhone:
		sess.Profile.Phone = text

	case flow.StepExperience:
		// Same 0..30 range the step's hint promises the candidate
		years, err := strconv.Atoi(text)
		if err != nil || years < 0 || years > 30 {
			add("Please enter a valid number of years of experience.")
			add(step.Prompt)
			return "rejected"
		}
		sess.Profile.Experience = &years

	case flow.StepPosition:
		sess.Profile.Position = text

	case flow.StepTechStack:
		sess.Profile.TechStack = text
		if err := s.startInterview(ctx, sess, add); err != nil {
			return "retry"
		}
		return "accepted"
	}

	add(flow.CurrentStep(sess).Prompt)
	return "accepted"
}

// startInterview generates the question set and presents the first question.
// On failure the candidate is asked to try again; the session stays one turn
// away from another attempt.
func (s *ConversationService) startInterview(ctx context.Context, sess *models.Session, add func(string)) error {
	if err := s.interview.Start(ctx, sess); err != nil {
		logger.Error("Failed to start interview",
			zap.String("conversation_id", sess.ID),
			zap.Error(err))
		add("I'm having trouble preparing your interview questions right now. Please send any message to try again.")
		return err
	}

	add("Thank you! I've prepared a few technical questions based on your tech stack. Please answer each one in a few sentences.")
	add(flow.CurrentStep(sess).Prompt)
	return nil
}

// finishScreening scores the interview, delivers the decision, and archives
// the outcome. Archive failures are logged and counted but never surface to
// the candidate.
func (s *ConversationService) finishScreening(ctx context.Context, sess *models.Session, add func(string)) {
	total, notes := s.scoring.ScoreInterview(ctx, sess)
	sess.Interview.Score = &total

	decision := s.scoring.DecideAndNotify(ctx, sess, total)
	finishedAt := time.Now().UTC()
	sess.Finished = true

	summary := fmt.Sprintf("Thank you for completing the interview! Your total score is %d out of 30. We've sent the outcome to your email.", total)
	if len(notes) > 0 {
		summary += " (" + strings.Join(notes, "; ") + ")"
	}
	add(summary)

	record := &models.CandidateRecord{
		ConversationID:  sess.ID,
		Name:            sess.Profile.Name,
		Email:           sess.Profile.Email,
		Phone:           sess.Profile.Phone,
		ExperienceYears: *sess.Profile.Experience,
		Position:        sess.Profile.Position,
		TechStack:       sess.Profile.TechStack,
		Score:           total,
		Decision:        decision,
		FinishedAt:      finishedAt,
	}

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, record); err != nil {
			metrics.CandidateArchives.WithLabelValues("error").Inc()
			logger.Error("Failed to archive candidate",
				zap.String("conversation_id", sess.ID),
				zap.Error(err))
		} else {
			metrics.CandidateArchives.WithLabelValues("success").Inc()
		}
	}

	if s.transcripts != nil {
		transcript := &models.Transcript{
			ConversationID: sess.ID,
			Position:       sess.Profile.Position,
			TechStack:      sess.Profile.TechStack,
			Questions:      sess.Interview.Questions,
			Answers:        sess.Interview.Answers,
			Score:          total,
			Decision:       decision,
			FinishedAt:     finishedAt,
		}
		payload, err := json.Marshal(transcript)
		if err == nil {
			_, err = s.transcripts.UploadTranscript(ctx, sess.ID, payload)
		}
		if err != nil {
			logger.Error("Failed to upload interview transcript",
				zap.String("conversation_id", sess.ID),
				zap.Error(err))
		}
	}

	if url := s.config.EventTriggers.ScreeningFinishedTriggerURL; url != "" {
		trigger.CallAsyncWithPayload(url, record, s.httpClient)
	}

	logger.Info("Screening finished",
		zap.String("conversation_id", sess.ID),
		zap.Int("score", total),
		zap.String("decision", decision))
}

// newConversationID returns an opaque, unguessable conversation id
func newConversationID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "conv_" + hex.EncodeToString(buf), nil
}
