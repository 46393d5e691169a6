package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/talentscout/talentscout-api/internal/models"
	"github.com/talentscout/talentscout-api/pkg/jwt"
	"github.com/talentscout/talentscout-api/pkg/logger"
	"github.com/talentscout/talentscout-api/pkg/metrics"
)

// VerificationService issues and checks the email ownership codes sent during
// intake. A code stays valid for the lifetime of its session; issuing a new
// one replaces it.
type VerificationService struct {
	notifier NotificationSender
}

// NewVerificationService creates a new verification service instance
func NewVerificationService(notifier NotificationSender) *VerificationService {
	return &VerificationService{notifier: notifier}
}

// IssueCode generates a fresh 6-digit code, stores it on the session, and
// emails it to the candidate's declared address.
func (s *VerificationService) IssueCode(ctx context.Context, sess *models.Session) error {
	code, err := generateCode()
	if err != nil {
		metrics.OTPIssued.WithLabelValues("error").Inc()
		return fmt.Errorf("generate verification code: %w", err)
	}

	body := fmt.Sprintf(
		"Hello %s,\n\nYour TalentScout verification code is: %s\n\nEnter this code in the chat to verify your email address.\n\nBest regards,\nTalentScout Hiring Team",
		sess.Profile.Name, code)

	if err := s.notifier.Send(ctx, sess.Profile.Email, "Your TalentScout verification code", body); err != nil {
		metrics.OTPIssued.WithLabelValues("error").Inc()
		logger.Error("Failed to send verification code",
			zap.String("conversation_id", sess.ID),
			zap.Error(err))
		return fmt.Errorf("send verification code: %w", err)
	}

	sess.OTPCode = code
	metrics.OTPIssued.WithLabelValues("success").Inc()
	logger.Info("Verification code issued", zap.String("conversation_id", sess.ID))

	return nil
}

// CheckCode compares the candidate's input against the issued code and marks
// the session verified on a match. The input must parse as an integer; "007"
// never matches a code ending in 7.
func (s *VerificationService) CheckCode(sess *models.Session, input string) bool {
	if sess.OTPCode == "" {
		metrics.OTPChecks.WithLabelValues("no_code").Inc()
		return false
	}

	supplied, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		metrics.OTPChecks.WithLabelValues("mismatch").Inc()
		return false
	}

	if !jwt.TimingSafeCompare(fmt.Sprintf("%06d", supplied), sess.OTPCode) {
		metrics.OTPChecks.WithLabelValues("mismatch").Inc()
		return false
	}

	sess.OTPVerified = true
	sess.OTPCode = ""
	metrics.OTPChecks.WithLabelValues("success").Inc()
	logger.Info("Email verified", zap.String("conversation_id", sess.ID))

	return true
}

// generateCode returns a uniformly random 6-digit code in [100000, 999999]
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
