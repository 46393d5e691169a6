// Package flow computes the active step of an intake conversation. The step is
// always derived from session state, never stored, so dispatch stays a pure
// function of which fields have been accepted so far.
package flow

import (
	"fmt"

	"github.com/talentscout/talentscout-api/internal/models"
)

// Step identifies one stage of the intake conversation
type Step string

const (
	StepName            Step = "name"
	StepEmail           Step = "email"
	StepOTP             Step = "otp"
	StepPhone           Step = "phone"
	StepExperience      Step = "experience"
	StepPosition        Step = "position"
	StepTechStack       Step = "tech_stack"
	StepInterviewStart  Step = "interview_start"
	StepInterviewAnswer Step = "interview_answer"
	StepDone            Step = "done"
)

// StepDescriptor describes the active step: what to ask the candidate and what
// a valid reply looks like. ValidationHint is passed to the inference gateway
// as part of the validation context.
type StepDescriptor struct {
	Step           Step
	Prompt         string
	ValidationHint string
}

var intakeSteps = map[Step]StepDescriptor{
	StepName: {
		Step:           StepName,
		Prompt:         "What is your full name?",
		ValidationHint: "Please provide your full name (first and last name)",
	},
	StepEmail: {
		Step:           StepEmail,
		Prompt:         "What is your email address?",
		ValidationHint: "Please provide a valid email address",
	},
	StepOTP: {
		Step:           StepOTP,
		Prompt:         "Please enter the 6-digit verification code sent to your email.",
		ValidationHint: "Please enter the 6-digit code from your email",
	},
	StepPhone: {
		Step:           StepPhone,
		Prompt:         "Please enter your phone number.",
		ValidationHint: "Please provide a valid phone number with country code",
	},
	StepExperience: {
		Step:           StepExperience,
		Prompt:         "How many years of experience do you have?",
		ValidationHint: "Please enter a number between 0 and 30",
	},
	StepPosition: {
		Step:           StepPosition,
		Prompt:         "Which position are you applying for?",
		ValidationHint: "Please name the position you are applying for",
	},
	StepTechStack: {
		Step:           StepTechStack,
		Prompt:         "What is your tech stack? (e.g., Python, Django, React, SQL)",
		ValidationHint: "Please list your technical skills",
	},
}

// CurrentStep returns the descriptor for the first incomplete stage of the
// session, in the fixed intake order. Pure function; no side effects.
func CurrentStep(s *models.Session) StepDescriptor {
	if s.Interview != nil && !s.Interview.Complete() {
		question := s.Interview.Questions[s.Interview.CurrentIndex]
		return StepDescriptor{
			Step:           StepInterviewAnswer,
			Prompt:         fmt.Sprintf("Q%d: %s", s.Interview.CurrentIndex+1, question),
			ValidationHint: "Please provide a relevant answer to the question",
		}
	}

	switch {
	case s.Profile.Name == "":
		return intakeSteps[StepName]
	case s.Profile.Email == "":
		return intakeSteps[StepEmail]
	case !s.OTPVerified:
		return intakeSteps[StepOTP]
	case s.Profile.Phone == "":
		return intakeSteps[StepPhone]
	case s.Profile.Experience == nil:
		return intakeSteps[StepExperience]
	case s.Profile.Position == "":
		return intakeSteps[StepPosition]
	case s.Profile.TechStack == "":
		return intakeSteps[StepTechStack]
	}

	if s.Interview == nil {
		// Transient: the controller resolves this immediately by starting
		// the interview, it is never shown to the candidate.
		return StepDescriptor{Step: StepInterviewStart}
	}

	return StepDescriptor{
		Step:   StepDone,
		Prompt: "How can I assist you further?",
	}
}
