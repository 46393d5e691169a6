package models

import "time"

// Message roles in the conversation transcript
const (
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

// Message is a single transcript entry. The transcript is append-only.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Profile holds the candidate details collected by the intake form. A field is
// non-zero only once its step has been validated and accepted.
type Profile struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Experience *int   `json:"experience,omitempty"`
	Position   string `json:"position,omitempty"`
	TechStack  string `json:"tech_stack,omitempty"`
}

// Fields returns the collected profile values as a map, used as validation
// context for the inference gateway.
func (p *Profile) Fields() map[string]string {
	fields := make(map[string]string)
	if p.Name != "" {
		fields["name"] = p.Name
	}
	if p.Email != "" {
		fields["email"] = p.Email
	}
	if p.Phone != "" {
		fields["phone"] = p.Phone
	}
	if p.Position != "" {
		fields["position"] = p.Position
	}
	if p.TechStack != "" {
		fields["tech_stack"] = p.TechStack
	}
	return fields
}

// Interview holds the technical interview sub-state. It exists only once every
// profile field is collected and the email is verified.
type Interview struct {
	Questions    []string `json:"questions"`
	Answers      []string `json:"answers"`
	CurrentIndex int      `json:"current_index"`
	Score        *int     `json:"score,omitempty"`
}

// Complete reports whether every question has been answered
func (i *Interview) Complete() bool {
	return i.CurrentIndex >= len(i.Questions)
}

// Session is the per-candidate conversational state record, keyed by an opaque
// conversation id.
type Session struct {
	ID          string     `json:"id"`
	Profile     Profile    `json:"profile"`
	OTPCode     string     `json:"-"`
	OTPVerified bool       `json:"otp_verified"`
	Interview   *Interview `json:"interview,omitempty"`
	Messages    []Message  `json:"messages"`
	Finished    bool       `json:"finished"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// AppendUser appends a candidate message to the transcript
func (s *Session) AppendUser(content string) {
	s.Messages = append(s.Messages, Message{Role: RoleUser, Content: content})
	s.UpdatedAt = time.Now().UTC()
}

// AppendAssistant appends an assistant message to the transcript and returns it
func (s *Session) AppendAssistant(content string) Message {
	msg := Message{Role: RoleAssistant, Content: content}
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now().UTC()
	return msg
}
