package models

// StartChatResponse is returned when a new conversation is created
type StartChatResponse struct {
	ConversationID string    `json:"conversation_id"`
	Token          string    `json:"token"`
	Messages       []Message `json:"messages"`
}

// ChatMessageRequest is one candidate turn
type ChatMessageRequest struct {
	Text string `json:"text" binding:"required,max=4000"`
}

// ChatMessageResponse carries the assistant messages produced by a turn
type ChatMessageResponse struct {
	Messages []Message `json:"messages"`
	Finished bool      `json:"finished"`
}

// ChatStateResponse summarizes a conversation for the transcript endpoint
type ChatStateResponse struct {
	ConversationID string    `json:"conversation_id"`
	Step           string    `json:"step"`
	Profile        Profile   `json:"profile"`
	Messages       []Message `json:"messages"`
	Finished       bool      `json:"finished"`
}
