package entity

// AskRequest is the payload of POST /chat/ask.
type AskRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

// AskResponse carries the final tagged answer.
type AskResponse struct {
	Answer string `json:"answer"`
}

// CreateSessionResponse is returned when a new conversation session is opened.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

// TurnDTO is one conversation turn as exposed over the API.
type TurnDTO struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// HistoryResponse lists the retained turns of a session, oldest first.
type HistoryResponse struct {
	SessionID string    `json:"session_id"`
	Turns     []TurnDTO `json:"turns"`
}

// ErrorResponse is the uniform error payload of the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
