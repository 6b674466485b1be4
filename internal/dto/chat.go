package dto

type SummarizeRequest struct {
	Expenses string `json:"expenses"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}

type ChatRequest struct {
	Query    string `json:"query"`
	Expenses string `json:"expenses"`
	// SessionID continues an existing conversation; empty starts a new one.
	SessionID string `json:"session_id"`
}

type ChatResponse struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
