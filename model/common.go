package model

// Response is the envelope every dashboard endpoint answers with. Error
// carries the user-facing message shown in the error banner.
type Response struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Analyze Success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// DefaultResponse wraps Response for huma operations.
type DefaultResponse struct {
	Body Response
}
