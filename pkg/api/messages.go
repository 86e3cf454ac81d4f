package api

type (
	// CopyTarget selects what a copy request copies
	CopyTarget string

	// CopyResponse carries the copied text
	CopyResponse struct {
		Target CopyTarget `json:"target"`
		Text   string     `json:"text"`
	}

	// CompletionResponse is returned when the handoff URL is built
	CompletionResponse struct {
		CompletionURL string `json:"completion_url"`
		TranscriptID  string `json:"transcript_id,omitempty"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		Service string `json:"service"`
		Version string `json:"version"`
		Status  string `json:"status"`
	}

	// ErrorResponse contains error details for failed requests
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status,omitempty"`
	}
)

const (
	CopyTargetRequest  CopyTarget = "request"
	CopyTargetResponse CopyTarget = "response"
)
