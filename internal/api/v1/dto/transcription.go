package dto

import (
	"time"

	"whisper-bridge/internal/app/model"
)

// TranscribeRequest is an uploaded file already saved to disk.
type TranscribeRequest struct {
	AudioPath string `validate:"required"`
	FileName  string `validate:"required"`
	Size      int64  `validate:"gte=0"`
	// WorkDir holds the bridge output and is removed by the caller.
	WorkDir string `validate:"required"`
}

// TranscribeResponse is the 200 body of POST /api/transcribe.
type TranscribeResponse struct {
	Segments              []model.Segment `json:"segments"`
	ProcessingTimeSeconds float64         `json:"processing_time_seconds"`
}

// ErrorResponse is the error body of POST /api/transcribe.
type ErrorResponse struct {
	Error   string `json:"error"`
	Output  string `json:"output,omitempty"`
	Details string `json:"details,omitempty"`
}

// HistoryQuery is the query string of GET /api/history.
type HistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// RunResponse is one history row.
type RunResponse struct {
	ID           int64     `json:"id"`
	RunID        string    `json:"run_id"`
	InputName    string    `json:"input_name"`
	Model        string    `json:"model"`
	Engine       string    `json:"engine"`
	SegmentCount int       `json:"segment_count"`
	ProcessingMs int64     `json:"processing_ms"`
	HasError     bool      `json:"has_error"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// HistoryResponse is the body of GET /api/history.
type HistoryResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

// FromRun converts a stored run.
func FromRun(r model.Run) RunResponse {
	return RunResponse{
		ID:           r.ID,
		RunID:        r.RunID,
		InputName:    r.InputName,
		Model:        r.Model,
		Engine:       r.Engine,
		SegmentCount: r.SegmentCount,
		ProcessingMs: r.ProcessingMs,
		HasError:     r.HasError,
		ErrorMessage: r.ErrorMessage,
		CreatedAt:    r.CreatedAt,
	}
}
