package model

import "time"

// Run is one recorded transcription performed by the host service.
type Run struct {
	ID           int64
	RunID        string
	InputName    string
	Model        string
	Engine       string
	SegmentCount int
	ProcessingMs int64
	HasError     bool
	ErrorMessage string
	CreatedAt    time.Time
}
